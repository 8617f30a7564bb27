// Package entity defines request and response shapes used by the web layer.
package entity

// Msg represents a standard API response message with success status, message text, and optional data object.
type Msg struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Obj     any    `json:"obj"`
}

// LoginForm is posted by both login surfaces.
type LoginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

type ZoneForm struct {
	Name string `json:"name" form:"name" binding:"required,max=120"`
}

type BuildingForm struct {
	ZoneId int    `json:"zoneId" form:"zoneId" binding:"required,gt=0"`
	Name   string `json:"name" form:"name" binding:"required,max=120"`
	Floors int    `json:"floors" form:"floors" binding:"omitempty,gte=1,lte=100"`
}

type DivisionForm struct {
	BuildingId  int    `json:"buildingId" form:"buildingId" binding:"required,gt=0"`
	Name        string `json:"name" form:"name" binding:"required,max=120"`
	Description string `json:"description" form:"description"`
}

// AssignForm sets the assistant of a division; a nil AssistantId clears it.
type AssignForm struct {
	AssistantId *int `json:"assistantId" form:"assistantId"`
}
