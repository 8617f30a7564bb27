package model

import "time"

// Zone is the root of the campus hierarchy.
type Zone struct {
	Id          int        `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string     `json:"name" form:"name" gorm:"size:120;uniqueIndex;not null"`
	Description string     `json:"description" form:"description"`
	Buildings   []Building `json:"buildings,omitempty" gorm:"foreignKey:ZoneId;constraint:OnDelete:CASCADE"`
}

// Building names are unique within their zone.
type Building struct {
	Id          int        `json:"id" gorm:"primaryKey;autoIncrement"`
	ZoneId      int        `json:"zoneId" form:"zoneId" gorm:"not null;uniqueIndex:idx_zone_building"`
	Name        string     `json:"name" form:"name" gorm:"size:150;not null;uniqueIndex:idx_zone_building"`
	Floors      int        `json:"floors" form:"floors" gorm:"not null;default:1"`
	Description string     `json:"description" form:"description"`
	Divisions   []Division `json:"divisions,omitempty" gorm:"foreignKey:BuildingId;constraint:OnDelete:CASCADE"`
}

// Division may be assigned to one management assistant. Removing the
// assistant's account leaves the division unassigned.
type Division struct {
	Id          int    `json:"id" gorm:"primaryKey;autoIncrement"`
	BuildingId  int    `json:"buildingId" form:"buildingId" gorm:"not null;index"`
	Name        string `json:"name" form:"name" gorm:"size:150;not null"`
	Description string `json:"description" form:"description"`
	AssistantId *int   `json:"assistantId" gorm:"index"`
	Assistant   *User  `json:"-" gorm:"foreignKey:AssistantId;constraint:OnDelete:SET NULL"`
	Tasks       []Task `json:"tasks,omitempty" gorm:"foreignKey:DivisionId;constraint:OnDelete:CASCADE"`
}

type Task struct {
	Id          int       `json:"id" gorm:"primaryKey;autoIncrement"`
	DivisionId  int       `json:"divisionId" gorm:"not null;index"`
	Title       string    `json:"title" gorm:"size:200;not null"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	Subtasks    []Subtask `json:"subtasks,omitempty" gorm:"foreignKey:TaskId;constraint:OnDelete:CASCADE"`
}

type Subtask struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	TaskId    int       `json:"taskId" gorm:"not null;index"`
	Title     string    `json:"title" gorm:"size:200;not null"`
	Notes     string    `json:"notes"`
	IsDone    bool      `json:"isDone" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt"`
}
