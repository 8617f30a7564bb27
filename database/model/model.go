// Package model defines the persistent records of the campus panel.
package model

import (
	"time"
)

// Role is the sole authorization signal of an account.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleMA    Role = "ma"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMA
}

// User is an authenticable identity. Profile is nil for accounts that were
// never assigned a role.
type User struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Username  string    `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"size:254"`
	Password  string    `json:"-" gorm:"not null"` // bcrypt hash
	CreatedAt time.Time `json:"createdAt"`
	Profile   *Profile  `json:"profile,omitempty" gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
}

// HasRole reports whether the user is provisioned with role r.
func (u *User) HasRole(r Role) bool {
	return u != nil && u.Profile != nil && u.Profile.Role == r
}

// Profile attaches a role and contact data to exactly one User.
type Profile struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId    int       `json:"userId" gorm:"uniqueIndex;not null"`
	Role      Role      `json:"role" gorm:"size:10;not null;index"`
	Phone     string    `json:"phone" gorm:"size:15"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime;<-:create"`
}

// AuditLog records security relevant actions.
type AuditLog struct {
	ID         int       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     int       `json:"userId" gorm:"index"`
	Username   string    `json:"username"`
	Action     string    `json:"action" gorm:"index"`
	Resource   string    `json:"resource"`
	ResourceID int       `json:"resourceId"`
	IP         string    `json:"ip"`
	UserAgent  string    `json:"userAgent"`
	RequestID  string    `json:"requestId"`
	Details    string    `json:"details"`
	Timestamp  time.Time `json:"timestamp" gorm:"index"`
}
