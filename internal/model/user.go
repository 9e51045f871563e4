package model

import "time"

// Roles known to the access gate.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an authenticated principal.
type User struct {
	ID           int64  `json:"id" gorm:"primaryKey"`
	Email        string `json:"email" gorm:"uniqueIndex;size:254;not null"`
	Name         string `json:"name" gorm:"size:128;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
	Role         string `json:"role" gorm:"size:16;not null;default:user"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
