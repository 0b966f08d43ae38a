package models

import (
	"time"
)

// User represents a user in the system. There is no real authentication;
// rows exist so pets and sessions have an owner, and the dev login endpoint
// creates them on demand.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex" json:"username"`
	Nickname  string    `json:"nickname,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DevLoginRequest is the request structure for the dev login stub
type DevLoginRequest struct {
	UserID uint `json:"user_id"`
}
