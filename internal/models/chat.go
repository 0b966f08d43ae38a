package models

import (
	"time"
)

// Message senders; the database constrains the column to exactly these two.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// ChatSession groups messages for one (user, pet) conversation thread
type ChatSession struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"index;not null" json:"user_id"`
	PetID           uint      `gorm:"index;not null" json:"pet_id"`
	SessionName     string    `json:"session_name,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	LastMessageTime time.Time `json:"last_message_time"`
}

// ChatMessage is one line of a conversation, either the user's or the bot's
type ChatMessage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ExternalID string    `gorm:"index" json:"external_id"`
	SessionID  uint      `gorm:"index;not null" json:"session_id"`
	Sender     string    `gorm:"not null;check:sender IN ('user','bot')" json:"sender"`
	Content    string    `gorm:"not null" json:"content"`
	Timestamp  time.Time `json:"timestamp"`
}

// SessionPreview is the per-session row returned by the session listing
type SessionPreview struct {
	PetID           uint      `json:"pet_id"`
	PetName         string    `json:"pet_name"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
}
