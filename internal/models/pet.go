package models

import (
	"time"
)

// Pet represents a pet persona. Immutable once a conversation starts, except
// through an explicit edit (not implemented).
type Pet struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"index;not null" json:"user_id"`
	Name          string    `gorm:"not null" json:"name"`
	Species       string    `gorm:"not null" json:"species"`
	Breed         string    `json:"breed,omitempty"`
	Age           string    `json:"age,omitempty"`
	Gender        string    `json:"gender,omitempty"`
	Birthday      string    `json:"birthday,omitempty"`
	Personality   string    `json:"personality"`
	SpeakingStyle string    `json:"speaking_style"`
	UserCall      string    `json:"user_call"`
	Likes         string    `json:"likes,omitempty"`
	Dislikes      string    `json:"dislikes,omitempty"`
	Habits        string    `json:"habits,omitempty"`
	EtcInfo       string    `json:"etc_info,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreatePetRequest is the JSON request body for registering a pet
type CreatePetRequest struct {
	Name          string `json:"name" binding:"required"`
	Species       string `json:"species" binding:"required"`
	Breed         string `json:"breed"`
	Age           string `json:"age"`
	Gender        string `json:"gender"`
	Birthday      string `json:"birthday"`
	Personality   string `json:"personality" binding:"required"`
	SpeakingStyle string `json:"speaking_style" binding:"required"`
	UserCall      string `json:"user_call" binding:"required"`
	Likes         string `json:"likes"`
	Dislikes      string `json:"dislikes"`
	Habits        string `json:"habits"`
	EtcInfo       string `json:"etc_info"`
}

// PersonaView is the persona object embedded in pet listing responses
type PersonaView struct {
	Name          string `json:"name"`
	Species       string `json:"species"`
	Breed         string `json:"breed,omitempty"`
	Personality   string `json:"personality"`
	SpeakingStyle string `json:"speaking_style"`
	UserCall      string `json:"user_call"`
	Likes         string `json:"likes,omitempty"`
	Dislikes      string `json:"dislikes,omitempty"`
	EtcInfo       string `json:"etc_info,omitempty"`
}

// Persona returns the persona view of the pet
func (p *Pet) Persona() PersonaView {
	return PersonaView{
		Name:          p.Name,
		Species:       p.Species,
		Breed:         p.Breed,
		Personality:   p.Personality,
		SpeakingStyle: p.SpeakingStyle,
		UserCall:      p.UserCall,
		Likes:         p.Likes,
		Dislikes:      p.Dislikes,
		EtcInfo:       p.EtcInfo,
	}
}
