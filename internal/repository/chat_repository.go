package repository

import (
	"time"

	"mypetsvoice/backend/internal/models"

	"gorm.io/gorm"
)

// ChatRepository abstracts session and message persistence for the API
// variant. AppendTurn is the only write path for messages: a user line and
// its bot reply land in one transaction, so readers never observe a partial
// turn.
type ChatRepository interface {
	// LatestSession returns the most recently active session for the
	// (user, pet) pair, or gorm.ErrRecordNotFound
	LatestSession(userID, petID uint) (*models.ChatSession, error)
	CreateSession(session *models.ChatSession) error
	// RecentMessages returns at most limit messages, oldest first
	RecentMessages(sessionID uint, limit int) ([]models.ChatMessage, error)
	AllMessages(sessionID uint) ([]models.ChatMessage, error)
	// AppendTurn persists the user message and the bot reply atomically and
	// bumps the session's last-activity time
	AppendTurn(sessionID uint, userMsg, botMsg *models.ChatMessage) error
	// ResetSession removes every message of the session; all-or-nothing
	ResetSession(sessionID uint) error
	ListPreviews(userID uint, limit int) ([]models.SessionPreview, error)
}

type GormChatRepository struct {
	db *gorm.DB
}

func NewGormChatRepository(db *gorm.DB) *GormChatRepository {
	return &GormChatRepository{db: db}
}

func (r *GormChatRepository) LatestSession(userID, petID uint) (*models.ChatSession, error) {
	var session models.ChatSession
	err := r.db.Where("user_id = ? AND pet_id = ?", userID, petID).
		Order("last_message_time DESC").
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *GormChatRepository) CreateSession(session *models.ChatSession) error {
	if session.LastMessageTime.IsZero() {
		session.LastMessageTime = time.Now()
	}
	return r.db.Create(session).Error
}

func (r *GormChatRepository) RecentMessages(sessionID uint, limit int) ([]models.ChatMessage, error) {
	var recent []models.ChatMessage
	err := r.db.Where("session_id = ?", sessionID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&recent).Error
	if err != nil {
		return nil, err
	}

	// Flip newest-first into chronological order
	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}
	return recent, nil
}

func (r *GormChatRepository) AllMessages(sessionID uint) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.Where("session_id = ?", sessionID).
		Order("timestamp ASC").
		Find(&messages).Error
	return messages, err
}

func (r *GormChatRepository) AppendTurn(sessionID uint, userMsg, botMsg *models.ChatMessage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(userMsg).Error; err != nil {
			return err
		}
		if err := tx.Create(botMsg).Error; err != nil {
			return err
		}
		return tx.Model(&models.ChatSession{}).
			Where("id = ?", sessionID).
			Update("last_message_time", time.Now()).Error
	})
}

func (r *GormChatRepository) ResetSession(sessionID uint) error {
	return r.db.Where("session_id = ?", sessionID).
		Delete(&models.ChatMessage{}).Error
}

func (r *GormChatRepository) ListPreviews(userID uint, limit int) ([]models.SessionPreview, error) {
	var previews []models.SessionPreview

	// Last message per session via a correlated subquery; sessions without
	// messages still show up with an empty preview
	err := r.db.Table("chat_sessions cs").
		Select(`cs.pet_id,
			pets.name AS pet_name,
			COALESCE((SELECT cm.content FROM chat_messages cm
				WHERE cm.session_id = cs.id
				ORDER BY cm.timestamp DESC LIMIT 1), '') AS last_message,
			cs.last_message_time`).
		Joins("JOIN pets ON pets.id = cs.pet_id").
		Where("cs.user_id = ?", userID).
		Order("cs.last_message_time DESC").
		Limit(limit).
		Scan(&previews).Error

	return previews, err
}
