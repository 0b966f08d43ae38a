package service

import (
	"context"
	"strings"
	"time"

	"mypetsvoice/backend/internal/models"
	"mypetsvoice/backend/internal/prompt"
	"mypetsvoice/backend/internal/repository"
	"mypetsvoice/backend/pkg/config"
	"mypetsvoice/backend/pkg/errors"
	"mypetsvoice/backend/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// emptySessionPreview is shown for sessions that have no messages yet
const emptySessionPreview = "Start a conversation"

// ReplyGenerator is the boundary to the model gateway. Implementations never
// return an error; failures surface as a fallback reply string.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, profile prompt.PetProfile, history []prompt.Turn, userMessage string) string
}

// ChatService orchestrates one conversation turn for the API variant:
// validate, resolve persona, window the history, call the gateway, persist
// the finished pair.
type ChatService struct {
	pets      *PetService
	chats     repository.ChatRepository
	generator ReplyGenerator
	log       *logger.Logger
}

// NewChatService creates a chat service
func NewChatService(pets *PetService, chats repository.ChatRepository, generator ReplyGenerator, log *logger.Logger) *ChatService {
	return &ChatService{
		pets:      pets,
		chats:     chats,
		generator: generator,
		log:       log,
	}
}

// SendMessage handles one turn and returns the generated reply
func (s *ChatService) SendMessage(ctx context.Context, userID, petID uint, message string) (string, error) {
	cfg := config.Get()

	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.NewValidationError("message and pet ID are required")
	}
	if len([]rune(message)) > cfg.Chat.MaxMessageLen {
		return "", errors.NewValidationError("message is too long (max 500 characters)")
	}

	pet, err := s.pets.GetOwned(petID, userID)
	if err != nil {
		return "", err
	}

	session, err := s.activeSession(userID, petID)
	if err != nil {
		return "", err
	}

	recent, err := s.chats.RecentMessages(session.ID, cfg.Chat.APIHistoryWindow)
	if err != nil {
		return "", errors.NewStorageError(err, "failed to load conversation history")
	}

	reply := s.generator.GenerateReply(ctx, ProfileFromPet(pet), turnsFromMessages(recent), message)

	now := time.Now()
	userMsg := &models.ChatMessage{
		ExternalID: uuid.New().String(),
		SessionID:  session.ID,
		Sender:     models.SenderUser,
		Content:    message,
		Timestamp:  now,
	}
	botMsg := &models.ChatMessage{
		ExternalID: uuid.New().String(),
		SessionID:  session.ID,
		Sender:     models.SenderBot,
		Content:    reply,
		Timestamp:  now.Add(time.Millisecond),
	}

	if err := s.chats.AppendTurn(session.ID, userMsg, botMsg); err != nil {
		return "", errors.NewStorageError(err, "failed to send message")
	}

	return reply, nil
}

// History returns every message of the most recent session, oldest first.
// A pet without any session yields an empty list, not an error.
func (s *ChatService) History(userID, petID uint) ([]models.ChatMessage, error) {
	if _, err := s.pets.GetOwned(petID, userID); err != nil {
		return nil, err
	}

	session, err := s.chats.LatestSession(userID, petID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return []models.ChatMessage{}, nil
		}
		return nil, errors.NewStorageError(err, "failed to load session")
	}

	messages, err := s.chats.AllMessages(session.ID)
	if err != nil {
		return nil, errors.NewStorageError(err, "failed to load chat history")
	}
	return messages, nil
}

// Sessions lists the caller's sessions with pet name and last-message preview
func (s *ChatService) Sessions(userID uint) ([]models.SessionPreview, error) {
	previews, err := s.chats.ListPreviews(userID, 20)
	if err != nil {
		return nil, errors.NewStorageError(err, "failed to list sessions")
	}
	for i := range previews {
		if previews[i].LastMessage == "" {
			previews[i].LastMessage = emptySessionPreview
		}
	}
	return previews, nil
}

// Reset clears every message of the pet's most recent session
func (s *ChatService) Reset(userID, petID uint) error {
	if _, err := s.pets.GetOwned(petID, userID); err != nil {
		return err
	}

	session, err := s.chats.LatestSession(userID, petID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return errors.NewStorageError(err, "failed to load session")
	}

	if err := s.chats.ResetSession(session.ID); err != nil {
		return errors.NewStorageError(err, "failed to reset chat")
	}
	return nil
}

// activeSession finds the most recently active session for the pair, creating
// one lazily on the first message
func (s *ChatService) activeSession(userID, petID uint) (*models.ChatSession, error) {
	session, err := s.chats.LatestSession(userID, petID)
	if err == nil {
		return session, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, errors.NewStorageError(err, "failed to load session")
	}

	session = &models.ChatSession{
		UserID:          userID,
		PetID:           petID,
		CreatedAt:       time.Now(),
		LastMessageTime: time.Now(),
	}
	if err := s.chats.CreateSession(session); err != nil {
		return nil, errors.NewStorageError(err, "failed to create session")
	}
	return session, nil
}

// ProfileFromPet maps a stored pet onto the prompt builder's profile
func ProfileFromPet(pet *models.Pet) prompt.PetProfile {
	return prompt.PetProfile{
		Name:          pet.Name,
		Species:       pet.Species,
		Breed:         pet.Breed,
		Age:           pet.Age,
		Gender:        pet.Gender,
		Birthday:      pet.Birthday,
		Personality:   pet.Personality,
		SpeakingStyle: pet.SpeakingStyle,
		UserCall:      pet.UserCall,
		Likes:         pet.Likes,
		Dislikes:      pet.Dislikes,
		Habits:        pet.Habits,
		EtcInfo:       pet.EtcInfo,
	}
}

func turnsFromMessages(messages []models.ChatMessage) []prompt.Turn {
	turns := make([]prompt.Turn, len(messages))
	for i, msg := range messages {
		turns[i] = prompt.Turn{Sender: msg.Sender, Content: msg.Content}
	}
	return turns
}
