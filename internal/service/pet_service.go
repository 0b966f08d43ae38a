package service

import (
	"fmt"
	"strings"

	"mypetsvoice/backend/internal/models"
	"mypetsvoice/backend/internal/repository"
	"mypetsvoice/backend/pkg/cache"
	"mypetsvoice/backend/pkg/config"
	"mypetsvoice/backend/pkg/errors"

	"gorm.io/gorm"
)

// PetService manages pet personas for the API variant
type PetService struct {
	repo  repository.PetRepository
	cache *cache.Cache
}

// NewPetService creates a pet service. The cache may be nil; personas are
// then read from storage on every turn.
func NewPetService(repo repository.PetRepository, personaCache *cache.Cache) *PetService {
	return &PetService{
		repo:  repo,
		cache: personaCache,
	}
}

// Create validates and stores a new pet persona
func (s *PetService) Create(userID uint, req *models.CreatePetRequest) (*models.Pet, error) {
	cfg := config.Get()

	name := strings.TrimSpace(req.Name)
	species := strings.TrimSpace(req.Species)
	personality := strings.TrimSpace(req.Personality)
	speakingStyle := strings.TrimSpace(req.SpeakingStyle)
	userCall := strings.TrimSpace(req.UserCall)

	for field, value := range map[string]string{
		"name":           name,
		"species":        species,
		"personality":    personality,
		"speaking_style": speakingStyle,
		"user_call":      userCall,
	} {
		if value == "" {
			return nil, errors.NewValidationError(fmt.Sprintf("%s is required", field))
		}
	}

	if len(name) > cfg.Chat.MaxPetNameLen || len(species) > cfg.Chat.MaxSpeciesLen {
		return nil, errors.NewValidationError("input value is too long")
	}

	pet := &models.Pet{
		UserID:        userID,
		Name:          name,
		Species:       species,
		Breed:         strings.TrimSpace(req.Breed),
		Age:           strings.TrimSpace(req.Age),
		Gender:        strings.TrimSpace(req.Gender),
		Birthday:      strings.TrimSpace(req.Birthday),
		Personality:   personality,
		SpeakingStyle: speakingStyle,
		UserCall:      userCall,
		Likes:         strings.TrimSpace(req.Likes),
		Dislikes:      strings.TrimSpace(req.Dislikes),
		Habits:        strings.TrimSpace(req.Habits),
		EtcInfo:       strings.TrimSpace(req.EtcInfo),
	}

	if err := s.repo.Create(pet); err != nil {
		return nil, errors.NewStorageError(err, "failed to register pet")
	}

	return pet, nil
}

// GetOwned returns the pet when it belongs to userID; other users' pets are
// indistinguishable from missing ones.
func (s *PetService) GetOwned(petID, userID uint) (*models.Pet, error) {
	cacheKey := fmt.Sprintf("pet:%d:%d", userID, petID)
	if s.cache != nil {
		if cached, ok := s.cache.Get(cacheKey); ok {
			if pet, ok := cached.(*models.Pet); ok {
				return pet, nil
			}
		}
	}

	pet, err := s.repo.GetOwned(petID, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("pet not found")
		}
		return nil, errors.NewStorageError(err, "failed to load pet")
	}

	if s.cache != nil {
		s.cache.Set(cacheKey, pet)
	}
	return pet, nil
}

// ListByUser returns the caller's pets, newest first
func (s *PetService) ListByUser(userID uint) ([]models.Pet, error) {
	pets, err := s.repo.ListByUser(userID)
	if err != nil {
		return nil, errors.NewStorageError(err, "failed to list pets")
	}
	return pets, nil
}
