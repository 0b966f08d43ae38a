package service

import (
	"strings"
	"testing"
	"time"

	"mypetsvoice/backend/internal/models"
	"mypetsvoice/backend/pkg/cache"
	"mypetsvoice/backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateRequest() *models.CreatePetRequest {
	return &models.CreatePetRequest{
		Name:          "Momo",
		Species:       "Cat",
		Personality:   "playful",
		SpeakingStyle: "cute",
		UserCall:      "mom",
		Likes:         "tuna",
	}
}

func TestCreatePet(t *testing.T) {
	svc := NewPetService(newFakePetRepository(), nil)

	pet, err := svc.Create(1, validCreateRequest())

	require.NoError(t, err)
	assert.NotZero(t, pet.ID)
	assert.Equal(t, uint(1), pet.UserID)
	assert.Equal(t, "Momo", pet.Name)
}

func TestCreatePetRequiredFields(t *testing.T) {
	svc := NewPetService(newFakePetRepository(), nil)

	for _, mutate := range []func(*models.CreatePetRequest){
		func(r *models.CreatePetRequest) { r.Name = "  " },
		func(r *models.CreatePetRequest) { r.Species = "" },
		func(r *models.CreatePetRequest) { r.Personality = "" },
		func(r *models.CreatePetRequest) { r.SpeakingStyle = "" },
		func(r *models.CreatePetRequest) { r.UserCall = "" },
	} {
		req := validCreateRequest()
		mutate(req)

		_, err := svc.Create(1, req)

		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodeValidation))
	}
}

func TestCreatePetLengthLimits(t *testing.T) {
	svc := NewPetService(newFakePetRepository(), nil)

	req := validCreateRequest()
	req.Name = strings.Repeat("a", 51)
	_, err := svc.Create(1, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeValidation))

	req = validCreateRequest()
	req.Species = strings.Repeat("a", 31)
	_, err = svc.Create(1, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestGetOwnedNotFound(t *testing.T) {
	repo := newFakePetRepository()
	svc := NewPetService(repo, nil)
	pet := createTestPet(t, repo, 1)

	// Wrong owner looks the same as a missing pet
	_, err := svc.GetOwned(pet.ID, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	_, err = svc.GetOwned(999, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestGetOwnedCachesPersona(t *testing.T) {
	repo := newFakePetRepository()
	svc := NewPetService(repo, cache.New(time.Minute, 0))
	pet := createTestPet(t, repo, 1)

	first, err := svc.GetOwned(pet.ID, 1)
	require.NoError(t, err)

	// Remove the row; the cached persona still serves reads
	delete(repo.pets, pet.ID)

	second, err := svc.GetOwned(pet.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
