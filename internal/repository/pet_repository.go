package repository

import (
	"fmt"

	"mypetsvoice/backend/internal/models"

	"gorm.io/gorm"
)

// PetRepository abstracts pet persona persistence
type PetRepository interface {
	Create(pet *models.Pet) error
	// GetOwned returns the pet only when it belongs to userID
	GetOwned(id uint, userID uint) (*models.Pet, error)
	ListByUser(userID uint) ([]models.Pet, error)
}

// UserRepository abstracts user rows; only what the dev login needs
type UserRepository interface {
	// Ensure creates the user row when it does not exist yet
	Ensure(id uint) (*models.User, error)
}

type GormPetRepository struct {
	db *gorm.DB
}

func NewGormPetRepository(db *gorm.DB) *GormPetRepository {
	return &GormPetRepository{db: db}
}

func (r *GormPetRepository) Create(pet *models.Pet) error {
	return r.db.Create(pet).Error
}

func (r *GormPetRepository) GetOwned(id uint, userID uint) (*models.Pet, error) {
	var pet models.Pet
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&pet).Error
	if err != nil {
		return nil, err
	}
	return &pet, nil
}

func (r *GormPetRepository) ListByUser(userID uint) ([]models.Pet, error) {
	var pets []models.Pet
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&pets).Error
	return pets, err
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Ensure(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	user = models.User{ID: id, Username: fmt.Sprintf("user%d", id)}
	if err := r.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
