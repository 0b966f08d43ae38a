package api

import (
	"net/http"

	"mypetsvoice/backend/internal/models"
	"mypetsvoice/backend/internal/service"
	"mypetsvoice/backend/pkg/errors"
	"mypetsvoice/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// PetController handles pet persona registration and listing
type PetController struct {
	pets       *service.PetService
	jwtService *jwt.Service
}

func NewPetController(pets *service.PetService, jwtService *jwt.Service) *PetController {
	return &PetController{pets: pets, jwtService: jwtService}
}

func (c *PetController) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/pets")
	group.Use(AuthMiddleware(c.jwtService))
	{
		group.GET("", c.ListPets)
		group.POST("", c.CreatePet)
	}
}

// petView is a pet plus its persona object, the shape clients render
type petView struct {
	models.Pet
	Persona models.PersonaView `json:"persona"`
}

func (c *PetController) ListPets(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.Error(errors.NewUnauthorizedError("authentication required"))
		return
	}

	pets, err := c.pets.ListByUser(userID)
	if err != nil {
		ctx.Error(err)
		return
	}

	views := make([]petView, len(pets))
	for i, pet := range pets {
		views[i] = petView{Pet: pet, Persona: pet.Persona()}
	}
	ctx.JSON(http.StatusOK, gin.H{"pets": views})
}

func (c *PetController) CreatePet(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.Error(errors.NewUnauthorizedError("authentication required"))
		return
	}

	var req models.CreatePetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.Error(errors.NewValidationError("name, species, personality, speaking_style and user_call are required"))
		return
	}

	pet, err := c.pets.Create(userID, &req)
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"pet": petView{Pet: *pet, Persona: pet.Persona()}})
}
