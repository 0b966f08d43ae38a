package api

import (
	"net/http"

	"mypetsvoice/backend/internal/repository"
	"mypetsvoice/backend/internal/service"
	"mypetsvoice/backend/pkg/errors"
	"mypetsvoice/backend/pkg/health"
	"mypetsvoice/backend/pkg/jwt"
	"mypetsvoice/backend/pkg/logger"
	"mypetsvoice/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// Deps carries everything the router needs
type Deps struct {
	Users      repository.UserRepository
	Pets       *service.PetService
	Chats      *service.ChatService
	JWTService *jwt.Service
	Health     *health.Checker
	Logger     *logger.Logger
}

// NewRouter assembles the API server's gin engine with the standard
// middleware chain and every controller mounted
func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestIDMiddleware())
	router.Use(logger.Middleware(deps.Logger))
	router.Use(errors.RecoveryWithLogger())
	router.Use(errors.ErrorHandler())

	NewAuthController(deps.Users, deps.JWTService).RegisterRoutes(router)
	NewPetController(deps.Pets, deps.JWTService).RegisterRoutes(router)
	NewChatController(deps.Chats, deps.JWTService).RegisterRoutes(router)

	if deps.Health != nil {
		router.GET("/api/health", gin.WrapF(deps.Health.HTTPHandler()))
	}

	router.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "not found", "code": errors.CodeNotFound})
	})

	return router
}
