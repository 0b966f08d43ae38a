package api

import (
	"net/http"
	"strconv"

	"mypetsvoice/backend/internal/service"
	"mypetsvoice/backend/pkg/errors"
	"mypetsvoice/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// ChatController handles the request/response chat endpoints
type ChatController struct {
	chats      *service.ChatService
	jwtService *jwt.Service
}

func NewChatController(chats *service.ChatService, jwtService *jwt.Service) *ChatController {
	return &ChatController{chats: chats, jwtService: jwtService}
}

func (c *ChatController) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/chat")
	group.Use(AuthMiddleware(c.jwtService))
	{
		group.POST("/send", c.SendMessage)
		group.GET("/history/:pet_id", c.History)
		group.GET("/sessions", c.Sessions)
		group.POST("/save", c.SaveSession)
		group.POST("/reset/:pet_id", c.Reset)
	}
}

type sendMessageRequest struct {
	PetID   uint   `json:"pet_id" binding:"required"`
	Message string `json:"message"`
}

// SendMessage runs one synchronous conversation turn and returns the reply
func (c *ChatController) SendMessage(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.Error(errors.NewUnauthorizedError("authentication required"))
		return
	}

	var req sendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.Error(errors.NewValidationError("message and pet ID are required"))
		return
	}

	reply, err := c.chats.SendMessage(ctx.Request.Context(), userID, req.PetID, req.Message)
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"content": reply})
}

// History returns the full turn list of the pet's most recent session
func (c *ChatController) History(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.Error(errors.NewUnauthorizedError("authentication required"))
		return
	}

	petID, err := strconv.ParseUint(ctx.Param("pet_id"), 10, 32)
	if err != nil {
		ctx.Error(errors.NewValidationError("invalid pet ID"))
		return
	}

	messages, err := c.chats.History(userID, uint(petID))
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"messages": messages})
}

// Sessions lists the caller's sessions with pet name and last-message
// preview
func (c *ChatController) Sessions(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.Error(errors.NewUnauthorizedError("authentication required"))
		return
	}

	previews, err := c.chats.Sessions(userID)
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"sessions": previews})
}

// Reset clears the pet's most recent session
func (c *ChatController) Reset(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.Error(errors.NewUnauthorizedError("authentication required"))
		return
	}

	petID, err := strconv.ParseUint(ctx.Param("pet_id"), 10, 32)
	if err != nil {
		ctx.Error(errors.NewValidationError("invalid pet ID"))
		return
	}

	if err := c.chats.Reset(userID, uint(petID)); err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// SaveSession acknowledges a save request. Turns are persisted as they
// happen, so there is nothing left to write here.
func (c *ChatController) SaveSession(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}
