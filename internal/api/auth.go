package api

import (
	"net/http"
	"strings"
	"time"

	"mypetsvoice/backend/internal/models"
	"mypetsvoice/backend/internal/repository"
	"mypetsvoice/backend/pkg/errors"
	"mypetsvoice/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
)

const tokenCookie = "token"

// AuthController handles the development login flow. There is no password
// step: posting a user ID ensures the row exists and issues a token for it.
type AuthController struct {
	users      repository.UserRepository
	jwtService *jwt.Service
}

func NewAuthController(users repository.UserRepository, jwtService *jwt.Service) *AuthController {
	return &AuthController{users: users, jwtService: jwtService}
}

func (c *AuthController) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/dev/login", c.DevLogin)
}

// DevLogin ensures the user exists and returns a signed token, also set as
// a cookie so browser clients need no header plumbing
func (c *AuthController) DevLogin(ctx *gin.Context) {
	var req models.DevLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.UserID == 0 {
		ctx.Error(errors.NewValidationError("user_id is required"))
		return
	}

	user, err := c.users.Ensure(req.UserID)
	if err != nil {
		ctx.Error(errors.NewStorageError(err, "failed to ensure user"))
		return
	}

	token, err := c.jwtService.GenerateToken(user.ID)
	if err != nil {
		ctx.Error(errors.NewInternalServerError("failed to issue token"))
		return
	}

	ctx.SetCookie(tokenCookie, token, int((24 * time.Hour).Seconds()), "/", "", false, true)
	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// AuthMiddleware accepts a bearer token or the login cookie and puts the
// caller's user ID on the context
func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx)
		if token == "" {
			if cookie, err := ctx.Cookie(tokenCookie); err == nil {
				token = cookie
			}
		}
		if token == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "code": errors.CodeUnauthorized})
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "code": errors.CodeUnauthorized})
			return
		}

		ctx.Set("userId", claims.UserID)
		ctx.Next()
	}
}

func bearerToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// currentUserID reads what AuthMiddleware stored
func currentUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get("userId")
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}
