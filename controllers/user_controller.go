package controllers

import (
	"context"
	"net/http"

	"checkout-service/middleware"
	"checkout-service/models"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserSyncer upserts an external identity into the local user store.
type UserSyncer interface {
	Sync(ctx context.Context, externalAuthID string, in services.UserInput) (*models.User, bool, error)
}

type UserController struct {
	Users  UserSyncer
	Logger *zap.Logger
}

func NewUserController(users UserSyncer, logger *zap.Logger) *UserController {
	return &UserController{Users: users, Logger: logger}
}

// SyncUser is called by the client after sign-in. Repeated calls for the same
// identity are no-ops that return the existing record.
func (uc *UserController) SyncUser(c *gin.Context) {
	authID := middleware.GetAuthID(c)
	if authID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var in services.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	user, created, err := uc.Users.Sync(c.Request.Context(), authID, in)
	if err != nil {
		uc.Logger.Error("Failed to sync user",
			zap.String("external_auth_id", authID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync user"})
		return
	}

	message := "User already exists"
	if created {
		message = "User created"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user, "message": message})
}
