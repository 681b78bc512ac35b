package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"checkout-service/models"
	"checkout-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserInput is the optional profile data sent by the client after sign-in.
// Every field may be empty; defaults fill the gaps.
type UserInput struct {
	Email     string `json:"email" binding:"omitempty,email"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Photo     string `json:"photo"`
}

// UserService mirrors externally authenticated identities into local user
// records. Sync is an idempotent upsert keyed on the external auth id, safe
// to call on every client session.
type UserService struct {
	users  repository.UserRepo
	logger *zap.Logger
}

func NewUserService(users repository.UserRepo, logger *zap.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// Sync returns the user for the given identity, creating it on first
// sighting. The boolean reports whether a record was created. Existing users
// are returned untouched; repeated syncs never overwrite earlier edits.
func (s *UserService) Sync(ctx context.Context, externalAuthID string, in UserInput) (*models.User, bool, error) {
	existing, err := s.users.FindByExternalAuthID(ctx, externalAuthID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("user lookup failed: %w", err)
	}

	user := &models.User{
		ExternalAuthID: externalAuthID,
		Email:          in.Email,
		Username:       in.Username,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Photo:          in.Photo,
		CreatedAt:      time.Now().UTC(),
	}
	applyDefaults(user)

	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// Another session for the same identity got there first.
			winner, ferr := s.users.FindByExternalAuthID(ctx, externalAuthID)
			if ferr != nil {
				return nil, false, fmt.Errorf("conflict re-fetch failed: %w", ferr)
			}
			return winner, false, nil
		}
		return nil, false, fmt.Errorf("user insert failed: %w", err)
	}

	s.logger.Info("User created",
		zap.String("external_auth_id", externalAuthID),
		zap.String("username", user.Username),
	)
	return user, true, nil
}

func applyDefaults(user *models.User) {
	if user.Username == "" {
		user.Username = "user_" + uuid.NewString()[:8]
	}
	if user.FirstName == "" {
		user.FirstName = "Unknown"
	}
	if user.LastName == "" {
		user.LastName = "User"
	}
}
