package userRepo

import (
	"context"

	"homeease/models"
)

// UserRepository reads customer profiles.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}
