package catalogRepo

import (
	"context"

	"homeease/models"
)

// ServiceRepository reads the service catalogue.
type ServiceRepository interface {
	GetByID(ctx context.Context, id string) (*models.Service, error)
}
