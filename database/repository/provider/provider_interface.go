package providerRepo

import (
	"context"

	"homeease/models"
)

// ProviderRepository reads provider profiles and their declared availability.
type ProviderRepository interface {
	GetByID(ctx context.Context, id string) (*models.Provider, error)
	GetAvailabilitySlots(ctx context.Context, providerID string) ([]models.AvailabilitySlot, error)
}
