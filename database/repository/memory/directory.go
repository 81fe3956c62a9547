package memory

import (
	"context"

	"homeease/database"
	"homeease/database/repository"
	"homeease/models"
)

// Providers exposes the store as a ProviderRepository.
type Providers struct{ *Store }

func (p Providers) GetByID(_ context.Context, id string) (*models.Provider, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	provider, ok := p.providers[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &provider, nil
}

func (p Providers) GetAvailabilitySlots(_ context.Context, providerID string) ([]models.AvailabilitySlot, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]models.AvailabilitySlot(nil), p.slots[providerID]...), nil
}

// Users exposes the store as a UserRepository.
type Users struct{ *Store }

func (u Users) GetByID(_ context.Context, id string) (*models.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	user, ok := u.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &user, nil
}

// Services exposes the store as a ServiceRepository.
type Services struct{ *Store }

func (s Services) GetByID(_ context.Context, id string) (*models.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.services[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &svc, nil
}

// Repositories returns every repository view of the store.
func (s *Store) Repositories() repository.Set {
	return repository.Set{
		Bookings:  s,
		Providers: Providers{s},
		Users:     Users{s},
		Services:  Services{s},
	}
}
