// Package memory keeps every repository in process. It backs DATABASE_URL=memory://
// local runs and the service tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"homeease/database"
	bookingRepo "homeease/database/repository/booking"
	"homeease/models"
)

// Store implements the booking, provider, user and service repositories.
type Store struct {
	mu        sync.RWMutex
	bookings  map[string]models.Booking
	serials   map[string]int
	providers map[string]models.Provider
	slots     map[string][]models.AvailabilitySlot
	users     map[string]models.User
	services  map[string]models.Service
}

func NewStore() *Store {
	return &Store{
		bookings:  map[string]models.Booking{},
		serials:   map[string]int{},
		providers: map[string]models.Provider{},
		slots:     map[string][]models.AvailabilitySlot{},
		users:     map[string]models.User{},
		services:  map[string]models.Service{},
	}
}

// Seed is the shape of a fixture file loaded with LoadSeed.
type Seed struct {
	Providers []models.Provider         `json:"providers"`
	Slots     []models.AvailabilitySlot `json:"slots"`
	Users     []models.User             `json:"users"`
	Services  []models.Service          `json:"services"`
}

// LoadSeed fills the store from a JSON fixture file.
func (s *Store) LoadSeed(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}
	for _, p := range seed.Providers {
		s.AddProvider(p)
	}
	for _, sl := range seed.Slots {
		s.AddSlot(sl)
	}
	for _, u := range seed.Users {
		s.AddUser(u)
	}
	for _, svc := range seed.Services {
		s.AddService(svc)
	}
	return nil
}

func (s *Store) AddProvider(p models.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers[p.ID] = p
}

func (s *Store) AddSlot(slot models.AvailabilitySlot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[slot.ProviderID] = append(s.slots[slot.ProviderID], slot)
}

func (s *Store) AddUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *Store) AddService(svc models.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[svc.ID] = svc
}

// Len returns the number of stored bookings.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bookings)
}

func (s *Store) GetByID(_ context.Context, id string) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (s *Store) FindByChargeID(_ context.Context, chargeID string) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bookings {
		if b.Payment != nil && chargeID != "" && b.Payment.ChargeID == chargeID {
			return cloneBooking(b), nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *Store) Create(_ context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bookings[booking.ID]; exists {
		return database.ErrDuplicateKey
	}
	for _, b := range s.bookings {
		if b.SerialNumber == booking.SerialNumber {
			return database.ErrDuplicateKey
		}
	}
	booking.Version = 1
	s.bookings[booking.ID] = *cloneBooking(*booking)
	return nil
}

func (s *Store) Update(_ context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.bookings[booking.ID]
	if !ok {
		return database.ErrNotFound
	}
	if stored.Version != booking.Version {
		return database.ErrVersionConflict
	}
	booking.Version++
	s.bookings[booking.ID] = *cloneBooking(*booking)
	return nil
}

func (s *Store) FindConflicts(_ context.Context, providerID string, start, end time.Time, excludeID string) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.ProviderID != providerID || b.ID == excludeID || !b.Status.HoldsSlot() {
			continue
		}
		if b.Overlaps(start, end) {
			out = append(out, *cloneBooking(b))
		}
	}
	return out, nil
}

func (s *Store) NextSerial(_ context.Context, t time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := t.UTC().Format("20060102")
	s.serials[key]++
	return s.serials[key], nil
}

func (s *Store) List(_ context.Context, f bookingRepo.ListFilter) ([]models.Booking, int64, error) {
	f = f.Normalize()
	s.mu.RLock()
	var matched []models.Booking
	for _, b := range s.bookings {
		if f.UserID != "" && b.UserID != f.UserID {
			continue
		}
		if f.ProviderID != "" && b.ProviderID != f.ProviderID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		matched = append(matched, *cloneBooking(b))
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].AppointmentAt.After(matched[j].AppointmentAt)
	})

	total := int64(len(matched))
	from := (f.Page - 1) * f.PageSize
	if from >= len(matched) {
		return []models.Booking{}, total, nil
	}
	to := from + f.PageSize
	if to > len(matched) {
		to = len(matched)
	}
	return matched[from:to], total, nil
}

func cloneBooking(b models.Booking) *models.Booking {
	out := b
	if b.Payment != nil {
		p := *b.Payment
		p.ProcessedAt = cloneTime(p.ProcessedAt)
		p.RefundedAt = cloneTime(p.RefundedAt)
		out.Payment = &p
	}
	out.ConfirmedAt = cloneTime(b.ConfirmedAt)
	out.CancelledAt = cloneTime(b.CancelledAt)
	out.CompletedAt = cloneTime(b.CompletedAt)
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
