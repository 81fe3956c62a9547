package models

// Role of the authenticated caller.
type Role string

const (
	RoleUser     Role = "user"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// Actor is the caller on whose behalf an operation runs. It is always passed explicitly.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Owns reports whether the actor is the user or provider side of the booking.
func (a Actor) Owns(b *Booking) bool {
	switch a.Role {
	case RoleUser:
		return b.UserID == a.ID
	case RoleProvider:
		return b.ProviderID == a.ID
	}
	return false
}
