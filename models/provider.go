package models

import "github.com/shopspring/decimal"

// Provider is the read model the booking flow needs from the provider directory.
type Provider struct {
	ID       string `bson:"id" json:"id"`
	Name     string `bson:"name" json:"name"`
	Email    string `bson:"email,omitempty" json:"email,omitempty"`
	FCMToken string `bson:"fcmToken,omitempty" json:"-"`
	Active   bool   `bson:"active" json:"active"`
}

// User is the read model of a customer.
type User struct {
	ID       string `bson:"id" json:"id"`
	Name     string `bson:"name" json:"name"`
	Email    string `bson:"email,omitempty" json:"email,omitempty"`
	FCMToken string `bson:"fcmToken,omitempty" json:"-"`
}

// Service is a catalogue entry offered by a provider.
type Service struct {
	ID              string          `bson:"id" json:"id"`
	ProviderID      string          `bson:"providerId" json:"providerId"`
	Name            string          `bson:"name" json:"name"`
	Price           decimal.Decimal `bson:"price" json:"price"`
	HomeServiceFee  decimal.Decimal `bson:"homeServiceFee" json:"homeServiceFee"`
	Currency        string          `bson:"currency" json:"currency"`
	DurationMinutes int             `bson:"durationMinutes" json:"durationMinutes"`
	HomeAvailable   bool            `bson:"homeAvailable" json:"homeAvailable"`
}
