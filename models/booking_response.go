package models

// CreateBookingResponse is returned by POST /api/bookings.
type CreateBookingResponse struct {
	BookingID    string        `json:"bookingId"`
	SerialNumber string        `json:"serialNumber"`
	Status       BookingStatus `json:"status"`
}

// AvailabilityResponse answers an availability probe.
type AvailabilityResponse struct {
	ProviderID      string `json:"providerId"`
	Start           string `json:"start"`
	DurationMinutes int    `json:"durationMinutes"`
	Available       bool   `json:"available"`
	Reason          string `json:"reason,omitempty"`
}
