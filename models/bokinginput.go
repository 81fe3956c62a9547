package models

// CreateBookingRequest is the input of the booking-creation flow.
type CreateBookingRequest struct {
	ProviderID      string `json:"providerId" binding:"required"`
	ServiceID       string `json:"serviceId" binding:"required"`
	AppointmentDate string `json:"appointmentDate" binding:"required,ymd"`
	AppointmentTime string `json:"appointmentTime" binding:"required,hhmm"`
	// DurationMinutes falls back to the service's default duration when zero.
	DurationMinutes int    `json:"durationMinutes" binding:"omitempty,min=5,max=720"`
	IsHomeService   bool   `json:"isHomeService"`
	CustomerAddress string `json:"customerAddress" binding:"max=500"`
	Notes           string `json:"notes" binding:"max=1000"`
}

// UpdateBookingRequest carries optional changes; nil fields are left untouched.
type UpdateBookingRequest struct {
	AppointmentDate *string `json:"appointmentDate" binding:"omitempty,ymd"`
	AppointmentTime *string `json:"appointmentTime" binding:"omitempty,hhmm"`
	DurationMinutes *int    `json:"durationMinutes" binding:"omitempty,min=5,max=720"`
	CustomerAddress *string `json:"customerAddress" binding:"omitempty,max=500"`
	Notes           *string `json:"notes" binding:"omitempty,max=1000"`
}

// Reschedules reports whether any schedule field is present.
func (r UpdateBookingRequest) Reschedules() bool {
	return r.AppointmentDate != nil || r.AppointmentTime != nil || r.DurationMinutes != nil
}

// ConfirmBookingRequest is the provider's accept/reject decision.
type ConfirmBookingRequest struct {
	BookingID   string `json:"bookingId" binding:"required"`
	IsConfirmed bool   `json:"isConfirmed"`
	Reason      string `json:"reason" binding:"max=500"`
}

// CancelBookingRequest cancels a booking from either side.
type CancelBookingRequest struct {
	BookingID string `json:"bookingId" binding:"required"`
	Reason    string `json:"reason" binding:"max=500"`
}

// CancellationOutcome reports what a cancellation decided about money.
type CancellationOutcome struct {
	Booking    *Booking `json:"booking"`
	FeeApplies bool     `json:"feeApplies"`
}

// BookingPage is one page of a listing.
type BookingPage struct {
	Items    []Booking `json:"items"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
}
