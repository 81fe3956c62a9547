package handlers

import (
	"homeease/services/booking"
	"homeease/services/payment"

	"go.uber.org/zap"
)

// HandlerBundle groups the services behind the HTTP endpoints.
type HandlerBundle struct {
	Bookings booking.BookingService
	Payments payment.PaymentService
	Logger   *zap.Logger
}

func NewHandlerBundle(bookings booking.BookingService, payments payment.PaymentService, logger *zap.Logger) *HandlerBundle {
	return &HandlerBundle{Bookings: bookings, Payments: payments, Logger: logger}
}
