// Package payment moves money for bookings through an external gateway and
// keeps the payment embedded in each booking consistent with it.
package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"homeease/database"
	"homeease/database/repository"
	"homeease/errs"
	"homeease/models"
	"homeease/services/notification"

	"go.uber.org/zap"
)

const DefaultGatewayTimeout = 15 * time.Second

// PaymentService is the payment flow as seen by the transport layer.
type PaymentService interface {
	ProcessPayment(ctx context.Context, actor models.Actor, req models.ProcessPaymentRequest) (*models.PaymentResult, error)
	RefundPayment(ctx context.Context, actor models.Actor, req models.RefundRequest) (*models.RefundResult, error)
	VerifyPayment(ctx context.Context, actor models.Actor, bookingID string) (*models.PaymentResult, error)
	HandleWebhook(ctx context.Context, payload []byte, header http.Header) error
}

// Service orchestrates charges, refunds and reconciliation.
type Service struct {
	Bookings repository.BookingRepository
	Gateway  Gateway
	Notifier notification.Dispatcher
	Logger   *zap.Logger

	// Timeout bounds every outbound gateway call.
	Timeout   time.Duration
	ReturnURL string
	Now       func() time.Time
}

func NewService(bookings repository.BookingRepository, gateway Gateway, notifier notification.Dispatcher, timeout time.Duration, logger *zap.Logger) *Service {
	return &Service{
		Bookings: bookings,
		Gateway:  gateway,
		Notifier: notifier,
		Logger:   logger,
		Timeout:  timeout,
		Now:      time.Now,
	}
}

func (s *Service) now() time.Time {
	return s.Now().UTC()
}

func (s *Service) gatewayContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultGatewayTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (s *Service) load(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, errs.NotFound("booking_not_found", fmt.Sprintf("booking %s not found", bookingID))
		}
		s.Logger.Error("failed to load booking", zap.String("bookingId", bookingID), zap.Error(err))
		return nil, errs.Unexpected(err)
	}
	return b, nil
}

// commit persists b. When another writer (usually a webhook) got there first,
// mutate is re-applied to a fresh copy once; a nil mutate reports the conflict.
func (s *Service) commit(ctx context.Context, b *models.Booking, mutate func(*models.Booking) bool) (*models.Booking, error) {
	b.UpdatedAt = s.now()
	err := s.Bookings.Update(ctx, b)
	if errors.Is(err, database.ErrVersionConflict) && mutate != nil {
		fresh, lerr := s.Bookings.GetByID(ctx, b.ID)
		if lerr != nil {
			err = lerr
		} else {
			if !mutate(fresh) {
				return fresh, nil
			}
			fresh.UpdatedAt = s.now()
			if err = s.Bookings.Update(ctx, fresh); err == nil {
				return fresh, nil
			}
		}
	}
	if err != nil {
		s.Logger.Error("failed to persist payment", zap.String("bookingId", b.ID), zap.Error(err))
		if errors.Is(err, database.ErrVersionConflict) {
			return nil, errs.BusinessRule("booking_modified", "booking was modified by another request, reload and try again")
		}
		return nil, errs.Unexpected(err)
	}
	return b, nil
}

// applyOutcome folds a gateway view of the charge into the payment and reports
// whether anything changed. Completed and refund states are never downgraded,
// which makes repeated and out-of-order events harmless.
func applyOutcome(p *models.Payment, o ChargeOutcome, now time.Time) bool {
	if p.Status.IsRefundState() {
		return false
	}
	if p.Status == models.PaymentCompleted && o.Status != models.PaymentCompleted {
		return false
	}

	changed := false
	if o.ChargeID != "" && p.ChargeID != o.ChargeID {
		p.ChargeID = o.ChargeID
		changed = true
	}
	if o.TransactionID != "" && p.TransactionID != o.TransactionID {
		p.TransactionID = o.TransactionID
		changed = true
	}
	if o.RedirectURL != p.RedirectURL && o.Status == models.PaymentProcessing {
		p.RedirectURL = o.RedirectURL
		changed = true
	}
	if o.Status != "" && o.Status != p.Status {
		p.Status = o.Status
		changed = true
	}

	switch p.Status {
	case models.PaymentCompleted:
		if p.ProcessedAt == nil {
			p.ProcessedAt = &now
			changed = true
		}
		if p.ErrorCode != "" || p.ErrorMessage != "" {
			p.ErrorCode, p.ErrorMessage = "", ""
			changed = true
		}
		p.RedirectURL = ""
	case models.PaymentFailed:
		if o.ErrorCode != p.ErrorCode || o.ErrorMessage != p.ErrorMessage {
			p.ErrorCode, p.ErrorMessage = o.ErrorCode, o.ErrorMessage
			changed = true
		}
	}
	if changed {
		p.UpdatedAt = now
	}
	return changed
}

// settle applies a charge outcome to the booking's payment. A charge that
// completes after its booking was cancelled or rejected is marked for refund.
func settle(b *models.Booking, o ChargeOutcome, now time.Time) bool {
	if b.Payment == nil {
		return false
	}
	changed := applyOutcome(b.Payment, o, now)
	if b.MarkPaymentForRefund(now) {
		changed = true
	}
	return changed
}

func resultOf(p *models.Payment, now time.Time) *models.PaymentResult {
	return &models.PaymentResult{
		IsSuccessful:  p.Status == models.PaymentCompleted,
		TransactionID: p.TransactionID,
		ChargeID:      p.ChargeID,
		PaymentURL:    p.RedirectURL,
		ErrorCode:     p.ErrorCode,
		ErrorMessage:  p.ErrorMessage,
		Status:        p.Status,
		Timestamp:     now,
	}
}
