package notification

import (
	"context"
	"sync"

	"homeease/models"

	"github.com/shopspring/decimal"
)

// Call is one dispatch captured by a Recorder.
type Call struct {
	Kind      string
	BookingID string
	Detail    string
}

// Recorder is a Dispatcher that keeps every call in memory. It backs local
// dry runs and the service tests.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

func (r *Recorder) record(kind string, b *models.Booking, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Kind: kind, BookingID: b.ID, Detail: detail})
}

// Calls returns a copy of everything dispatched so far.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Count returns how many calls of the given kind were made.
func (r *Recorder) Count(kind string) int {
	n := 0
	for _, c := range r.Calls() {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

func (r *Recorder) SendBookingRequest(_ context.Context, b *models.Booking) {
	r.record(TypeBookingRequest, b, "")
}

func (r *Recorder) SendBookingConfirmation(_ context.Context, b *models.Booking) {
	r.record(TypeBookingConfirmed, b, "")
}

func (r *Recorder) SendBookingRejection(_ context.Context, b *models.Booking, reason string) {
	r.record(TypeBookingRejected, b, reason)
}

func (r *Recorder) SendProviderCancellation(_ context.Context, b *models.Booking) {
	r.record(TypeCancelledByProvider, b, "")
}

func (r *Recorder) SendUserCancellation(_ context.Context, b *models.Booking) {
	r.record(TypeCancelledByUser, b, "")
}

func (r *Recorder) SendPaymentConfirmation(_ context.Context, b *models.Booking) {
	r.record(TypePaymentConfirmed, b, "")
}

func (r *Recorder) SendPaymentFailure(_ context.Context, b *models.Booking, message string) {
	r.record(TypePaymentFailed, b, message)
}

func (r *Recorder) SendRefundConfirmation(_ context.Context, b *models.Booking, amount decimal.Decimal) {
	r.record(TypeRefundConfirmed, b, amount.String())
}

func (r *Recorder) ScheduleAppointmentReminder(_ context.Context, b *models.Booking) {
	r.record(TypeAppointmentReminder, b, "")
}
