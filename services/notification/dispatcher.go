package notification

import (
	"context"
	"errors"
	"time"

	"homeease/models"
	"homeease/services/tasks"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Dispatcher announces booking and payment events. Every method is fire and
// forget: delivery problems are logged and never surface to the caller.
type Dispatcher interface {
	SendBookingRequest(ctx context.Context, b *models.Booking)
	SendBookingConfirmation(ctx context.Context, b *models.Booking)
	SendBookingRejection(ctx context.Context, b *models.Booking, reason string)
	SendProviderCancellation(ctx context.Context, b *models.Booking)
	SendUserCancellation(ctx context.Context, b *models.Booking)
	SendPaymentConfirmation(ctx context.Context, b *models.Booking)
	SendPaymentFailure(ctx context.Context, b *models.Booking, message string)
	SendRefundConfirmation(ctx context.Context, b *models.Booking, amount decimal.Decimal)
	ScheduleAppointmentReminder(ctx context.Context, b *models.Booking)
}

// Enqueuer is the part of *asynq.Client the dispatcher needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueDispatcher turns events into asynq tasks consumed by the notification worker.
type QueueDispatcher struct {
	queue        Enqueuer
	logger       *zap.Logger
	reminderLead time.Duration
	Now          func() time.Time
}

func NewQueueDispatcher(queue Enqueuer, reminderLead time.Duration, logger *zap.Logger) *QueueDispatcher {
	return &QueueDispatcher{queue: queue, logger: logger, reminderLead: reminderLead, Now: time.Now}
}

func (d *QueueDispatcher) SendBookingRequest(ctx context.Context, b *models.Booking) {
	d.enqueue(ctx, bookingRequest(b, d.Now()))
}

func (d *QueueDispatcher) SendBookingConfirmation(ctx context.Context, b *models.Booking) {
	d.enqueue(ctx, bookingConfirmation(b, d.Now()))
}

func (d *QueueDispatcher) SendBookingRejection(ctx context.Context, b *models.Booking, reason string) {
	d.enqueue(ctx, bookingRejection(b, reason, d.Now()))
}

func (d *QueueDispatcher) SendProviderCancellation(ctx context.Context, b *models.Booking) {
	d.enqueue(ctx, providerCancellation(b, d.Now()))
}

func (d *QueueDispatcher) SendUserCancellation(ctx context.Context, b *models.Booking) {
	d.enqueue(ctx, userCancellation(b, d.Now()))
}

func (d *QueueDispatcher) SendPaymentConfirmation(ctx context.Context, b *models.Booking) {
	d.enqueue(ctx, paymentConfirmation(b, d.Now()))
}

func (d *QueueDispatcher) SendPaymentFailure(ctx context.Context, b *models.Booking, message string) {
	d.enqueue(ctx, paymentFailure(b, message, d.Now()))
}

func (d *QueueDispatcher) SendRefundConfirmation(ctx context.Context, b *models.Booking, amount decimal.Decimal) {
	d.enqueue(ctx, refundConfirmation(b, amount, d.Now()))
}

// ScheduleAppointmentReminder queues a reminder to the customer ahead of the
// appointment. Nothing is queued when the lead time has already passed.
func (d *QueueDispatcher) ScheduleAppointmentReminder(ctx context.Context, b *models.Booking) {
	now := d.Now()
	fireAt := b.AppointmentAt.Add(-d.reminderLead)
	if !fireAt.After(now) {
		return
	}

	n := appointmentReminder(b, now)
	task, opts, err := tasks.NewReminderTask(n, b.ID, fireAt)
	if err != nil {
		d.logger.Error("failed to build reminder task", zap.String("bookingId", b.ID), zap.Error(err))
		return
	}
	if _, err := d.queue.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return
		}
		d.logger.Error("failed to schedule reminder", zap.String("bookingId", b.ID), zap.Error(err))
		return
	}
	d.logger.Info("reminder scheduled", zap.String("bookingId", b.ID), zap.Time("fireAt", fireAt))
}

func (d *QueueDispatcher) enqueue(ctx context.Context, n models.Notification) {
	n.ID = uuid.New().String()
	task, opts, err := tasks.NewNotificationTask(n)
	if err != nil {
		d.logger.Error("failed to build notification task", zap.String("type", n.Type), zap.Error(err))
		return
	}
	if _, err := d.queue.EnqueueContext(ctx, task, opts...); err != nil {
		d.logger.Error("failed to enqueue notification",
			zap.String("type", n.Type),
			zap.String("bookingId", n.Data["bookingId"]),
			zap.Error(err))
		return
	}
	d.logger.Debug("notification queued", zap.String("type", n.Type), zap.String("recipient", n.RecipientID))
}

// Noop drops every event. It is used when no queue is configured.
type Noop struct{}

func (Noop) SendBookingRequest(context.Context, *models.Booking) {}
func (Noop) SendBookingConfirmation(context.Context, *models.Booking) {}
func (Noop) SendBookingRejection(context.Context, *models.Booking, string) {}
func (Noop) SendProviderCancellation(context.Context, *models.Booking) {}
func (Noop) SendUserCancellation(context.Context, *models.Booking) {}
func (Noop) SendPaymentConfirmation(context.Context, *models.Booking) {}
func (Noop) SendPaymentFailure(context.Context, *models.Booking, string) {}
func (Noop) SendRefundConfirmation(context.Context, *models.Booking, decimal.Decimal) {}
func (Noop) ScheduleAppointmentReminder(context.Context, *models.Booking) {}
