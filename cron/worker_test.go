package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"homeease/database/repository/memory"
	"homeease/models"
	"homeease/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type recordingDeliverer struct {
	delivered []models.Notification
	err       error
}

func (d *recordingDeliverer) Deliver(_ context.Context, n models.Notification) error {
	if d.err != nil {
		return d.err
	}
	d.delivered = append(d.delivered, n)
	return nil
}

var appointment = time.Date(2026, 1, 12, 10, 0, 0, 0, time.UTC)

func reminderTask(t *testing.T, appointmentAt time.Time) *asynq.Task {
	t.Helper()
	n := models.Notification{
		Type:        "appointment_reminder",
		Target:      models.TargetUser,
		RecipientID: "u1",
		Data: map[string]string{
			"bookingId":     "b1",
			"appointmentAt": appointmentAt.Format(time.RFC3339),
		},
	}
	task, _, err := tasks.NewReminderTask(n, "b1", appointmentAt.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("NewReminderTask: %v", err)
	}
	return task
}

func storeWith(t *testing.T, status models.BookingStatus, at time.Time) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	b := &models.Booking{ID: "b1", SerialNumber: "B1", UserID: "u1", ProviderID: "p1", Status: status}
	b.SetSchedule(at, 60)
	if err := store.Create(context.Background(), b); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return store
}

func TestReminderDeliveredForConfirmedBooking(t *testing.T) {
	sender := &recordingDeliverer{}
	handler := handleReminderTask(sender, storeWith(t, models.BookingConfirmed, appointment), zap.NewNop())

	if err := handler(context.Background(), reminderTask(t, appointment)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(sender.delivered) != 1 {
		t.Fatalf("delivered = %d, want 1", len(sender.delivered))
	}
}

func TestStaleRemindersAreDropped(t *testing.T) {
	cases := []struct {
		name   string
		status models.BookingStatus
		at     time.Time
	}{
		{"cancelled", models.BookingCancelled, appointment},
		{"rescheduled", models.BookingConfirmed, appointment.Add(48 * time.Hour)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sender := &recordingDeliverer{}
			handler := handleReminderTask(sender, storeWith(t, tc.status, tc.at), zap.NewNop())
			if err := handler(context.Background(), reminderTask(t, appointment)); err != nil {
				t.Fatalf("handler: %v", err)
			}
			if len(sender.delivered) != 0 {
				t.Fatal("stale reminder was delivered")
			}
		})
	}

	sender := &recordingDeliverer{}
	handler := handleReminderTask(sender, memory.NewStore(), zap.NewNop())
	if err := handler(context.Background(), reminderTask(t, appointment)); err != nil {
		t.Fatalf("unknown booking: %v", err)
	}
}

func TestNotificationTaskErrors(t *testing.T) {
	handler := handleNotificationTask(&recordingDeliverer{}, zap.NewNop())
	err := handler(context.Background(), asynq.NewTask(tasks.TypeSendNotification, []byte("not json")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("err = %v, want SkipRetry for a broken payload", err)
	}

	failing := handleNotificationTask(&recordingDeliverer{err: errors.New("fcm unavailable")}, zap.NewNop())
	task, _, err := tasks.NewNotificationTask(models.Notification{Type: "booking_confirmed", RecipientID: "u1"})
	if err != nil {
		t.Fatalf("NewNotificationTask: %v", err)
	}
	if err := failing(context.Background(), task); err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("err = %v, want a retryable delivery error", err)
	}
}
