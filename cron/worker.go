package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homeease/config"
	"homeease/database"
	"homeease/database/repository"
	"homeease/models"
	"homeease/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Deliverer sends one notification to its recipient.
type Deliverer interface {
	Deliver(ctx context.Context, n models.Notification) error
}

// RedisOpt is the queue connection shared by the producer and the worker.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewMux routes notification and reminder tasks to the deliverer.
func NewMux(sender Deliverer, bookings repository.BookingRepository, logger *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendNotification, handleNotificationTask(sender, logger))
	mux.HandleFunc(tasks.TypeSendReminder, handleReminderTask(sender, bookings, logger))
	return mux
}

// InitNotificationWorker runs the async worker in background and returns the
// server so the caller can shut it down.
func InitNotificationWorker(sender Deliverer, bookings repository.BookingRepository, logger *zap.Logger) *asynq.Server {
	concurrency := config.AppConfig.NotificationWorkers
	if concurrency <= 0 {
		concurrency = 10
	}

	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				tasks.QueueNotifications: 6,
				tasks.QueueReminders:     3,
				"default":                1,
			},
			Logger: logger.Sugar(),
		},
	)
	mux := NewMux(sender, bookings, logger)

	go func() {
		logger.Info("starting notification worker", zap.Int("concurrency", concurrency))
		const maxAttempts = 5

		for attempt := 1; attempt <= maxAttempts; attempt++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("notification worker failed to start",
				zap.Int("attempt", attempt),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err))
			if attempt == maxAttempts {
				logger.Error("notification worker gave up; pushes will stay queued")
				return
			}
			time.Sleep(time.Duration(attempt*2) * time.Second)
		}
	}()
	return srv
}

func handleNotificationTask(sender Deliverer, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		n, err := tasks.ParseNotification(task)
		if err != nil {
			logger.Error("invalid notification payload", zap.String("taskType", task.Type()), zap.Error(err))
			return fmt.Errorf("decode %s payload: %v: %w", task.Type(), err, asynq.SkipRetry)
		}
		return deliver(ctx, sender, n, logger)
	}
}

// handleReminderTask drops reminders that no longer match the booking: it was
// cancelled, or it was rescheduled and a newer reminder is queued.
func handleReminderTask(sender Deliverer, bookings repository.BookingRepository, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		n, err := tasks.ParseNotification(task)
		if err != nil {
			logger.Error("invalid reminder payload", zap.Error(err))
			return fmt.Errorf("decode reminder payload: %v: %w", err, asynq.SkipRetry)
		}

		bookingID := n.Data["bookingId"]
		b, err := bookings.GetByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				logger.Warn("reminder for unknown booking", zap.String("bookingId", bookingID))
				return nil
			}
			return err
		}
		if b.Status != models.BookingConfirmed || b.AppointmentAt.Format(time.RFC3339) != n.Data["appointmentAt"] {
			logger.Info("skipping stale reminder",
				zap.String("bookingId", bookingID),
				zap.String("status", string(b.Status)))
			return nil
		}
		return deliver(ctx, sender, n, logger)
	}
}

func deliver(ctx context.Context, sender Deliverer, n models.Notification, logger *zap.Logger) error {
	logger.Info("delivering notification",
		zap.String("type", n.Type),
		zap.String("target", string(n.Target)),
		zap.String("recipient", n.RecipientID))

	if err := sender.Deliver(ctx, n); err != nil {
		logger.Warn("notification delivery failed", zap.String("type", n.Type), zap.Error(err))
		return err
	}
	return nil
}
