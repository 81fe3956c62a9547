package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"homeease/models"

	"github.com/hibiken/asynq"
)

const (
	TypeSendNotification = "notification:send"
	TypeSendReminder     = "reminder:send"

	QueueNotifications = "notifications"
	QueueReminders     = "reminders"
)

// NewNotificationTask wraps a push for immediate delivery.
func NewNotificationTask(n models.Notification) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendNotification, b)
	opts := []asynq.Option{
		asynq.Queue(QueueNotifications),
		asynq.MaxRetry(5),
		asynq.Timeout(30 * time.Second),
	}
	return task, opts, nil
}

// NewReminderTask schedules a push for fireAt. The task id makes the reminder
// unique per booking and fire time, so only a reschedule queues another one.
func NewReminderTask(n models.Notification, bookingID string, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{
		asynq.Queue(QueueReminders),
		asynq.ProcessAt(fireAt),
		asynq.TaskID(fmt.Sprintf("reminder-%s-%d", bookingID, fireAt.Unix())),
		asynq.MaxRetry(3),
	}
	return task, opts, nil
}

// ParseNotification decodes the payload of either task type.
func ParseNotification(task *asynq.Task) (models.Notification, error) {
	var n models.Notification
	err := json.Unmarshal(task.Payload(), &n)
	return n, err
}
