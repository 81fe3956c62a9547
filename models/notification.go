package models

import "time"

// NotificationTarget is the side of the marketplace that receives a push.
type NotificationTarget string

const (
	TargetUser     NotificationTarget = "user"
	TargetProvider NotificationTarget = "provider"
)

// Notification is the payload queued for asynchronous push delivery.
type Notification struct {
	ID          string             `json:"id"`
	Type        string             `json:"type"`
	Target      NotificationTarget `json:"target"`
	RecipientID string             `json:"recipientId"`
	Title       string             `json:"title"`
	Body        string             `json:"body"`
	Data        map[string]string  `json:"data"`
	CreatedAt   time.Time          `json:"createdAt"`
}
