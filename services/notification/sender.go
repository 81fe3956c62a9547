package notification

import (
	"context"
	"fmt"

	"homeease/database/repository"
	"homeease/models"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// Messenger is the part of the FCM client used for delivery.
type Messenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushSender resolves a recipient's FCM token and delivers a notification.
type PushSender struct {
	fcm       Messenger
	users     repository.UserRepository
	providers repository.ProviderRepository
	logger    *zap.Logger
}

func NewPushSender(fcm Messenger, users repository.UserRepository, providers repository.ProviderRepository, logger *zap.Logger) *PushSender {
	return &PushSender{fcm: fcm, users: users, providers: providers, logger: logger}
}

// Deliver sends n to its recipient. A recipient without a device token is
// skipped; only transport failures are returned so the task can be retried.
func (s *PushSender) Deliver(ctx context.Context, n models.Notification) error {
	if s.fcm == nil {
		s.logger.Info("push delivery disabled, dropping notification", zap.String("type", n.Type), zap.String("recipient", n.RecipientID))
		return nil
	}

	token, err := s.tokenFor(ctx, n)
	if err != nil {
		return err
	}
	if token == "" {
		s.logger.Warn("recipient has no FCM token", zap.String("target", string(n.Target)), zap.String("recipient", n.RecipientID))
		return nil
	}

	data := n.Data
	if data == nil {
		data = map[string]string{}
	}
	if _, ok := data["role"]; !ok {
		data["role"] = string(n.Target)
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "bookings",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	id, err := s.fcm.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("send FCM message to %s %s: %w", n.Target, n.RecipientID, err)
	}
	s.logger.Debug("push delivered", zap.String("type", n.Type), zap.String("messageId", id))
	return nil
}

func (s *PushSender) tokenFor(ctx context.Context, n models.Notification) (string, error) {
	switch n.Target {
	case models.TargetUser:
		u, err := s.users.GetByID(ctx, n.RecipientID)
		if err != nil {
			return "", fmt.Errorf("could not find user %s: %w", n.RecipientID, err)
		}
		return u.FCMToken, nil
	case models.TargetProvider:
		p, err := s.providers.GetByID(ctx, n.RecipientID)
		if err != nil {
			return "", fmt.Errorf("could not find provider %s: %w", n.RecipientID, err)
		}
		return p.FCMToken, nil
	}
	return "", fmt.Errorf("unknown notification target %q", n.Target)
}
