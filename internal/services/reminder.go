package services

import (
	"context"

	"mindcare-go/internal/models"

	"go.uber.org/zap"
)

// ReminderSender delivers a follow-up check-in to the user.
type ReminderSender interface {
	SendReminder(ctx context.Context, f models.FollowUp) error
}

// LogReminderSender is a placeholder for a real push notification service.
type LogReminderSender struct {
	log *zap.Logger
}

func NewLogReminderSender(log *zap.Logger) *LogReminderSender {
	return &LogReminderSender{log: log}
}

// SendReminder simulates sending the check-in notification.
func (s *LogReminderSender) SendReminder(ctx context.Context, f models.FollowUp) error {
	s.log.Info("Sending follow-up reminder",
		zap.String("follow_up", f.ID),
		zap.String("severity", string(f.Severity)),
		zap.Time("scheduled_for", f.ScheduledFor),
	)
	return nil
}
