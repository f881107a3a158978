package services

import (
	"context"
	"fmt"
	"time"

	"mindcare-go/internal/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// FollowUpStore is the persistence the scheduler needs.
type FollowUpStore interface {
	Create(ctx context.Context, f *models.FollowUp) error
	Due(ctx context.Context, now time.Time) ([]models.FollowUp, error)
	MarkDelivered(ctx context.Context, id string, at time.Time) error
}

// Scheduler stores follow-ups and sends the reminders once they are due.
type Scheduler struct {
	log    *zap.Logger
	store  FollowUpStore
	sender ReminderSender
	cron   *cron.Cron
	now    func() time.Time
}

func NewScheduler(log *zap.Logger, store FollowUpStore, sender ReminderSender) *Scheduler {
	return &Scheduler{
		log:    log,
		store:  store,
		sender: sender,
		cron:   cron.New(),
		now:    time.Now,
	}
}

// Schedule persists f for delivery at f.ScheduledFor.
func (s *Scheduler) Schedule(ctx context.Context, f models.FollowUp) error {
	if err := s.store.Create(ctx, &f); err != nil {
		return err
	}
	s.log.Info("Follow-up scheduled",
		zap.String("follow_up", f.ID),
		zap.String("severity", string(f.Severity)),
		zap.Time("scheduled_for", f.ScheduledFor),
	)
	return nil
}

// Start runs the reminder check on spec (a cron expression or descriptor
// such as "@every 1m") until Stop is called.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() { s.RunDue(context.Background()) }); err != nil {
		return fmt.Errorf("invalid follow-up poll spec %q: %w", spec, err)
	}
	s.log.Info("Starting follow-up reminder scheduler...", zap.String("spec", spec))
	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running check to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunDue sends every due reminder and marks it delivered. It returns the
// number delivered. A failed send is retried on the next run.
func (s *Scheduler) RunDue(ctx context.Context) int {
	now := s.now().UTC()
	s.log.Debug("Running follow-up check", zap.Time("utc_time", now))

	due, err := s.store.Due(ctx, now)
	if err != nil {
		s.log.Error("Failed to load due follow-ups", zap.Error(err))
		return 0
	}

	sent := 0
	for _, f := range due {
		if err := s.sender.SendReminder(ctx, f); err != nil {
			s.log.Error("Failed to send follow-up reminder", zap.String("follow_up", f.ID), zap.Error(err))
			continue
		}
		if err := s.store.MarkDelivered(ctx, f.ID, now); err != nil {
			s.log.Error("Failed to mark follow-up delivered", zap.String("follow_up", f.ID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}
