package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"mindcare-go/internal/config"
	"mindcare-go/internal/crisis"
	"mindcare-go/internal/database"
	"mindcare-go/internal/models"
	"mindcare-go/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

var _ crisis.FollowUpScheduler = (*Scheduler)(nil)

type recordingSender struct {
	mu   sync.Mutex
	sent []string
	fail map[string]bool
}

func (s *recordingSender) SendReminder(ctx context.Context, f models.FollowUp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[f.ID] {
		return errors.New("push gateway unavailable")
	}
	s.sent = append(s.sent, f.ID)
	return nil
}

func newTestScheduler(t *testing.T, sender ReminderSender) (*Scheduler, *repository.FollowUpRepository) {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	repo := repository.NewFollowUpRepository(db)
	return NewScheduler(zap.NewNop(), repo, sender), repo
}

func TestScheduler_RunDue(t *testing.T) {
	ctx := context.Background()
	sender := &recordingSender{fail: map[string]bool{"b": true}}
	s, repo := newTestScheduler(t, sender)
	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	for id, at := range map[string]time.Time{
		"a": now.Add(-time.Hour),
		"b": now.Add(-time.Minute),
		"c": now.Add(time.Hour),
	} {
		require.NoError(t, s.Schedule(ctx, models.FollowUp{ID: id, Severity: models.RiskHigh, ScheduledFor: at}))
	}

	assert.Equal(t, 1, s.RunDue(ctx))
	assert.Equal(t, []string{"a"}, sender.sent)

	due, err := repo.Due(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "b", due[0].ID, "failed sends stay due")

	delete(sender.fail, "b")
	assert.Equal(t, 1, s.RunDue(ctx))
	assert.Zero(t, s.RunDue(ctx))

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, s.RunDue(ctx))
	assert.Equal(t, []string{"a", "b", "c"}, sender.sent)
}

func TestScheduler_StartRejectsBadSpec(t *testing.T) {
	s, _ := newTestScheduler(t, &recordingSender{})
	assert.Error(t, s.Start("every tuesday-ish"))

	require.NoError(t, s.Start("@every 1h"))
	s.Stop()
}

func TestScheduler_WithCrisisManager(t *testing.T) {
	ctx := context.Background()
	s, repo := newTestScheduler(t, &recordingSender{})
	fixed := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	m, err := crisis.NewManager(crisis.Config{
		Presenter: nopPresenter{},
		Launcher:  nopLauncher{},
		Store:     repository.NewKVStore(mustDB(t)),
		FollowUps: s,
		Now:       func() time.Time { return fixed },
	})
	require.NoError(t, err)

	c, err := m.ScheduleFollowUp(ctx, models.RiskHigh)
	require.NoError(t, err)
	assert.True(t, c.ReminderSet)

	due, err := repo.Due(ctx, fixed.Add(25*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, c.ID, due[0].ID)
}

func TestLogReminderSender(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := NewLogReminderSender(zap.New(core))

	require.NoError(t, sender.SendReminder(context.Background(), models.FollowUp{ID: "f1", Severity: models.RiskMedium}))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Sending follow-up reminder", entry.Message)
	assert.Equal(t, "f1", entry.ContextMap()["follow_up"])
}

func mustDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Path: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	return db
}

type nopPresenter struct{}

func (nopPresenter) PresentChoice(ctx context.Context, p crisis.Prompt) error { return nil }

type nopLauncher struct{}

func (nopLauncher) CanOpen(ctx context.Context, uri string) (bool, error) { return false, nil }
func (nopLauncher) Open(ctx context.Context, uri string) error { return nil }
