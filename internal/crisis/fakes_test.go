package crisis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mindcare-go/internal/models"

	"github.com/stretchr/testify/require"
)

type fakePresenter struct {
	mu      sync.Mutex
	prompts []Prompt
	err     error
}

func (p *fakePresenter) PresentChoice(ctx context.Context, prompt Prompt) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, prompt)
	return p.err
}

func (p *fakePresenter) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}

func (p *fakePresenter) last() Prompt {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prompts[len(p.prompts)-1]
}

type fakeLauncher struct {
	mu       sync.Mutex
	cannot   map[string]bool
	checkErr error
	openErr  error
	opened   []string
}

func (l *fakeLauncher) CanOpen(ctx context.Context, uri string) (bool, error) {
	if l.checkErr != nil {
		return false, l.checkErr
	}
	return !l.cannot[uri], nil
}

func (l *fakeLauncher) Open(ctx context.Context, uri string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.openErr != nil {
		return l.openErr
	}
	l.opened = append(l.opened, uri)
	return nil
}

type fakeHaptics struct {
	mu         sync.Mutex
	impacts    []HapticStyle
	vibrations [][]time.Duration
}

func (h *fakeHaptics) Impact(ctx context.Context, style HapticStyle) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.impacts = append(h.impacts, style)
	return nil
}

func (h *fakeHaptics) Vibrate(ctx context.Context, pattern []time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.vibrations = append(h.vibrations, pattern)
	return nil
}

type memStore struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	setErr error
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}}
}

func (s *memStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	return nil
}

type fakeScheduler struct {
	scheduled []models.FollowUp
	err       error
}

func (s *fakeScheduler) Schedule(ctx context.Context, f models.FollowUp) error {
	if s.err != nil {
		return s.err
	}
	s.scheduled = append(s.scheduled, f)
	return nil
}

var errBoom = errors.New("boom")

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type harness struct {
	m         *Manager
	presenter *fakePresenter
	launcher  *fakeLauncher
	haptics   *fakeHaptics
	store     *memStore
}

func newHarness(t *testing.T, mutate ...func(*Config)) *harness {
	t.Helper()
	h := &harness{
		presenter: &fakePresenter{},
		launcher:  &fakeLauncher{cannot: map[string]bool{}},
		haptics:   &fakeHaptics{},
		store:     newMemStore(),
	}
	cfg := Config{
		Region:    "US",
		Presenter: h.presenter,
		Launcher:  h.launcher,
		Haptics:   h.haptics,
		Store:     h.store,
		Now:       func() time.Time { return fixedNow },
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	m, err := NewManager(cfg)
	require.NoError(t, err)
	h.m = m
	return h
}

func (h *harness) entries(t *testing.T) []models.CrisisLogEntry {
	t.Helper()
	entries, err := h.m.Log().Entries(context.Background())
	require.NoError(t, err)
	return entries
}
