// Package platform implements the crisis collaborators for the HTTP service.
// The server has no screen or phone of its own, so each side effect is
// captured on the request context and returned to the mobile client, which
// performs it.
package platform

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"mindcare-go/internal/crisis"

	"go.uber.org/zap"
)

// ErrNoClient is returned when a side effect is requested outside a captured request.
var ErrNoClient = errors.New("no client attached to context")

type captureKey struct{}

// Capture collects the side effects requested during one request.
type Capture struct {
	mu        sync.Mutex
	prompts   []crisis.Prompt
	links     []string
	impacts   []crisis.HapticStyle
	vibration []time.Duration
	refused   bool
}

// WithCapture attaches a fresh Capture to ctx.
func WithCapture(ctx context.Context) (context.Context, *Capture) {
	c := &Capture{}
	return context.WithValue(ctx, captureKey{}, c), c
}

func fromContext(ctx context.Context) (*Capture, bool) {
	c, ok := ctx.Value(captureKey{}).(*Capture)
	return c, ok
}

// RefuseLinks makes every later CanOpen on this request report false. The
// client calls it when it could not open the link it was given last time.
func (c *Capture) RefuseLinks() {
	c.mu.Lock()
	c.refused = true
	c.mu.Unlock()
}

// Prompts returns the prompts presented so far, in order.
func (c *Capture) Prompts() []crisis.Prompt {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]crisis.Prompt(nil), c.prompts...)
}

// Links returns the deep links opened so far.
func (c *Capture) Links() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.links...)
}

// Haptics returns the requested impacts and the last vibration pattern.
func (c *Capture) Haptics() ([]crisis.HapticStyle, []time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]crisis.HapticStyle(nil), c.impacts...), append([]time.Duration(nil), c.vibration...)
}

// Presenter records prompts for the client to display.
type Presenter struct {
	log *zap.Logger
}

func NewPresenter(log *zap.Logger) *Presenter {
	return &Presenter{log: log}
}

func (p *Presenter) PresentChoice(ctx context.Context, prompt crisis.Prompt) error {
	c, ok := fromContext(ctx)
	if !ok {
		return ErrNoClient
	}
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()

	p.log.Debug("Prompt queued for client",
		zap.String("title", prompt.Title),
		zap.Int("options", len(prompt.Options)),
		zap.Bool("cancelable", prompt.Cancelable),
	)
	return nil
}

// Launcher hands tel: and sms: links to the client. Other schemes are refused.
type Launcher struct {
	log *zap.Logger
}

func NewLauncher(log *zap.Logger) *Launcher {
	return &Launcher{log: log}
}

func (l *Launcher) CanOpen(ctx context.Context, uri string) (bool, error) {
	c, ok := fromContext(ctx)
	if !ok {
		return false, nil
	}
	c.mu.Lock()
	refused := c.refused
	c.mu.Unlock()
	if refused {
		l.log.Debug("Client reported links unavailable", zap.String("uri", uri))
		return false, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return false, err
	}
	return u.Scheme == "tel" || u.Scheme == "sms", nil
}

func (l *Launcher) Open(ctx context.Context, uri string) error {
	c, ok := fromContext(ctx)
	if !ok {
		return ErrNoClient
	}
	c.mu.Lock()
	c.links = append(c.links, uri)
	c.mu.Unlock()

	l.log.Debug("Deep link queued for client", zap.String("uri", uri))
	return nil
}

// Haptics forwards haptic requests to the client. Requests outside a
// captured request are dropped.
type Haptics struct {
	log *zap.Logger
}

func NewHaptics(log *zap.Logger) *Haptics {
	return &Haptics{log: log}
}

func (h *Haptics) Impact(ctx context.Context, style crisis.HapticStyle) error {
	c, ok := fromContext(ctx)
	if !ok {
		return nil
	}
	c.mu.Lock()
	c.impacts = append(c.impacts, style)
	c.mu.Unlock()
	h.log.Debug("Haptic impact queued for client", zap.String("style", string(style)))
	return nil
}

func (h *Haptics) Vibrate(ctx context.Context, pattern []time.Duration) error {
	c, ok := fromContext(ctx)
	if !ok {
		return nil
	}
	c.mu.Lock()
	c.vibration = append([]time.Duration(nil), pattern...)
	c.mu.Unlock()
	return nil
}
