package crisis

import (
	"context"
	"time"

	"mindcare-go/internal/models"
)

// OptionStyle hints how a prompt option is rendered.
type OptionStyle string

const (
	StyleDefault     OptionStyle = "default"
	StyleCancel      OptionStyle = "cancel"
	StyleDestructive OptionStyle = "destructive"
)

// Option is one selectable choice of a Prompt. Action is a stable identifier
// such as "call:suicide-lifeline" for clients that cannot run OnSelect.
type Option struct {
	Label    string                          `json:"label"`
	Style    OptionStyle                     `json:"style"`
	Action   string                          `json:"action,omitempty"`
	OnSelect func(ctx context.Context) error `json:"-"`
}

// Prompt is a modal choice shown to the user. A prompt that is not
// Cancelable must not be dismissed by tapping outside it.
type Prompt struct {
	Title      string   `json:"title"`
	Message    string   `json:"message"`
	Options    []Option `json:"options"`
	Cancelable bool     `json:"cancelable"`
}

// AlertPresenter shows modal prompts.
type AlertPresenter interface {
	PresentChoice(ctx context.Context, p Prompt) error
}

// DeepLinkLauncher opens tel: and sms: links.
type DeepLinkLauncher interface {
	CanOpen(ctx context.Context, uri string) (bool, error)
	Open(ctx context.Context, uri string) error
}

// HapticStyle is the strength of an impact.
type HapticStyle string

const (
	HapticLight  HapticStyle = "light"
	HapticMedium HapticStyle = "medium"
	HapticHeavy  HapticStyle = "heavy"
)

// HapticFeedback triggers impacts and vibration patterns.
type HapticFeedback interface {
	Impact(ctx context.Context, style HapticStyle) error
	Vibrate(ctx context.Context, pattern []time.Duration) error
}

// KeyValueStore is the persistent store backing the crisis log.
// Get reports ok=false for a missing key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// FollowUpScheduler accepts follow-up check-ins for later reminders.
type FollowUpScheduler interface {
	Schedule(ctx context.Context, f models.FollowUp) error
}
