// Package crisis detects crisis language in free text and drives the
// response: prompts, deep links to emergency lines, an anonymized log,
// provider reports and follow-ups. Every platform side effect goes through
// the collaborator interfaces in platform.go.
package crisis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mindcare-go/internal/models"

	"go.uber.org/zap"
)

var (
	// ErrUnknownResource is returned when a resource id does not name a
	// resource of the requested channel. The user is still helped through
	// the primary resource of that channel.
	ErrUnknownResource = errors.New("unknown emergency resource")
	// ErrLinkUnsupported is returned by the launch path when the platform cannot open a link.
	ErrLinkUnsupported = errors.New("deep link not supported")
)

// vibrationPattern is wait, buzz, wait, buzz.
var vibrationPattern = []time.Duration{0, 500 * time.Millisecond, 200 * time.Millisecond, 500 * time.Millisecond}

// FollowUpDelays sets how long after a crisis the follow-up check-in is due.
type FollowUpDelays struct {
	High    time.Duration
	Medium  time.Duration
	Default time.Duration
}

// Config wires a Manager. Presenter, Launcher and Store are required.
type Config struct {
	Catalog   *models.CrisisCatalog
	Region    string
	Presenter AlertPresenter
	Launcher  DeepLinkLauncher
	Haptics   HapticFeedback
	Store     KeyValueStore
	FollowUps FollowUpScheduler
	Delays    FollowUpDelays
	LogKey    string
	Logger    *zap.Logger
	Now       func() time.Time
}

// Manager is the crisis response service. It is safe for concurrent use.
type Manager struct {
	detector   *Detector
	resources  *ResourceCatalog
	categories map[string]bool
	region     string
	presenter  AlertPresenter
	launcher   DeepLinkLauncher
	haptics    HapticFeedback
	followUps  FollowUpScheduler
	delays     FollowUpDelays
	log        *CrisisLog
	logger     *zap.Logger
	now        func() time.Time
}

// LaunchResult describes the outcome of CallEmergencyService or StartTextSupport.
type LaunchResult struct {
	Resource      models.EmergencyResource `json:"resource"`
	URI           string                   `json:"uri"`
	Opened        bool                     `json:"opened"`
	FallbackShown bool                     `json:"fallbackShown"`
}

// NewManager validates cfg and builds a Manager. A nil catalog uses the default catalog.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Presenter == nil || cfg.Launcher == nil || cfg.Store == nil {
		return nil, errors.New("crisis manager needs a presenter, a launcher and a store")
	}
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = models.DefaultCrisisCatalog()
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		detector:   NewDetector(catalog.Keywords),
		resources:  NewResourceCatalog(catalog.Resources),
		categories: map[string]bool{},
		region:     cfg.Region,
		presenter:  cfg.Presenter,
		launcher:   cfg.Launcher,
		haptics:    cfg.Haptics,
		followUps:  cfg.FollowUps,
		delays:     cfg.Delays,
		log:        NewCrisisLog(cfg.Store, cfg.LogKey),
		logger:     cfg.Logger,
		now:        cfg.Now,
	}
	for _, tier := range [][]models.KeywordGroup{catalog.Keywords.High, catalog.Keywords.Medium, catalog.Keywords.Escalation} {
		for _, g := range tier {
			if g.Category == "" {
				m.categories["uncategorized"] = true
				continue
			}
			m.categories[g.Category] = true
		}
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.log.now = m.now
	if m.delays.High <= 0 {
		m.delays.High = 24 * time.Hour
	}
	if m.delays.Medium <= 0 {
		m.delays.Medium = 72 * time.Hour
	}
	if m.delays.Default <= 0 {
		m.delays.Default = 7 * 24 * time.Hour
	}
	return m, nil
}

// DetectCrisis classifies text.
func (m *Manager) DetectCrisis(text string) models.CrisisDetectionResult {
	return m.detector.Detect(text)
}

// GetEmergencyResources returns the catalog sorted by priority, narrowed to
// filter when it is not empty.
func (m *Manager) GetEmergencyResources(filter models.ResourceType) []models.EmergencyResource {
	return m.resources.Resources(filter)
}

// Resources exposes the catalog for region lookups.
func (m *Manager) Resources() *ResourceCatalog {
	return m.resources
}

// Log exposes the crisis log.
func (m *Manager) Log() *CrisisLog {
	return m.log
}

// HandleCrisisDetected presents the intervention for result. A high result
// gets strong haptics and a prompt that cannot be dismissed by accident, a
// medium or low one a softer prompt without the emergency number. The event is
// logged afterwards; log failures are reported through the logger only. The
// returned error is the presenter's, if any.
func (m *Manager) HandleCrisisDetected(ctx context.Context, result models.CrisisDetectionResult) error {
	if !result.IsCrisis {
		return nil
	}

	var (
		prompt Prompt
		action models.CrisisAction
	)
	if result.Severity == models.RiskHigh {
		m.alertHaptics(ctx)
		prompt = m.highPrompt()
		action = models.ActionAlertPresented
	} else {
		prompt = m.supportPrompt()
		action = models.ActionPromptPresented
	}

	presentErr := m.presenter.PresentChoice(ctx, prompt)
	if presentErr != nil {
		m.logger.Error("Failed to present crisis prompt",
			zap.String("severity", string(result.Severity)),
			zap.Error(presentErr),
		)
	} else {
		m.logger.Info("Crisis prompt presented",
			zap.String("severity", string(result.Severity)),
			zap.Strings("categories", result.Categories),
			zap.Float64("risk_score", result.RiskScore),
		)
	}

	m.record(ctx, models.CrisisEvent{Detection: result, Action: action, Timestamp: m.now()})

	if presentErr != nil {
		return fmt.Errorf("failed to present crisis prompt: %w", presentErr)
	}
	return nil
}

// CallEmergencyService dials the voice resource id, falling back to manual
// dialing instructions and a text option when the call cannot be started.
func (m *Manager) CallEmergencyService(ctx context.Context, id string) (LaunchResult, error) {
	return m.launch(ctx, id, models.ResourceVoice)
}

// StartTextSupport opens a message to the text resource id, falling back to
// manual texting instructions and a call option when messaging is unavailable.
func (m *Manager) StartTextSupport(ctx context.Context, id string) (LaunchResult, error) {
	return m.launch(ctx, id, models.ResourceText)
}

func (m *Manager) launch(ctx context.Context, id string, channel models.ResourceType) (LaunchResult, error) {
	var lookupErr error
	res, ok := m.resources.Lookup(id)
	if !ok || res.Type != channel {
		lookupErr = fmt.Errorf("%w: %q is not a %s resource", ErrUnknownResource, id, channel)
		res, ok = m.resources.Primary(channel, m.region)
	}

	result := LaunchResult{Resource: res}
	var openErr error
	if ok {
		result.URI = URI(res)
		openErr = m.open(ctx, result.URI)
	} else {
		openErr = fmt.Errorf("no %s resource configured", channel)
	}

	if openErr == nil {
		result.Opened = true
		action := models.ActionCallStarted
		if channel == models.ResourceText {
			action = models.ActionTextStarted
		}
		m.logger.Info("Emergency link opened", zap.String("resource", res.ID), zap.String("channel", string(channel)))
		m.record(ctx, models.CrisisEvent{Action: action, ResourceID: res.ID, Timestamp: m.now()})
		return result, lookupErr
	}

	m.logger.Warn("Emergency link failed, showing manual instructions",
		zap.String("resource", res.ID),
		zap.String("channel", string(channel)),
		zap.Error(openErr),
	)
	if err := m.presenter.PresentChoice(ctx, m.fallbackPrompt(channel, res, ok)); err != nil {
		m.logger.Error("Failed to present fallback prompt", zap.Error(err))
		return result, errors.Join(lookupErr, fmt.Errorf("failed to present fallback prompt: %w", err))
	}
	result.FallbackShown = true
	m.record(ctx, models.CrisisEvent{Action: models.ActionFallbackShown, ResourceID: res.ID, Timestamp: m.now()})
	return result, lookupErr
}

func (m *Manager) open(ctx context.Context, uri string) error {
	can, err := m.launcher.CanOpen(ctx, uri)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", uri, err)
	}
	if !can {
		return fmt.Errorf("%w: %s", ErrLinkUnsupported, uri)
	}
	if err := m.launcher.Open(ctx, uri); err != nil {
		return fmt.Errorf("failed to open %s: %w", uri, err)
	}
	return nil
}

func (m *Manager) alertHaptics(ctx context.Context) {
	if m.haptics == nil {
		return
	}
	if err := m.haptics.Impact(ctx, HapticHeavy); err != nil {
		m.logger.Warn("Haptic impact failed", zap.Error(err))
	}
	if err := m.haptics.Vibrate(ctx, vibrationPattern); err != nil {
		m.logger.Warn("Vibration failed", zap.Error(err))
	}
}
