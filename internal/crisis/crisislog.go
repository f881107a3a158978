package crisis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"mindcare-go/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultLogKey is the namespaced key the crisis log is stored under.
const DefaultLogKey = "mindcare:crisis_log"

var knownActions = map[models.CrisisAction]bool{
	models.ActionAlertPresented:  true,
	models.ActionPromptPresented: true,
	models.ActionCallStarted:     true,
	models.ActionTextStarted:     true,
	models.ActionFallbackShown:   true,
}

// ErrCorruptLog is returned when the stored crisis log is not a JSON array of entries.
var ErrCorruptLog = errors.New("crisis log is corrupt")

// CrisisLog is an append-only list of anonymized entries kept as one JSON
// array under a single key. Appends read, modify and write the whole list
// while holding the mutex, so concurrent appends never drop entries.
type CrisisLog struct {
	store KeyValueStore
	key   string
	now   func() time.Time
	mu    sync.Mutex
}

// NewCrisisLog returns a log stored under key, or DefaultLogKey when key is empty.
func NewCrisisLog(store KeyValueStore, key string) *CrisisLog {
	if key == "" {
		key = DefaultLogKey
	}
	return &CrisisLog{store: store, key: key, now: time.Now}
}

// CorruptKeyPrefix returns the prefix under which unreadable copies of the
// log are kept before it is replaced.
func (l *CrisisLog) CorruptKeyPrefix() string {
	return l.key + ":corrupt:"
}

// Append adds entry to the log. A corrupt stored list is first copied to a
// key under CorruptKeyPrefix and then replaced, so that new entries keep
// being recorded; the returned error still reports it.
func (l *CrisisLog) Append(ctx context.Context, entry models.CrisisLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, raw, err := l.load(ctx)
	var corrupt error
	if errors.Is(err, ErrCorruptLog) {
		backup := l.CorruptKeyPrefix() + l.now().UTC().Format("20060102T150405.000000000Z")
		if err := l.store.Set(ctx, backup, raw); err != nil {
			return fmt.Errorf("failed to back up corrupt crisis log: %w", err)
		}
		corrupt = fmt.Errorf("%w (copied to %s)", err, backup)
		entries = nil
	} else if err != nil {
		return err
	}

	entries = append(entries, entry)
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode crisis log: %w", err)
	}
	if err := l.store.Set(ctx, l.key, string(data)); err != nil {
		return fmt.Errorf("failed to write crisis log: %w", err)
	}
	return corrupt
}

// Entries returns every stored entry in append order.
func (l *CrisisLog) Entries(ctx context.Context) ([]models.CrisisLogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries, _, err := l.load(ctx)
	return entries, err
}

// load returns the decoded entries and the stored payload they came from.
func (l *CrisisLog) load(ctx context.Context) ([]models.CrisisLogEntry, string, error) {
	raw, ok, err := l.store.Get(ctx, l.key)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read crisis log: %w", err)
	}
	if !ok || raw == "" {
		return nil, raw, nil
	}

	var entries []models.CrisisLogEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, raw, fmt.Errorf("%w: %v", ErrCorruptLog, err)
	}
	return entries, raw, nil
}

// AnonymizeCrisisData reduces an event to what may be persisted: severity,
// known keyword categories, risk score, known action, catalog resource id
// and time. Free text, matched phrases, identity and location are dropped.
// Values outside the catalog are discarded as they may hold arbitrary text.
func (m *Manager) AnonymizeCrisisData(ev models.CrisisEvent) models.CrisisLogEntry {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = m.now()
	}

	severity := ev.Detection.Severity
	switch severity {
	case models.RiskLow, models.RiskMedium, models.RiskHigh:
	default:
		severity = models.RiskNone
	}

	categories := []string{}
	for _, c := range ev.Detection.Categories {
		if m.categories[c] {
			categories = append(categories, c)
		}
	}

	risk := ev.Detection.RiskScore
	if math.IsNaN(risk) || risk < 0 {
		risk = 0
	} else if risk > 1 {
		risk = 1
	}

	entry := models.CrisisLogEntry{
		ID:         uuid.NewString(),
		Severity:   severity,
		Categories: categories,
		RiskScore:  math.Round(risk*1000) / 1000,
		Timestamp:  ts.UTC().Truncate(time.Second),
	}
	if knownActions[ev.Action] {
		entry.Action = ev.Action
	}
	if _, ok := m.resources.Lookup(ev.ResourceID); ok {
		entry.ResourceID = ev.ResourceID
	}
	return entry
}

// LogCrisisEvent anonymizes ev and appends it to the crisis log.
func (m *Manager) LogCrisisEvent(ctx context.Context, ev models.CrisisEvent) error {
	return m.log.Append(ctx, m.AnonymizeCrisisData(ev))
}

// record logs ev and swallows failures; crisis responses never depend on the log.
func (m *Manager) record(ctx context.Context, ev models.CrisisEvent) {
	if err := m.LogCrisisEvent(ctx, ev); err != nil {
		m.logger.Error("Failed to record crisis event",
			zap.String("action", string(ev.Action)),
			zap.String("severity", string(ev.Detection.Severity)),
			zap.Error(err),
		)
	}
}
