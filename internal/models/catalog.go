package models

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidCatalog is returned when a crisis catalog fails validation.
var ErrInvalidCatalog = errors.New("invalid crisis catalog")

// Resource ids of the default catalog.
const (
	ResourceLifeline       = "suicide-lifeline"
	ResourceCrisisTextLine = "crisis-text-line"
	ResourceEmergency      = "emergency-911"
)

// KeywordGroup is a set of phrases sharing a category name. Only the
// category is ever persisted, never the phrase that matched.
type KeywordGroup struct {
	Category string   `yaml:"category"`
	Phrases  []string `yaml:"phrases"`
}

// KeywordConfig holds the detection tiers and their tuning.
type KeywordConfig struct {
	High       []KeywordGroup `yaml:"high"`
	Medium     []KeywordGroup `yaml:"medium"`
	Escalation []KeywordGroup `yaml:"escalation"`

	// Guards are phrases that frame a keyword as non-crisis ("suicide prevention").
	Guards []string `yaml:"guards"`

	// EscalationMinimum is how many escalation phrases lift a medium match to high.
	EscalationMinimum int     `yaml:"escalation_minimum"`
	HighWeight        float64 `yaml:"high_weight"`
	MediumWeight      float64 `yaml:"medium_weight"`
	EscalationWeight  float64 `yaml:"escalation_weight"`
	GuardFactor       float64 `yaml:"guard_factor"`
}

// CrisisCatalog is the deployable configuration of the crisis subsystem.
type CrisisCatalog struct {
	Keywords  KeywordConfig       `yaml:"keywords"`
	Resources []EmergencyResource `yaml:"resources"`
}

// LoadCrisisCatalog reads a catalog YAML file. Tuning values left out of the
// file fall back to the defaults; keyword tiers and resources do not.
func LoadCrisisCatalog(path string) (*CrisisCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read crisis catalog: %w", err)
	}

	var catalog CrisisCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal crisis catalog YAML: %w", err)
	}
	catalog.Keywords = catalog.Keywords.WithDefaults()

	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// WithDefaults replaces missing or out-of-range tuning values with the
// reference values. Weights and the guard factor must lie in (0,1).
func (k KeywordConfig) WithDefaults() KeywordConfig {
	if !unitInterval(k.HighWeight) {
		k.HighWeight = 0.8
	}
	if !unitInterval(k.MediumWeight) {
		k.MediumWeight = 0.4
	}
	if !unitInterval(k.EscalationWeight) {
		k.EscalationWeight = 0.3
	}
	if k.EscalationMinimum <= 0 {
		k.EscalationMinimum = 1
	}
	if !unitInterval(k.GuardFactor) {
		k.GuardFactor = 0.5
	}
	return k
}

// unitInterval reports whether v lies strictly between 0 and 1.
func unitInterval(v float64) bool {
	return v > 0 && v < 1
}

// Validate checks that the catalog is usable.
func (c *CrisisCatalog) Validate() error {
	if len(c.Keywords.High) == 0 {
		return fmt.Errorf("%w: no high-severity keywords", ErrInvalidCatalog)
	}
	if len(c.Resources) == 0 {
		return fmt.Errorf("%w: no emergency resources", ErrInvalidCatalog)
	}

	seen := make(map[string]bool, len(c.Resources))
	for _, r := range c.Resources {
		switch {
		case r.ID == "":
			return fmt.Errorf("%w: resource without id", ErrInvalidCatalog)
		case seen[r.ID]:
			return fmt.Errorf("%w: duplicate resource id %q", ErrInvalidCatalog, r.ID)
		case r.Number == "":
			return fmt.Errorf("%w: resource %q has no number", ErrInvalidCatalog, r.ID)
		case r.Priority < 1:
			return fmt.Errorf("%w: resource %q has priority %d", ErrInvalidCatalog, r.ID, r.Priority)
		case r.Type != ResourceVoice && r.Type != ResourceText:
			return fmt.Errorf("%w: resource %q has unknown type %q", ErrInvalidCatalog, r.ID, r.Type)
		}
		seen[r.ID] = true
	}
	return nil
}

// DefaultCrisisCatalog returns the reference keyword tiers and resources.
func DefaultCrisisCatalog() *CrisisCatalog {
	return &CrisisCatalog{
		Keywords: KeywordConfig{
			High: []KeywordGroup{
				{Category: "suicidal-ideation", Phrases: []string{
					"kill myself", "suicide", "suicidal", "end my life", "take my own life",
					"want to die", "better off dead", "no reason to live",
				}},
				{Category: "self-harm", Phrases: []string{
					"hurt myself", "cut myself", "harm myself", "self-harm", "self harm", "burn myself",
				}},
			},
			Medium: []KeywordGroup{
				{Category: "hopelessness", Phrases: []string{
					"hopeless", "give up", "giving up", "no way out", "trapped",
					"can't go on", "worthless", "nothing matters",
				}},
			},
			Escalation: []KeywordGroup{
				{Category: "planning", Phrases: []string{
					"have a plan", "made a plan", "plan to end it", "final note",
					"suicide note", "goodbye forever", "won't be here tomorrow",
				}},
				{Category: "unbearable-pain", Phrases: []string{
					"overwhelming pain", "unbearable", "can't take it anymore", "burden to everyone",
				}},
			},
			Guards: []string{
				"suicide prevention", "prevention", "awareness", "hotline", "research",
				"documentary", "movie", "book about", "song", "not suicidal", "love my life",
			},
		}.WithDefaults(),
		Resources: []EmergencyResource{
			{ID: ResourceLifeline, Number: "988", Name: "988 Suicide & Crisis Lifeline", Type: ResourceVoice, Priority: 1, Region: "US"},
			{ID: ResourceCrisisTextLine, Number: "741741", Name: "Crisis Text Line", Type: ResourceText, Priority: 2, Region: "US", Keyword: "HOME"},
			{ID: ResourceEmergency, Number: "911", Name: "Emergency Services", Type: ResourceVoice, Priority: 3, Region: "US"},
			{ID: "samaritans-uk", Number: "116123", Name: "Samaritans", Type: ResourceVoice, Priority: 4, Region: "GB"},
			{ID: "shout-uk", Number: "85258", Name: "Shout", Type: ResourceText, Priority: 5, Region: "GB", Keyword: "SHOUT"},
			{ID: "talk-suicide-ca", Number: "988", Name: "9-8-8 Suicide Crisis Helpline (Canada)", Type: ResourceVoice, Priority: 6, Region: "CA"},
			{ID: "kids-help-phone-ca", Number: "686868", Name: "Kids Help Phone", Type: ResourceText, Priority: 7, Region: "CA", Keyword: "CONNECT"},
			{ID: "lifeline-au", Number: "131114", Name: "Lifeline Australia", Type: ResourceVoice, Priority: 8, Region: "AU"},
		},
	}
}
