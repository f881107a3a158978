package crisis

import (
	"math"
	"strings"
	"unicode"

	"mindcare-go/internal/models"
)

const (
	highBaseConfidence      = 0.85
	escalatedBaseConfidence = 0.8
	mediumBaseConfidence    = 0.7
	confidenceStep          = 0.05
	maxConfidence           = 0.99
)

type phrase struct {
	text     string
	category string
}

// Detector classifies free text against keyword tiers.
type Detector struct {
	cfg        models.KeywordConfig
	high       []phrase
	medium     []phrase
	escalation []phrase
	guards     []string
}

// NewDetector builds a detector from the keyword tiers in cfg.
func NewDetector(cfg models.KeywordConfig) *Detector {
	cfg = cfg.WithDefaults()
	d := &Detector{
		cfg:        cfg,
		high:       flatten(cfg.High),
		medium:     flatten(cfg.Medium),
		escalation: flatten(cfg.Escalation),
	}
	for _, g := range cfg.Guards {
		if g = normalizeText(g); g != "" {
			d.guards = append(d.guards, g)
		}
	}
	return d
}

// flatten normalizes every phrase of groups. Phrases that normalize to the
// same words, such as "self-harm" and "self harm", are kept once.
func flatten(groups []models.KeywordGroup) []phrase {
	var out []phrase
	seen := map[string]bool{}
	for _, g := range groups {
		category := g.Category
		if category == "" {
			category = "uncategorized"
		}
		for _, p := range g.Phrases {
			if p = normalizeText(p); p != "" && !seen[p] {
				seen[p] = true
				out = append(out, phrase{text: p, category: category})
			}
		}
	}
	return out
}

// Detect classifies text. High-tier phrases give a high result; medium-tier
// phrases give medium unless enough escalation phrases co-occur. Escalation
// phrases on their own never make a crisis. A guard phrase lowers confidence
// but does not clear the crisis flag.
func (d *Detector) Detect(text string) models.CrisisDetectionResult {
	norm := normalizeText(text)

	high := match(norm, d.high)
	medium := match(norm, d.medium)

	if len(high) == 0 && len(medium) == 0 {
		return models.CrisisDetectionResult{
			Severity:   models.RiskNone,
			Keywords:   []string{},
			Categories: []string{},
			Confidence: 1,
		}
	}

	escalation := match(norm, d.escalation)

	result := models.CrisisDetectionResult{IsCrisis: true}
	var confidence float64
	matched := len(high) + len(medium) + len(escalation)

	switch {
	case len(high) > 0:
		result.Severity = models.RiskHigh
		confidence = highBaseConfidence
	case len(escalation) >= d.cfg.EscalationMinimum:
		result.Severity = models.RiskHigh
		confidence = escalatedBaseConfidence
	default:
		result.Severity = models.RiskMedium
		confidence = mediumBaseConfidence
	}
	confidence = math.Min(maxConfidence, confidence+confidenceStep*float64(matched-1))

	if d.guarded(norm) {
		confidence *= d.cfg.GuardFactor
	}
	result.Confidence = confidence

	// risk = 1 - Π(1 - w) grows strictly with every additional match
	remaining := 1.0
	remaining *= math.Pow(1-d.cfg.HighWeight, float64(len(high)))
	remaining *= math.Pow(1-d.cfg.MediumWeight, float64(len(medium)))
	remaining *= math.Pow(1-d.cfg.EscalationWeight, float64(len(escalation)))
	result.RiskScore = 1 - remaining

	all := append(append(append([]phrase{}, high...), medium...), escalation...)
	result.Keywords = make([]string, 0, len(all))
	result.Categories = []string{}
	seen := map[string]bool{}
	for _, p := range all {
		result.Keywords = append(result.Keywords, p.text)
		if !seen[p.category] {
			seen[p.category] = true
			result.Categories = append(result.Categories, p.category)
		}
	}
	return result
}

func (d *Detector) guarded(norm string) bool {
	for _, g := range d.guards {
		if containsWords(norm, g) {
			return true
		}
	}
	return false
}

func match(norm string, phrases []phrase) []phrase {
	var out []phrase
	for _, p := range phrases {
		if containsWords(norm, p.text) {
			out = append(out, p)
		}
	}
	return out
}

// containsWords reports whether the normalized phrase occurs in the
// normalized text on whole word boundaries, so "give up" does not match
// "forgive up" and "trapped" does not match "entrapped".
func containsWords(norm, phrase string) bool {
	return strings.Contains(" "+norm+" ", " "+phrase+" ")
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'")

// normalizeText lower-cases, folds curly apostrophes and reduces the text to
// words separated by single spaces. Apostrophes stay part of a word.
func normalizeText(s string) string {
	s = strings.ToLower(apostrophes.Replace(s))
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r != '\'' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}
