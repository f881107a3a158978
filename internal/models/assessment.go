// assessment.go
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Question ids of the wellbeing questionnaire.
const (
	QuestionConcerns         = 3
	QuestionHasTherapist     = 4
	QuestionMood             = 5
	QuestionPhysicalDistress = 6
	QuestionOnMedication     = 7
	QuestionSymptoms         = 8
	QuestionSleepRating      = 9
	QuestionStressTriggers   = 10
	QuestionStressLevel      = 13
)

// Answers maps a question id to its answer: a string, a list of strings or a number.
type Answers map[int]any

// Text returns the answer for id as a trimmed string, or "" when absent or not textual.
func (a Answers) Text(id int) string {
	switch v := a[id].(type) {
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	}
	return ""
}

// List returns the answer for id as a list of non-empty strings.
// A single string answer is treated as a one-element list.
func (a Answers) List(id int) []string {
	var out []string
	switch v := a[id].(type) {
	case []string:
		for _, s := range v {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
	case string:
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Number returns the answer for id as a float64. Numeric strings are accepted.
func (a Answers) Number(id int) (float64, bool) {
	switch v := a[id].(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// Has reports whether the list answer for id contains want, ignoring case.
func (a Answers) Has(id int, want string) bool {
	for _, s := range a.List(id) {
		if strings.EqualFold(s, want) {
			return true
		}
	}
	return false
}

// UnmarshalJSON decodes an object keyed by decimal question ids.
// Keys that are not integers are skipped.
func (a *Answers) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Answers, len(raw))
	for k, v := range raw {
		id, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			continue
		}
		out[id] = v
	}
	*a = out
	return nil
}

// Severity is the wellbeing band of a score.
type Severity string

const (
	SeverityExcellent      Severity = "excellent"
	SeverityGood           Severity = "good"
	SeverityFair           Severity = "fair"
	SeverityNeedsAttention Severity = "needs-attention"
)

// CategoryScore is one of the four sub-scores of an assessment.
type CategoryScore struct {
	Score    int      `json:"score"`
	Severity Severity `json:"severity"`
	Color    string   `json:"color"`
}

// Categories holds the four category scores.
type Categories struct {
	MentalClarity    CategoryScore `json:"mentalClarity"`
	EmotionalBalance CategoryScore `json:"emotionalBalance"`
	StressManagement CategoryScore `json:"stressManagement"`
	SleepQuality     CategoryScore `json:"sleepQuality"`
}

// AssessmentResult is the scored outcome of one questionnaire.
type AssessmentResult struct {
	OverallScore    int        `json:"overallScore"`
	Severity        Severity   `json:"severity"`
	Categories      Categories `json:"categories"`
	Recommendations []string   `json:"recommendations"`
	Insights        []string   `json:"insights"`
}
