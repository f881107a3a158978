package scoring

import (
	"math"

	"mindcare-go/internal/models"
)

// moodScores maps the mood answer directly to a mental clarity score.
var moodScores = map[string]float64{
	"very sad": 20,
	"sad":      40,
	"neutral":  60,
	"good":     80,
	"happy":    100,
}

var severityColors = map[models.Severity]string{
	models.SeverityExcellent:      "#4CAF50",
	models.SeverityGood:           "#8BC34A",
	models.SeverityFair:           "#FFC107",
	models.SeverityNeedsAttention: "#FF5722",
}

type distress int

const (
	distressNone distress = iota
	distressMild
	distressSignificant
)

// physicalDistress reads the physical distress answer. Anything that is not
// a clear "yes" counts as none.
func physicalDistress(a models.Answers) distress {
	switch normalize(a.Text(models.QuestionPhysicalDistress)) {
	case "yes, significantly", "significantly", "significant":
		return distressSignificant
	case "yes, mildly", "mildly", "mild", "yes, but not significantly":
		return distressMild
	}
	return distressNone
}

func yes(a models.Answers, id int) bool {
	switch normalize(a.Text(id)) {
	case "yes", "true":
		return true
	}
	return false
}

// stressLevel returns the self-reported stress level clamped to 1..5, defaulting to 1.
func stressLevel(a models.Answers) float64 {
	v, ok := a.Number(models.QuestionStressLevel)
	if !ok || math.IsNaN(v) {
		return 1
	}
	return math.Max(1, math.Min(5, v))
}

// sleepRating returns the self-reported sleep rating clamped to 1..10.
func sleepRating(a models.Answers) (float64, bool) {
	v, ok := a.Number(models.QuestionSleepRating)
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return math.Max(1, math.Min(10, v)), true
}

func mentalClarity(a models.Answers) int {
	score := 100.0
	if mood, ok := moodScores[normalize(a.Text(models.QuestionMood))]; ok {
		score = mood
	}
	switch physicalDistress(a) {
	case distressSignificant:
		score -= 20
	case distressMild:
		score -= 10
	}
	score -= 8 * float64(len(a.List(models.QuestionSymptoms)))
	return clamp(score)
}

func emotionalBalance(a models.Answers) int {
	score := 80.0
	if a.Has(models.QuestionConcerns, "Depression") {
		score -= 15
	}
	if a.Has(models.QuestionConcerns, "Anxiety") {
		score -= 12
	}
	if a.Has(models.QuestionConcerns, "Relationship issues") {
		score -= 8
	}
	score -= 5 * float64(len(a.List(models.QuestionStressTriggers)))
	if yes(a, models.QuestionHasTherapist) {
		score += 10
	}
	if yes(a, models.QuestionOnMedication) {
		score += 5
	}
	return clamp(score)
}

func stressManagement(a models.Answers) int {
	score := 75.0
	score -= (stressLevel(a) - 1) * 12.5
	if a.Has(models.QuestionConcerns, "Stress") {
		score -= 15
	}
	score -= 7 * float64(len(a.List(models.QuestionStressTriggers)))
	switch physicalDistress(a) {
	case distressSignificant:
		score -= 15
	case distressMild:
		score -= 8
	}
	return clamp(score)
}

func sleepQuality(a models.Answers) int {
	score := 70.0
	if rating, ok := sleepRating(a); ok {
		score = rating * 10
	}
	if a.Has(models.QuestionSymptoms, "Insomnia") {
		score -= 20
	}
	return clamp(score)
}

// SeverityFor maps a 0–100 score to its band: 85/70/50 breakpoints.
func SeverityFor(score int) models.Severity {
	switch {
	case score >= 85:
		return models.SeverityExcellent
	case score >= 70:
		return models.SeverityGood
	case score >= 50:
		return models.SeverityFair
	default:
		return models.SeverityNeedsAttention
	}
}

// ColorFor returns the display colour of a severity band.
func ColorFor(s models.Severity) string {
	return severityColors[s]
}

func categoryScore(score int) models.CategoryScore {
	sev := SeverityFor(score)
	return models.CategoryScore{Score: score, Severity: sev, Color: ColorFor(sev)}
}

// overall is the weighted sum 30/30/25/15, rounded half up in integer arithmetic.
func overall(c models.Categories) int {
	sum := 30*c.MentalClarity.Score + 30*c.EmotionalBalance.Score + 25*c.StressManagement.Score + 15*c.SleepQuality.Score
	return (sum + 50) / 100
}

// clamp rounds half up and limits the result to [0,100].
func clamp(v float64) int {
	r := int(math.Floor(v + 0.5))
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return r
}
