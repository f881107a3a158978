// Package scoring turns questionnaire answers into a wellbeing assessment.
// Scoring is total: any Answers value, including nil, yields a result.
package scoring

import (
	"strings"

	"mindcare-go/internal/models"
)

// Scorer computes assessment results with a fixed rule list.
type Scorer struct {
	rules              []Rule
	maxRecommendations int
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithRules replaces the recommendation rules.
func WithRules(rules []Rule) Option {
	return func(s *Scorer) { s.rules = rules }
}

// WithMaxRecommendations changes the recommendation cap. Values below 1 are ignored.
func WithMaxRecommendations(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.maxRecommendations = n
		}
	}
}

// New returns a Scorer with the default rules.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		rules:              DefaultRules(),
		maxRecommendations: DefaultMaxRecommendations,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var defaultScorer = New()

// CalculateAssessmentScore scores answers with the default scorer.
func CalculateAssessmentScore(answers models.Answers) models.AssessmentResult {
	return defaultScorer.Score(answers)
}

// Score computes the four category scores, the weighted overall score,
// recommendations and insights.
func (s *Scorer) Score(answers models.Answers) models.AssessmentResult {
	categories := models.Categories{
		MentalClarity:    categoryScore(mentalClarity(answers)),
		EmotionalBalance: categoryScore(emotionalBalance(answers)),
		StressManagement: categoryScore(stressManagement(answers)),
		SleepQuality:     categoryScore(sleepQuality(answers)),
	}

	total := overall(categories)

	return models.AssessmentResult{
		OverallScore:    total,
		Severity:        SeverityFor(total),
		Categories:      categories,
		Recommendations: recommend(s.rules, Context{Answers: answers, Categories: categories}, s.maxRecommendations),
		Insights:        insights(answers, total),
	}
}

func insights(a models.Answers, total int) []string {
	var out []string

	switch {
	case total >= 85:
		out = append(out, "Your mental wellness is in excellent shape. Keep up the habits that are working for you.")
	case total >= 70:
		out = append(out, "You're doing well overall, with a few areas where small changes could help.")
	case total >= 50:
		out = append(out, "You're facing some challenges. Focusing on the recommendations below can help you feel better.")
	default:
		out = append(out, "You're going through a difficult time. Please consider reaching out for professional support.")
	}

	if len(a.List(models.QuestionSymptoms)) > 2 {
		out = append(out, "You reported several symptoms at once. Tracking them over time can help you and your care team spot patterns.")
	}
	if len(a.List(models.QuestionStressTriggers)) >= 3 {
		out = append(out, "Multiple stress triggers are affecting you. Tackling one at a time can make them feel more manageable.")
	}
	if rating, ok := sleepRating(a); ok && rating <= 4 {
		out = append(out, "Poor sleep weighs on mood and stress. Improving sleep may lift your other scores too.")
	}
	return out
}

// normalize lower-cases s and collapses internal whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
