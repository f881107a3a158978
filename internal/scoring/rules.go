package scoring

import (
	"strings"

	"mindcare-go/internal/models"
)

// DefaultMaxRecommendations caps the recommendation list.
const DefaultMaxRecommendations = 5

// Context is what a recommendation rule sees: the raw answers and the
// already computed category scores.
type Context struct {
	Answers    models.Answers
	Categories models.Categories
}

// Rule appends Message when Applies holds. Rules are evaluated in list order
// and the order is the only tie-break once the cap is reached.
type Rule struct {
	Name    string
	Applies func(Context) bool
	Message string
}

// DefaultRules returns the recommendation rules in their documented order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "breathing",
			Applies: func(c Context) bool {
				return c.Categories.StressManagement.Score < 70 && stressLevel(c.Answers) >= 4
			},
			Message: "Try the 4-7-8 breathing technique when you feel stressed: inhale for 4 seconds, hold for 7, exhale for 8.",
		},
		{
			Name: "sleep-routine",
			Applies: func(c Context) bool {
				return c.Categories.SleepQuality.Score < 70
			},
			Message: "Keep a consistent sleep schedule, going to bed and waking up at the same time every day.",
		},
		{
			Name: "sleep-screens",
			Applies: func(c Context) bool {
				return c.Categories.SleepQuality.Score < 70
			},
			Message: "Avoid screens for at least an hour before bed and keep your bedroom cool and dark.",
		},
		{
			Name: "professional-support",
			Applies: func(c Context) bool {
				return !yes(c.Answers, models.QuestionHasTherapist) && c.Categories.EmotionalBalance.Score < 60
			},
			Message: "Consider talking to a licensed therapist or counselor. Professional support can make a real difference.",
		},
		{
			Name: "exercise",
			Applies: func(c Context) bool {
				return hasSymptomLike(c.Answers, "depress") || hasSymptomLike(c.Answers, "anxi")
			},
			Message: "Aim for 30 minutes of moderate exercise most days; physical activity eases symptoms of depression and anxiety.",
		},
		{
			Name: "grounding",
			Applies: func(c Context) bool {
				return hasSymptomLike(c.Answers, "panic")
			},
			Message: "When panic rises, try the 5-4-3-2-1 grounding technique: name 5 things you see, 4 you hear, 3 you can touch, 2 you smell and 1 you taste.",
		},
		{
			Name: "mindfulness",
			Applies: func(c Context) bool {
				return c.Categories.MentalClarity.Score < 75
			},
			Message: "Practice 10 minutes of mindfulness meditation daily to improve focus and mental clarity.",
		},
		{
			Name: "social-support",
			Applies: func(c Context) bool {
				return c.Answers.Has(models.QuestionConcerns, "Relationship issues")
			},
			Message: "Reach out to a trusted friend or family member, or join a support group to strengthen your connections.",
		},
	}
}

func hasSymptomLike(a models.Answers, fragment string) bool {
	for _, s := range a.List(models.QuestionSymptoms) {
		if strings.Contains(strings.ToLower(s), fragment) {
			return true
		}
	}
	return false
}

func recommend(rules []Rule, c Context, limit int) []string {
	out := make([]string, 0, limit)
	for _, r := range rules {
		if len(out) >= limit {
			break
		}
		if r.Applies != nil && r.Applies(c) {
			out = append(out, r.Message)
		}
	}
	return out
}
