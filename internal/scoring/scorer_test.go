package scoring

import (
	"math/rand"
	"testing"

	"mindcare-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_EmptyAnswersUseBaselines(t *testing.T) {
	for name, answers := range map[string]models.Answers{"nil": nil, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			r := CalculateAssessmentScore(answers)

			assert.Equal(t, 100, r.Categories.MentalClarity.Score)
			assert.Equal(t, 80, r.Categories.EmotionalBalance.Score)
			assert.Equal(t, 75, r.Categories.StressManagement.Score)
			assert.Equal(t, 70, r.Categories.SleepQuality.Score)
			// (30*100 + 30*80 + 25*75 + 15*70) / 100 = 83.25
			assert.Equal(t, 83, r.OverallScore)
			assert.Equal(t, models.SeverityGood, r.Severity)
			assert.Empty(t, r.Recommendations)
			assert.Len(t, r.Insights, 1)
		})
	}
}

func TestScore_RegressionFixture(t *testing.T) {
	r := CalculateAssessmentScore(models.Answers{
		models.QuestionMood:        "Happy",
		models.QuestionStressLevel: 3,
		models.QuestionSleepRating: 8,
	})

	assert.Equal(t, 100, r.Categories.MentalClarity.Score)
	assert.Equal(t, 80, r.Categories.EmotionalBalance.Score)
	assert.Equal(t, 50, r.Categories.StressManagement.Score)
	assert.Equal(t, 80, r.Categories.SleepQuality.Score)
	// round(30 + 24 + 12.5 + 12) = round(78.5)
	assert.Equal(t, 79, r.OverallScore)
	assert.Equal(t, models.SeverityGood, r.Severity)

	assert.Equal(t, models.SeverityExcellent, r.Categories.MentalClarity.Severity)
	assert.Equal(t, "#4CAF50", r.Categories.MentalClarity.Color)
	assert.Equal(t, models.SeverityFair, r.Categories.StressManagement.Severity)
	assert.Equal(t, "#FFC107", r.Categories.StressManagement.Color)
}

func TestScore_HeavyDistress(t *testing.T) {
	answers := models.Answers{
		models.QuestionConcerns:         []string{"Depression", "Anxiety", "Stress", "Relationship issues"},
		models.QuestionHasTherapist:     "No",
		models.QuestionMood:             "Very sad",
		models.QuestionPhysicalDistress: "Yes, significantly",
		models.QuestionOnMedication:     "No",
		models.QuestionSymptoms:         []string{"Insomnia", "Panic attacks", "Depression", "Anxiety"},
		models.QuestionSleepRating:      3,
		models.QuestionStressTriggers:   []string{"Work", "Money", "Family"},
		models.QuestionStressLevel:      5,
	}

	r := CalculateAssessmentScore(answers)

	assert.Equal(t, 0, r.Categories.MentalClarity.Score, "20 - 20 - 32 clamps to 0")
	assert.Equal(t, 30, r.Categories.EmotionalBalance.Score)
	assert.Equal(t, 0, r.Categories.StressManagement.Score)
	assert.Equal(t, 10, r.Categories.SleepQuality.Score)
	assert.Equal(t, 11, r.OverallScore)
	assert.Equal(t, models.SeverityNeedsAttention, r.Severity)
	assert.Equal(t, "#FF5722", r.Categories.SleepQuality.Color)

	rules := DefaultRules()
	want := []string{rules[0].Message, rules[1].Message, rules[2].Message, rules[3].Message, rules[4].Message}
	assert.Equal(t, want, r.Recommendations, "rule order decides which five survive")
	assert.Len(t, r.Insights, 4)
}

func TestScore_Adjustments(t *testing.T) {
	tests := []struct {
		name    string
		answers models.Answers
		check   func(t *testing.T, c models.Categories)
	}{
		{
			name:    "mild physical distress",
			answers: models.Answers{models.QuestionPhysicalDistress: "Yes, mildly"},
			check: func(t *testing.T, c models.Categories) {
				assert.Equal(t, 90, c.MentalClarity.Score)
				assert.Equal(t, 67, c.StressManagement.Score)
			},
		},
		{
			name:    "therapist and medication",
			answers: models.Answers{models.QuestionHasTherapist: "Yes", models.QuestionOnMedication: "yes"},
			check: func(t *testing.T, c models.Categories) {
				assert.Equal(t, 95, c.EmotionalBalance.Score)
			},
		},
		{
			name:    "half point stress level rounds up",
			answers: models.Answers{models.QuestionStressLevel: 2},
			check: func(t *testing.T, c models.Categories) {
				assert.Equal(t, 63, c.StressManagement.Score)
			},
		},
		{
			name:    "out of range ratings are clamped",
			answers: models.Answers{models.QuestionStressLevel: 42, models.QuestionSleepRating: 15},
			check: func(t *testing.T, c models.Categories) {
				assert.Equal(t, 25, c.StressManagement.Score)
				assert.Equal(t, 100, c.SleepQuality.Score)
			},
		},
		{
			name:    "insomnia lowers sleep baseline",
			answers: models.Answers{models.QuestionSymptoms: []string{"insomnia"}},
			check: func(t *testing.T, c models.Categories) {
				assert.Equal(t, 50, c.SleepQuality.Score)
				assert.Equal(t, 92, c.MentalClarity.Score)
			},
		},
		{
			name:    "mood lookup ignores case and spacing",
			answers: models.Answers{models.QuestionMood: "  very   SAD "},
			check: func(t *testing.T, c models.Categories) {
				assert.Equal(t, 20, c.MentalClarity.Score)
			},
		},
		{
			name: "malformed answers degrade to baselines",
			answers: models.Answers{
				models.QuestionMood:        []string{"Happy"},
				models.QuestionStressLevel: "a lot",
				models.QuestionSleepRating: map[string]int{"x": 1},
				models.QuestionSymptoms:    12,
			},
			check: func(t *testing.T, c models.Categories) {
				assert.Equal(t, 100, c.MentalClarity.Score)
				assert.Equal(t, 75, c.StressManagement.Score)
				assert.Equal(t, 70, c.SleepQuality.Score)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, CalculateAssessmentScore(tt.answers).Categories)
		})
	}
}

func TestSeverityFor(t *testing.T) {
	tests := []struct {
		score int
		want  models.Severity
	}{
		{100, models.SeverityExcellent},
		{85, models.SeverityExcellent},
		{84, models.SeverityGood},
		{70, models.SeverityGood},
		{69, models.SeverityFair},
		{50, models.SeverityFair},
		{49, models.SeverityNeedsAttention},
		{0, models.SeverityNeedsAttention},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SeverityFor(tt.score), "score %d", tt.score)
	}
}

func TestScore_Options(t *testing.T) {
	answers := models.Answers{
		models.QuestionStressLevel: 5,
		models.QuestionSleepRating: 2,
		models.QuestionConcerns:    []string{"Relationship issues"},
	}

	r := New(WithMaxRecommendations(2)).Score(answers)
	assert.Len(t, r.Recommendations, 2)

	custom := New(WithRules([]Rule{
		{Name: "always", Applies: func(Context) bool { return true }, Message: "always"},
		{Name: "never", Applies: func(Context) bool { return false }, Message: "never"},
		{Name: "nil predicate", Message: "skipped"},
	}))
	assert.Equal(t, []string{"always"}, custom.Score(answers).Recommendations)

	r = New(WithMaxRecommendations(0)).Score(answers)
	assert.LessOrEqual(t, len(r.Recommendations), DefaultMaxRecommendations)
}

// randomAnswers builds answer sets from the known vocabularies plus junk values.
func randomAnswers(r *rand.Rand) models.Answers {
	pick := func(opts ...any) any { return opts[r.Intn(len(opts))] }
	subset := func(opts ...string) []string {
		var out []string
		for _, o := range opts {
			if r.Intn(2) == 0 {
				out = append(out, o)
			}
		}
		return out
	}

	a := models.Answers{}
	if r.Intn(4) > 0 {
		a[models.QuestionMood] = pick("Very sad", "Sad", "Neutral", "Good", "Happy", "Elated", 7)
	}
	if r.Intn(4) > 0 {
		a[models.QuestionPhysicalDistress] = pick("Yes, significantly", "Yes, mildly", "No", nil)
	}
	if r.Intn(4) > 0 {
		a[models.QuestionStressLevel] = pick(1, 2, 3, 4, 5, 2.5, -3, 99, "4", "x")
	}
	if r.Intn(4) > 0 {
		a[models.QuestionSleepRating] = pick(1, 4, 5, 8, 10, 0, 11, "9")
	}
	a[models.QuestionConcerns] = subset("Depression", "Anxiety", "Stress", "Relationship issues")
	a[models.QuestionSymptoms] = subset("Insomnia", "Panic attacks", "Depression", "Anxiety", "Fatigue", "Irritability")
	a[models.QuestionStressTriggers] = subset("Work", "Money", "Family", "Health", "School")
	a[models.QuestionHasTherapist] = pick("Yes", "No")
	a[models.QuestionOnMedication] = pick("Yes", "No")
	return a
}

func TestScore_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		answers := randomAnswers(r)
		res := CalculateAssessmentScore(answers)
		c := res.Categories

		for _, cs := range []models.CategoryScore{c.MentalClarity, c.EmotionalBalance, c.StressManagement, c.SleepQuality} {
			require.GreaterOrEqual(t, cs.Score, 0)
			require.LessOrEqual(t, cs.Score, 100)
			require.Equal(t, SeverityFor(cs.Score), cs.Severity)
			require.Equal(t, ColorFor(cs.Severity), cs.Color)
		}

		sum := 30*c.MentalClarity.Score + 30*c.EmotionalBalance.Score + 25*c.StressManagement.Score + 15*c.SleepQuality.Score
		require.Equal(t, (sum+50)/100, res.OverallScore, "answers: %v", answers)
		require.GreaterOrEqual(t, res.OverallScore, 0)
		require.LessOrEqual(t, res.OverallScore, 100)
		require.Equal(t, SeverityFor(res.OverallScore), res.Severity)
		require.LessOrEqual(t, len(res.Recommendations), 5)
		require.NotEmpty(t, res.Insights)
	}
}
