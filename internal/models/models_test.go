package models

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswers_UnmarshalJSON(t *testing.T) {
	var a Answers
	err := json.Unmarshal([]byte(`{"5":"Happy","13":3,"8":["Insomnia","Panic attacks"],"x":"ignored","9":"8"}`), &a)
	require.NoError(t, err)

	assert.Equal(t, "Happy", a.Text(QuestionMood))
	n, ok := a.Number(QuestionStressLevel)
	assert.True(t, ok)
	assert.Equal(t, 3.0, n)
	assert.Equal(t, []string{"Insomnia", "Panic attacks"}, a.List(QuestionSymptoms))
	n, ok = a.Number(QuestionSleepRating)
	assert.True(t, ok, "numeric strings are numbers")
	assert.Equal(t, 8.0, n)
	assert.Len(t, a, 4)
}

func TestAnswers_MalformedValuesReadAsAbsent(t *testing.T) {
	a := Answers{
		QuestionMood:        42,
		QuestionSymptoms:    map[string]int{"x": 1},
		QuestionStressLevel: "very",
		QuestionConcerns:    []any{"Stress", 7, ""},
	}

	assert.Equal(t, "", a.Text(QuestionMood))
	assert.Empty(t, a.List(QuestionSymptoms))
	_, ok := a.Number(QuestionStressLevel)
	assert.False(t, ok)
	assert.Equal(t, []string{"Stress"}, a.List(QuestionConcerns))
	assert.True(t, a.Has(QuestionConcerns, "stress"))
	assert.False(t, Answers(nil).Has(QuestionConcerns, "Stress"))
}

func TestDefaultCrisisCatalog_Valid(t *testing.T) {
	c := DefaultCrisisCatalog()
	require.NoError(t, c.Validate())
	assert.Equal(t, "988", c.Resources[0].Number)
	assert.Equal(t, 0.5, c.Keywords.GuardFactor)
}

func TestCrisisCatalog_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *CrisisCatalog)
	}{
		{"no resources", func(c *CrisisCatalog) { c.Resources = nil }},
		{"no high keywords", func(c *CrisisCatalog) { c.Keywords.High = nil }},
		{"duplicate id", func(c *CrisisCatalog) { c.Resources[1].ID = c.Resources[0].ID }},
		{"zero priority", func(c *CrisisCatalog) { c.Resources[0].Priority = 0 }},
		{"unknown type", func(c *CrisisCatalog) { c.Resources[0].Type = "fax" }},
		{"missing number", func(c *CrisisCatalog) { c.Resources[0].Number = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultCrisisCatalog()
			tt.mutate(c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidCatalog)
		})
	}
}

func TestLoadCrisisCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crisis.yaml")
	data := []byte(`
keywords:
  high:
    - category: self-harm
      phrases: ["hurt myself"]
  guards: ["prevention"]
  high_weight: 0.9
resources:
  - id: local-line
    number: "555"
    name: Local Line
    type: voice
    priority: 1
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	c, err := LoadCrisisCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, 0.9, c.Keywords.HighWeight)
	assert.Equal(t, 0.4, c.Keywords.MediumWeight, "missing tuning falls back to defaults")
	assert.Equal(t, 1, c.Keywords.EscalationMinimum)
	require.Len(t, c.Resources, 1)
	assert.Equal(t, ResourceVoice, c.Resources[0].Type)

	_, err = LoadCrisisCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadCrisisCatalog_RepositoryFile(t *testing.T) {
	path := filepath.Join("..", "..", "config", "crisis.yaml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("config/crisis.yaml not found, skipping")
	}

	c, err := LoadCrisisCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultCrisisCatalog().Resources, c.Resources)
}
