package models

import "time"

// RiskLevel is the crisis severity band that drives the intervention shown.
type RiskLevel string

const (
	RiskNone   RiskLevel = "none"
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// CrisisDetectionResult is the classification of one piece of free text.
type CrisisDetectionResult struct {
	IsCrisis   bool      `json:"isCrisis"`
	Severity   RiskLevel `json:"severity"`
	Keywords   []string  `json:"keywords"`
	Categories []string  `json:"categories"`
	RiskScore  float64   `json:"riskScore"`
	Confidence float64   `json:"confidence"`
}

// ResourceType is the channel an emergency resource is reached through.
type ResourceType string

const (
	ResourceVoice ResourceType = "voice"
	ResourceText  ResourceType = "text"
)

// EmergencyResource is one entry of the emergency catalog. Priority 1 is highest.
// An empty Region means the resource applies everywhere.
type EmergencyResource struct {
	ID       string       `json:"id" yaml:"id"`
	Number   string       `json:"number" yaml:"number"`
	Name     string       `json:"name" yaml:"name"`
	Type     ResourceType `json:"type" yaml:"type"`
	Priority int          `json:"priority" yaml:"priority"`
	Region   string       `json:"region,omitempty" yaml:"region,omitempty"`
	Keyword  string       `json:"keyword,omitempty" yaml:"keyword,omitempty"`
}

// CrisisAction names what the app did in response to a crisis.
type CrisisAction string

const (
	ActionAlertPresented  CrisisAction = "alert_presented"
	ActionPromptPresented CrisisAction = "prompt_presented"
	ActionCallStarted     CrisisAction = "call_started"
	ActionTextStarted     CrisisAction = "text_started"
	ActionFallbackShown   CrisisAction = "fallback_shown"
)

// CrisisEvent is the raw record of a crisis as the app sees it.
// It carries free text and identity and must never be persisted as is.
type CrisisEvent struct {
	Detection  CrisisDetectionResult `json:"detection"`
	Text       string                `json:"text,omitempty"`
	UserID     string                `json:"userId,omitempty"`
	Name       string                `json:"name,omitempty"`
	Email      string                `json:"email,omitempty"`
	Address    string                `json:"address,omitempty"`
	Latitude   float64               `json:"latitude,omitempty"`
	Longitude  float64               `json:"longitude,omitempty"`
	Action     CrisisAction          `json:"action"`
	ResourceID string                `json:"resourceId,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CrisisLogEntry is the anonymized, persisted form of a CrisisEvent.
type CrisisLogEntry struct {
	ID         string       `json:"id"`
	Severity   RiskLevel    `json:"severity"`
	Categories []string     `json:"categories"`
	RiskScore  float64      `json:"riskScore"`
	Action     CrisisAction `json:"action"`
	ResourceID string       `json:"resourceId,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`
}

// ProviderReport is the aggregate handed to a clinician. It never holds entries.
type ProviderReport struct {
	GeneratedAt      time.Time            `json:"generatedAt"`
	Since            *time.Time           `json:"since,omitempty"`
	TotalEvents      int                  `json:"totalEvents"`
	BySeverity       map[RiskLevel]int    `json:"bySeverity"`
	ByCategory       map[string]int       `json:"byCategory"`
	Interventions    map[CrisisAction]int `json:"interventions"`
	HighestRiskScore float64              `json:"highestRiskScore"`
	FirstEvent       *time.Time           `json:"firstEvent,omitempty"`
	LastEvent        *time.Time           `json:"lastEvent,omitempty"`
	PrivacyCompliant bool                 `json:"privacy_compliant"`
}

// FollowUpConfirmation is returned when a follow-up check-in is scheduled.
type FollowUpConfirmation struct {
	ID           string    `json:"id"`
	Severity     RiskLevel `json:"severity"`
	ScheduledFor time.Time `json:"scheduledFor"`
	ReminderSet  bool      `json:"reminderSet"`
}
