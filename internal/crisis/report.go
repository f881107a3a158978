package crisis

import (
	"context"
	"fmt"
	"time"

	"mindcare-go/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PrepareProviderReport aggregates the crisis log since the given time (zero
// means everything) for clinical handoff. Only counts and timestamps leave
// the log; individual entries are never included.
func (m *Manager) PrepareProviderReport(ctx context.Context, since time.Time) (models.ProviderReport, error) {
	entries, err := m.log.Entries(ctx)
	if err != nil {
		return models.ProviderReport{}, fmt.Errorf("failed to load crisis log: %w", err)
	}

	report := models.ProviderReport{
		GeneratedAt:      m.now().UTC(),
		BySeverity:       map[models.RiskLevel]int{},
		ByCategory:       map[string]int{},
		Interventions:    map[models.CrisisAction]int{},
		PrivacyCompliant: true,
	}
	if !since.IsZero() {
		s := since.UTC()
		report.Since = &s
	}

	for _, e := range entries {
		if !since.IsZero() && e.Timestamp.Before(since) {
			continue
		}
		if e.Action != "" {
			report.Interventions[e.Action]++
		}
		if e.Action != models.ActionAlertPresented && e.Action != models.ActionPromptPresented {
			continue
		}

		report.TotalEvents++
		report.BySeverity[e.Severity]++
		for _, c := range e.Categories {
			report.ByCategory[c]++
		}
		if e.RiskScore > report.HighestRiskScore {
			report.HighestRiskScore = e.RiskScore
		}
		ts := e.Timestamp
		if report.FirstEvent == nil || ts.Before(*report.FirstEvent) {
			report.FirstEvent = &ts
		}
		if report.LastEvent == nil || ts.After(*report.LastEvent) {
			report.LastEvent = &ts
		}
	}
	return report, nil
}

// ScheduleFollowUp computes the follow-up time for severity and hands it to
// the follow-up scheduler when one is configured. ReminderSet reports whether
// the scheduler accepted it; a scheduler failure is logged, not returned.
func (m *Manager) ScheduleFollowUp(ctx context.Context, severity models.RiskLevel) (models.FollowUpConfirmation, error) {
	if err := ctx.Err(); err != nil {
		return models.FollowUpConfirmation{}, err
	}

	delay := m.delays.Default
	switch severity {
	case models.RiskHigh:
		delay = m.delays.High
	case models.RiskMedium:
		delay = m.delays.Medium
	case models.RiskLow:
	default:
		severity = models.RiskNone
	}

	now := m.now().UTC()
	f := models.FollowUp{
		ID:           uuid.NewString(),
		Severity:     severity,
		ScheduledFor: now.Add(delay),
		CreatedAt:    now,
	}

	confirmation := models.FollowUpConfirmation{
		ID:           f.ID,
		Severity:     severity,
		ScheduledFor: f.ScheduledFor,
	}
	if m.followUps == nil {
		return confirmation, nil
	}
	if err := m.followUps.Schedule(ctx, f); err != nil {
		m.logger.Warn("Failed to schedule follow-up reminder", zap.String("follow_up", f.ID), zap.Error(err))
		return confirmation, nil
	}
	confirmation.ReminderSet = true
	return confirmation, nil
}
