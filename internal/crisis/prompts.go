package crisis

import (
	"context"
	"fmt"
	"strings"

	"mindcare-go/internal/models"
)

func (m *Manager) callOption(r models.EmergencyResource, label string) Option {
	id := r.ID
	return Option{
		Label:  label,
		Style:  StyleDefault,
		Action: "call:" + id,
		OnSelect: func(ctx context.Context) error {
			_, err := m.CallEmergencyService(ctx, id)
			return err
		},
	}
}

func (m *Manager) textOption(r models.EmergencyResource, label string) Option {
	id := r.ID
	return Option{
		Label:  label,
		Style:  StyleDefault,
		Action: "text:" + id,
		OnSelect: func(ctx context.Context) error {
			_, err := m.StartTextSupport(ctx, id)
			return err
		},
	}
}

func (m *Manager) inRegion(r models.EmergencyResource) bool {
	return m.region == "" || r.Region == "" || strings.EqualFold(r.Region, m.region)
}

func cancelOption(label string) Option {
	return Option{Label: label, Style: StyleCancel, Action: "cancel"}
}

// lineOptions returns the call and text options for the region's primary lines.
func (m *Manager) lineOptions() []Option {
	var opts []Option
	if voice, ok := m.resources.Primary(models.ResourceVoice, m.region); ok {
		opts = append(opts, m.callOption(voice, "Call "+voice.Number))
	}
	if text, ok := m.resources.Primary(models.ResourceText, m.region); ok {
		opts = append(opts, m.textOption(text, "Text "+text.Name))
	}
	return opts
}

func (m *Manager) highPrompt() Prompt {
	opts := m.lineOptions()
	if emergency, ok := m.resources.Lookup(models.ResourceEmergency); ok && m.inRegion(emergency) {
		call := m.callOption(emergency, "Call "+emergency.Number)
		call.Style = StyleDestructive
		opts = append(opts, call)
	}
	opts = append(opts, cancelOption("Cancel"))

	return Prompt{
		Title:      "You're not alone",
		Message:    "It sounds like you're going through something really painful. Please reach out to someone who can help right now.",
		Options:    opts,
		Cancelable: false,
	}
}

func (m *Manager) supportPrompt() Prompt {
	opts := append(m.lineOptions(), cancelOption("Not now"))
	return Prompt{
		Title:      "We're here to help",
		Message:    "If things feel heavy, talking to someone can help. Trained counselors are available 24/7.",
		Options:    opts,
		Cancelable: true,
	}
}

// fallbackPrompt gives manual instructions for res and offers the other
// channel. known is false when no resource exists for the failed channel.
func (m *Manager) fallbackPrompt(channel models.ResourceType, res models.EmergencyResource, known bool) Prompt {
	var p Prompt
	var alt Option
	var hasAlt bool

	if channel == models.ResourceVoice {
		p.Title = "Unable to place call"
		p.Message = "Please dial your local emergency number directly."
		if known {
			p.Message = fmt.Sprintf("Please dial %s directly from your phone to reach %s.", res.Number, res.Name)
		}
		if text, ok := m.resources.Primary(models.ResourceText, m.region); ok {
			alt, hasAlt = m.textOption(text, "Text "+text.Name+" instead"), true
			p.Message += " " + textInstructions("You can also text", text)
		}
	} else {
		p.Title = "Unable to open messages"
		p.Message = "Please contact a crisis line from your phone."
		if known {
			p.Message = textInstructions("Open your messaging app and text", res)
		}
		if voice, ok := m.resources.Primary(models.ResourceVoice, m.region); ok {
			alt, hasAlt = m.callOption(voice, "Call "+voice.Number+" instead"), true
			p.Message += fmt.Sprintf(" You can also call %s.", voice.Number)
		}
	}

	if hasAlt {
		p.Options = append(p.Options, alt)
	}
	p.Options = append(p.Options, cancelOption("OK"))
	return p
}

func textInstructions(lead string, r models.EmergencyResource) string {
	if r.Keyword != "" {
		return fmt.Sprintf("%s %s to %s to reach %s.", lead, r.Keyword, r.Number, r.Name)
	}
	return fmt.Sprintf("%s %s to reach %s.", lead, r.Number, r.Name)
}
