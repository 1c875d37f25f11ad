package speech

import (
	"context"
	"regexp"
	"strings"

	"github.com/hammamikhairi/voxcart/internal/domain"
	"github.com/hammamikhairi/voxcart/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*SpeakingNotifier)(nil)

// SpeakingNotifier wraps a text notifier and also speaks messages
// through a Speaker. Messages are printed immediately and queued for
// speech; urgent messages interrupt whatever is playing first.
type SpeakingNotifier struct {
	text    domain.Notifier
	speaker domain.Speaker
	log     *logger.Logger
}

// NewSpeakingNotifier creates a notifier that both prints and speaks.
func NewSpeakingNotifier(text domain.Notifier, speaker domain.Speaker, log *logger.Logger) *SpeakingNotifier {
	return &SpeakingNotifier{
		text:    text,
		speaker: speaker,
		log:     log,
	}
}

// Notify prints the message and queues it for speech.
func (n *SpeakingNotifier) Notify(ctx context.Context, message string) error {
	if err := n.text.Notify(ctx, message); err != nil {
		return err
	}
	n.speaker.Say(cleanForSpeech(message))
	return nil
}

// NotifyUrgent prints the message, silences any pending speech, and
// speaks it immediately.
func (n *SpeakingNotifier) NotifyUrgent(ctx context.Context, message string) error {
	if err := n.text.NotifyUrgent(ctx, message); err != nil {
		return err
	}
	n.speaker.Interrupt()
	n.speaker.Say(cleanForSpeech(message))
	return nil
}

// cleanForSpeech strips formatting artifacts that shouldn't be spoken.
var bracketPrefix = regexp.MustCompile(`^\[[A-Za-z]+\]\s*`)
var ansiCodes = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func cleanForSpeech(msg string) string {
	cleaned := ansiCodes.ReplaceAllString(msg, "")
	cleaned = bracketPrefix.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)
	return cleaned
}
