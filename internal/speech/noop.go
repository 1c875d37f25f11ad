// Package speech provides speech-to-text and text-to-speech implementations.
package speech

import (
	"github.com/hammamikhairi/voxcart/internal/domain"
	"github.com/hammamikhairi/voxcart/internal/logger"
)

// Compile-time interface check.
var _ domain.Speaker = (*NoOp)(nil)

// NoOp is a speaker that does nothing. Used when voice output is disabled.
type NoOp struct {
	log *logger.Logger
}

// NewNoOp creates a no-op speaker.
func NewNoOp(log *logger.Logger) *NoOp {
	return &NoOp{log: log}
}

func (n *NoOp) Say(text string) {
	n.log.Debug("speech no-op: would say %q", text)
}

func (n *NoOp) Interrupt() {}
func (n *NoOp) Mute()      {}
func (n *NoOp) Unmute()    {}
