//go:build !windows

package input

import (
	"fmt"

	"keypulse/internal/keymap"
)

// Sender is a stub backend for platforms without key injection support.
type Sender struct {
	resolver *keymap.Resolver
}

// NewSender returns a stub Sender.
func NewSender(resolver *keymap.Resolver) *Sender {
	return &Sender{resolver: resolver}
}

// FindWindow always reports no window on this platform.
func (s *Sender) FindWindow(pid uint32) (Window, bool) {
	return Window{}, false
}

// SendKey fails on this platform.
func (s *Sender) SendKey(win Window, key string) error {
	if _, err := s.resolver.ParseCombo(key); err != nil {
		return err
	}
	return fmt.Errorf("key injection not supported on this platform")
}
