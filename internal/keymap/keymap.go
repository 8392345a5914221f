// Package keymap resolves human-readable key names to Windows virtual-key
// codes and parses modifier combinations like "ctrl+shift+s".
package keymap

import (
	"errors"
	"fmt"
	"strings"
)

// VK is a Windows virtual-key code.
type VK uint16

// Virtual-key codes for the modifier keys.
const (
	VKShift   VK = 0x10
	VKControl VK = 0x11
	VKMenu    VK = 0x12 // alt
)

var (
	// ErrUnsupportedKey is returned when a key name is not in the table.
	ErrUnsupportedKey = errors.New("unsupported key")

	// ErrInvalidCombination is returned when a combination does not have the
	// form mod+...+mod+key.
	ErrInvalidCombination = errors.New("invalid key combination")
)

// Combo is a parsed key combination: zero or more modifiers plus one
// primary key. The primary is a non-modifier except for the degenerate
// lone-modifier form.
type Combo struct {
	Modifiers []VK
	Primary   VK
}

// Resolver maps key names to virtual-key codes. It is stateless after
// construction and safe for concurrent use.
type Resolver struct {
	table map[string]VK
}

// New builds the resolution table.
func New() *Resolver {
	table := map[string]VK{
		"space":     0x20,
		"enter":     0x0D,
		"return":    0x0D,
		"tab":       0x09,
		"escape":    0x1B,
		"esc":       0x1B,
		"backspace": 0x08,
		"delete":    0x2E,
		"home":      0x24,
		"end":       0x23,
		"pageup":    0x21,
		"pagedown":  0x22,
		"left":      0x25,
		"up":        0x26,
		"right":     0x27,
		"down":      0x28,
		"shift":     VKShift,
		"ctrl":      VKControl,
		"control":   VKControl,
		"alt":       VKMenu,
	}

	// F1-F12
	for i := 1; i <= 12; i++ {
		table[fmt.Sprintf("f%d", i)] = VK(0x70 + i - 1)
	}

	// Digits map straight to VK_0..VK_9, letters to VK_A..VK_Z.
	for c := '0'; c <= '9'; c++ {
		table[string(c)] = VK(c)
	}
	for c := 'a'; c <= 'z'; c++ {
		table[string(c)] = VK(c - 'a' + 'A')
	}

	return &Resolver{table: table}
}

// Resolve returns the virtual-key code for a single key name. Matching is
// case-insensitive; unknown names are errors, there is no fuzzy matching.
func (r *Resolver) Resolve(name string) (VK, error) {
	vk, ok := r.table[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedKey, name)
	}
	return vk, nil
}

// IsModifier reports whether vk is one of ctrl, shift or alt.
func IsModifier(vk VK) bool {
	return vk == VKShift || vk == VKControl || vk == VKMenu
}

// ParseCombo splits name on '+' and validates that every leading token is a
// modifier and the final token is a non-modifier primary key. A bare key
// parses to a combo with no modifiers; that includes a lone modifier name,
// which presses that key by itself.
func (r *Resolver) ParseCombo(name string) (Combo, error) {
	parts := strings.Split(name, "+")
	if len(parts) == 1 {
		vk, err := r.Resolve(parts[0])
		if err != nil {
			return Combo{}, err
		}
		return Combo{Primary: vk}, nil
	}

	mods := make([]VK, 0, len(parts)-1)
	for _, p := range parts[:len(parts)-1] {
		vk, err := r.Resolve(p)
		if err != nil {
			return Combo{}, fmt.Errorf("%w: %v", ErrInvalidCombination, err)
		}
		if !IsModifier(vk) {
			return Combo{}, fmt.Errorf("%w: %q is not a modifier", ErrInvalidCombination, strings.TrimSpace(p))
		}
		mods = append(mods, vk)
	}

	primary, err := r.Resolve(parts[len(parts)-1])
	if err != nil {
		return Combo{}, fmt.Errorf("%w: %v", ErrInvalidCombination, err)
	}
	if IsModifier(primary) {
		return Combo{}, fmt.Errorf("%w: %q ends in a modifier", ErrInvalidCombination, name)
	}

	return Combo{Modifiers: mods, Primary: primary}, nil
}

// Validate checks a key name (single key or combination) without returning
// the parsed result. Used at configuration-validation time to fail fast.
func (r *Resolver) Validate(name string) error {
	_, err := r.ParseCombo(name)
	return err
}
