package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	r := New()

	tests := []struct {
		name string
		want VK
	}{
		{"a", 0x41},
		{"z", 0x5A},
		{"A", 0x41}, // case-insensitive
		{"0", 0x30},
		{"9", 0x39},
		{"space", 0x20},
		{"enter", 0x0D},
		{"return", 0x0D},
		{"tab", 0x09},
		{"escape", 0x1B},
		{"esc", 0x1B},
		{"backspace", 0x08},
		{"delete", 0x2E},
		{"home", 0x24},
		{"end", 0x23},
		{"pageup", 0x21},
		{"pagedown", 0x22},
		{"left", 0x25},
		{"up", 0x26},
		{"right", 0x27},
		{"down", 0x28},
		{"f1", 0x70},
		{"f12", 0x7B},
		{"F5", 0x74},
		{"ctrl", VKControl},
		{"control", VKControl},
		{"shift", VKShift},
		{"alt", VKMenu},
		{" space ", 0x20}, // surrounding whitespace
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vk, err := r.Resolve(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, vk)
		})
	}
}

func TestResolveUnknown(t *testing.T) {
	r := New()

	for _, name := range []string{"", "foo", "f13", "ctrlaltdel", "ä"} {
		_, err := r.Resolve(name)
		assert.ErrorIs(t, err, ErrUnsupportedKey, "name %q", name)
	}
}

func TestParseCombo(t *testing.T) {
	r := New()

	tests := []struct {
		name     string
		wantMods []VK
		wantKey  VK
	}{
		{"ctrl+c", []VK{VKControl}, 0x43},
		{"ctrl+shift+s", []VK{VKControl, VKShift}, 0x53},
		{"CTRL + ALT + F4", []VK{VKControl, VKMenu}, 0x73},
		{"alt+tab", []VK{VKMenu}, 0x09},
		{"r", nil, 0x52},
		{"space", nil, 0x20},
		{"shift", nil, VKShift}, // lone modifier is a plain press
		{"ctrl", nil, VKControl},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			combo, err := r.ParseCombo(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMods, combo.Modifiers)
			assert.Equal(t, tt.wantKey, combo.Primary)
		})
	}
}

func TestParseComboInvalid(t *testing.T) {
	r := New()

	tests := []string{
		"ctrl+shift", // ends in modifier
		"a+b",        // prefix not a modifier
		"ctrl+bogus", // unknown primary
		"bogus+a",    // unknown modifier
		"ctrl+alt+",  // empty tail
		"+a",         // empty prefix
	}

	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := r.ParseCombo(name)
			assert.ErrorIs(t, err, ErrInvalidCombination)
		})
	}
}

func TestValidate(t *testing.T) {
	r := New()

	assert.NoError(t, r.Validate("ctrl+alt+r"))
	assert.NoError(t, r.Validate("f9"))
	assert.Error(t, r.Validate("hyper+x"))
}
