package proc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesName(t *testing.T) {
	tests := []struct {
		exe   string
		query string
		want  bool
	}{
		{"notepad.exe", "notepad", true},
		{"Notepad.exe", "NOTEPAD", true},
		{"Revolution Idle.exe", "revolution idle", true},
		{"Revolution Idle.exe", "idle", true},
		{"notepad.exe", "notepad.exe", true},
		{"notepad.exe", "wordpad", false},
		{"note", "notepad", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, matchesName(tt.exe, tt.query), "%q vs %q", tt.exe, tt.query)
	}
}
