// Package config provides configuration loading, saving and validation for
// the keystroke engine.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"keypulse/internal/keymap"
)

var (
	// ErrNoProcess is returned when no target process name is configured.
	ErrNoProcess = errors.New("no process name specified")

	// ErrNoKeys is returned when neither a key sequence nor independent
	// keys are configured.
	ErrNoKeys = errors.New("no key actions specified")

	// ErrBothModes is returned when both a key sequence and independent
	// keys are configured; the two modes are mutually exclusive.
	ErrBothModes = errors.New("key_sequence and independent_keys are mutually exclusive")
)

// Mode identifies which of the two execution modes a configuration selects.
type Mode int

const (
	// ModeSequential drives one timeline of (key, pause-after) steps.
	ModeSequential Mode = iota

	// ModeIndependent drives one periodic timer per key.
	ModeIndependent
)

// Step is one entry of a sequential key timeline.
type Step struct {
	// Key is the key or combination to press (e.g. "r", "ctrl+s").
	Key string `json:"key" validate:"required"`

	// IntervalAfter is the pause after pressing Key.
	IntervalAfter Duration `json:"interval_after"`
}

// Timer is one independently scheduled key.
type Timer struct {
	// Key is the key or combination to press.
	Key string `json:"key" validate:"required"`

	// Interval is the period between presses.
	Interval Duration `json:"interval"`
}

// Config is the full engine configuration. It is immutable once validated.
type Config struct {
	// ProcessName is matched case-insensitively as a substring against
	// process executable names.
	ProcessName string `json:"process_name" validate:"required"`

	// KeySequence holds the sequential-mode steps. Empty in independent mode.
	KeySequence []Step `json:"key_sequence"`

	// IndependentKeys holds the independent-mode timers. Empty in
	// sequential mode. Duplicate keys are separate timers.
	IndependentKeys []Timer `json:"independent_keys"`

	// MaxRetries bounds the window acquisition attempts.
	MaxRetries int `json:"max_retries" validate:"min=1"`

	// PauseHotkey is reserved for a future pause trigger. It is parsed and
	// validated but not acted upon.
	PauseHotkey string `json:"pause_hotkey"`

	// Verbose enables per-keystroke progress events.
	Verbose bool `json:"verbose"`

	// LoopSequence keeps sequential mode cycling after a full pass.
	LoopSequence bool `json:"loop_sequence"`

	// RepeatCount stops sequential mode after that many completed passes.
	// Zero means unbounded.
	RepeatCount int `json:"repeat_count" validate:"min=0"`
}

// Default returns a Config with the documented defaults.
func Default() *Config {
	return &Config{
		MaxRetries:   10,
		PauseHotkey:  "ctrl+alt+r",
		LoopSequence: true,
	}
}

// Load reads a configuration file. Fields absent from the file keep the
// defaults from Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to disk, durations in their most compact
// human form.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Mode reports which execution mode the configuration selects. Only
// meaningful after Validate.
func (c *Config) Mode() Mode {
	if len(c.IndependentKeys) > 0 {
		return ModeIndependent
	}
	return ModeSequential
}

func (m Mode) String() string {
	if m == ModeIndependent {
		return "independent"
	}
	return "sequential"
}

var structValidator = validator.New()

// Validate checks the configuration against the resolver. It fails fast,
// before any acquisition attempt.
func (c *Config) Validate(resolver *keymap.Resolver) error {
	if strings.TrimSpace(c.ProcessName) == "" {
		return ErrNoProcess
	}
	if len(c.KeySequence) == 0 && len(c.IndependentKeys) == 0 {
		return ErrNoKeys
	}
	if len(c.KeySequence) > 0 && len(c.IndependentKeys) > 0 {
		return ErrBothModes
	}

	if err := structValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	for i, step := range c.KeySequence {
		if err := resolver.Validate(step.Key); err != nil {
			return fmt.Errorf("key_sequence[%d]: %w", i, err)
		}
		if step.IntervalAfter < Millisecond {
			return fmt.Errorf("key_sequence[%d]: interval_after must be at least 1ms", i)
		}
	}
	for i, timer := range c.IndependentKeys {
		if err := resolver.Validate(timer.Key); err != nil {
			return fmt.Errorf("independent_keys[%d]: %w", i, err)
		}
		if timer.Interval < Millisecond {
			return fmt.Errorf("independent_keys[%d]: interval must be at least 1ms", i)
		}
	}

	if c.PauseHotkey != "" {
		if err := resolver.Validate(c.PauseHotkey); err != nil {
			return fmt.Errorf("pause_hotkey: %w", err)
		}
	}

	return nil
}

// ParseSequence parses the CLI sequence string "key:interval,key:interval".
// A bare "key" defaults the interval to 1s.
func ParseSequence(s string) ([]Step, error) {
	var steps []Step
	for _, part := range strings.Split(s, ",") {
		key, interval, err := parseKeyInterval(part)
		if err != nil {
			return nil, err
		}
		if key == "" {
			continue
		}
		steps = append(steps, Step{Key: key, IntervalAfter: interval})
	}
	if len(steps) == 0 {
		return nil, errors.New("empty key sequence")
	}
	return steps, nil
}

// ParseIndependent parses the CLI independent-keys string "key:interval;key:interval".
func ParseIndependent(s string) ([]Timer, error) {
	var timers []Timer
	for _, part := range strings.Split(s, ";") {
		key, interval, err := parseKeyInterval(part)
		if err != nil {
			return nil, err
		}
		if key == "" {
			continue
		}
		timers = append(timers, Timer{Key: key, Interval: interval})
	}
	if len(timers) == 0 {
		return nil, errors.New("empty independent keys")
	}
	return timers, nil
}

func parseKeyInterval(part string) (string, Duration, error) {
	part = strings.TrimSpace(part)
	if part == "" {
		return "", 0, nil
	}

	fields := strings.Split(part, ":")
	switch len(fields) {
	case 1:
		return strings.TrimSpace(fields[0]), 1000 * Millisecond, nil
	case 2:
		key := strings.TrimSpace(fields[0])
		interval, err := ParseDuration(fields[1])
		if err != nil {
			return "", 0, fmt.Errorf("invalid interval for key %q: %w", key, err)
		}
		return key, interval, nil
	default:
		return "", 0, fmt.Errorf("invalid key action %q, use 'key:interval' or 'key'", part)
	}
}
