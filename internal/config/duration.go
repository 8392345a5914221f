package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Duration is a time.Duration that marshals to and from the suffixed string
// forms "Nms", "Ns" and "Nm". A bare number is interpreted as milliseconds.
type Duration time.Duration

// Millisecond is the smallest accepted granularity.
const Millisecond = Duration(time.Millisecond)

// ParseDuration parses a duration value. Parsing is case-insensitive and
// surrounding whitespace is trimmed. Negative durations are errors.
func ParseDuration(s string) (Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, errors.New("empty duration")
	}

	unit := time.Millisecond
	digits := s
	switch {
	case strings.HasSuffix(s, "ms"):
		digits = s[:len(s)-2]
	case strings.HasSuffix(s, "s"):
		unit = time.Second
		digits = s[:len(s)-1]
	case strings.HasSuffix(s, "m"):
		unit = time.Minute
		digits = s[:len(s)-1]
	}

	n, err := strconv.ParseInt(strings.TrimSpace(digits), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	if n > math.MaxInt64/int64(unit) {
		return 0, fmt.Errorf("duration %q out of range", s)
	}
	return Duration(time.Duration(n) * unit), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String renders the most compact human form: whole minutes as "Nm", whole
// seconds as "Ns", otherwise "Nms".
func (d Duration) String() string {
	v := time.Duration(d)
	switch {
	case v != 0 && v%time.Minute == 0:
		return fmt.Sprintf("%dm", v/time.Minute)
	case v != 0 && v%time.Second == 0:
		return fmt.Sprintf("%ds", v/time.Second)
	default:
		return fmt.Sprintf("%dms", v/time.Millisecond)
	}
}

// MarshalJSON encodes the compact string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts either a suffixed string or a bare JSON number of
// milliseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		parsed, err := ParseDuration(v)
		if err != nil {
			return err
		}
		*d = parsed
	case float64:
		if v < 0 {
			return fmt.Errorf("negative duration %v", v)
		}
		if v > float64(math.MaxInt64/time.Millisecond) {
			return fmt.Errorf("duration %v out of range", v)
		}
		*d = Duration(time.Duration(v) * time.Millisecond)
	default:
		return fmt.Errorf("invalid duration value %v", raw)
	}
	return nil
}
