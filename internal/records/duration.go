package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Duration is a session length. On the wire it is written as HH:MM:SS and
// read from a number of seconds, a Go duration ("90m"), a clock value
// ("01:30:00") or an interval literal ("1 hour 30 minutes"). Bare numbers
// are seconds, as in a PostgreSQL interval literal.
type Duration time.Duration

func (d Duration) Hours() float64 { return time.Duration(d).Hours() }

func (d Duration) String() string {
	total := int64(time.Duration(d) / time.Second)
	sign := ""
	if total < 0 {
		sign = "-"
		total = -total
	}
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, total/3600, (total/60)%60, total%60)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseDuration(s)
		if err != nil {
			return &ValidationError{Field: "duration", Reason: err.Error()}
		}
		*d = Duration(parsed)
		return nil
	}
	seconds, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return &ValidationError{Field: "duration", Reason: "must be a number of seconds or an interval string"}
	}
	parsed, err := scale(seconds, time.Second)
	if err != nil {
		return &ValidationError{Field: "duration", Reason: err.Error()}
	}
	*d = Duration(parsed)
	return nil
}

var errDurationTooLarge = errors.New("is too large")

// maxDurationFloat is 2^63, the first float64 outside the Duration range.
const maxDurationFloat = float64(math.MaxInt64)

// scale returns v units, failing when the product does not fit a Duration.
func scale(v float64, unit time.Duration) (time.Duration, error) {
	p := v * float64(unit)
	if math.IsNaN(p) || p >= maxDurationFloat || p <= -maxDurationFloat {
		return 0, errDurationTooLarge
	}
	return time.Duration(p), nil
}

func addDuration(total, d time.Duration) (time.Duration, error) {
	if (d > 0 && total > math.MaxInt64-d) || (d < 0 && total < math.MinInt64-d) {
		return 0, errDurationTooLarge
	}
	return total + d, nil
}

// ParseDuration parses the textual duration forms accepted by Duration.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	if strings.Contains(s, ":") && !strings.Contains(s, " ") {
		return parseClock(s)
	}
	if seconds, err := strconv.ParseFloat(s, 64); err == nil {
		return scale(seconds, time.Second)
	}
	return parseInterval(s)
}

func parseClock(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid clock duration %q", s)
	}
	var total time.Duration
	units := []time.Duration{time.Hour, time.Minute, time.Second}
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid clock duration %q", s)
		}
		d, err := scale(v, units[i])
		if err != nil {
			return 0, err
		}
		if total, err = addDuration(total, d); err != nil {
			return 0, err
		}
	}
	return total, nil
}

func parseInterval(s string) (time.Duration, error) {
	fields := strings.Fields(strings.ToLower(s))
	var total time.Duration
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		if strings.Contains(f, ":") {
			d, err := parseClock(f)
			if err != nil {
				return 0, err
			}
			if total, err = addDuration(total, d); err != nil {
				return 0, err
			}
			continue
		}
		if i+1 >= len(fields) {
			return 0, fmt.Errorf("invalid interval %q", s)
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid interval %q", s)
		}
		unit, ok := intervalUnit(fields[i+1])
		if !ok {
			return 0, fmt.Errorf("unknown interval unit %q", fields[i+1])
		}
		d, err := scale(v, unit)
		if err != nil {
			return 0, err
		}
		if total, err = addDuration(total, d); err != nil {
			return 0, err
		}
		i++
	}
	return total, nil
}

func intervalUnit(u string) (time.Duration, bool) {
	switch strings.TrimSuffix(u, ",") {
	case "day", "days", "d":
		return 24 * time.Hour, true
	case "hour", "hours", "hr", "hrs", "h":
		return time.Hour, true
	case "minute", "minutes", "min", "mins", "m":
		return time.Minute, true
	case "second", "seconds", "sec", "secs", "s":
		return time.Second, true
	default:
		return 0, false
	}
}
