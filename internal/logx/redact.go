package logx

import (
	"log/slog"
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?[0-9][0-9\-() ]{7,}[0-9]`)
	datePattern  = regexp.MustCompile(`[0-9]{4}-[0-9]{2}-[0-9]{2}`)
)

// RedactPII masks email addresses and phone numbers in s.
func RedactPII(s string) (redacted string, changed bool) {
	out := emailPattern.ReplaceAllString(s, "[REDACTED_EMAIL]")
	out = redactPhones(out)
	return out, out != s
}

func redactPhones(s string) string {
	matches := phonePattern.FindAllStringIndex(s, -1)
	if matches == nil {
		return s
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		if !phoneLike(s, m[0], m[1]) {
			continue
		}
		b.WriteString(s[last:m[0]])
		b.WriteString("[REDACTED_PHONE]")
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

// phoneLike reports whether s[start:end] looks like a phone number rather
// than part of a date, a clock value or an arbitrary long number.
func phoneLike(s string, start, end int) bool {
	m := s[start:end]
	if datePattern.MatchString(m) {
		return false
	}
	if (start > 0 && s[start-1] == ':') || (end < len(s) && s[end] == ':') {
		return false
	}
	digits := 0
	for _, r := range m {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7 && digits <= 15
}

// redactAttr is a slog ReplaceAttr hook. Request ids are left alone since
// they are generated, never client data.
func redactAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == "req_id" {
		return a
	}
	switch a.Value.Kind() {
	case slog.KindString:
		if out, changed := RedactPII(a.Value.String()); changed {
			return slog.String(a.Key, out)
		}
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			if out, changed := RedactPII(err.Error()); changed {
				return slog.String(a.Key, out)
			}
		}
	}
	return a
}
