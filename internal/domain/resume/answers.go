package resume

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"venue-staff/internal/pkg/calendar"
)

var ErrInvalidAnswers = errors.New("invalid answers")

// FieldError describes one answer that failed validation.
type FieldError struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

type AnswersError struct {
	Fields []FieldError
}

func (e *AnswersError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Key+": "+f.Message)
	}
	return ErrInvalidAnswers.Error() + ": " + strings.Join(parts, "; ")
}

func (e *AnswersError) Unwrap() error { return ErrInvalidAnswers }

// ValidateAnswers checks submitted answers against the template and returns a
// cleaned copy holding only known keys with values coerced to their field type.
func ValidateAnswers(fields []Field, answers map[string]any) (map[string]any, error) {
	known := make(map[string]Field, len(fields))
	for _, f := range fields {
		known[f.Key] = f
	}

	var problems []FieldError
	for k := range answers {
		if _, ok := known[k]; !ok {
			problems = append(problems, FieldError{Key: k, Message: "unknown field"})
		}
	}

	out := make(map[string]any, len(fields))
	for _, f := range fields {
		raw, present := answers[f.Key]
		if !present || isBlank(raw) {
			if f.Required {
				problems = append(problems, FieldError{Key: f.Key, Message: "is required"})
			}
			continue
		}
		v, msg := coerce(f, raw)
		if msg != "" {
			problems = append(problems, FieldError{Key: f.Key, Message: msg})
			continue
		}
		out[f.Key] = v
	}

	if len(problems) > 0 {
		return nil, &AnswersError{Fields: problems}
	}
	return out, nil
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

func coerce(f Field, raw any) (any, string) {
	switch f.Type {
	case FieldCheckbox:
		switch t := raw.(type) {
		case bool:
			if f.Required && !t {
				return nil, "must be checked"
			}
			return t, ""
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(t))
			if err != nil {
				return nil, "must be true or false"
			}
			if f.Required && !b {
				return nil, "must be checked"
			}
			return b, ""
		}
		return nil, "must be true or false"
	case FieldNumber:
		switch t := raw.(type) {
		case float64:
			return t, ""
		case string:
			n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
			// ParseFloat accepts "NaN" and "Inf", which JSON cannot store.
			if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
				return nil, "must be a number"
			}
			return n, ""
		}
		return nil, "must be a number"
	}

	s, ok := raw.(string)
	if !ok {
		return nil, "must be text"
	}
	s = strings.TrimSpace(s)

	switch f.Type {
	case FieldEmail:
		if !LooksLikeEmail(s) {
			return nil, "must be an email address"
		}
		return strings.ToLower(s), ""
	case FieldDate:
		if _, err := calendar.ParseDate(s); err != nil {
			return nil, "must be a date (YYYY-MM-DD)"
		}
		return s, ""
	case FieldSelect:
		for _, o := range f.Options {
			if o == s {
				return s, ""
			}
		}
		return nil, fmt.Sprintf("must be one of %s", strings.Join(f.Options, ", "))
	case FieldPhone:
		digits := 0
		for _, r := range s {
			switch {
			case r >= '0' && r <= '9':
				digits++
			case r == '+' || r == '-' || r == ' ' || r == '(' || r == ')':
			default:
				return nil, "must be a phone number"
			}
		}
		if digits < 6 {
			return nil, "must be a phone number"
		}
		return s, ""
	}
	return s, ""
}

// LooksLikeEmail is a shape check: one @, non-empty local part, dotted domain.
func LooksLikeEmail(s string) bool {
	local, domain, ok := strings.Cut(s, "@")
	if !ok || local == "" || strings.Contains(domain, "@") {
		return false
	}
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1 && !strings.ContainsAny(s, " \t")
}
