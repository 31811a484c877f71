// Package validate implements the rule evaluation for custom field values.
// Validation is a pure function of (value, field definition); all messages
// are user-facing and localized the same way the rest of the application is.
package validate

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/inventia-dev/fieldset/internal/logger"
	"github.com/inventia-dev/fieldset/pkg/fielddef"
)

// DefaultRegexMessage is used when a pattern rule carries no custom message.
const DefaultRegexMessage = "Formato inválido"

// Field checks value against the field's validation rules and returns a
// user-facing message, or "" when the value is acceptable. Fields without
// rules, and rule keys that are unset, never produce an error.
func Field(value any, field fielddef.FieldDefinition) string {
	c := field.Validation.Constraint(field.FieldType)
	if c == nil {
		return ""
	}
	switch rules := c.(type) {
	case fielddef.TextRules:
		return text(stringify(value), rules)
	case fielddef.NumberRules:
		return number(stringify(value), rules)
	case fielddef.DateRules:
		return date(stringify(value), rules)
	default:
		return ""
	}
}

func text(s string, r fielddef.TextRules) string {
	if r.MinLength != nil && len([]rune(s)) < *r.MinLength {
		return fmt.Sprintf("Mínimo %d caracteres", *r.MinLength)
	}
	if r.MaxLength != nil && len([]rune(s)) > *r.MaxLength {
		return fmt.Sprintf("Máximo %d caracteres", *r.MaxLength)
	}
	if r.RegexPattern != "" && s != "" {
		re, err := regexp.Compile(r.RegexPattern)
		if err != nil {
			// An administrator saved a broken pattern. Treat it as no
			// constraint instead of breaking every form that embeds it.
			logger.L.Warn("invalid regex pattern in field rules", "pattern", r.RegexPattern, "err", err)
			return ""
		}
		if !re.MatchString(s) {
			if r.RegexMessage != "" {
				return r.RegexMessage
			}
			return DefaultRegexMessage
		}
	}
	return ""
}

func number(s string, r fielddef.NumberRules) string {
	if s == "" {
		return ""
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "Valor numérico inválido"
	}
	if r.MinValue != nil && n < *r.MinValue {
		return "Valor mínimo: " + formatNumber(*r.MinValue)
	}
	if r.MaxValue != nil && n > *r.MaxValue {
		return "Valor máximo: " + formatNumber(*r.MaxValue)
	}
	return ""
}

// date bounds are ISO YYYY-MM-DD strings, which sort correctly as plain
// strings, so no calendar parsing is needed.
func date(s string, r fielddef.DateRules) string {
	if s == "" {
		return ""
	}
	if r.MinDate != "" && s < r.MinDate {
		return "Fecha mínima: " + r.MinDate
	}
	if r.MaxDate != "" && s > r.MaxDate {
		return "Fecha máxima: " + r.MaxDate
	}
	return ""
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return formatNumber(s)
	default:
		return fmt.Sprint(v)
	}
}

// Map validates a whole value map against a set of field definitions and
// returns per-field messages keyed by field name. Only names present in the
// map are evaluated: an untouched field is never flagged here.
func Map(values fielddef.Values, fields []fielddef.FieldDefinition) map[string]string {
	byName := make(map[string]fielddef.FieldDefinition, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}
	errs := make(map[string]string)
	for name, v := range values {
		f, ok := byName[name]
		if !ok {
			continue
		}
		if msg := Field(v, f); msg != "" {
			errs[name] = msg
		}
	}
	return errs
}
