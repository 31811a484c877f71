package validate_test

import (
	"testing"

	"github.com/inventia-dev/fieldset/pkg/fielddef"
	"github.com/inventia-dev/fieldset/pkg/validate"
)

func intp(v int) *int         { return &v }
func f64p(v float64) *float64 { return &v }

func textField(r *fielddef.Rules) fielddef.FieldDefinition {
	return fielddef.FieldDefinition{Name: "serie", FieldType: fielddef.TypeText, Validation: r, IsActive: true}
}

func TestFieldNoRules(t *testing.T) {
	fd := fielddef.FieldDefinition{Name: "nota", FieldType: fielddef.TypeText, IsActive: true}
	if msg := validate.Field("anything", fd); msg != "" {
		t.Fatalf("expected no error, got %q", msg)
	}
}

func TestFieldMinLength(t *testing.T) {
	fd := textField(&fielddef.Rules{MinLength: intp(5)})
	if msg := validate.Field("abcd", fd); msg != "Mínimo 5 caracteres" {
		t.Fatalf("got %q", msg)
	}
	if msg := validate.Field("abcde", fd); msg != "" {
		t.Fatalf("boundary length should pass, got %q", msg)
	}
}

func TestFieldMaxLength(t *testing.T) {
	fd := textField(&fielddef.Rules{MaxLength: intp(3)})
	if msg := validate.Field("abcd", fd); msg != "Máximo 3 caracteres" {
		t.Fatalf("got %q", msg)
	}
	if msg := validate.Field("abc", fd); msg != "" {
		t.Fatalf("boundary length should pass, got %q", msg)
	}
}

func TestFieldLengthCountsRunes(t *testing.T) {
	fd := textField(&fielddef.Rules{MaxLength: intp(4)})
	if msg := validate.Field("añoá", fd); msg != "" {
		t.Fatalf("4 runes should pass a max of 4, got %q", msg)
	}
}

func TestFieldRegex(t *testing.T) {
	fd := textField(&fielddef.Rules{RegexPattern: `^[A-Z]{3}\d{3}$`})
	if msg := validate.Field("ABC123", fd); msg != "" {
		t.Fatalf("matching value should pass, got %q", msg)
	}
	if msg := validate.Field("abc123", fd); msg != validate.DefaultRegexMessage {
		t.Fatalf("got %q", msg)
	}
}

func TestFieldRegexCustomMessage(t *testing.T) {
	fd := textField(&fielddef.Rules{RegexPattern: `^\d+$`, RegexMessage: "Solo dígitos"})
	if msg := validate.Field("12a", fd); msg != "Solo dígitos" {
		t.Fatalf("got %q", msg)
	}
}

func TestFieldRegexSkipsEmpty(t *testing.T) {
	fd := textField(&fielddef.Rules{RegexPattern: `^\d+$`})
	if msg := validate.Field("", fd); msg != "" {
		t.Fatalf("empty value must not hit the pattern, got %q", msg)
	}
}

func TestFieldRegexMalformedPattern(t *testing.T) {
	fd := textField(&fielddef.Rules{RegexPattern: "(unclosed"})
	if msg := validate.Field("whatever", fd); msg != "" {
		t.Fatalf("broken pattern must act as no constraint, got %q", msg)
	}
}

func TestFieldNumberBounds(t *testing.T) {
	fd := fielddef.FieldDefinition{
		Name:       "peso",
		FieldType:  fielddef.TypeNumber,
		Validation: &fielddef.Rules{MinValue: f64p(0), MaxValue: f64p(100)},
		IsActive:   true,
	}
	if msg := validate.Field("-1", fd); msg != "Valor mínimo: 0" {
		t.Fatalf("zero bound must count as set, got %q", msg)
	}
	if msg := validate.Field("100.5", fd); msg != "Valor máximo: 100" {
		t.Fatalf("got %q", msg)
	}
	if msg := validate.Field("0", fd); msg != "" {
		t.Fatalf("boundary should pass, got %q", msg)
	}
	if msg := validate.Field(float64(50), fd); msg != "" {
		t.Fatalf("numeric input should pass, got %q", msg)
	}
}

func TestFieldNumberUnparsable(t *testing.T) {
	fd := fielddef.FieldDefinition{
		Name:       "peso",
		FieldType:  fielddef.TypeNumber,
		Validation: &fielddef.Rules{MinValue: f64p(1)},
		IsActive:   true,
	}
	if msg := validate.Field("abc", fd); msg != "Valor numérico inválido" {
		t.Fatalf("got %q", msg)
	}
	if msg := validate.Field("", fd); msg != "" {
		t.Fatalf("empty number should pass, got %q", msg)
	}
}

func TestFieldDateBounds(t *testing.T) {
	fd := fielddef.FieldDefinition{
		Name:       "compra",
		FieldType:  fielddef.TypeDate,
		Validation: &fielddef.Rules{MinDate: "2020-01-01", MaxDate: "2025-12-31"},
		IsActive:   true,
	}
	if msg := validate.Field("2019-12-31", fd); msg != "Fecha mínima: 2020-01-01" {
		t.Fatalf("got %q", msg)
	}
	if msg := validate.Field("2026-01-01", fd); msg != "Fecha máxima: 2025-12-31" {
		t.Fatalf("got %q", msg)
	}
	if msg := validate.Field("2020-01-01", fd); msg != "" {
		t.Fatalf("boundary should pass, got %q", msg)
	}
}

func TestFieldRuleKeysDoNotCross(t *testing.T) {
	// A stale min_length on a number field must never fire.
	fd := fielddef.FieldDefinition{
		Name:       "peso",
		FieldType:  fielddef.TypeNumber,
		Validation: &fielddef.Rules{MinLength: intp(10)},
		IsActive:   true,
	}
	if msg := validate.Field("5", fd); msg != "" {
		t.Fatalf("got %q", msg)
	}
}

func TestMapOnlyTouchedNames(t *testing.T) {
	fields := []fielddef.FieldDefinition{
		textField(&fielddef.Rules{MinLength: intp(3)}),
		{Name: "peso", FieldType: fielddef.TypeNumber, Validation: &fielddef.Rules{MaxValue: f64p(10)}, IsActive: true},
	}
	errs := validate.Map(fielddef.Values{"serie": "ab", "desconocido": "x"}, fields)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if errs["serie"] != "Mínimo 3 caracteres" {
		t.Fatalf("got %q", errs["serie"])
	}
}
