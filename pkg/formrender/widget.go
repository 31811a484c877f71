package formrender

import "github.com/inventia-dev/fieldset/pkg/fielddef"

// Widget identifiers consumed by the frontend widget loader. The plugin://
// namespace matches the client's dynamic widget registry.
const (
	WidgetText     = "plugin://text-input"
	WidgetNumber   = "plugin://number-input"
	WidgetDate     = "plugin://date-input"
	WidgetSelect   = "plugin://select"
	WidgetCheckbox = "plugin://checkbox"
	WidgetPassword = "plugin://password-input"
)

// WidgetFor maps a field type to its widget identifier. The empty string
// means "no widget": unknown field types render nothing rather than failing.
func WidgetFor(t fielddef.FieldType) string {
	switch t {
	case fielddef.TypeText:
		return WidgetText
	case fielddef.TypeNumber:
		return WidgetNumber
	case fielddef.TypeDate:
		return WidgetDate
	case fielddef.TypeSelect:
		return WidgetSelect
	case fielddef.TypeBoolean:
		return WidgetCheckbox
	case fielddef.TypePassword:
		return WidgetPassword
	default:
		return ""
	}
}

// Checked coerces a stored boolean value. Older clients persisted the
// literal string "true", so both forms count as checked.
func Checked(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return v == "true"
}
