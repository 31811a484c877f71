// Package display renders stored custom field values for read-only views.
// It never validates: stale values for deleted or retyped fields simply
// render as text, and absent values render nothing at all.
package display

import (
	"fmt"
	"strconv"

	"github.com/inventia-dev/fieldset/pkg/fielddef"
	"github.com/inventia-dev/fieldset/pkg/formrender"
)

// Mask replaces password values until the viewer reveals them.
const Mask = "••••••••"

// Localized boolean labels.
const (
	LabelYes = "Sí"
	LabelNo  = "No"
)

// Row is one name/value line of the read-only view.
type Row struct {
	Name  string
	Value string
	Type  fielddef.FieldType
	// Secret marks password rows, which carry their own reveal toggle.
	Secret   bool
	Revealed bool
}

// Section groups rows by category.
type Section struct {
	Category string
	Rows     []Row
}

// View renders a snapshot of values against the current definitions. Its
// reveal state is independent from any editor form showing the same fields.
type View struct {
	fields   []fielddef.FieldDefinition
	values   fielddef.Values
	revealed map[string]bool
}

// New builds a view over active definitions only.
func New(fields []fielddef.FieldDefinition, values fielddef.Values) *View {
	v := &View{values: values, revealed: make(map[string]bool)}
	for _, fd := range fields {
		if !fd.IsActive || !fd.FieldType.Known() {
			continue
		}
		v.fields = append(v.fields, fd)
	}
	return v
}

// ToggleReveal flips the show/hide state of one password row.
func (v *View) ToggleReveal(name string) {
	v.revealed[name] = !v.revealed[name]
}

// Sections returns the grouped rows. Fields whose value is absent, nil or
// the empty string are skipped; when nothing remains the result is empty and
// the caller renders no block at all.
func (v *View) Sections() []Section {
	var order []string
	byCat := make(map[string][]Row)
	for _, fd := range v.fields {
		value, ok := v.values[fd.Name]
		if !ok || value == nil || value == "" {
			continue
		}
		row := Row{Name: fd.Name, Type: fd.FieldType}
		switch fd.FieldType {
		case fielddef.TypeBoolean:
			if formrender.Checked(value) {
				row.Value = LabelYes
			} else {
				row.Value = LabelNo
			}
		case fielddef.TypePassword:
			row.Secret = true
			row.Revealed = v.revealed[fd.Name]
			if row.Revealed {
				row.Value = format(value)
			} else {
				row.Value = Mask
			}
		default:
			row.Value = format(value)
		}
		cat := fd.Bucket()
		if _, seen := byCat[cat]; !seen {
			order = append(order, cat)
		}
		byCat[cat] = append(byCat[cat], row)
	}
	sections := make([]Section, 0, len(order))
	for _, cat := range order {
		sections = append(sections, Section{Category: cat, Rows: byCat[cat]})
	}
	return sections
}

func format(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		// JSON numbers arrive as float64; render 42 as "42", not "42.000000".
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(v)
	}
}
