// Package formrender builds editable form models from custom field
// definitions. It owns the per-field error map and the aggregate validity
// signal; the value map itself belongs to the embedding form and is only
// ever replaced, never mutated in place.
package formrender

import (
	"github.com/inventia-dev/fieldset/pkg/fielddef"
	"github.com/inventia-dev/fieldset/pkg/validate"
)

// SelectPlaceholder is the sentinel option value representing "nothing
// selected". It is distinct from the empty string; choosing it clears the
// stored value.
const SelectPlaceholder = "placeholder"

// GroupColumns is the layout hint for every category section.
const GroupColumns = 2

// Control is the render model for a single field.
type Control struct {
	Name        string
	Type        fielddef.FieldType
	Widget      string
	Value       any
	Error       string
	Required    bool
	Placeholder string
	HelpText    string
	Options     []string
	// Native bounds mirroring the validation rules at the control level.
	MaxLength *int
	Min       *float64
	Max       *float64
	MinDate   string
	MaxDate   string
	// Checked is the coerced state for boolean controls.
	Checked bool
	// Revealed reports whether a password control currently shows its value.
	Revealed bool
}

// Group is one category section of the form.
type Group struct {
	Category string
	Columns  int
	Controls []Control
}

// ChangeFunc receives the full value map after every edit.
type ChangeFunc func(fielddef.Values)

// ValidityFunc receives the aggregate "all edited fields valid" signal.
type ValidityFunc func(bool)

// Form wires field definitions, the externally-owned value map and the
// validation engine together.
type Form struct {
	fields     []fielddef.FieldDefinition
	values     fielddef.Values
	errors     map[string]string
	revealed   map[string]bool
	onChange   ChangeFunc
	onValidity ValidityFunc
}

// Option configures a Form.
type Option func(*Form)

// OnChange registers the change callback.
func OnChange(fn ChangeFunc) Option {
	return func(f *Form) { f.onChange = fn }
}

// OnValidity registers the validity callback.
func OnValidity(fn ValidityFunc) Option {
	return func(f *Form) { f.onValidity = fn }
}

// New builds a form over the given definitions. Inactive definitions and
// unknown field types are dropped up front so they can never surface a
// control or an error.
func New(fields []fielddef.FieldDefinition, values fielddef.Values, opts ...Option) *Form {
	f := &Form{
		values:   values,
		errors:   make(map[string]string),
		revealed: make(map[string]bool),
	}
	for _, fd := range fields {
		if !fd.IsActive || !fd.FieldType.Known() {
			continue
		}
		f.fields = append(f.fields, fd)
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

func (f *Form) find(name string) (fielddef.FieldDefinition, bool) {
	for _, fd := range f.fields {
		if fd.Name == name {
			return fd, true
		}
	}
	return fielddef.FieldDefinition{}, false
}

// Set records a user edit: the value is validated, the per-field error map
// updated, the validity callback notified with the aggregate state, and the
// change callback called with a fresh merged value map.
func (f *Form) Set(name string, value any) {
	fd, ok := f.find(name)
	if !ok {
		return
	}
	if fd.FieldType == fielddef.TypeSelect && value == SelectPlaceholder {
		value = ""
	}
	if msg := validate.Field(value, fd); msg != "" {
		f.errors[name] = msg
	} else {
		delete(f.errors, name)
	}
	f.values = f.values.With(name, value)
	if f.onValidity != nil {
		f.onValidity(len(f.errors) == 0)
	}
	if f.onChange != nil {
		f.onChange(f.values)
	}
}

// Valid reports whether every field edited so far passed validation. Fields
// the user has not touched do not count against validity, required or not.
func (f *Form) Valid() bool { return len(f.errors) == 0 }

// Errors returns a copy of the current per-field error messages.
func (f *Form) Errors() map[string]string {
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// Values returns the current value map.
func (f *Form) Values() fielddef.Values { return f.values }

// ToggleReveal flips the show/hide state of a password control. The state is
// local to this form instance and is never persisted.
func (f *Form) ToggleReveal(name string) {
	f.revealed[name] = !f.revealed[name]
}

// Groups partitions the form's fields by category, preserving field order
// within each group and group order by first appearance. Fields without a
// category land in the default bucket.
func (f *Form) Groups() []Group {
	var order []string
	byCat := make(map[string][]Control)
	for _, fd := range f.fields {
		cat := fd.Bucket()
		if _, seen := byCat[cat]; !seen {
			order = append(order, cat)
		}
		byCat[cat] = append(byCat[cat], f.control(fd))
	}
	groups := make([]Group, 0, len(order))
	for _, cat := range order {
		groups = append(groups, Group{Category: cat, Columns: GroupColumns, Controls: byCat[cat]})
	}
	return groups
}

func (f *Form) control(fd fielddef.FieldDefinition) Control {
	value, ok := f.values[fd.Name]
	if !ok || value == nil {
		value = ""
	}
	c := Control{
		Name:        fd.Name,
		Type:        fd.FieldType,
		Widget:      WidgetFor(fd.FieldType),
		Value:       value,
		Error:       f.errors[fd.Name],
		Required:    fd.Required,
		Placeholder: fd.Placeholder,
		HelpText:    fd.HelpText,
	}
	switch rules := fd.Validation.Constraint(fd.FieldType).(type) {
	case fielddef.TextRules:
		c.MaxLength = rules.MaxLength
	case fielddef.NumberRules:
		c.Min = rules.MinValue
		c.Max = rules.MaxValue
	case fielddef.DateRules:
		c.MinDate = rules.MinDate
		c.MaxDate = rules.MaxDate
	}
	switch fd.FieldType {
	case fielddef.TypeSelect:
		c.Options = fd.Options
	case fielddef.TypeBoolean:
		c.Checked = Checked(value)
	case fielddef.TypePassword:
		c.Revealed = f.revealed[fd.Name]
	}
	return c
}
