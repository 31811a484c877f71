package fielddef

// EntityType identifies the section of the application a custom field is
// attached to.
type EntityType string

const (
	EntityEquipment   EntityType = "equipment"
	EntityCompany     EntityType = "company"
	EntityEmployee    EntityType = "employee"
	EntityService     EntityType = "service"
	EntityMaintenance EntityType = "maintenance"
	EntityQuotation   EntityType = "quotation"
	EntityInvoice     EntityType = "invoice"
	EntityBranch      EntityType = "branch"
)

// EntityTypes lists all recognized entity types in display order.
var EntityTypes = []EntityType{
	EntityEquipment,
	EntityCompany,
	EntityEmployee,
	EntityService,
	EntityMaintenance,
	EntityQuotation,
	EntityInvoice,
	EntityBranch,
}

// Known reports whether t is one of the recognized entity types. Unknown
// values are not an error anywhere: they simply match no fields.
func (t EntityType) Known() bool {
	for _, e := range EntityTypes {
		if t == e {
			return true
		}
	}
	return false
}

// FieldType determines which widget renders a field and which validation
// rules apply to it.
type FieldType string

const (
	TypeText     FieldType = "text"
	TypeNumber   FieldType = "number"
	TypeDate     FieldType = "date"
	TypeSelect   FieldType = "select"
	TypeBoolean  FieldType = "boolean"
	TypePassword FieldType = "password"
)

// Known reports whether t is a supported field type. Definitions with an
// unknown type are skipped by renderers, never rejected.
func (t FieldType) Known() bool {
	switch t {
	case TypeText, TypeNumber, TypeDate, TypeSelect, TypeBoolean, TypePassword:
		return true
	}
	return false
}

// DefaultCategory is the display bucket for fields without a category.
const DefaultCategory = "Campos Adicionales"

// Rules is the wire form of a field's validation rule set. Pointer fields
// distinguish "unset" from an explicit zero bound.
type Rules struct {
	MinLength    *int     `json:"min_length,omitempty" yaml:"min_length,omitempty" bson:"min_length,omitempty"`
	MaxLength    *int     `json:"max_length,omitempty" yaml:"max_length,omitempty" bson:"max_length,omitempty"`
	RegexPattern string   `json:"regex_pattern,omitempty" yaml:"regex_pattern,omitempty" bson:"regex_pattern,omitempty"`
	RegexMessage string   `json:"regex_message,omitempty" yaml:"regex_message,omitempty" bson:"regex_message,omitempty"`
	MinValue     *float64 `json:"min_value,omitempty" yaml:"min_value,omitempty" bson:"min_value,omitempty"`
	MaxValue     *float64 `json:"max_value,omitempty" yaml:"max_value,omitempty" bson:"max_value,omitempty"`
	MinDate      string   `json:"min_date,omitempty" yaml:"min_date,omitempty" bson:"min_date,omitempty"`
	MaxDate      string   `json:"max_date,omitempty" yaml:"max_date,omitempty" bson:"max_date,omitempty"`
}

// Constraint is the type-specific validation payload of a field. Exactly one
// concrete type applies per field type; select and boolean fields carry none.
type Constraint interface {
	constraint()
}

// TextRules constrains text and password fields.
type TextRules struct {
	MinLength    *int
	MaxLength    *int
	RegexPattern string
	RegexMessage string
}

// NumberRules constrains number fields.
type NumberRules struct {
	MinValue *float64
	MaxValue *float64
}

// DateRules constrains date fields. Bounds are ISO YYYY-MM-DD strings which
// order correctly under plain string comparison.
type DateRules struct {
	MinDate string
	MaxDate string
}

func (TextRules) constraint()   {}
func (NumberRules) constraint() {}
func (DateRules) constraint()   {}

// Constraint projects the wire rules onto the payload applicable to the
// given field type. Rule keys that do not apply to the type are dropped, so
// a stale min_length on a number field can never fire.
func (r *Rules) Constraint(t FieldType) Constraint {
	if r == nil {
		return nil
	}
	switch t {
	case TypeText, TypePassword:
		return TextRules{
			MinLength:    r.MinLength,
			MaxLength:    r.MaxLength,
			RegexPattern: r.RegexPattern,
			RegexMessage: r.RegexMessage,
		}
	case TypeNumber:
		return NumberRules{MinValue: r.MinValue, MaxValue: r.MaxValue}
	case TypeDate:
		return DateRules{MinDate: r.MinDate, MaxDate: r.MaxDate}
	default:
		return nil
	}
}

// FieldDefinition describes one administrator-authored custom field.
type FieldDefinition struct {
	ID          string     `json:"id" yaml:"id,omitempty"`
	EntityType  EntityType `json:"entity_type" yaml:"entity_type"`
	Name        string     `json:"name" yaml:"name"`
	FieldType   FieldType  `json:"field_type" yaml:"field_type"`
	Options     []string   `json:"options,omitempty" yaml:"options,omitempty"`
	Required    bool       `json:"required" yaml:"required,omitempty"`
	Category    string     `json:"category,omitempty" yaml:"category,omitempty"`
	Placeholder string     `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	HelpText    string     `json:"help_text,omitempty" yaml:"help_text,omitempty"`
	Validation  *Rules     `json:"validation,omitempty" yaml:"validation,omitempty"`
	IsActive    bool       `json:"is_active" yaml:"is_active,omitempty"`
}

// Bucket returns the display category, falling back to DefaultCategory.
func (f FieldDefinition) Bucket() string {
	if f.Category == "" {
		return DefaultCategory
	}
	return f.Category
}

// Values maps a FieldDefinition name to the scalar stored for one entity
// instance. The storage layer enforces no schema: values are interpreted
// against the current definitions at the render boundary.
type Values map[string]any

// With returns a copy of v with name set to value. The receiver is never
// mutated; callers that share value maps rely on this.
func (v Values) With(name string, value any) Values {
	out := make(Values, len(v)+1)
	for k, val := range v {
		out[k] = val
	}
	out[name] = value
	return out
}
