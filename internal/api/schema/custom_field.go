package schema

import "github.com/inventia-dev/fieldset/pkg/fielddef"

// CustomField is the request body for creating or updating a field
// definition. Pointer fields distinguish "leave unset" from explicit values.
type CustomField struct {
	EntityType  string          `json:"entity_type"`
	Name        string          `json:"name"`
	FieldType   string          `json:"field_type"`
	Options     []string        `json:"options,omitempty"`
	Required    bool            `json:"required,omitempty"`
	Category    *string         `json:"category,omitempty"`
	Placeholder *string         `json:"placeholder,omitempty"`
	HelpText    *string         `json:"help_text,omitempty"`
	Validation  *fielddef.Rules `json:"validation,omitempty"`
	IsActive    *bool           `json:"is_active,omitempty"`
}

// Definition converts the wire form into the domain type. New definitions
// default to active; updates keep the stored flag unless the body sets it.
func (c CustomField) Definition() fielddef.FieldDefinition {
	fd := fielddef.FieldDefinition{
		EntityType: fielddef.EntityType(c.EntityType),
		Name:       c.Name,
		FieldType:  fielddef.FieldType(c.FieldType),
		Options:    c.Options,
		Required:   c.Required,
		Validation: c.Validation,
		IsActive:   true,
	}
	if c.Category != nil {
		fd.Category = *c.Category
	}
	if c.Placeholder != nil {
		fd.Placeholder = *c.Placeholder
	}
	if c.HelpText != nil {
		fd.HelpText = *c.HelpText
	}
	if c.IsActive != nil {
		fd.IsActive = *c.IsActive
	}
	return fd
}
