package formrender_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/inventia-dev/fieldset/pkg/fielddef"
	"github.com/inventia-dev/fieldset/pkg/formrender"
)

func intp(v int) *int { return &v }

func defs() []fielddef.FieldDefinition {
	return []fielddef.FieldDefinition{
		{Name: "serie", EntityType: fielddef.EntityEquipment, FieldType: fielddef.TypeText, Category: "A", IsActive: true},
		{Name: "peso", EntityType: fielddef.EntityEquipment, FieldType: fielddef.TypeNumber, Category: "B", IsActive: true},
		{Name: "marca", EntityType: fielddef.EntityEquipment, FieldType: fielddef.TypeSelect, Options: []string{"HP", "Dell"}, Category: "A", IsActive: true},
		{Name: "garantia", EntityType: fielddef.EntityEquipment, FieldType: fielddef.TypeBoolean, IsActive: true},
	}
}

func TestGroupsOrderAndBuckets(t *testing.T) {
	f := formrender.New(defs(), fielddef.Values{})
	groups := f.Groups()
	got := make([]string, 0, len(groups))
	for _, g := range groups {
		got = append(got, g.Category)
	}
	want := []string{"A", "B", fielddef.DefaultCategory}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("group order (-want +got):\n%s", diff)
	}
	if len(groups[0].Controls) != 2 {
		t.Fatalf("category A should hold serie and marca, got %d controls", len(groups[0].Controls))
	}
	if groups[0].Columns != formrender.GroupColumns {
		t.Fatalf("columns = %d", groups[0].Columns)
	}
}

func TestNewSkipsInactiveAndUnknownTypes(t *testing.T) {
	fields := append(defs(),
		fielddef.FieldDefinition{Name: "viejo", FieldType: fielddef.TypeText, IsActive: false},
		fielddef.FieldDefinition{Name: "raro", FieldType: "geo", IsActive: true},
	)
	f := formrender.New(fields, fielddef.Values{})
	for _, g := range f.Groups() {
		for _, c := range g.Controls {
			if c.Name == "viejo" || c.Name == "raro" {
				t.Fatalf("control %q should not render", c.Name)
			}
		}
	}
}

func TestWidgetDispatch(t *testing.T) {
	cases := map[fielddef.FieldType]string{
		fielddef.TypeText:     formrender.WidgetText,
		fielddef.TypeNumber:   formrender.WidgetNumber,
		fielddef.TypeDate:     formrender.WidgetDate,
		fielddef.TypeSelect:   formrender.WidgetSelect,
		fielddef.TypeBoolean:  formrender.WidgetCheckbox,
		fielddef.TypePassword: formrender.WidgetPassword,
	}
	for ft, want := range cases {
		if got := formrender.WidgetFor(ft); got != want {
			t.Fatalf("WidgetFor(%s) = %q, want %q", ft, got, want)
		}
	}
	if got := formrender.WidgetFor("geo"); got != "" {
		t.Fatalf("unknown type should map to no widget, got %q", got)
	}
}

func TestSetValidatesAndMerges(t *testing.T) {
	fields := []fielddef.FieldDefinition{
		{Name: "serie", FieldType: fielddef.TypeText, Validation: &fielddef.Rules{MinLength: intp(3)}, IsActive: true},
	}
	original := fielddef.Values{"otro": "x"}
	var lastValues fielddef.Values
	var lastValid bool
	f := formrender.New(fields, original,
		formrender.OnChange(func(v fielddef.Values) { lastValues = v }),
		formrender.OnValidity(func(ok bool) { lastValid = ok }),
	)

	f.Set("serie", "ab")
	if f.Valid() || lastValid {
		t.Fatal("short value must flip validity off")
	}
	if f.Errors()["serie"] != "Mínimo 3 caracteres" {
		t.Fatalf("errors = %v", f.Errors())
	}

	f.Set("serie", "abc")
	if !f.Valid() || !lastValid {
		t.Fatal("fixing the value must restore validity")
	}
	if lastValues["serie"] != "abc" || lastValues["otro"] != "x" {
		t.Fatalf("merged values = %v", lastValues)
	}
	if _, ok := original["serie"]; ok {
		t.Fatal("the caller's value map must never be mutated")
	}
}

func TestSetSelectPlaceholderClears(t *testing.T) {
	f := formrender.New(defs(), fielddef.Values{"marca": "HP"})
	f.Set("marca", formrender.SelectPlaceholder)
	if got := f.Values()["marca"]; got != "" {
		t.Fatalf("placeholder selection should clear the value, got %v", got)
	}
}

func TestSetUnknownNameIgnored(t *testing.T) {
	var calls int
	f := formrender.New(defs(), fielddef.Values{}, formrender.OnChange(func(fielddef.Values) { calls++ }))
	f.Set("inexistente", "x")
	if calls != 0 {
		t.Fatalf("edit on unknown field must be dropped, calls = %d", calls)
	}
}

func TestUntouchedRequiredFieldDoesNotBlock(t *testing.T) {
	fields := []fielddef.FieldDefinition{
		{Name: "serie", FieldType: fielddef.TypeText, Required: true, IsActive: true},
	}
	f := formrender.New(fields, fielddef.Values{})
	if !f.Valid() {
		t.Fatal("a field the user never touched must not count against validity")
	}
}

func TestBooleanChecked(t *testing.T) {
	if !formrender.Checked(true) || !formrender.Checked("true") {
		t.Fatal("true and \"true\" must both read as checked")
	}
	if formrender.Checked("yes") || formrender.Checked(1) || formrender.Checked(nil) {
		t.Fatal("anything else reads as unchecked")
	}
}

func TestControlBounds(t *testing.T) {
	fields := []fielddef.FieldDefinition{
		{Name: "compra", FieldType: fielddef.TypeDate, Validation: &fielddef.Rules{MinDate: "2020-01-01", MaxDate: "2025-12-31"}, IsActive: true},
	}
	f := formrender.New(fields, fielddef.Values{})
	c := f.Groups()[0].Controls[0]
	if c.MinDate != "2020-01-01" || c.MaxDate != "2025-12-31" {
		t.Fatalf("date bounds not mirrored: %+v", c)
	}
}

func TestToggleReveal(t *testing.T) {
	fields := []fielddef.FieldDefinition{
		{Name: "clave", FieldType: fielddef.TypePassword, IsActive: true},
	}
	f := formrender.New(fields, fielddef.Values{"clave": "s3cret"})
	if f.Groups()[0].Controls[0].Revealed {
		t.Fatal("passwords start hidden")
	}
	f.ToggleReveal("clave")
	if !f.Groups()[0].Controls[0].Revealed {
		t.Fatal("toggle should reveal")
	}
}
