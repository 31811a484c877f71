package handler

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inventia-dev/fieldset/internal/repository/fields"
	"github.com/inventia-dev/fieldset/internal/repository/values"
	"github.com/inventia-dev/fieldset/pkg/display"
	"github.com/inventia-dev/fieldset/pkg/fielddef"
	"github.com/inventia-dev/fieldset/pkg/metrics"
	"github.com/inventia-dev/fieldset/pkg/validate"
)

// ValuesHandler serves the custom-field value map attached to an entity
// instance, plus the server-side validation twin of the form engine.
type ValuesHandler struct {
	Fields fields.Store
	Values *values.Repo
}

type valuesKey struct {
	EntityType string `path:"entity_type"`
	EntityID   string `path:"entity_id"`
}

type valuesOutput struct {
	Body fielddef.Values
}

type putValuesInput struct {
	EntityType string `path:"entity_type"`
	EntityID   string `path:"entity_id"`
	Body       fielddef.Values
}

type displayOutput struct {
	Body []display.Section
}

type validateBody struct {
	EntityType string          `json:"entity_type"`
	Values     fielddef.Values `json:"values"`
}

type validateInput struct {
	Body validateBody
}

type validateResult struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

type validateOutput struct {
	Body validateResult
}

// RegisterValues wires the value endpoints.
func RegisterValues(api huma.API, h *ValuesHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "getCustomValues",
		Method:      http.MethodGet,
		Path:        "/v1/entities/{entity_type}/{entity_id}/custom-values",
		Summary:     "Get custom field values",
		Tags:        []string{"CustomValues"},
	}, h.get)
	huma.Register(api, huma.Operation{
		OperationID: "putCustomValues",
		Method:      http.MethodPut,
		Path:        "/v1/entities/{entity_type}/{entity_id}/custom-values",
		Summary:     "Store custom field values",
		Tags:        []string{"CustomValues"},
		Errors:      []int{http.StatusUnprocessableEntity},
	}, h.put)
	huma.Register(api, huma.Operation{
		OperationID: "displayCustomValues",
		Method:      http.MethodGet,
		Path:        "/v1/entities/{entity_type}/{entity_id}/custom-values/display",
		Summary:     "Render custom field values for read-only display",
		Tags:        []string{"CustomValues"},
	}, h.display)
	huma.Register(api, huma.Operation{
		OperationID: "validateCustomValues",
		Method:      http.MethodPost,
		Path:        "/v1/custom-fields/validate",
		Summary:     "Validate a value map against an entity type's schema",
		Tags:        []string{"CustomField"},
	}, h.validate)
}

func (h *ValuesHandler) get(ctx context.Context, in *valuesKey) (*valuesOutput, error) {
	vals, err := h.Values.Get(ctx, fielddef.EntityType(in.EntityType), in.EntityID)
	if err != nil {
		return nil, err
	}
	return &valuesOutput{Body: vals}, nil
}

// active returns the active definitions, or nil on storage error, matching
// the loader's fail-open posture for reads. Writes do not fail open: a
// storage error surfaces to the caller.
func (h *ValuesHandler) active(ctx context.Context, entity fielddef.EntityType) ([]fielddef.FieldDefinition, error) {
	all, err := h.Fields.List(ctx, entity)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, f := range all {
		if f.IsActive {
			out = append(out, f)
		}
	}
	return out, nil
}

func (h *ValuesHandler) put(ctx context.Context, in *putValuesInput) (*valuesOutput, error) {
	entity := fielddef.EntityType(in.EntityType)
	defs, err := h.active(ctx, entity)
	if err != nil {
		return nil, err
	}
	if errs := validate.Map(in.Body, defs); len(errs) > 0 {
		metrics.ValidationFailures.WithLabelValues(in.EntityType).Inc()
		details := make([]error, 0, len(errs))
		for name, msg := range errs {
			details = append(details, &huma.ErrorDetail{Location: "body." + name, Message: msg})
		}
		return nil, huma.NewError(http.StatusUnprocessableEntity, "valores inválidos", details...)
	}
	if err := h.Values.Put(ctx, entity, in.EntityID, in.Body); err != nil {
		return nil, err
	}
	return &valuesOutput{Body: in.Body}, nil
}

func (h *ValuesHandler) display(ctx context.Context, in *valuesKey) (*displayOutput, error) {
	entity := fielddef.EntityType(in.EntityType)
	defs, err := h.active(ctx, entity)
	if err != nil {
		return nil, err
	}
	vals, err := h.Values.Get(ctx, entity, in.EntityID)
	if err != nil {
		return nil, err
	}
	sections := display.New(defs, vals).Sections()
	if sections == nil {
		sections = []display.Section{}
	}
	return &displayOutput{Body: sections}, nil
}

func (h *ValuesHandler) validate(ctx context.Context, in *validateInput) (*validateOutput, error) {
	defs, err := h.active(ctx, fielddef.EntityType(in.Body.EntityType))
	if err != nil {
		return nil, err
	}
	errs := validate.Map(in.Body.Values, defs)
	if len(errs) > 0 {
		metrics.ValidationFailures.WithLabelValues(in.Body.EntityType).Inc()
	}
	return &validateOutput{Body: validateResult{Valid: len(errs) == 0, Errors: errs}}, nil
}
