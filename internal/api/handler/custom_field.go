package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inventia-dev/fieldset/internal/api/schema"
	"github.com/inventia-dev/fieldset/internal/audit"
	"github.com/inventia-dev/fieldset/internal/events"
	"github.com/inventia-dev/fieldset/internal/server/middleware"
	"github.com/inventia-dev/fieldset/internal/repository/fields"
	"github.com/inventia-dev/fieldset/pkg/fielddef"
)

// CustomFieldHandler serves the definition lifecycle.
type CustomFieldHandler struct {
	Store    fields.Store
	Recorder *audit.Recorder
}

type createInput struct {
	Body schema.CustomField
}

type fieldOutput struct {
	Body fielddef.FieldDefinition
}

type listParams struct {
	EntityType string `query:"entity_type"`
}

type listOutput struct {
	Body []fielddef.FieldDefinition
}

type updateInput struct {
	ID   string `path:"id"`
	Body schema.CustomField
}

type deleteInput struct {
	ID string `path:"id"`
}

// Register wires the definition endpoints.
func Register(api huma.API, h *CustomFieldHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "listCustomFields",
		Method:      http.MethodGet,
		Path:        "/v1/custom-fields",
		Summary:     "List custom fields",
		Tags:        []string{"CustomField"},
	}, h.list)
	huma.Register(api, huma.Operation{
		OperationID:   "createCustomField",
		Method:        http.MethodPost,
		Path:          "/v1/custom-fields",
		Summary:       "Create custom field",
		Tags:          []string{"CustomField"},
		Errors:        []int{http.StatusConflict, http.StatusUnprocessableEntity},
		DefaultStatus: http.StatusCreated,
	}, h.create)
	huma.Register(api, huma.Operation{
		OperationID: "updateCustomField",
		Method:      http.MethodPut,
		Path:        "/v1/custom-fields/{id}",
		Summary:     "Update custom field",
		Tags:        []string{"CustomField"},
		Errors:      []int{http.StatusConflict, http.StatusNotFound, http.StatusUnprocessableEntity},
	}, h.update)
	huma.Register(api, huma.Operation{
		OperationID:   "deleteCustomField",
		Method:        http.MethodDelete,
		Path:          "/v1/custom-fields/{id}",
		Summary:       "Delete custom field",
		Description:   "Deactivates the definition. Stored values survive but stop rendering.",
		Tags:          []string{"CustomField"},
		Errors:        []int{http.StatusNotFound},
		DefaultStatus: http.StatusNoContent,
	}, h.delete)
}

// list returns definitions including inactive ones; consumers filter on
// is_active so the admin screen can still show deactivated fields.
func (h *CustomFieldHandler) list(ctx context.Context, in *listParams) (*listOutput, error) {
	defs, err := h.Store.List(ctx, fielddef.EntityType(in.EntityType))
	if err != nil {
		return nil, err
	}
	if defs == nil {
		defs = []fielddef.FieldDefinition{}
	}
	return &listOutput{Body: defs}, nil
}

func checkBody(b schema.CustomField) error {
	if b.EntityType == "" {
		return huma.NewError(http.StatusUnprocessableEntity, "entity_type required", &huma.ErrorDetail{Location: "body.entity_type", Message: "required"})
	}
	if b.Name == "" {
		return huma.NewError(http.StatusUnprocessableEntity, "name required", &huma.ErrorDetail{Location: "body.name", Message: "required"})
	}
	if b.FieldType == "" {
		return huma.NewError(http.StatusUnprocessableEntity, "field_type required", &huma.ErrorDetail{Location: "body.field_type", Message: "required"})
	}
	if fielddef.FieldType(b.FieldType) == fielddef.TypeSelect && len(b.Options) == 0 {
		return huma.NewError(http.StatusUnprocessableEntity, "options required for select fields", &huma.ErrorDetail{Location: "body.options", Message: "required for select fields"})
	}
	return nil
}

func (h *CustomFieldHandler) create(ctx context.Context, in *createInput) (*fieldOutput, error) {
	if err := checkBody(in.Body); err != nil {
		return nil, err
	}
	fd, err := h.Store.Create(ctx, in.Body.Definition())
	if errors.Is(err, fields.ErrDuplicate) {
		return nil, huma.Error409Conflict(err.Error())
	}
	if err != nil {
		return nil, err
	}
	actor := middleware.UserFromContext(ctx)
	_ = h.Recorder.Write(ctx, actor, nil, &fd)
	events.Emit(ctx, events.Event{Name: events.FieldCreated, Time: time.Now(), Data: fd, ID: fd.ID})
	return &fieldOutput{Body: fd}, nil
}

func (h *CustomFieldHandler) update(ctx context.Context, in *updateInput) (*fieldOutput, error) {
	if err := checkBody(in.Body); err != nil {
		return nil, err
	}
	old, err := h.Store.Get(ctx, in.ID)
	if errors.Is(err, fields.ErrNotFound) {
		return nil, huma.Error404NotFound("campo no encontrado")
	}
	if err != nil {
		return nil, err
	}
	next := in.Body.Definition()
	if in.Body.IsActive == nil {
		next.IsActive = old.IsActive
	}
	fd, err := h.Store.Update(ctx, in.ID, next)
	if errors.Is(err, fields.ErrDuplicate) {
		return nil, huma.Error409Conflict(err.Error())
	}
	if err != nil {
		return nil, err
	}
	actor := middleware.UserFromContext(ctx)
	_ = h.Recorder.Write(ctx, actor, &old, &fd)
	events.Emit(ctx, events.Event{Name: events.FieldUpdated, Time: time.Now(), Data: map[string]any{"before": old, "after": fd}, ID: fd.ID})
	return &fieldOutput{Body: fd}, nil
}

func (h *CustomFieldHandler) delete(ctx context.Context, in *deleteInput) (*struct{}, error) {
	old, err := h.Store.Get(ctx, in.ID)
	if errors.Is(err, fields.ErrNotFound) {
		return nil, huma.Error404NotFound("campo no encontrado")
	}
	if err != nil {
		return nil, err
	}
	if err := h.Store.Deactivate(ctx, in.ID); err != nil {
		if errors.Is(err, fields.ErrNotFound) {
			return nil, huma.Error404NotFound("campo no encontrado")
		}
		return nil, err
	}
	actor := middleware.UserFromContext(ctx)
	_ = h.Recorder.Write(ctx, actor, &old, nil)
	events.Emit(ctx, events.Event{Name: events.FieldDeleted, Time: time.Now(), Data: map[string]string{"id": old.ID, "entity_type": string(old.EntityType), "name": old.Name}, ID: old.ID})
	return &struct{}{}, nil
}
