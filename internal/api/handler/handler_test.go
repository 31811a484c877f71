package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/danielgtaylor/huma/v2/humatest"

	"github.com/inventia-dev/fieldset/internal/api/handler"
	"github.com/inventia-dev/fieldset/internal/repository/fields"
	"github.com/inventia-dev/fieldset/internal/repository/values"
	"github.com/inventia-dev/fieldset/pkg/fielddef"
)

// memStore is an in-memory fields.Store for handler tests.
type memStore struct {
	mu   sync.Mutex
	byID map[string]fielddef.FieldDefinition
	next int
}

func newMemStore() *memStore {
	return &memStore{byID: map[string]fielddef.FieldDefinition{}}
}

func (s *memStore) List(_ context.Context, entity fielddef.EntityType) ([]fielddef.FieldDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []fielddef.FieldDefinition
	for _, fd := range s.byID {
		if entity == "" || fd.EntityType == entity {
			out = append(out, fd)
		}
	}
	return out, nil
}

func (s *memStore) Get(_ context.Context, id string) (fielddef.FieldDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fd, ok := s.byID[id]
	if !ok {
		return fielddef.FieldDefinition{}, fields.ErrNotFound
	}
	return fd, nil
}

func (s *memStore) Create(_ context.Context, fd fielddef.FieldDefinition) (fielddef.FieldDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.IsActive && existing.EntityType == fd.EntityType && existing.Name == fd.Name {
			return fielddef.FieldDefinition{}, fields.ErrDuplicate
		}
	}
	s.next++
	fd.ID = fmt.Sprintf("id%d", s.next)
	fd.IsActive = true
	s.byID[fd.ID] = fd
	return fd, nil
}

func (s *memStore) Update(_ context.Context, id string, fd fielddef.FieldDefinition) (fielddef.FieldDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return fielddef.FieldDefinition{}, fields.ErrNotFound
	}
	fd.ID = id
	s.byID[id] = fd
	return fd, nil
}

func (s *memStore) Deactivate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fd, ok := s.byID[id]
	if !ok {
		return fields.ErrNotFound
	}
	fd.IsActive = false
	s.byID[id] = fd
	return nil
}

func (s *memStore) PurgeInactive(context.Context, time.Time) (int64, error) { return 0, nil }

func (s *memStore) CountActiveByEntity(context.Context) (map[string]int, error) {
	return map[string]int{}, nil
}

func TestCreateCustomField(t *testing.T) {
	_, api := humatest.New(t)
	store := newMemStore()
	handler.Register(api, &handler.CustomFieldHandler{Store: store})

	resp := api.Post("/v1/custom-fields", map[string]any{
		"entity_type": "equipment",
		"name":        "serie",
		"field_type":  "text",
		"required":    true,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}
	var fd fielddef.FieldDefinition
	if err := json.Unmarshal(resp.Body.Bytes(), &fd); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fd.ID == "" || !fd.IsActive || !fd.Required {
		t.Fatalf("created = %+v", fd)
	}
}

func TestCreateSelectWithoutOptions(t *testing.T) {
	_, api := humatest.New(t)
	handler.Register(api, &handler.CustomFieldHandler{Store: newMemStore()})

	resp := api.Post("/v1/custom-fields", map[string]any{
		"entity_type": "equipment",
		"name":        "marca",
		"field_type":  "select",
	})
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", resp.Code)
	}
}

func TestCreateDuplicateName(t *testing.T) {
	_, api := humatest.New(t)
	handler.Register(api, &handler.CustomFieldHandler{Store: newMemStore()})

	body := map[string]any{"entity_type": "equipment", "name": "serie", "field_type": "text"}
	if resp := api.Post("/v1/custom-fields", body); resp.Code != http.StatusCreated {
		t.Fatalf("first create: %d", resp.Code)
	}
	if resp := api.Post("/v1/custom-fields", body); resp.Code != http.StatusConflict {
		t.Fatalf("second create: %d", resp.Code)
	}
}

func TestUpdateNotFound(t *testing.T) {
	_, api := humatest.New(t)
	handler.Register(api, &handler.CustomFieldHandler{Store: newMemStore()})

	resp := api.Put("/v1/custom-fields/ghost", map[string]any{
		"entity_type": "equipment",
		"name":        "serie",
		"field_type":  "text",
	})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("status = %d", resp.Code)
	}
}

func TestUpdatePreservesActiveFlag(t *testing.T) {
	_, api := humatest.New(t)
	store := newMemStore()
	handler.Register(api, &handler.CustomFieldHandler{Store: store})

	resp := api.Post("/v1/custom-fields", map[string]any{
		"entity_type": "equipment", "name": "serie", "field_type": "text",
	})
	var fd fielddef.FieldDefinition
	if err := json.Unmarshal(resp.Body.Bytes(), &fd); err != nil {
		t.Fatalf("decode: %v", err)
	}

	resp = api.Put("/v1/custom-fields/"+fd.ID, map[string]any{
		"entity_type": "equipment", "name": "serie", "field_type": "text", "required": true,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}
	got, err := store.Get(context.Background(), fd.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsActive || !got.Required {
		t.Fatalf("updated = %+v", got)
	}
}

func TestDeleteDeactivates(t *testing.T) {
	_, api := humatest.New(t)
	store := newMemStore()
	handler.Register(api, &handler.CustomFieldHandler{Store: store})

	resp := api.Post("/v1/custom-fields", map[string]any{
		"entity_type": "equipment", "name": "serie", "field_type": "text",
	})
	var fd fielddef.FieldDefinition
	if err := json.Unmarshal(resp.Body.Bytes(), &fd); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp := api.Delete("/v1/custom-fields/" + fd.ID); resp.Code != http.StatusNoContent {
		t.Fatalf("status = %d", resp.Code)
	}
	got, err := store.Get(context.Background(), fd.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.IsActive {
		t.Fatal("delete must soft deactivate, not remove")
	}
	if resp := api.Delete("/v1/custom-fields/ghost"); resp.Code != http.StatusNotFound {
		t.Fatalf("status = %d", resp.Code)
	}
}

func TestListEmptyIsArray(t *testing.T) {
	_, api := humatest.New(t)
	handler.Register(api, &handler.CustomFieldHandler{Store: newMemStore()})

	resp := api.Get("/v1/custom-fields?entity_type=company")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	var out []fielddef.FieldDefinition
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("body %q: %v", resp.Body.String(), err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("out = %#v", out)
	}
}

func valuesRepo(t *testing.T) (*values.Repo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &values.Repo{DB: db, Driver: "postgres", TablePrefix: "cf_"}, mock
}

func seedFields(t *testing.T, store *memStore) {
	t.Helper()
	_, err := store.Create(context.Background(), fielddef.FieldDefinition{
		EntityType: fielddef.EntityEquipment,
		Name:       "serie",
		FieldType:  fielddef.TypeText,
		Validation: &fielddef.Rules{RegexPattern: `^[A-Z]{3}\d{3}$`},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestPutValuesRejectsInvalid(t *testing.T) {
	_, api := humatest.New(t)
	store := newMemStore()
	seedFields(t, store)
	repo, _ := valuesRepo(t)
	handler.RegisterValues(api, &handler.ValuesHandler{Fields: store, Values: repo})

	resp := api.Put("/v1/entities/equipment/eq1/custom-values", map[string]any{
		"serie": "lowercase",
	})
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}
}

func TestPutValuesStoresValid(t *testing.T) {
	_, api := humatest.New(t)
	store := newMemStore()
	seedFields(t, store)
	repo, mock := valuesRepo(t)
	mock.ExpectExec("INSERT INTO cf_custom_values").
		WillReturnResult(sqlmock.NewResult(1, 1))
	handler.RegisterValues(api, &handler.ValuesHandler{Fields: store, Values: repo})

	resp := api.Put("/v1/entities/equipment/eq1/custom-values", map[string]any{
		"serie": "ABC123",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet: %v", err)
	}
}

func TestValidateEndpoint(t *testing.T) {
	_, api := humatest.New(t)
	store := newMemStore()
	seedFields(t, store)
	repo, _ := valuesRepo(t)
	handler.RegisterValues(api, &handler.ValuesHandler{Fields: store, Values: repo})

	resp := api.Post("/v1/custom-fields/validate", map[string]any{
		"entity_type": "equipment",
		"values":      map[string]any{"serie": "nope"},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	var out struct {
		Valid  bool              `json:"valid"`
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Valid || out.Errors["serie"] == "" {
		t.Fatalf("out = %+v", out)
	}
}

func TestDisplayEndpoint(t *testing.T) {
	_, api := humatest.New(t)
	store := newMemStore()
	seedFields(t, store)
	repo, mock := valuesRepo(t)
	mock.ExpectQuery("SELECT data FROM cf_custom_values").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(`{"serie":"ABC123"}`))
	handler.RegisterValues(api, &handler.ValuesHandler{Fields: store, Values: repo})

	resp := api.Get("/v1/entities/equipment/eq1/custom-values/display")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}
	var sections []struct {
		Category string `json:"Category"`
		Rows     []struct {
			Name  string `json:"Name"`
			Value string `json:"Value"`
		} `json:"Rows"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &sections); err != nil {
		t.Fatalf("decode %q: %v", resp.Body.String(), err)
	}
	if len(sections) != 1 || sections[0].Rows[0].Value != "ABC123" {
		t.Fatalf("sections = %+v", sections)
	}
}
