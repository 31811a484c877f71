package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/inventia-dev/fieldset/internal/session"
	"github.com/inventia-dev/fieldset/pkg/fielddef"
	"github.com/inventia-dev/fieldset/sdk/client"
)

func TestLoginStoresToken(t *testing.T) {
	session.Tokens.Clear()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Error(err)
		}
		if body["email"] != "admin@acme.mx" {
			t.Errorf("email = %q", body["email"])
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok123"})
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	tok, err := c.Login(context.Background(), "admin@acme.mx", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tok != "tok123" || session.Tokens.Get() != "tok123" {
		t.Fatalf("token = %q, stored = %q", tok, session.Tokens.Get())
	}
}

func TestListSendsBearer(t *testing.T) {
	session.Tokens.Clear()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok123" {
			t.Errorf("authorization = %q", got)
		}
		if got := r.URL.Query().Get("entity_type"); got != "equipment" {
			t.Errorf("entity_type = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]fielddef.FieldDefinition{
			{ID: "1", Name: "serie", EntityType: fielddef.EntityEquipment, FieldType: fielddef.TypeText, IsActive: true},
		})
	}))
	defer srv.Close()

	c := client.New(srv.URL, client.WithToken("tok123"))
	defs, err := c.List(context.Background(), fielddef.EntityEquipment)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(defs) != 1 || defs[0].Name != "serie" {
		t.Fatalf("defs = %v", defs)
	}
}

func TestUnauthorizedClearsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := client.New(srv.URL, client.WithToken("stale"))
	_, err := c.List(context.Background(), fielddef.EntityEquipment)
	if !errors.Is(err, client.ErrUnauthorized) {
		t.Fatalf("err = %v", err)
	}
	if session.Tokens.Get() != "" {
		t.Fatal("401 must clear the shared token store")
	}
}

func TestValidateReturnsErrorMap(t *testing.T) {
	session.Tokens.Clear()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/custom-fields/validate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"valid":  false,
			"errors": map[string]string{"serie": "Mínimo 3 caracteres"},
		})
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	errs, err := c.Validate(context.Background(), fielddef.EntityEquipment, fielddef.Values{"serie": "ab"})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if errs["serie"] != "Mínimo 3 caracteres" {
		t.Fatalf("errors = %v", errs)
	}
}

func TestDelete(t *testing.T) {
	session.Tokens.Clear()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/v1/custom-fields/id1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	if err := c.Delete(context.Background(), "id1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}
