// Package client provides REST access to the Fieldset API. The bearer
// token lives in the process-wide session store: it is read on every
// request and cleared the moment the API answers 401, so the embedding
// application can drop straight to its login flow.
package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/inventia-dev/fieldset/internal/session"
	"github.com/inventia-dev/fieldset/pkg/fielddef"
)

// ErrUnauthorized is returned when the API rejects the token. The shared
// token store has already been cleared when this error is seen.
var ErrUnauthorized = errors.New("unauthorized")

// Client provides REST access to the definition and validation endpoints.
type Client interface {
	Login(ctx context.Context, email, password string) (string, error)
	List(ctx context.Context, entity fielddef.EntityType) ([]fielddef.FieldDefinition, error)
	Create(ctx context.Context, fd fielddef.FieldDefinition) (fielddef.FieldDefinition, error)
	Update(ctx context.Context, id string, fd fielddef.FieldDefinition) (fielddef.FieldDefinition, error)
	Delete(ctx context.Context, id string) error
	Validate(ctx context.Context, entity fielddef.EntityType, values fielddef.Values) (map[string]string, error)
}

type client struct {
	base string
	http *resty.Client
}

// Option configures a Client.
type Option func(*client)

// WithToken seeds the shared token store, typically from a saved profile.
func WithToken(tok string) Option {
	return func(c *client) { session.Tokens.Init(tok) }
}

// New returns a new Client for the given base URL.
func New(base string, opts ...Option) Client {
	c := &client{base: base, http: resty.New()}
	c.http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if tok := session.Tokens.Get(); tok != "" && req.Header.Get("Authorization") == "" {
			req.SetAuthToken(tok)
		}
		return nil
	})
	for _, o := range opts {
		o(c)
	}
	return c
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// Login authenticates and stores the returned token for later calls.
func (c *client) Login(ctx context.Context, email, password string) (string, error) {
	var out loginResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		Post(c.base + "/v1/auth/login")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", restyErr(resp)
	}
	session.Tokens.Set(out.AccessToken)
	return out.AccessToken, nil
}

func (c *client) List(ctx context.Context, entity fielddef.EntityType) ([]fielddef.FieldDefinition, error) {
	var out []fielddef.FieldDefinition
	req := c.http.R().SetContext(ctx).SetResult(&out)
	if entity != "" {
		req.SetQueryParam("entity_type", string(entity))
	}
	resp, err := req.Get(c.base + "/v1/custom-fields")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, restyErr(resp)
	}
	return out, nil
}

func (c *client) Create(ctx context.Context, fd fielddef.FieldDefinition) (fielddef.FieldDefinition, error) {
	var out fielddef.FieldDefinition
	resp, err := c.http.R().SetContext(ctx).SetBody(fd).SetResult(&out).Post(c.base + "/v1/custom-fields")
	if err != nil {
		return fielddef.FieldDefinition{}, err
	}
	if resp.IsError() {
		return fielddef.FieldDefinition{}, restyErr(resp)
	}
	return out, nil
}

func (c *client) Update(ctx context.Context, id string, fd fielddef.FieldDefinition) (fielddef.FieldDefinition, error) {
	var out fielddef.FieldDefinition
	resp, err := c.http.R().SetContext(ctx).SetBody(fd).SetResult(&out).Put(c.base + "/v1/custom-fields/" + id)
	if err != nil {
		return fielddef.FieldDefinition{}, err
	}
	if resp.IsError() {
		return fielddef.FieldDefinition{}, restyErr(resp)
	}
	return out, nil
}

func (c *client) Delete(ctx context.Context, id string) error {
	resp, err := c.http.R().SetContext(ctx).Delete(c.base + "/v1/custom-fields/" + id)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return restyErr(resp)
	}
	return nil
}

type validateResponse struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

// Validate returns the per-field error map; an empty map means acceptable.
func (c *client) Validate(ctx context.Context, entity fielddef.EntityType, values fielddef.Values) (map[string]string, error) {
	var out validateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"entity_type": string(entity), "values": values}).
		SetResult(&out).
		Post(c.base + "/v1/custom-fields/validate")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, restyErr(resp)
	}
	if out.Errors == nil {
		out.Errors = map[string]string{}
	}
	return out.Errors, nil
}

func restyErr(resp *resty.Response) error {
	if resp.StatusCode() == 401 {
		session.Tokens.Clear()
		return ErrUnauthorized
	}
	return fmt.Errorf("%s", resp.Status())
}
