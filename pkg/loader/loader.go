// Package loader fetches the active custom field definitions for an entity
// type. Loading fails open: a form that cannot reach the definition store
// renders without custom fields instead of blocking the user.
package loader

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-resty/resty/v2"

	"github.com/inventia-dev/fieldset/internal/logger"
	"github.com/inventia-dev/fieldset/pkg/fielddef"
)

// Source retrieves raw field definitions, inactive ones included.
type Source interface {
	Fields(ctx context.Context, entity fielddef.EntityType) ([]fielddef.FieldDefinition, error)
}

// HTTPSource reads definitions from the REST API.
type HTTPSource struct {
	base string
	http *resty.Client
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithToken sets the Authorization token.
func WithToken(tok string) HTTPOption {
	return func(s *HTTPSource) { s.http.SetAuthToken(tok) }
}

// NewHTTPSource returns a Source backed by the API at base.
func NewHTTPSource(base string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{base: base, http: resty.New()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Fields fetches all definitions for the entity type. Unrecognized entity
// types are passed through unchanged and simply yield an empty result.
func (s *HTTPSource) Fields(ctx context.Context, entity fielddef.EntityType) ([]fielddef.FieldDefinition, error) {
	var out []fielddef.FieldDefinition
	resp, err := s.http.R().
		SetContext(ctx).
		SetQueryParam("entity_type", string(entity)).
		SetResult(&out).
		Get(s.base + "/v1/custom-fields")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("custom-fields: %s", resp.Status())
	}
	return out, nil
}

// Loader filters a Source down to active definitions. With caching enabled
// it keeps one result per entity type; Invalidate restores read-after-write
// consistency after a definition change.
type Loader struct {
	src   Source
	mu    sync.Mutex
	cache map[fielddef.EntityType][]fielddef.FieldDefinition
}

// Option configures a Loader.
type Option func(*Loader)

// WithCache enables the per-entity-type cache.
func WithCache() Option {
	return func(l *Loader) {
		l.cache = make(map[fielddef.EntityType][]fielddef.FieldDefinition)
	}
}

// New returns a Loader over src.
func New(src Source, opts ...Option) *Loader {
	l := &Loader{src: src}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Active returns the active definitions for the entity type. Errors are
// logged and reported as an empty set.
func (l *Loader) Active(ctx context.Context, entity fielddef.EntityType) []fielddef.FieldDefinition {
	if l.cache != nil {
		l.mu.Lock()
		cached, ok := l.cache[entity]
		l.mu.Unlock()
		if ok {
			return cached
		}
	}
	all, err := l.src.Fields(ctx, entity)
	if err != nil {
		logger.L.Error("load custom fields", "entity_type", entity, "err", err)
		return nil
	}
	active := make([]fielddef.FieldDefinition, 0, len(all))
	for _, f := range all {
		if f.IsActive {
			active = append(active, f)
		}
	}
	if l.cache != nil {
		l.mu.Lock()
		l.cache[entity] = active
		l.mu.Unlock()
	}
	return active
}

// Invalidate drops the cached result for the entity type.
func (l *Loader) Invalidate(entity fielddef.EntityType) {
	if l.cache == nil {
		return
	}
	l.mu.Lock()
	delete(l.cache, entity)
	l.mu.Unlock()
}
