// Package values stores the custom-field value map attached to an entity
// instance. The map is opaque here; interpretation against the current
// definitions happens at the render boundary.
package values

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/inventia-dev/fieldset/pkg/fielddef"
)

// Repo persists one JSON document per (entity_type, entity_id).
type Repo struct {
	DB          *sql.DB
	Driver      string
	TablePrefix string
}

func (r *Repo) table() string { return r.TablePrefix + "custom_values" }

// Get returns the stored map, or an empty map when none exists yet.
func (r *Repo) Get(ctx context.Context, entity fielddef.EntityType, entityID string) (fielddef.Values, error) {
	q := fmt.Sprintf("SELECT data FROM %s WHERE entity_type=? AND entity_id=?", r.table())
	if r.Driver == "postgres" {
		q = fmt.Sprintf("SELECT data FROM %s WHERE entity_type=$1 AND entity_id=$2", r.table())
	}
	var raw string
	err := r.DB.QueryRowContext(ctx, q, string(entity), entityID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fielddef.Values{}, nil
	}
	if err != nil {
		return nil, err
	}
	vals := fielddef.Values{}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &vals); err != nil {
			return nil, fmt.Errorf("decode values for %s/%s: %w", entity, entityID, err)
		}
	}
	return vals, nil
}

// Put upserts the whole map for an entity instance.
func (r *Repo) Put(ctx context.Context, entity fielddef.EntityType, entityID string, vals fielddef.Values) error {
	data, err := json.Marshal(vals)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	var q string
	if r.Driver == "postgres" {
		q = fmt.Sprintf(`INSERT INTO %s (entity_type, entity_id, data, updated_at) VALUES ($1,$2,$3,$4)
			ON CONFLICT (entity_type, entity_id) DO UPDATE SET data=EXCLUDED.data, updated_at=EXCLUDED.updated_at`, r.table())
	} else {
		q = fmt.Sprintf(`INSERT INTO %s (entity_type, entity_id, data, updated_at) VALUES (?,?,?,?)
			ON DUPLICATE KEY UPDATE data=VALUES(data), updated_at=VALUES(updated_at)`, r.table())
	}
	_, err = r.DB.ExecContext(ctx, q, string(entity), entityID, string(data), now)
	return err
}

// Delete removes the map, used when the owning entity is deleted.
func (r *Repo) Delete(ctx context.Context, entity fielddef.EntityType, entityID string) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE entity_type=? AND entity_id=?", r.table())
	if r.Driver == "postgres" {
		q = fmt.Sprintf("DELETE FROM %s WHERE entity_type=$1 AND entity_id=$2", r.table())
	}
	_, err := r.DB.ExecContext(ctx, q, string(entity), entityID)
	return err
}
