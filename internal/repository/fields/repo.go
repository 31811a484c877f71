// Package fields persists custom field definitions. Definitions are soft
// deleted: DELETE flips is_active so stored values keep rendering nothing
// instead of dangling, and a retention job purges old inactive rows.
package fields

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/inventia-dev/fieldset/pkg/fielddef"
)

var (
	// ErrNotFound is returned when no definition matches the id.
	ErrNotFound = errors.New("field definition not found")
	// ErrDuplicate is returned when an active definition already uses the
	// name within the entity type. The name doubles as the value-map key,
	// so a collision would silently overwrite values.
	ErrDuplicate = errors.New("field name already in use for entity type")
)

// Store is implemented by the SQL and Mongo backed repositories.
type Store interface {
	List(ctx context.Context, entity fielddef.EntityType) ([]fielddef.FieldDefinition, error)
	Get(ctx context.Context, id string) (fielddef.FieldDefinition, error)
	Create(ctx context.Context, fd fielddef.FieldDefinition) (fielddef.FieldDefinition, error)
	Update(ctx context.Context, id string, fd fielddef.FieldDefinition) (fielddef.FieldDefinition, error)
	Deactivate(ctx context.Context, id string) error
	PurgeInactive(ctx context.Context, before time.Time) (int64, error)
	CountActiveByEntity(ctx context.Context) (map[string]int, error)
}

// Repo is the SQL implementation of Store. Driver is "postgres" or "mysql".
type Repo struct {
	DB          *sql.DB
	Driver      string
	TablePrefix string
}

func (r *Repo) table() string { return r.TablePrefix + "custom_fields" }

const selectCols = "id, entity_type, name, field_type, options, required, category, placeholder, help_text, validation, is_active"

// List returns definitions for the entity type, inactive ones included;
// filtering on is_active happens client-side in the loader. An empty entity
// type returns every definition.
func (r *Repo) List(ctx context.Context, entity fielddef.EntityType) ([]fielddef.FieldDefinition, error) {
	q := fmt.Sprintf("SELECT %s FROM %s", selectCols, r.table())
	var args []any
	if entity != "" {
		if r.Driver == "postgres" {
			q += " WHERE entity_type=$1"
		} else {
			q += " WHERE entity_type=?"
		}
		args = append(args, string(entity))
	}
	q += " ORDER BY created_at, name"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []fielddef.FieldDefinition
	for rows.Next() {
		fd, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, fd)
	}
	return out, rows.Err()
}

// Get returns one definition by id.
func (r *Repo) Get(ctx context.Context, id string) (fielddef.FieldDefinition, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE id=?", selectCols, r.table())
	if r.Driver == "postgres" {
		q = fmt.Sprintf("SELECT %s FROM %s WHERE id=$1", selectCols, r.table())
	}
	row := r.DB.QueryRowContext(ctx, q, id)
	fd, err := scanField(row)
	if errors.Is(err, sql.ErrNoRows) {
		return fielddef.FieldDefinition{}, ErrNotFound
	}
	return fd, err
}

// Create inserts a new active definition, assigning its id.
func (r *Repo) Create(ctx context.Context, fd fielddef.FieldDefinition) (fielddef.FieldDefinition, error) {
	taken, err := r.nameTaken(ctx, fd.EntityType, fd.Name, "")
	if err != nil {
		return fielddef.FieldDefinition{}, err
	}
	if taken {
		return fielddef.FieldDefinition{}, ErrDuplicate
	}
	fd.ID = uuid.NewString()
	fd.IsActive = true
	options, validation, err := encodeJSON(fd)
	if err != nil {
		return fielddef.FieldDefinition{}, err
	}
	q := fmt.Sprintf("INSERT INTO %s (id, entity_type, name, field_type, options, required, category, placeholder, help_text, validation, is_active, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)", r.table())
	if r.Driver == "postgres" {
		q = fmt.Sprintf("INSERT INTO %s (id, entity_type, name, field_type, options, required, category, placeholder, help_text, validation, is_active, created_at, updated_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)", r.table())
	}
	now := time.Now().UTC()
	_, err = r.DB.ExecContext(ctx, q,
		fd.ID, string(fd.EntityType), fd.Name, string(fd.FieldType),
		options, fd.Required, nullStr(fd.Category), nullStr(fd.Placeholder),
		nullStr(fd.HelpText), validation, true, now, now)
	if err != nil {
		return fielddef.FieldDefinition{}, err
	}
	return fd, nil
}

// Update replaces a definition's mutable attributes.
func (r *Repo) Update(ctx context.Context, id string, fd fielddef.FieldDefinition) (fielddef.FieldDefinition, error) {
	taken, err := r.nameTaken(ctx, fd.EntityType, fd.Name, id)
	if err != nil {
		return fielddef.FieldDefinition{}, err
	}
	if taken {
		return fielddef.FieldDefinition{}, ErrDuplicate
	}
	fd.ID = id
	options, validation, err := encodeJSON(fd)
	if err != nil {
		return fielddef.FieldDefinition{}, err
	}
	q := fmt.Sprintf("UPDATE %s SET entity_type=?, name=?, field_type=?, options=?, required=?, category=?, placeholder=?, help_text=?, validation=?, is_active=?, updated_at=? WHERE id=?", r.table())
	if r.Driver == "postgres" {
		q = fmt.Sprintf("UPDATE %s SET entity_type=$1, name=$2, field_type=$3, options=$4, required=$5, category=$6, placeholder=$7, help_text=$8, validation=$9, is_active=$10, updated_at=$11 WHERE id=$12", r.table())
	}
	res, err := r.DB.ExecContext(ctx, q,
		string(fd.EntityType), fd.Name, string(fd.FieldType), options,
		fd.Required, nullStr(fd.Category), nullStr(fd.Placeholder),
		nullStr(fd.HelpText), validation, fd.IsActive, time.Now().UTC(), id)
	if err != nil {
		return fielddef.FieldDefinition{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fielddef.FieldDefinition{}, ErrNotFound
	}
	return fd, nil
}

// Deactivate soft deletes the definition.
func (r *Repo) Deactivate(ctx context.Context, id string) error {
	q := fmt.Sprintf("UPDATE %s SET is_active=?, updated_at=? WHERE id=?", r.table())
	if r.Driver == "postgres" {
		q = fmt.Sprintf("UPDATE %s SET is_active=$1, updated_at=$2 WHERE id=$3", r.table())
	}
	res, err := r.DB.ExecContext(ctx, q, false, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeInactive hard deletes definitions deactivated before the cutoff and
// returns the number of rows removed.
func (r *Repo) PurgeInactive(ctx context.Context, before time.Time) (int64, error) {
	q := fmt.Sprintf("DELETE FROM %s WHERE is_active=? AND updated_at < ?", r.table())
	if r.Driver == "postgres" {
		q = fmt.Sprintf("DELETE FROM %s WHERE is_active=$1 AND updated_at < $2", r.table())
	}
	res, err := r.DB.ExecContext(ctx, q, false, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountActiveByEntity feeds the field gauge.
func (r *Repo) CountActiveByEntity(ctx context.Context) (map[string]int, error) {
	q := fmt.Sprintf("SELECT entity_type, COUNT(*) FROM %s WHERE is_active=? GROUP BY entity_type", r.table())
	if r.Driver == "postgres" {
		q = fmt.Sprintf("SELECT entity_type, COUNT(*) FROM %s WHERE is_active=$1 GROUP BY entity_type", r.table())
	}
	rows, err := r.DB.QueryContext(ctx, q, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var e string
		var n int
		if err := rows.Scan(&e, &n); err != nil {
			return nil, err
		}
		counts[e] = n
	}
	return counts, rows.Err()
}

func (r *Repo) nameTaken(ctx context.Context, entity fielddef.EntityType, name, excludeID string) (bool, error) {
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE entity_type=? AND name=? AND is_active=? AND id<>?", r.table())
	if r.Driver == "postgres" {
		q = fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE entity_type=$1 AND name=$2 AND is_active=$3 AND id<>$4", r.table())
	}
	var n int
	if err := r.DB.QueryRowContext(ctx, q, string(entity), name, true, excludeID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanField(row rowScanner) (fielddef.FieldDefinition, error) {
	var fd fielddef.FieldDefinition
	var entity, ftype string
	var options, validation, category, placeholder, helpText sql.NullString
	err := row.Scan(&fd.ID, &entity, &fd.Name, &ftype, &options, &fd.Required,
		&category, &placeholder, &helpText, &validation, &fd.IsActive)
	if err != nil {
		return fd, err
	}
	fd.EntityType = fielddef.EntityType(entity)
	fd.FieldType = fielddef.FieldType(ftype)
	fd.Category = category.String
	fd.Placeholder = placeholder.String
	fd.HelpText = helpText.String
	if options.Valid && options.String != "" {
		if err := json.Unmarshal([]byte(options.String), &fd.Options); err != nil {
			return fd, fmt.Errorf("decode options for %s: %w", fd.ID, err)
		}
	}
	if validation.Valid && validation.String != "" {
		fd.Validation = &fielddef.Rules{}
		if err := json.Unmarshal([]byte(validation.String), fd.Validation); err != nil {
			return fd, fmt.Errorf("decode validation for %s: %w", fd.ID, err)
		}
	}
	return fd, nil
}

func encodeJSON(fd fielddef.FieldDefinition) (options, validation any, err error) {
	if len(fd.Options) > 0 {
		b, err := json.Marshal(fd.Options)
		if err != nil {
			return nil, nil, err
		}
		options = string(b)
	}
	if fd.Validation != nil {
		b, err := json.Marshal(fd.Validation)
		if err != nil {
			return nil, nil, err
		}
		validation = string(b)
	}
	return options, validation, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
