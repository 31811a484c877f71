// Package audit records every change to a custom field definition with the
// acting user and the before/after document.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/inventia-dev/fieldset/pkg/fielddef"
	"github.com/inventia-dev/fieldset/pkg/metrics"
)

// Recorder writes audit logs to the database. A nil Recorder or DB is a
// no-op so callers never need to guard the write.
type Recorder struct {
	DB          *sql.DB
	Driver      string // mysql or postgres
	TablePrefix string
}

// Write records a single definition change. old==nil means create,
// new==nil means delete, otherwise update.
func (r *Recorder) Write(ctx context.Context, actor string, old, new *fielddef.FieldDefinition) error {
	if r == nil || r.DB == nil {
		return nil
	}
	var action string
	switch {
	case old == nil && new != nil:
		action = "add"
	case old != nil && new == nil:
		action = "delete"
	default:
		action = "update"
	}
	var before, after []byte
	var err error
	if old != nil {
		before, err = json.Marshal(old)
		if err != nil {
			return err
		}
	}
	if new != nil {
		after, err = json.Marshal(new)
		if err != nil {
			return err
		}
	}
	ref := old
	if new != nil {
		ref = new
	}
	tbl := r.TablePrefix + "audit_logs"
	q := fmt.Sprintf("INSERT INTO %s (actor, action, entity_type, field_name, before_json, after_json) VALUES (?,?,?,?,?,?)", tbl)
	if r.Driver == "postgres" {
		q = fmt.Sprintf("INSERT INTO %s (actor, action, entity_type, field_name, before_json, after_json) VALUES ($1,$2,$3,$4,$5,$6)", tbl)
	}
	var beforeArg, afterArg any
	if before != nil {
		beforeArg = string(before)
	}
	if after != nil {
		afterArg = string(after)
	}
	_, err = r.DB.ExecContext(ctx, q, actor, action, string(ref.EntityType), ref.Name, beforeArg, afterArg)
	if err != nil {
		metrics.AuditErrors.WithLabelValues(action).Inc()
		return err
	}
	metrics.AuditEvents.WithLabelValues(action).Inc()
	return nil
}
