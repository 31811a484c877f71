package audit_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/inventia-dev/fieldset/internal/audit"
	"github.com/inventia-dev/fieldset/pkg/fielddef"
)

func TestRecorderWriteUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	rec := &audit.Recorder{DB: db, Driver: "mysql", TablePrefix: "cf_"}
	old := &fielddef.FieldDefinition{EntityType: fielddef.EntityEquipment, Name: "serie", FieldType: fielddef.TypeText}
	newd := &fielddef.FieldDefinition{EntityType: fielddef.EntityEquipment, Name: "serie", FieldType: fielddef.TypeText, Required: true}
	mock.ExpectExec("INSERT INTO cf_audit_logs").
		WithArgs("admin@acme.mx", "update", "equipment", "serie", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := rec.Write(context.Background(), "admin@acme.mx", old, newd); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet: %v", err)
	}
}

func TestRecorderWriteAddAndDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	rec := &audit.Recorder{DB: db, Driver: "postgres", TablePrefix: "cf_"}
	fd := &fielddef.FieldDefinition{EntityType: fielddef.EntityCompany, Name: "rfc", FieldType: fielddef.TypeText}

	mock.ExpectExec("INSERT INTO cf_audit_logs").
		WithArgs("admin@acme.mx", "add", "company", "rfc", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	if err := rec.Write(context.Background(), "admin@acme.mx", nil, fd); err != nil {
		t.Fatalf("add: %v", err)
	}

	mock.ExpectExec("INSERT INTO cf_audit_logs").
		WithArgs("admin@acme.mx", "delete", "company", "rfc", sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(2, 1))
	if err := rec.Write(context.Background(), "admin@acme.mx", fd, nil); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet: %v", err)
	}
}

func TestRecorderNilIsNoop(t *testing.T) {
	var rec *audit.Recorder
	fd := &fielddef.FieldDefinition{Name: "x"}
	if err := rec.Write(context.Background(), "nobody", nil, fd); err != nil {
		t.Fatalf("nil recorder: %v", err)
	}
}
