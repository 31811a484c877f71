package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// User is an account able to log into the API.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	IsActive     bool
}

// UserRepo reads accounts from the users table.
type UserRepo struct {
	DB          *sql.DB
	Driver      string
	TablePrefix string
}

// GetByEmail returns the user with the given email, or nil when absent.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	tbl := r.TablePrefix + "users"
	q := fmt.Sprintf("SELECT id, email, name, password_hash, role, is_active FROM %s WHERE email=?", tbl)
	if r.Driver == "postgres" {
		q = fmt.Sprintf("SELECT id, email, name, password_hash, role, is_active FROM %s WHERE email=$1", tbl)
	}
	var u User
	err := r.DB.QueryRowContext(ctx, q, email).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns the user with the given id, or nil when absent.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*User, error) {
	tbl := r.TablePrefix + "users"
	q := fmt.Sprintf("SELECT id, email, name, password_hash, role, is_active FROM %s WHERE id=?", tbl)
	if r.Driver == "postgres" {
		q = fmt.Sprintf("SELECT id, email, name, password_hash, role, is_active FROM %s WHERE id=$1", tbl)
	}
	var u User
	err := r.DB.QueryRowContext(ctx, q, id).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
