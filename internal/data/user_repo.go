package data

// Package data contains PostgreSQL repositories. Queries run over the pgx
// stdlib bridge so the rest of the application can share one *sql.DB.

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/utem-ti/canvas-auth/internal/data/pgxutil"
	domainauth "github.com/utem-ti/canvas-auth/internal/domain/auth"
	apperrors "github.com/utem-ti/canvas-auth/internal/errors"
)

// UserRepo provides database operations for user records. The normalized
// email is the primary key; a single-statement upsert keeps writes atomic
// with respect to concurrent readers.
type UserRepo struct {
	DB *sql.DB
}

// NewUserRepo creates a new user repository.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

const userColumns = `email, name, role, active, created_at, updated_at`

// Get returns the record for the email. Absence maps to a NotFound AppError.
func (r *UserRepo) Get(ctx context.Context, email string) (*domainauth.UserRecord, error) {
	email = domainauth.NormalizeEmail(email)
	if email == "" {
		return nil, apperrors.ValidationField("email", "email is required")
	}

	var rec domainauth.UserRecord
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
		if err != nil {
			return err
		}
		defer rows.Close()

		rec, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.UserRecord])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &rec, nil
}

// List returns all user records ordered by email.
func (r *UserRepo) List(ctx context.Context) ([]domainauth.UserRecord, error) {
	var recs []domainauth.UserRecord
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY email`)
		if err != nil {
			return err
		}
		defer rows.Close()

		recs, err = pgx.CollectRows(rows, pgx.RowToStructByName[domainauth.UserRecord])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return recs, nil
}

// Upsert inserts or replaces the record keyed by normalized email. The
// write is a single statement, so readers never observe a partial record.
func (r *UserRepo) Upsert(ctx context.Context, rec *domainauth.UserRecord) (*domainauth.UserRecord, error) {
	if rec == nil {
		return nil, apperrors.Validation("user record is required")
	}
	email := domainauth.NormalizeEmail(rec.Email)
	if email == "" {
		return nil, apperrors.ValidationField("email", "email is required")
	}
	if !rec.Role.Valid() {
		return nil, apperrors.ValidationField("role", "invalid role")
	}

	var saved domainauth.UserRecord
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO users (email, name, role, active)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (email) DO UPDATE
			SET name = EXCLUDED.name,
			    role = EXCLUDED.role,
			    active = EXCLUDED.active,
			    updated_at = now()
			RETURNING `+userColumns,
			email, strings.TrimSpace(rec.Name), rec.Role, rec.Active)
		if err != nil {
			return err
		}
		defer rows.Close()

		saved, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.UserRecord])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &saved, nil
}

// SetRole updates an existing record's role. NotFound when no record exists.
func (r *UserRepo) SetRole(ctx context.Context, email string, role domainauth.Role) error {
	if !role.Valid() {
		return apperrors.ValidationField("role", "invalid role")
	}
	return r.update(ctx, email, `UPDATE users SET role = $2, updated_at = now() WHERE email = $1`, role)
}

// SetActive flips the active flag. NotFound when no record exists.
func (r *UserRepo) SetActive(ctx context.Context, email string, active bool) error {
	return r.update(ctx, email, `UPDATE users SET active = $2, updated_at = now() WHERE email = $1`, active)
}

// Delete removes a record. NotFound when no record exists.
func (r *UserRepo) Delete(ctx context.Context, email string) error {
	return r.update(ctx, email, `DELETE FROM users WHERE email = $1`)
}

func (r *UserRepo) update(ctx context.Context, email, query string, args ...any) error {
	email = domainauth.NormalizeEmail(email)
	if email == "" {
		return apperrors.ValidationField("email", "email is required")
	}

	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, query, append([]any{email}, args...)...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
	return apperrors.MapDBError(err)
}
