package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/logingate/internal/domain/model"
	"github.com/ericfisherdev/logingate/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.LoginStore = (*LoginRepo)(nil)

// LoginRepo is the SQLite implementation of the LoginStore port interface.
// Logins are enumerated in insertion order.
type LoginRepo struct {
	db  *DB
	now func() time.Time
}

// NewLoginRepo creates a new LoginRepo backed by the given DB.
func NewLoginRepo(db *DB) *LoginRepo {
	return &LoginRepo{db: db, now: time.Now}
}

const loginColumns = `guid, hostname, form_submit_url, http_realm, username, password,
	username_field, password_field, time_created, time_password_changed`

// GetAllLogins returns every stored login.
func (r *LoginRepo) GetAllLogins(ctx context.Context) ([]model.LoginInfo, error) {
	const query = `SELECT ` + loginColumns + ` FROM logins ORDER BY id`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list logins: %w", err)
	}
	defer rows.Close()

	var logins []model.LoginInfo
	for rows.Next() {
		login, err := scanLogin(rows)
		if err != nil {
			return nil, fmt.Errorf("scan login: %w", err)
		}
		logins = append(logins, *login)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate logins: %w", err)
	}

	return logins, nil
}

// AddLogin validates and inserts a login. Model validity errors and
// driven.ErrLoginAlreadyExists are returned unwrapped so their text reaches
// callers as-is.
func (r *LoginRepo) AddLogin(ctx context.Context, login model.LoginInfo) error {
	if err := login.Validate(); err != nil {
		return err
	}

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add login: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const existsQuery = `SELECT COUNT(*) FROM logins
		WHERE hostname = ? AND form_submit_url IS ? AND http_realm IS ? AND username = ?`
	var count int
	err = tx.QueryRowContext(ctx, existsQuery,
		login.Hostname, nullString(login.FormSubmitURL), nullString(login.HTTPRealm), login.Username,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("check existing login: %w", err)
	}
	if count > 0 {
		return driven.ErrLoginAlreadyExists
	}

	guid := login.GUID
	if guid == "" {
		guid = "{" + uuid.NewString() + "}"
	}
	now := r.now().UTC().Format(time.RFC3339Nano)

	const insertQuery = `INSERT INTO logins (` + loginColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, insertQuery,
		guid,
		login.Hostname,
		nullString(login.FormSubmitURL),
		nullString(login.HTTPRealm),
		login.Username,
		login.Password,
		nullString(login.UsernameField),
		nullString(login.PasswordField),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("insert login: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit add login: %w", err)
	}
	return nil
}

// RemoveLogin deletes a login by GUID when it has one, otherwise by its
// origin, form action or realm, and username. Returns
// driven.ErrLoginNotFound, unwrapped, if nothing was deleted.
func (r *LoginRepo) RemoveLogin(ctx context.Context, login model.LoginInfo) error {
	var (
		result sql.Result
		err    error
	)
	if login.GUID != "" {
		const query = `DELETE FROM logins WHERE guid = ?`
		result, err = r.db.Writer.ExecContext(ctx, query, login.GUID)
	} else {
		const query = `DELETE FROM logins
			WHERE hostname = ? AND form_submit_url IS ? AND http_realm IS ? AND username = ?`
		result, err = r.db.Writer.ExecContext(ctx, query,
			login.Hostname, nullString(login.FormSubmitURL), nullString(login.HTTPRealm), login.Username)
	}
	if err != nil {
		return fmt.Errorf("remove login: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return driven.ErrLoginNotFound
	}

	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanLogin(s scanner) (*model.LoginInfo, error) {
	var (
		login                            model.LoginInfo
		formSubmitURL, httpRealm         sql.NullString
		usernameField, passwordField     sql.NullString
		timeCreated, timePasswordChanged string
	)

	err := s.Scan(
		&login.GUID,
		&login.Hostname,
		&formSubmitURL,
		&httpRealm,
		&login.Username,
		&login.Password,
		&usernameField,
		&passwordField,
		&timeCreated,
		&timePasswordChanged,
	)
	if err != nil {
		return nil, err
	}

	login.FormSubmitURL = stringPtr(formSubmitURL)
	login.HTTPRealm = stringPtr(httpRealm)
	login.UsernameField = stringPtr(usernameField)
	login.PasswordField = stringPtr(passwordField)

	login.TimeCreated, err = parseTime(timeCreated)
	if err != nil {
		return nil, fmt.Errorf("parse time_created: %w", err)
	}
	login.TimePasswordChanged, err = parseTime(timePasswordChanged)
	if err != nil {
		return nil, fmt.Errorf("parse time_password_changed: %w", err)
	}

	return &login, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
