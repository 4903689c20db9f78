package lib

import (
	"database/sql"
	"errors"
	"strings"
)

// Database errors
var (
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
)

// Auth errors
var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("expired token")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Domain errors
var (
	ErrVersionConflict = errors.New("version conflict")
)

// MapDBError folds driver-level SQLite errors into the package sentinels so
// handlers can pick a status code with errors.Is.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique constraint") || strings.Contains(msg, "constraint failed") {
		return ErrConflict
	}
	return err
}
