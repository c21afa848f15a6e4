// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/adminauth/internal/platform/apperr"
)

// constraintFields maps the unique constraints declared in data/migrations to
// the client-facing field they guard.
var constraintFields = map[string]string{
	"account_email_key":        "email",
	"account_mobilenumber_key": "mobile_number",
	"role_name_key":            "name",
	"permission_name_key":      "name",
	"permissiongroup_name_key": "name",
}

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
//
// # Mapping
//   - pgx.ErrNoRows becomes NOT_FOUND for the given resource.
//   - SQLSTATE 23505 becomes DUPLICATE_FIELD naming the violated field.
//   - Anything else becomes INTERNAL_ERROR with the action attached to the cause.
func Wrap(err error, resource, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	// 2. Unique violations
	if field, ok := UniqueViolation(err); ok {
		return apperr.DuplicateField(field, fmt.Sprintf("%s is already exist!", fieldLabel(field)))
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}

// UniqueViolation reports whether err is a unique constraint failure and, if
// so, the field the constraint protects.
func UniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return "", false
	}

	if field, ok := constraintFields[pgErr.ConstraintName]; ok {
		return field, true
	}
	return pgErr.ConstraintName, true
}

func fieldLabel(field string) string {
	switch field {
	case "email":
		return "Email"
	case "mobile_number":
		return "Mobile number"
	case "name":
		return "Name"
	default:
		return field
	}
}
