package errors

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the acting role is insufficient.
	ErrForbidden = errors.New("Insufficient permissions.")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
)

const (
	recursiveRLSMessage = "stack depth limit exceeded"
	recursiveRLSHint    = "Database RLS recursion detected. Run migration: scripts/migrations/2026-02-13_fix_recursive_rls_helpers.sql"
)

// FormatDatabaseError sanitizes a storage error into a user-facing message.
// One known systemic failure mode (recursive row-level-security helpers) is
// replaced with an actionable remediation hint; all other messages pass
// through unmodified.
func FormatDatabaseError(err error) string {
	if err == nil {
		return ""
	}
	if strings.Contains(strings.ToLower(err.Error()), recursiveRLSMessage) {
		return recursiveRLSHint
	}
	return err.Error()
}

// IsCircularDependency reports whether a storage error indicates the
// dependency-graph cycle constraint fired.
func IsCircularDependency(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "circular dependency")
}
