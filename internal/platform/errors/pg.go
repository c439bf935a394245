package errors

import (
	"context"
	stderrs "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the attendance store can raise
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgNotNullViolation     = "23502"
	pgCheckViolation       = "23514"
	pgStringTooLong        = "22001"
	pgDatetimeOverflow     = "22008"
	pgInvalidText          = "22P02"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgReadOnlyTx           = "25006"
	pgCannotConnectNow     = "57P03"
)

var pgCodes = map[string]ErrorCode{
	pgUniqueViolation:      ErrorCodeDuplicateKey,
	pgForeignKeyViolation:  ErrorCodeInvalidArgument,
	pgNotNullViolation:     ErrorCodeValidation,
	pgCheckViolation:       ErrorCodeValidation,
	pgStringTooLong:        ErrorCodeInvalidArgument,
	pgDatetimeOverflow:     ErrorCodeInvalidArgument,
	pgInvalidText:          ErrorCodeInvalidArgument,
	pgSerializationFailure: ErrorCodeDB,
	pgDeadlockDetected:     ErrorCodeDB,
	pgLockNotAvailable:     ErrorCodeDB,
	pgReadOnlyTx:           ErrorCodeUnavailable,
	pgCannotConnectNow:     ErrorCodeUnavailable,
}

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsDuplicateKey reports a unique constraint violation anywhere in err's chain
func IsDuplicateKey(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == pgUniqueViolation
}

// FromPostgres wraps err with the code its SQLSTATE maps to, ErrorCodeDB otherwise.
// nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code := ErrorCodeDB
	if pgErr, ok := pgError(err); ok {
		if c, known := pgCodes[pgErr.Code]; known {
			code = c
		}
	}
	return Wrap(err, code, msg)
}

// FromPostgresWithField is FromPostgres plus the offending column when
// postgres names one directly or through the constraint, e.g.
// auditdata_serial_key -> serial
func FromPostgresWithField(err error, msg string) error {
	wrapped := FromPostgres(err, msg)
	pgErr, ok := pgError(err)
	if !ok {
		return wrapped
	}
	if col := strings.TrimSpace(pgErr.ColumnName); col != "" {
		return WithField(wrapped, col)
	}
	if f := constraintField(pgErr.TableName, pgErr.ConstraintName); f != "" {
		return WithField(wrapped, f)
	}
	return wrapped
}

func constraintField(table, constraint string) string {
	c := strings.TrimPrefix(constraint, table+"_")
	for _, suffix := range []string{"_pkey", "_fkey", "_key", "_check"} {
		if f, ok := strings.CutSuffix(c, suffix); ok && f != "" {
			return f
		}
	}
	return ""
}

// IsRetryable reports contention a fresh transaction may get past.
// Cancellation never retries
func IsRetryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pgErr, ok := pgError(err); ok {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return true
		}
		return false
	}
	// pgx reports a commit turned rollback as plain text
	s := strings.ToLower(Root(err).Error())
	return strings.Contains(s, "commit unexpectedly resulted in rollback") ||
		strings.Contains(s, "could not serialize access")
}
