package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	orderNumberErr := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: orderNumberConstraint}

	tests := []struct {
		name       string
		err        error
		constraint string
		expected   bool
	}{
		{"Any constraint", orderNumberErr, "", true},
		{"Matching constraint", orderNumberErr, orderNumberConstraint, true},
		{"Wrapped error", fmt.Errorf("insert: %w", orderNumberErr), orderNumberConstraint, true},
		{"Other constraint", orderNumberErr, idempotencyConstraint, false},
		{"Other code", &pgconn.PgError{Code: "23503"}, "", false},
		{"Not a pg error", errors.New("boom"), "", false},
		{"Nil", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isUniqueViolation(tt.err, tt.constraint))
		})
	}
}

func TestIsTransient(t *testing.T) {
	for _, code := range []string{pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable, pgQueryCanceled} {
		assert.True(t, IsTransient(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: code})), code)
	}

	assert.False(t, IsTransient(&pgconn.PgError{Code: pgUniqueViolation}))
	assert.False(t, IsTransient(errors.New("connection reset")))
}
