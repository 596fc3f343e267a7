package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConstraintErrors(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"})
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "applications_program_id_fkey"}
	plain := errors.New("connection refused")

	assert.True(t, IsDuplicateConstraintError(dup, "accounts_email_key"))
	assert.False(t, IsDuplicateConstraintError(dup, "programs_slug_key"))
	assert.True(t, IsUniqueViolation(dup))
	assert.False(t, IsUniqueViolation(fk))

	assert.True(t, IsForeignKeyViolation(fk, "applications_program_id_fkey"))
	assert.True(t, IsForeignKeyViolation(fk, ""))
	assert.False(t, IsForeignKeyViolation(fk, "documents_owner_id_fkey"))
	assert.False(t, IsForeignKeyViolation(plain, ""))
}
