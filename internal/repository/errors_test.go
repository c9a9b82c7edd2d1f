package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey), ErrDuplicateKey)

	pgErr := &pgconn.PgError{Code: "23505", Message: `duplicate key value violates unique constraint "idx_clients_tax_id"`}
	err := translate(errors.Wrap(pgErr, "insert"))
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.Contains(t, err.Error(), "idx_clients_tax_id")

	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
}
