package importer

import (
	"context"
	"testing"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	clients    map[string]*model.Client
	satellites []uuid.UUID
	failWith   error
}

func newMemStore() *memStore {
	return &memStore{clients: map[string]*model.Client{}}
}

func (s *memStore) InsertClient(_ context.Context, c *model.Client) error {
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.clients[c.TaxID]; ok {
		return errors.Wrap(ErrDuplicate, "clients_tax_id_key")
	}
	c.ID = uuid.New()
	s.clients[c.TaxID] = c
	return nil
}

func (s *memStore) InsertSatellites(_ context.Context, id uuid.UUID) error {
	s.satellites = append(s.satellites, id)
	return nil
}

func TestRun_EmptyInput(t *testing.T) {
	res, err := New(newMemStore(), nil).Run(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrNoRows)
	assert.Equal(t, Result{}, res)
}

func TestRun_ImportsAndSkips(t *testing.T) {
	store := newMemStore()
	rows := []Row{
		{"Empresas": "Acme Ltda", "CNPJ": "12.345.678/0001-99"},
		{"Empresas": "", "CNPJ": "98.765.432/0001-10"},
	}

	res, err := New(store, nil).Run(context.Background(), rows, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	assert.Empty(t, res.Errors)
	assert.False(t, res.Failed())

	require.Len(t, store.clients, 1)
	c := store.clients["12345678000199"]
	require.NotNil(t, c)
	assert.Equal(t, "Acme Ltda", c.LegalName)
	assert.Equal(t, []uuid.UUID{c.ID}, store.satellites)
}

func TestRun_DuplicateIsAnErrorNotASkip(t *testing.T) {
	store := newMemStore()
	rows := []Row{
		{"Empresa": "Acme", "CNPJ": "111"},
		{"Empresa": "Acme Copy", "CNPJ": "1-1-1"},
		{"Empresa": "Beta", "CNPJ": "222"},
	}

	res, err := New(store, nil).Run(context.Background(), rows, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 0, res.Skipped)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "already exists")
	assert.Contains(t, res.Errors[0], "Acme Copy")
	assert.Contains(t, res.Errors[0], "111")
	assert.Len(t, store.satellites, 2)
}

func TestRun_TotalFailure(t *testing.T) {
	store := newMemStore()
	store.failWith = errors.New("connection refused")

	res, err := New(store, nil).Run(context.Background(), []Row{
		{"Empresa": "One"},
		{"Empresa": "Two"},
		{"Empresa": ""},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	assert.Len(t, res.Errors, 2)
	assert.True(t, res.Failed())
	assert.Equal(t, "failed to insert One: connection refused", res.FirstError())
	assert.Empty(t, store.satellites)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := newMemStore()
	_, err := New(store, nil).Run(ctx, []Row{{"Empresa": "One"}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.clients)
}

func TestResult_IsAValue(t *testing.T) {
	base := Result{}.failed("a")
	left := base.failed("b")
	right := base.failed("c")

	assert.Equal(t, []string{"a"}, base.Errors)
	assert.Equal(t, []string{"a", "b"}, left.Errors)
	assert.Equal(t, []string{"a", "c"}, right.Errors)
}

func TestDecodeRows(t *testing.T) {
	rows, err := DecodeRows([]byte(`[{"Empresas":"Acme","CNPJ":12345678000199}]`))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	s, _ := rows[0].Text(FieldTaxID)
	assert.Equal(t, "12345678000199", s)

	for _, in := range []string{``, `[]`, `{}`, `"x"`, `null`, `[1,2]`} {
		_, err := DecodeRows([]byte(in))
		assert.ErrorIs(t, err, ErrNoRows, in)
	}
}
