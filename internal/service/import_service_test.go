package service

import (
	"encoding/json"
	"testing"

	"backoffice/internal/apperror"
	"backoffice/internal/model"
	"backoffice/internal/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportService_TwoRowsOneSkipped(t *testing.T) {
	env := newTestEnv(t)
	ctx := as(policy.RoleAdmin)

	raw := json.RawMessage(`[
		{"Empresas": "Acme Ltda", "CNPJ": "12.345.678/0001-99"},
		{"Empresas": "", "CNPJ": "98.765.432/0001-10", "Cidade": "Curitiba"}
	]`)
	res, err := env.importSvc.Import(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, &ImportResponse{Count: 1, Skipped: 1, Errors: 0, Messages: []string{}}, res)

	var clients []model.Client
	require.NoError(t, env.db.Find(&clients).Error)
	require.Len(t, clients, 1)
	assert.Equal(t, "Acme Ltda", clients[0].LegalName)
	assert.Equal(t, "12345678000199", clients[0].TaxID)

	var n int64
	require.NoError(t, env.db.Model(&model.Responsibility{}).Where("client_id = ?", clients[0].ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
	require.NoError(t, env.db.Model(&model.ContractedServices{}).Where("client_id = ?", clients[0].ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	var entry model.AuditLog
	require.NoError(t, env.db.Where("action = ?", model.ActionBulkImport).First(&entry).Error)
	assert.JSONEq(t, `{"imported":1,"skipped":1,"errors":0}`, entry.Details)
	assert.Equal(t, "admin tester", entry.UserName)
	assert.Contains(t, env.notifier.Events(), EventImportDone)
}

func TestImportService_ResolvesGroupsAndDates(t *testing.T) {
	env := newTestEnv(t)
	ctx := as(policy.RoleDirector)

	group, err := env.groupSvc.Create(ctx, GroupRequest{Name: "Grupo Alfa"})
	require.NoError(t, err)

	res, err := env.importSvc.Import(ctx, json.RawMessage(`[
		{"Empresa": "Alfa Matriz", "CNPJ": 11222333000144, "Grupo": " grupo alfa ", "Entrada": 44197, "Unidade": "MATRIZ", "Constituição": "Sim"},
		{"Empresa": "Sem Grupo", "CNPJ": "55", "Grupo": "Inexistente", "Entrada": "05/03/2022"}
	]`))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)

	var alfa, other model.Client
	require.NoError(t, env.db.First(&alfa, "tax_id = ?", "11222333000144").Error)
	require.NotNil(t, alfa.GroupID)
	assert.Equal(t, group.ID, *alfa.GroupID)
	require.NotNil(t, alfa.AccountingEntryDate)
	assert.Equal(t, "2021-01-01", alfa.AccountingEntryDate.UTC().Format("2006-01-02"))
	assert.Equal(t, model.UnitTypeHeadquarters, *alfa.UnitType)
	assert.True(t, alfa.Incorporation)

	require.NoError(t, env.db.First(&other, "tax_id = ?", "55").Error)
	assert.Nil(t, other.GroupID)
	require.NotNil(t, other.AccountingEntryDate)
	assert.Equal(t, "2022-03-05", other.AccountingEntryDate.UTC().Format("2006-01-02"))
}

func TestImportService_DuplicatesAreErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := as(policy.RoleAdmin)

	_, err := env.clientSvc.Create(ctx, validClient("Acme", "12345678000199"))
	require.NoError(t, err)

	res, err := env.importSvc.Import(ctx, json.RawMessage(`[
		{"Empresas": "Acme Again", "CNPJ": "12.345.678/0001-99"},
		{"Empresas": "Beta", "CNPJ": "99"}
	]`))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, 1, res.Errors)
	require.Len(t, res.Messages, 1)
	assert.Contains(t, res.Messages[0], `"Acme Again" already exists`)
}

func TestImportService_TotalFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := as(policy.RoleAdmin)

	_, err := env.clientSvc.Create(ctx, validClient("Acme", "111"))
	require.NoError(t, err)

	_, err = env.importSvc.Import(ctx, json.RawMessage(`[{"Empresas": "Acme", "CNPJ": "111"}]`))
	require.Error(t, err)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.Equal(t, `import failed: client "Acme" already exists (duplicate tax ID: 111)`, err.Error())

	// the summary is still audited
	var n int64
	require.NoError(t, env.db.Model(&model.AuditLog{}).Where("action = ?", model.ActionBulkImport).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestImportService_RejectsEmptyInputAndRoles(t *testing.T) {
	env := newTestEnv(t)

	for _, raw := range []string{`[]`, `{"a":1}`, `"rows"`} {
		_, err := env.importSvc.Import(as(policy.RoleAdmin), json.RawMessage(raw))
		assert.Equal(t, apperror.KindInvalid, apperror.KindOf(err), raw)
	}

	_, err := env.importSvc.Import(as(policy.RoleUser), json.RawMessage(`[{"Empresas":"Acme"}]`))
	assert.ErrorIs(t, err, policy.ErrForbidden)
	assert.Empty(t, env.auditActions(t))
}
