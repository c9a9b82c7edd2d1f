package repository

import (
	"context"
	"testing"

	"backoffice/internal/database/databasetest"
	"backoffice/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestClientRepository_CreateDuplicateTaxID(t *testing.T) {
	db := databasetest.New(t)
	repo := NewClientRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Client{LegalName: "Acme", TaxID: "111", Active: true}))
	err := repo.Create(ctx, &model.Client{LegalName: "Acme 2", TaxID: "111", Active: true})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestClientRepository_SatellitesUpsert(t *testing.T) {
	db := databasetest.New(t)
	repo := NewClientRepository(db)
	ctx := context.Background()

	c := &model.Client{LegalName: "Acme", TaxID: "111", Active: true}
	require.NoError(t, repo.Create(ctx, c))
	require.NoError(t, repo.CreateSatellites(ctx,
		&model.Responsibility{ClientID: c.ID},
		&model.ContractedServices{ClientID: c.ID}))

	require.NoError(t, repo.UpsertSatellites(ctx,
		&model.Responsibility{ClientID: c.ID, Accounting: strPtr("Maria")},
		&model.ContractedServices{ClientID: c.ID, LegalLabor: true}))

	var respCount, svcCount int64
	require.NoError(t, db.Model(&model.Responsibility{}).Where("client_id = ?", c.ID).Count(&respCount).Error)
	require.NoError(t, db.Model(&model.ContractedServices{}).Where("client_id = ?", c.ID).Count(&svcCount).Error)
	assert.EqualValues(t, 1, respCount)
	assert.EqualValues(t, 1, svcCount)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Responsibility)
	assert.Equal(t, "Maria", *got.Responsibility.Accounting)
	require.NotNil(t, got.Services)
	assert.True(t, got.Services.LegalLabor)
}

func TestClientRepository_ListFilters(t *testing.T) {
	db := databasetest.New(t)
	repo := NewClientRepository(db)
	groups := NewGroupRepository(db)
	ctx := context.Background()

	g := &model.Group{Name: "Alfa"}
	require.NoError(t, groups.Create(ctx, g))

	for i, name := range []string{"Zeta Ltda", "acme comércio", "ACME Serviços"} {
		c := &model.Client{LegalName: name, TaxID: string(rune('1' + i)), Active: true}
		if i > 0 {
			c.GroupID = &g.ID
		}
		require.NoError(t, repo.Create(ctx, c))
	}

	all, total, err := repo.List(ctx, ClientFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, "ACME Serviços", all[0].LegalName)

	found, total, err := repo.List(ctx, ClientFilter{Query: "Acme"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, found, 2)

	inGroup, _, err := repo.List(ctx, ClientFilter{GroupID: &g.ID, Limit: 1})
	require.NoError(t, err)
	require.Len(t, inGroup, 1)
	require.NotNil(t, inGroup[0].Group)
	assert.Equal(t, "Alfa", inGroup[0].Group.Name)
}

func TestClientRepository_DeleteCascades(t *testing.T) {
	db := databasetest.New(t)
	repo := NewClientRepository(db)
	ctx := context.Background()

	c := &model.Client{LegalName: "Acme", TaxID: "111", Active: true}
	require.NoError(t, repo.Create(ctx, c))
	require.NoError(t, repo.CreateSatellites(ctx,
		&model.Responsibility{ClientID: c.ID},
		&model.ContractedServices{ClientID: c.ID}))
	require.NoError(t, repo.AddPartner(ctx, &model.Partner{ClientID: c.ID, Name: "João", SharePercent: decimal.NewFromInt(50)}))

	require.NoError(t, repo.Delete(ctx, c.ID))
	assert.ErrorIs(t, repo.Delete(ctx, c.ID), ErrNotFound)

	var n int64
	require.NoError(t, db.Model(&model.Partner{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&model.Responsibility{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestClientRepository_Partners(t *testing.T) {
	db := databasetest.New(t)
	repo := NewClientRepository(db)
	ctx := context.Background()

	c := &model.Client{LegalName: "Acme", TaxID: "111", Active: true}
	require.NoError(t, repo.Create(ctx, c))

	p := &model.Partner{ClientID: c.ID, Name: "Ana", SharePercent: decimal.RequireFromString("33.33")}
	require.NoError(t, repo.AddPartner(ctx, p))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got.Partners, 1)
	assert.True(t, decimal.RequireFromString("33.33").Equal(got.Partners[0].SharePercent))

	assert.ErrorIs(t, repo.DeletePartner(ctx, uuid.New(), p.ID), ErrNotFound)
	require.NoError(t, repo.DeletePartner(ctx, c.ID, p.ID))
}

func TestClientRepository_ClearGroup(t *testing.T) {
	db := databasetest.New(t)
	repo := NewClientRepository(db)
	groups := NewGroupRepository(db)
	ctx := context.Background()

	g := &model.Group{Name: "Alfa"}
	require.NoError(t, groups.Create(ctx, g))
	for _, tax := range []string{"1", "2", "3"} {
		require.NoError(t, repo.Create(ctx, &model.Client{LegalName: "C" + tax, TaxID: tax, GroupID: &g.ID, Active: true}))
	}

	withCounts, err := groups.ListWithCounts(ctx)
	require.NoError(t, err)
	require.Len(t, withCounts, 1)
	assert.EqualValues(t, 3, withCounts[0].MemberCount)

	n, err := repo.ClearGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	_, total, err := repo.List(ctx, ClientFilter{GroupID: &g.ID})
	require.NoError(t, err)
	assert.Zero(t, total)
}
