package service

import (
	"testing"
	"time"

	"backoffice/internal/model"
	"backoffice/internal/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfMonth(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	got := startOfMonth(time.Date(2024, time.March, 31, 23, 0, 0, 0, loc))
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestDashboardService_Summary(t *testing.T) {
	env := newTestEnv(t)
	ctx := as(policy.RoleAdmin)

	_, err := env.groupSvc.Create(ctx, GroupRequest{Name: "Alfa"})
	require.NoError(t, err)
	for _, c := range []ClientRequest{validClient("Acme", "1"), validClient("Beta", "2")} {
		_, err := env.clientSvc.Create(ctx, c)
		require.NoError(t, err)
	}
	inactive := validClient("Old Acme", "3")
	inactive.Active = new(bool)
	_, err = env.clientSvc.Create(ctx, inactive)
	require.NoError(t, err)

	old := &model.Client{LegalName: "Legacy", TaxID: "4", Active: true,
		CreatedAt: time.Now().AddDate(0, -2, 0)}
	require.NoError(t, env.db.Create(old).Error)

	res, err := env.dashboard.Summary(as(policy.RoleUser), "")
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.ActiveClients)
	assert.EqualValues(t, 1, res.Groups)
	assert.EqualValues(t, 3, res.ClientsThisMonth)
	assert.Empty(t, res.Results)

	res, err = env.dashboard.Summary(as(policy.RoleUser), " acme ")
	require.NoError(t, err)
	assert.Equal(t, "acme", res.Search)
	require.Len(t, res.Results, 2)
	assert.Equal(t, "Acme", res.Results[0].LegalName)
}
