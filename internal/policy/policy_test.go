package policy

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanMutate(t *testing.T) {
	assert.True(t, CanMutate(RoleAdmin))
	assert.True(t, CanMutate(RoleDirector))
	assert.True(t, CanMutate(RoleFinance))
	assert.False(t, CanMutate(RoleUser))
	assert.False(t, CanMutate(Role("guest")))
}

func TestCanSeeContractValue(t *testing.T) {
	assert.True(t, CanSeeContractValue(RoleFinance))
	assert.True(t, CanSeeContractValue(RoleDirector))
	assert.False(t, CanSeeContractValue(RoleAdmin))
	assert.False(t, CanSeeContractValue(RoleUser))
	assert.False(t, CanSeeContractValue(Role("")))
}

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"admin", RoleAdmin, true},
		{" Finance ", RoleFinance, true},
		{"diretor", RoleDirector, true},
		{"financeiro", RoleFinance, true},
		{"user", RoleUser, true},
		{"manager", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseRole(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestActor_AssertCanMutate(t *testing.T) {
	assert.NoError(t, Actor{Role: RoleAdmin}.AssertCanMutate())
	assert.ErrorIs(t, Actor{Role: RoleUser}.AssertCanMutate(), ErrForbidden)
}

func TestActorContext(t *testing.T) {
	_, ok := ActorFrom(context.Background())
	assert.False(t, ok)

	a := Actor{ID: uuid.New(), Name: "Ana", Role: RoleFinance}
	got, ok := ActorFrom(WithActor(context.Background(), a))
	assert.True(t, ok)
	assert.Equal(t, a, got)
}
