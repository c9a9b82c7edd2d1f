package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"backoffice/internal/auth"
	"backoffice/internal/database/databasetest"
	"backoffice/internal/logger"
	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/internal/service"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_ArgCount(t *testing.T) {
	cmd := newRootCmd()
	assert.Error(t, cmd.Args(cmd, []string{"only@email"}))
	assert.NoError(t, cmd.Args(cmd, []string{"a@b.c", "secret1"}))
	assert.NoError(t, cmd.Args(cmd, []string{"a@b.c", "secret1", "Ana", "Partner"}))
	assert.Error(t, cmd.Args(cmd, []string{"a@b.c", "secret1", "Ana", "Partner", "extra"}))
}

func TestCreateAdmin(t *testing.T) {
	db := databasetest.New(t)
	log := logger.Discard()
	users := service.NewUserService(
		repository.NewUserRepository(db),
		auth.NewTokenIssuer("secret", time.Hour),
		service.NewAuditService(repository.NewAuditRepository(db), log),
		log,
	)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())

	require.NoError(t, createAdmin(cmd, users, []string{"Boss@Firm.test", "secret1", "", "Sócia"}))
	assert.Contains(t, out.String(), "Admin created: Administrator <boss@firm.test>")

	var stored model.User
	require.NoError(t, db.First(&stored, "email = ?", "boss@firm.test").Error)
	assert.Equal(t, "admin", stored.Role)
	assert.True(t, stored.Active)
	require.NotNil(t, stored.Title)
	assert.Equal(t, "Sócia", *stored.Title)

	assert.Error(t, createAdmin(cmd, users, []string{"boss@firm.test", "secret1"}))
	assert.Error(t, createAdmin(cmd, users, []string{"new@firm.test", "123"}))
}
