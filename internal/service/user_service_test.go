package service

import (
	"context"
	"testing"

	"backoffice/internal/apperror"
	"backoffice/internal/model"
	"backoffice/internal/policy"
	"backoffice/pkg/pagination"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_CreateAdminAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin, err := env.userSvc.CreateAdmin(ctx, " Admin@Example.com ", "secret1", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", admin.Email)
	assert.Equal(t, "Administrator", admin.Name)
	assert.Equal(t, string(policy.RoleAdmin), admin.Role)

	var entry model.AuditLog
	require.NoError(t, env.db.Where("action = ?", model.ActionCreateUser).First(&entry).Error)
	assert.Equal(t, "System", entry.UserName)
	assert.Nil(t, entry.UserID)

	res, err := env.userSvc.Login(ctx, LoginUserRequest{Email: "ADMIN@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, admin.ID, res.User.ID)

	_, err = env.userSvc.Login(ctx, LoginUserRequest{Email: "admin@example.com", Password: "wrong"})
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))
	_, err = env.userSvc.Login(ctx, LoginUserRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))
}

func TestUserService_InactiveUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.userSvc.CreateAdmin(ctx, "old@example.com", "secret1", "Old", nil)
	require.NoError(t, err)
	require.NoError(t, env.db.Model(&model.User{}).Where("id = ?", u.ID).Update("active", false).Error)

	_, err = env.userSvc.Login(ctx, LoginUserRequest{Email: "old@example.com", Password: "secret1"})
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))
	_, err = env.userSvc.Authenticate(ctx, u.ID)
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))
	_, err = env.userSvc.Authenticate(ctx, uuid.New())
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))
}

func TestUserService_AuthenticateParsesLegacyRoles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := &model.User{Name: "Dora", Email: "dora@example.com", Password: "x", Role: "diretor", Active: true}
	require.NoError(t, env.users.Create(ctx, u))

	actor, err := env.userSvc.Authenticate(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, policy.RoleDirector, actor.Role)
	assert.True(t, actor.CanSeeContractValue())

	me, err := env.userSvc.Me(policy.WithActor(ctx, actor))
	require.NoError(t, err)
	assert.Equal(t, "dora@example.com", me.Email)
	assert.Equal(t, Capabilities{CanMutate: true, CanSeeContractValue: true}, me.Capabilities)
}

func TestUserService_CreateUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := as(policy.RoleAdmin)

	_, err := env.userSvc.CreateUser(ctx, CreateUserRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1", Role: "manager"})
	assert.Equal(t, apperror.KindInvalid, apperror.KindOf(err))

	_, err = env.userSvc.CreateUser(ctx, CreateUserRequest{Name: "Ana", Email: "not-an-email", Password: "secret1", Role: "user"})
	assert.Equal(t, apperror.KindInvalid, apperror.KindOf(err))

	_, err = env.userSvc.CreateUser(ctx, CreateUserRequest{Name: "Ana", Email: "ana@example.com", Password: "123", Role: "user"})
	assert.Equal(t, apperror.KindInvalid, apperror.KindOf(err))

	created, err := env.userSvc.CreateUser(ctx, CreateUserRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1", Title: strp("Contadora"), Role: "financeiro"})
	require.NoError(t, err)
	assert.Equal(t, string(policy.RoleFinance), created.Role)
	assert.Equal(t, "Contadora", *created.Title)
	assert.True(t, created.Active)

	_, err = env.userSvc.CreateUser(ctx, CreateUserRequest{Name: "Ana 2", Email: "ANA@example.com", Password: "secret1", Role: "user"})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	_, err = env.userSvc.CreateUser(as(policy.RoleUser), CreateUserRequest{Name: "Bo", Email: "bo@example.com", Password: "secret1", Role: "user"})
	assert.ErrorIs(t, err, policy.ErrForbidden)

	page, err := env.userSvc.ListUsers(ctx, pagination.New(1, 20, 20))
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
}

func TestUserService_DeleteUser(t *testing.T) {
	env := newTestEnv(t)

	admin, err := env.userSvc.CreateAdmin(context.Background(), "root@example.com", "secret1", "Root", nil)
	require.NoError(t, err)
	ctx := policy.WithActor(context.Background(), policy.Actor{ID: admin.ID, Name: admin.Name, Role: policy.RoleAdmin})

	other, err := env.userSvc.CreateUser(ctx, CreateUserRequest{Name: "Bo", Email: "bo@example.com", Password: "secret1", Role: "user"})
	require.NoError(t, err)

	err = env.userSvc.DeleteUser(ctx, admin.ID)
	assert.Equal(t, apperror.KindInvalid, apperror.KindOf(err))

	require.NoError(t, env.userSvc.DeleteUser(ctx, other.ID))
	err = env.userSvc.DeleteUser(ctx, other.ID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	assert.Contains(t, env.auditActions(t), model.ActionDeleteUser)
}

func TestUserService_ChangePassword(t *testing.T) {
	env := newTestEnv(t)

	u, err := env.userSvc.CreateAdmin(context.Background(), "me@example.com", "secret1", "Me", nil)
	require.NoError(t, err)
	ctx := policy.WithActor(context.Background(), policy.Actor{ID: u.ID, Name: u.Name, Role: policy.RoleUser})

	err = env.userSvc.ChangePassword(ctx, ChangePasswordRequest{Password: "12345", Confirmation: "12345"})
	assert.Equal(t, apperror.KindInvalid, apperror.KindOf(err))
	err = env.userSvc.ChangePassword(ctx, ChangePasswordRequest{Password: "123456", Confirmation: "654321"})
	assert.Equal(t, apperror.KindInvalid, apperror.KindOf(err))

	require.NoError(t, env.userSvc.ChangePassword(ctx, ChangePasswordRequest{Password: "newpass", Confirmation: "newpass"}))

	_, err = env.userSvc.Login(context.Background(), LoginUserRequest{Email: "me@example.com", Password: "secret1"})
	assert.Error(t, err)
	_, err = env.userSvc.Login(context.Background(), LoginUserRequest{Email: "me@example.com", Password: "newpass"})
	assert.NoError(t, err)
}
