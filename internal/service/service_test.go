package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"backoffice/internal/auth"
	"backoffice/internal/database/databasetest"
	"backoffice/internal/logger"
	"backoffice/internal/model"
	"backoffice/internal/policy"
	"backoffice/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Publish(event string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

type testEnv struct {
	db        *gorm.DB
	clients   repository.ClientRepository
	groups    repository.GroupRepository
	users     repository.UserRepository
	audits    repository.AuditRepository
	notifier  *recordingNotifier
	audit     AuditService
	clientSvc ClientService
	groupSvc  GroupService
	importSvc ImportService
	userSvc   UserService
	dashboard DashboardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := databasetest.New(t)
	log := logger.Discard()

	env := &testEnv{
		db:       db,
		clients:  repository.NewClientRepository(db),
		groups:   repository.NewGroupRepository(db),
		users:    repository.NewUserRepository(db),
		audits:   repository.NewAuditRepository(db),
		notifier: &recordingNotifier{},
	}
	tx := repository.NewTransactionManager(db)
	env.audit = NewAuditService(env.audits, log)
	env.clientSvc = NewClientService(env.clients, env.groups, tx, env.audit, env.notifier, log)
	env.groupSvc = NewGroupService(env.groups, env.clients, tx, env.audit, env.notifier, log)
	env.importSvc = NewImportService(env.clients, env.groups, env.audit, env.notifier, log)
	env.userSvc = NewUserService(env.users, auth.NewTokenIssuer("test-secret", time.Hour), env.audit, log)
	env.dashboard = NewDashboardService(env.clients, env.groups)
	return env
}

func as(role policy.Role) context.Context {
	return policy.WithActor(context.Background(), policy.Actor{ID: uuid.New(), Name: string(role) + " tester", Role: role})
}

func (e *testEnv) auditActions(t *testing.T) []string {
	t.Helper()
	var logs []model.AuditLog
	require.NoError(t, e.db.Order("created_at").Find(&logs).Error)
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	return actions
}

func strp(s string) *string { return &s }
