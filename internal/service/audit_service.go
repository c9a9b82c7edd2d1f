package service

import (
	"context"
	"log/slog"

	"backoffice/internal/model"
	"backoffice/internal/policy"
	"backoffice/internal/repository"
	"backoffice/pkg/pagination"

	"github.com/pkg/errors"
)

// AuditLogsDefaultLimit is the page size of the audit view.
const AuditLogsDefaultLimit = 100

type AuditLogResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	UserName   string `json:"user_name"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

type AuditService interface {
	// Record writes an entry for the actor in ctx, or "System" when there is none.
	Record(ctx context.Context, action, entityID, entityName string, details any) error
	GetAuditLogs(ctx context.Context, p pagination.Params) (pagination.Page[AuditLogResponse], error)
}

type auditService struct {
	repo   repository.AuditRepository
	logger *slog.Logger
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository, logger *slog.Logger) AuditService {
	return &auditService{repo: repo, logger: logger}
}

func (s *auditService) Record(ctx context.Context, action, entityID, entityName string, details any) error {
	entry := &model.AuditLog{
		UserName:   "System",
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    mustJSON(details),
	}
	if actor, ok := policy.ActorFrom(ctx); ok {
		id := actor.ID
		entry.UserID = &id
		entry.UserName = actor.Name
	}

	if err := s.repo.Log(ctx, entry); err != nil {
		return errors.Wrapf(err, "record audit %s", action)
	}
	s.logger.InfoContext(ctx, "audit", "action", action, "entity_id", entityID, "user", entry.UserName)
	return nil
}

// GetAuditLogs returns the newest entries first
func (s *auditService) GetAuditLogs(ctx context.Context, p pagination.Params) (pagination.Page[AuditLogResponse], error) {
	logs, total, err := s.repo.List(ctx, p.Offset, p.Limit)
	if err != nil {
		return pagination.Page[AuditLogResponse]{}, errors.Wrap(err, "list audit logs")
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		userID := ""
		if l.UserID != nil {
			userID = l.UserID.String()
		}

		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			UserID:     userID,
			UserName:   l.UserName,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}

	return pagination.NewPage(res, total, p), nil
}
