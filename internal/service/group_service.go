package service

import (
	"context"
	"log/slog"
	"strings"

	"backoffice/internal/apperror"
	"backoffice/internal/model"
	"backoffice/internal/policy"
	"backoffice/internal/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type GroupRequest struct {
	Name          string           `json:"name"`
	Description   *string          `json:"description"`
	ContractValue *decimal.Decimal `json:"contract_value"`
}

type GroupResponse struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Description   *string          `json:"description"`
	ContractValue *decimal.Decimal `json:"contract_value,omitempty"`
	MemberCount   int64            `json:"member_count"`
	CreatedAt     string           `json:"created_at"`
}

type GroupService interface {
	List(ctx context.Context) ([]GroupResponse, error)
	Create(ctx context.Context, req GroupRequest) (*GroupResponse, error)
	Update(ctx context.Context, id uuid.UUID, req GroupRequest) (*GroupResponse, error)
	// Delete detaches the members and removes the group in one transaction.
	Delete(ctx context.Context, id uuid.UUID) error
}

type groupService struct {
	repo     repository.GroupRepository
	clients  repository.ClientRepository
	tx       repository.TransactionManager
	audit    AuditService
	notifier Notifier
	logger   *slog.Logger
}

func NewGroupService(
	repo repository.GroupRepository,
	clients repository.ClientRepository,
	tx repository.TransactionManager,
	audit AuditService,
	notifier Notifier,
	logger *slog.Logger,
) GroupService {
	return &groupService{
		repo:     repo,
		clients:  clients,
		tx:       tx,
		audit:    audit,
		notifier: notifier,
		logger:   logger,
	}
}

func toGroupResponse(g *model.Group, members int64, actor policy.Actor) GroupResponse {
	res := GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		MemberCount: members,
		CreatedAt:   g.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if actor.CanSeeContractValue() {
		res.ContractValue = decimalPtr(g.ContractValue)
	}
	return res
}

func duplicateGroupName(err error) error {
	if errors.Is(err, repository.ErrDuplicateKey) {
		return apperror.Conflict("an economic group with this name already exists", err)
	}
	return err
}

func (s *groupService) List(ctx context.Context) ([]GroupResponse, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := s.repo.ListWithCounts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list groups")
	}

	res := make([]GroupResponse, 0, len(groups))
	for i := range groups {
		res = append(res, toGroupResponse(&groups[i].Group, groups[i].MemberCount, actor))
	}
	return res, nil
}

func (s *groupService) Create(ctx context.Context, req GroupRequest) (*GroupResponse, error) {
	actor, err := mutator(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Invalid("group name is required")
	}

	g := &model.Group{Name: name, Description: trimmed(req.Description)}
	if actor.CanSeeContractValue() {
		g.ContractValue = nullDecimal(req.ContractValue)
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, g); err != nil {
			return duplicateGroupName(err)
		}
		return s.audit.Record(txCtx, model.ActionCreateGroup, g.ID.String(), g.Name, nil)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(EventGroupChanged, map[string]any{"id": g.ID})
	res := toGroupResponse(g, 0, actor)
	return &res, nil
}

func (s *groupService) Update(ctx context.Context, id uuid.UUID, req GroupRequest) (*GroupResponse, error) {
	actor, err := mutator(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if id == uuid.Nil || name == "" {
		return nil, apperror.Invalid("group id and name are required")
	}

	var g *model.Group
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		found, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return storeError(err, "economic group not found")
		}
		g = found
		g.Name = name
		g.Description = trimmed(req.Description)
		if actor.CanSeeContractValue() {
			g.ContractValue = nullDecimal(req.ContractValue)
		}
		if err := s.repo.Update(txCtx, g); err != nil {
			return duplicateGroupName(err)
		}
		return s.audit.Record(txCtx, model.ActionUpdateGroup, g.ID.String(), g.Name, nil)
	})
	if err != nil {
		return nil, err
	}

	_, members, err := s.clients.List(ctx, repository.ClientFilter{GroupID: &g.ID, Limit: 1})
	if err != nil {
		return nil, errors.Wrap(err, "count group members")
	}

	s.notifier.Publish(EventGroupChanged, map[string]any{"id": g.ID})
	res := toGroupResponse(g, members, actor)
	return &res, nil
}

func (s *groupService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := mutator(ctx); err != nil {
		return err
	}

	var detached int64
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		g, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return storeError(err, "economic group not found")
		}
		if detached, err = s.clients.ClearGroup(txCtx, id); err != nil {
			return errors.Wrap(err, "detach group members")
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return storeError(err, "economic group not found")
		}
		return s.audit.Record(txCtx, model.ActionDeleteGroup, id.String(), g.Name,
			map[string]any{"detached_clients": detached})
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "group deleted", "group_id", id, "detached_clients", detached)
	s.notifier.Publish(EventGroupDeleted, map[string]any{"id": id})
	return nil
}
