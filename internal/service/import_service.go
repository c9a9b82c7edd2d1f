package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"backoffice/internal/apperror"
	"backoffice/internal/importer"
	"backoffice/internal/metrics"
	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type ImportRequest struct {
	Clients json.RawMessage `json:"clients" swaggertype:"array,object"`
}

// ImportResponse keeps the count/skipped/errors shape the spreadsheet
// screen expects; Messages lists the per-row failures.
type ImportResponse struct {
	Count    int      `json:"count"`
	Skipped  int      `json:"skipped"`
	Errors   int      `json:"errors"`
	Messages []string `json:"messages"`
}

type ImportService interface {
	Import(ctx context.Context, raw json.RawMessage) (*ImportResponse, error)
}

type importService struct {
	clients  repository.ClientRepository
	groups   repository.GroupRepository
	audit    AuditService
	notifier Notifier
	logger   *slog.Logger
}

func NewImportService(
	clients repository.ClientRepository,
	groups repository.GroupRepository,
	audit AuditService,
	notifier Notifier,
	logger *slog.Logger,
) ImportService {
	return &importService{
		clients:  clients,
		groups:   groups,
		audit:    audit,
		notifier: notifier,
		logger:   logger,
	}
}

// importStore inserts rows one by one with no surrounding transaction.
type importStore struct {
	repo repository.ClientRepository
}

func (s importStore) InsertClient(ctx context.Context, c *model.Client) error {
	err := s.repo.Create(ctx, c)
	if errors.Is(err, repository.ErrDuplicateKey) {
		return errors.Wrap(importer.ErrDuplicate, err.Error())
	}
	return err
}

func (s importStore) InsertSatellites(ctx context.Context, clientID uuid.UUID) error {
	return s.repo.CreateSatellites(ctx,
		&model.Responsibility{ClientID: clientID},
		&model.ContractedServices{ClientID: clientID})
}

func (s *importService) Import(ctx context.Context, raw json.RawMessage) (*ImportResponse, error) {
	if _, err := mutator(ctx); err != nil {
		return nil, err
	}

	rows, err := importer.DecodeRows(raw)
	if err != nil {
		return nil, apperror.Invalid(err.Error())
	}

	groups, err := s.groups.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load groups for import")
	}

	res, err := importer.New(importStore{repo: s.clients}, s.logger).Run(ctx, rows, importer.NewGroupIndex(groups))
	if err != nil {
		return nil, err
	}

	metrics.RecordImport(res.Imported, res.Skipped, len(res.Errors))
	if err := s.audit.Record(ctx, model.ActionBulkImport, "", "", map[string]int{
		"imported": res.Imported,
		"skipped":  res.Skipped,
		"errors":   len(res.Errors),
	}); err != nil {
		s.logger.ErrorContext(ctx, "import audit not recorded", "error", err)
	}

	if res.Failed() {
		return nil, apperror.Internal("import failed: " + res.FirstError())
	}

	if res.Imported > 0 {
		s.notifier.Publish(EventImportDone, map[string]int{"count": res.Imported})
	}

	messages := res.Errors
	if messages == nil {
		messages = []string{}
	}
	return &ImportResponse{
		Count:    res.Imported,
		Skipped:  res.Skipped,
		Errors:   len(res.Errors),
		Messages: messages,
	}, nil
}
