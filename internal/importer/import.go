package importer

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	// ErrNoRows is returned when there is nothing to import.
	ErrNoRows = errors.New("no rows found in spreadsheet")
	// ErrDuplicate must be returned (or wrapped) by a Store when the client
	// violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate key")
)

// Store is the persistence the import needs. Satellite rows are inserted
// separately from the client and are not rolled back together.
type Store interface {
	InsertClient(ctx context.Context, c *model.Client) error
	InsertSatellites(ctx context.Context, clientID uuid.UUID) error
}

// Result summarizes one import. It is a value: each step returns a new one.
type Result struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// Failed reports whether the import as a whole must be treated as a failure.
func (r Result) Failed() bool {
	return r.Imported == 0 && len(r.Errors) > 0
}

func (r Result) FirstError() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0]
}

func (r Result) imported() Result {
	r.Imported++
	return r
}

func (r Result) skipped() Result {
	r.Skipped++
	return r
}

func (r Result) failed(msg string) Result {
	r.Errors = append(slices.Clip(r.Errors), msg)
	return r
}

// Importer folds spreadsheet rows into the store, one insert per row.
type Importer struct {
	store  Store
	logger *slog.Logger
}

func New(store Store, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{store: store, logger: logger}
}

// Run processes rows in order. A row failure never aborts the rest; the
// returned error is only set for empty input or a cancelled context.
func (im *Importer) Run(ctx context.Context, rows []Row, groups GroupIndex) (Result, error) {
	if len(rows) == 0 {
		return Result{}, ErrNoRows
	}

	im.logger.InfoContext(ctx, "import started", "rows", len(rows))
	res := Result{}
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return res, errors.Wrapf(err, "import interrupted at row %d", i+1)
		}
		res = im.step(ctx, res, i+1, row, groups)
	}
	im.logger.InfoContext(ctx, "import finished",
		"imported", res.Imported, "skipped", res.Skipped, "errors", len(res.Errors))
	return res, nil
}

func (im *Importer) step(ctx context.Context, acc Result, line int, row Row, groups GroupIndex) Result {
	client, err := Normalize(row, groups)
	if err != nil {
		im.logger.DebugContext(ctx, "row skipped", "line", line, "reason", err.Error())
		return acc.skipped()
	}

	if err := im.store.InsertClient(ctx, client); err != nil {
		msg := insertFailure(client, err)
		im.logger.WarnContext(ctx, "row rejected", "line", line, "error", msg)
		return acc.failed(msg)
	}

	if err := im.store.InsertSatellites(ctx, client.ID); err != nil {
		im.logger.WarnContext(ctx, "satellite rows not created",
			"client_id", client.ID, "error", err)
	}
	return acc.imported()
}

func insertFailure(c *model.Client, err error) string {
	if errors.Is(err, ErrDuplicate) {
		return fmt.Sprintf("client %q already exists (duplicate tax ID: %s)", c.LegalName, c.TaxID)
	}
	return fmt.Sprintf("failed to insert %s: %v", c.LegalName, err)
}
