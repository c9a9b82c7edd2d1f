package database

import (
	"log/slog"

	"backoffice/internal/model"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Config returns the gorm settings shared by production and test databases.
// TranslateError turns driver unique violations into gorm.ErrDuplicatedKey.
func Config(logger *slog.Logger) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         newSlogLogger(logger),
	}
}

// NewConnection initializes a new connection pool using GORM and migrates the schema
func NewConnection(dsn string, logger *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), Config(logger))
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}

	if err := Migrate(db); err != nil {
		logger.Warn("failed to auto-migrate models", "error", err)
	}

	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return errors.Wrap(db.AutoMigrate(
		&model.User{},
		&model.Group{},
		&model.Client{},
		&model.Responsibility{},
		&model.ContractedServices{},
		&model.Partner{},
		&model.AuditLog{},
	), "auto-migrate")
}
