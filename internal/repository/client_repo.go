package repository

import (
	"context"
	"time"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClientFilter narrows a client listing. Zero values mean no filter.
type ClientFilter struct {
	Query   string
	GroupID *uuid.UUID
	Offset  int
	Limit   int
}

// ClientRepository defines data access for clients, their satellites and partners
type ClientRepository interface {
	Create(ctx context.Context, c *model.Client) error
	CreateSatellites(ctx context.Context, r *model.Responsibility, s *model.ContractedServices) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	List(ctx context.Context, f ClientFilter) ([]model.Client, int64, error)
	Update(ctx context.Context, c *model.Client) error
	UpsertSatellites(ctx context.Context, r *model.Responsibility, s *model.ContractedServices) error
	Delete(ctx context.Context, id uuid.UUID) error
	ClearGroup(ctx context.Context, groupID uuid.UUID) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)

	AddPartner(ctx context.Context, p *model.Partner) error
	DeletePartner(ctx context.Context, clientID, partnerID uuid.UUID) error
}

type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

// Create inserts the client and whatever associations are already set on it.
func (r *clientRepository) Create(ctx context.Context, c *model.Client) error {
	return translate(GetDB(ctx, r.db).Create(c).Error)
}

func (r *clientRepository) CreateSatellites(ctx context.Context, resp *model.Responsibility, svc *model.ContractedServices) error {
	db := GetDB(ctx, r.db)
	if err := db.Create(resp).Error; err != nil {
		return translate(err)
	}
	return translate(db.Create(svc).Error)
}

func (r *clientRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var c model.Client
	err := GetDB(ctx, r.db).
		Preload("Group").
		Preload("Responsibility").
		Preload("Services").
		Preload("Partners", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *clientRepository) List(ctx context.Context, f ClientFilter) ([]model.Client, int64, error) {
	var clients []model.Client
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Client{})
	if f.Query != "" {
		query = query.Where("LOWER(legal_name) LIKE LOWER(?)", "%"+f.Query+"%")
	}
	if f.GroupID != nil {
		query = query.Where("group_id = ?", *f.GroupID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit > 0 {
		query = query.Offset(f.Offset).Limit(f.Limit)
	}
	if err := query.Preload("Group").Order("legal_name").Find(&clients).Error; err != nil {
		return nil, 0, err
	}

	return clients, total, nil
}

// Update replaces the core row only; satellites go through UpsertSatellites.
func (r *clientRepository) Update(ctx context.Context, c *model.Client) error {
	return translate(GetDB(ctx, r.db).Omit(clause.Associations).Save(c).Error)
}

func (r *clientRepository) UpsertSatellites(ctx context.Context, resp *model.Responsibility, svc *model.ContractedServices) error {
	db := GetDB(ctx, r.db)
	onClient := clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_id"}},
		DoUpdates: clause.AssignmentColumns(responsibilityColumns),
	}
	if err := db.Clauses(onClient).Create(resp).Error; err != nil {
		return translate(err)
	}
	onClient.DoUpdates = clause.AssignmentColumns(serviceColumns)
	return translate(db.Clauses(onClient).Create(svc).Error)
}

var responsibilityColumns = []string{
	"commercial", "accounting", "legal", "tax_planning", "personnel", "financial",
}

var serviceColumns = []string{
	"accounting_fiscal", "accounting_bookkeeping", "accounting_payroll",
	"accounting_expert_report", "accounting_legalization",
	"legal_civil", "legal_labor", "legal_tenders", "legal_criminal", "legal_corporate",
	"tax_planning",
}

// Delete removes the client; satellites and partners cascade.
func (r *clientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Client{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearGroup detaches every member of a group and returns how many were touched.
func (r *clientRepository) ClearGroup(ctx context.Context, groupID uuid.UUID) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.Client{}).
		Where("group_id = ?", groupID).
		Update("group_id", nil)
	return res.RowsAffected, res.Error
}

func (r *clientRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.Client{}).Where("active = ?", true).Count(&n).Error
	return n, err
}

func (r *clientRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.Client{}).Where("created_at >= ?", since).Count(&n).Error
	return n, err
}

func (r *clientRepository) AddPartner(ctx context.Context, p *model.Partner) error {
	return translate(GetDB(ctx, r.db).Create(p).Error)
}

func (r *clientRepository) DeletePartner(ctx context.Context, clientID, partnerID uuid.UUID) error {
	res := GetDB(ctx, r.db).
		Where("id = ? AND client_id = ?", partnerID, clientID).
		Delete(&model.Partner{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
