package repository

import (
	"context"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GroupWithCount is a group plus the number of member clients.
type GroupWithCount struct {
	model.Group
	MemberCount int64
}

type GroupRepository interface {
	Create(ctx context.Context, g *model.Group) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Group, error)
	ListAll(ctx context.Context) ([]model.Group, error)
	ListWithCounts(ctx context.Context) ([]GroupWithCount, error)
	Update(ctx context.Context, g *model.Group) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type groupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, g *model.Group) error {
	return translate(GetDB(ctx, r.db).Create(g).Error)
}

func (r *groupRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Group, error) {
	var g model.Group
	if err := GetDB(ctx, r.db).First(&g, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &g, nil
}

func (r *groupRepository) ListAll(ctx context.Context) ([]model.Group, error) {
	var groups []model.Group
	err := GetDB(ctx, r.db).Order("name").Find(&groups).Error
	return groups, err
}

func (r *groupRepository) ListWithCounts(ctx context.Context) ([]GroupWithCount, error) {
	groups, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var counts []struct {
		GroupID uuid.UUID
		Total   int64
	}
	err = GetDB(ctx, r.db).Model(&model.Client{}).
		Select("group_id, COUNT(*) AS total").
		Where("group_id IS NOT NULL").
		Group("group_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	byGroup := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		byGroup[c.GroupID] = c.Total
	}

	out := make([]GroupWithCount, 0, len(groups))
	for _, g := range groups {
		out = append(out, GroupWithCount{Group: g, MemberCount: byGroup[g.ID]})
	}
	return out, nil
}

func (r *groupRepository) Update(ctx context.Context, g *model.Group) error {
	return translate(GetDB(ctx, r.db).Save(g).Error)
}

func (r *groupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Group{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *groupRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.Group{}).Count(&n).Error
	return n, err
}
