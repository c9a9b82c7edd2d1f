package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Group is an economic group: clients that may be billed together
type Group struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string              `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Description   *string             `gorm:"type:text" json:"description"`
	ContractValue decimal.NullDecimal `gorm:"type:numeric(16,2)" json:"contract_value"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func (Group) TableName() string {
	return "economic_groups"
}

func (g *Group) BeforeCreate(_ *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
