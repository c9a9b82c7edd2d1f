package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UnitType values
const (
	UnitTypeHeadquarters = "Matriz"
	UnitTypeBranch       = "Filial"
)

// Activity values
const (
	ActivityService  = "Serviço"
	ActivityCommerce = "Comércio"
	ActivityIndustry = "Indústria"
	ActivityBoth     = "Ambos"
)

// TaxIDPlaceholder is stored when an imported row carries no tax ID.
const TaxIDPlaceholder = "0"

// Client is a company served by the firm
type Client struct {
	ID                    uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	LegalName             string              `gorm:"type:varchar(255);not null;index" json:"legal_name"`
	TaxID                 string              `gorm:"type:varchar(20);not null;uniqueIndex" json:"tax_id"`
	Domain                *string             `gorm:"type:varchar(100)" json:"domain"`
	GroupID               *uuid.UUID          `gorm:"type:uuid;index" json:"group_id"`
	Group                 *Group              `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
	UnitType              *string             `gorm:"type:varchar(20)" json:"unit_type"`
	FiscalResponsible     *string             `gorm:"type:varchar(255)" json:"fiscal_responsible"`
	City                  *string             `gorm:"type:varchar(120)" json:"city"`
	State                 *string             `gorm:"type:varchar(40)" json:"state"`
	Activity              *string             `gorm:"type:varchar(20)" json:"activity"`
	Incorporation         bool                `gorm:"not null;default:false" json:"incorporation"`
	StateRegistration     *string             `gorm:"type:varchar(50)" json:"state_registration"`
	MunicipalRegistration *string             `gorm:"type:varchar(50)" json:"municipal_registration"`
	ResponsiblePartner    *string             `gorm:"type:varchar(255)" json:"responsible_partner"`
	ShareCapital          decimal.NullDecimal `gorm:"type:numeric(16,2)" json:"share_capital"`
	OpeningDate           *time.Time          `gorm:"type:date" json:"opening_date"`
	AccountingEntryDate   *time.Time          `gorm:"type:date" json:"accounting_entry_date"`
	ExitDate              *time.Time          `gorm:"type:date" json:"exit_date"`
	TaxRegime             *string             `gorm:"type:varchar(100)" json:"tax_regime"`
	ContactName           *string             `gorm:"type:varchar(255)" json:"contact_name"`
	ContactPhone          *string             `gorm:"type:varchar(50)" json:"contact_phone"`
	ContractValue         decimal.NullDecimal `gorm:"type:numeric(16,2)" json:"contract_value"`
	GroupBilling          bool                `gorm:"not null;default:false" json:"group_billing"`
	Active                bool                `gorm:"not null" json:"active"`
	Responsibility        *Responsibility     `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"responsibility,omitempty"`
	Services              *ContractedServices `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"services,omitempty"`
	Partners              []Partner           `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"partners,omitempty"`
	CreatedAt             time.Time           `gorm:"index" json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
}

func (c *Client) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Responsibility maps internal staff to functional roles for one client
type Responsibility struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"client_id"`
	Commercial  *string   `gorm:"type:varchar(255)" json:"commercial"`
	Accounting  *string   `gorm:"type:varchar(255)" json:"accounting"`
	Legal       *string   `gorm:"type:varchar(255)" json:"legal"`
	TaxPlanning *string   `gorm:"type:varchar(255)" json:"tax_planning"`
	Personnel   *string   `gorm:"type:varchar(255)" json:"personnel"`
	Financial   *string   `gorm:"type:varchar(255)" json:"financial"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Responsibility) TableName() string {
	return "client_responsibilities"
}

func (r *Responsibility) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ContractedServices is the fixed catalogue of services a client has active
type ContractedServices struct {
	ID                     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID               uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"client_id"`
	AccountingFiscal       bool      `gorm:"not null;default:false" json:"accounting_fiscal"`
	AccountingBookkeeping  bool      `gorm:"not null;default:false" json:"accounting_bookkeeping"`
	AccountingPayroll      bool      `gorm:"not null;default:false" json:"accounting_payroll"`
	AccountingExpertReport bool      `gorm:"not null;default:false" json:"accounting_expert_report"`
	AccountingLegalization bool      `gorm:"not null;default:false" json:"accounting_legalization"`
	LegalCivil             bool      `gorm:"not null;default:false" json:"legal_civil"`
	LegalLabor             bool      `gorm:"not null;default:false" json:"legal_labor"`
	LegalTenders           bool      `gorm:"not null;default:false" json:"legal_tenders"`
	LegalCriminal          bool      `gorm:"not null;default:false" json:"legal_criminal"`
	LegalCorporate         bool      `gorm:"not null;default:false" json:"legal_corporate"`
	TaxPlanning            bool      `gorm:"not null;default:false" json:"tax_planning"`
	CreatedAt              time.Time `json:"created_at"`
}

func (ContractedServices) TableName() string {
	return "contracted_services"
}

func (s *ContractedServices) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Partner is one line of the client's partnership table (quadro de sócios)
type Partner struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name"`
	SharePercent decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"share_percent"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (Partner) TableName() string {
	return "client_partners"
}

func (p *Partner) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
