package service

import (
	"context"
	"log/slog"
	"strings"

	"backoffice/internal/apperror"
	"backoffice/internal/model"
	"backoffice/internal/policy"
	"backoffice/internal/repository"
	"backoffice/pkg/pagination"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var errLegalNameAndTaxID = apperror.Invalid("legal name and tax ID are required")

type ResponsibilityInput struct {
	Commercial  *string `json:"commercial"`
	Accounting  *string `json:"accounting"`
	Legal       *string `json:"legal"`
	TaxPlanning *string `json:"tax_planning"`
	Personnel   *string `json:"personnel"`
	Financial   *string `json:"financial"`
}

type ServicesInput struct {
	AccountingFiscal       bool `json:"accounting_fiscal"`
	AccountingBookkeeping  bool `json:"accounting_bookkeeping"`
	AccountingPayroll      bool `json:"accounting_payroll"`
	AccountingExpertReport bool `json:"accounting_expert_report"`
	AccountingLegalization bool `json:"accounting_legalization"`
	LegalCivil             bool `json:"legal_civil"`
	LegalLabor             bool `json:"legal_labor"`
	LegalTenders           bool `json:"legal_tenders"`
	LegalCriminal          bool `json:"legal_criminal"`
	LegalCorporate         bool `json:"legal_corporate"`
	TaxPlanning            bool `json:"tax_planning"`
}

type PartnerRequest struct {
	Name         string          `json:"name" validate:"required"`
	SharePercent decimal.Decimal `json:"share_percent"`
}

// ClientRequest is the full client form. Update replaces every core field.
type ClientRequest struct {
	LegalName             string              `json:"legal_name"`
	TaxID                 string              `json:"tax_id"`
	Domain                *string             `json:"domain"`
	GroupID               *uuid.UUID          `json:"group_id"`
	UnitType              *string             `json:"unit_type" validate:"omitempty,oneof=Matriz Filial"`
	FiscalResponsible     *string             `json:"fiscal_responsible"`
	City                  *string             `json:"city"`
	State                 *string             `json:"state"`
	Activity              *string             `json:"activity" validate:"omitempty,oneof=Serviço Comércio Indústria Ambos"`
	Incorporation         bool                `json:"incorporation"`
	StateRegistration     *string             `json:"state_registration"`
	MunicipalRegistration *string             `json:"municipal_registration"`
	ResponsiblePartner    *string             `json:"responsible_partner"`
	ShareCapital          *decimal.Decimal    `json:"share_capital"`
	OpeningDate           *Date               `json:"opening_date" swaggertype:"string"`
	AccountingEntryDate   *Date               `json:"accounting_entry_date" swaggertype:"string"`
	ExitDate              *Date               `json:"exit_date" swaggertype:"string"`
	TaxRegime             *string             `json:"tax_regime"`
	ContactName           *string             `json:"contact_name"`
	ContactPhone          *string             `json:"contact_phone"`
	ContractValue         *decimal.Decimal    `json:"contract_value"`
	GroupBilling          bool                `json:"group_billing"`
	Active                *bool               `json:"active"`
	Responsibility        ResponsibilityInput `json:"responsibility"`
	Services              ServicesInput       `json:"services"`
	Partner               *PartnerRequest     `json:"partner"`
}

type PartnerResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	SharePercent decimal.Decimal `json:"share_percent"`
}

// ClientResponse omits contract_value for roles that may not see it.
type ClientResponse struct {
	ID                    uuid.UUID            `json:"id"`
	LegalName             string               `json:"legal_name"`
	TaxID                 string               `json:"tax_id"`
	Domain                *string              `json:"domain"`
	GroupID               *uuid.UUID           `json:"group_id"`
	GroupName             *string              `json:"group_name"`
	UnitType              *string              `json:"unit_type"`
	FiscalResponsible     *string              `json:"fiscal_responsible"`
	City                  *string              `json:"city"`
	State                 *string              `json:"state"`
	Activity              *string              `json:"activity"`
	Incorporation         bool                 `json:"incorporation"`
	StateRegistration     *string              `json:"state_registration"`
	MunicipalRegistration *string              `json:"municipal_registration"`
	ResponsiblePartner    *string              `json:"responsible_partner"`
	ShareCapital          *decimal.Decimal     `json:"share_capital"`
	OpeningDate           *Date                `json:"opening_date" swaggertype:"string"`
	AccountingEntryDate   *Date                `json:"accounting_entry_date" swaggertype:"string"`
	ExitDate              *Date                `json:"exit_date" swaggertype:"string"`
	TaxRegime             *string              `json:"tax_regime"`
	ContactName           *string              `json:"contact_name"`
	ContactPhone          *string              `json:"contact_phone"`
	ContractValue         *decimal.Decimal     `json:"contract_value,omitempty"`
	GroupBilling          bool                 `json:"group_billing"`
	Active                bool                 `json:"active"`
	Responsibility        *ResponsibilityInput `json:"responsibility,omitempty"`
	Services              *ServicesInput       `json:"services,omitempty"`
	Partners              []PartnerResponse    `json:"partners,omitempty"`
	CreatedAt             string               `json:"created_at"`
}

type ClientListQuery struct {
	Query   string
	GroupID *uuid.UUID
	Page    pagination.Params
}

type ClientService interface {
	Create(ctx context.Context, req ClientRequest) (*ClientResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*ClientResponse, error)
	List(ctx context.Context, q ClientListQuery) (pagination.Page[ClientResponse], error)
	Update(ctx context.Context, id uuid.UUID, req ClientRequest) (*ClientResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddPartner(ctx context.Context, clientID uuid.UUID, req PartnerRequest) (*PartnerResponse, error)
	RemovePartner(ctx context.Context, clientID, partnerID uuid.UUID) error
}

type clientService struct {
	repo     repository.ClientRepository
	groups   repository.GroupRepository
	tx       repository.TransactionManager
	audit    AuditService
	notifier Notifier
	logger   *slog.Logger
}

func NewClientService(
	repo repository.ClientRepository,
	groups repository.GroupRepository,
	tx repository.TransactionManager,
	audit AuditService,
	notifier Notifier,
	logger *slog.Logger,
) ClientService {
	return &clientService{
		repo:     repo,
		groups:   groups,
		tx:       tx,
		audit:    audit,
		notifier: notifier,
		logger:   logger,
	}
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func (r ResponsibilityInput) toModel(clientID uuid.UUID) *model.Responsibility {
	return &model.Responsibility{
		ClientID:    clientID,
		Commercial:  trimmed(r.Commercial),
		Accounting:  trimmed(r.Accounting),
		Legal:       trimmed(r.Legal),
		TaxPlanning: trimmed(r.TaxPlanning),
		Personnel:   trimmed(r.Personnel),
		Financial:   trimmed(r.Financial),
	}
}

func (s ServicesInput) toModel(clientID uuid.UUID) *model.ContractedServices {
	return &model.ContractedServices{
		ClientID:               clientID,
		AccountingFiscal:       s.AccountingFiscal,
		AccountingBookkeeping:  s.AccountingBookkeeping,
		AccountingPayroll:      s.AccountingPayroll,
		AccountingExpertReport: s.AccountingExpertReport,
		AccountingLegalization: s.AccountingLegalization,
		LegalCivil:             s.LegalCivil,
		LegalLabor:             s.LegalLabor,
		LegalTenders:           s.LegalTenders,
		LegalCriminal:          s.LegalCriminal,
		LegalCorporate:         s.LegalCorporate,
		TaxPlanning:            s.TaxPlanning,
	}
}

// validate trims the required fields in place and checks the enumerations.
func (req *ClientRequest) validate() error {
	req.LegalName = strings.TrimSpace(req.LegalName)
	req.TaxID = strings.TrimSpace(req.TaxID)
	if req.LegalName == "" || req.TaxID == "" {
		return errLegalNameAndTaxID
	}
	if req.UnitType != nil && strings.TrimSpace(*req.UnitType) == "" {
		req.UnitType = nil
	}
	if req.Activity != nil && strings.TrimSpace(*req.Activity) == "" {
		req.Activity = nil
	}
	if req.Partner != nil {
		if err := req.Partner.validate(); err != nil {
			return err
		}
	}
	return validateStruct(req)
}

func (req *PartnerRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return apperror.Invalid("partner name is required")
	}
	if req.SharePercent.IsNegative() || req.SharePercent.GreaterThan(decimal.NewFromInt(100)) {
		return apperror.Invalid("share percent must be between 0 and 100")
	}
	return nil
}

// apply copies the request onto the core row. The contract value is only
// touched when the actor may see it, so hidden values survive an update.
func (req *ClientRequest) apply(c *model.Client, actor policy.Actor) {
	c.LegalName = req.LegalName
	c.TaxID = req.TaxID
	c.Domain = trimmed(req.Domain)
	c.GroupID = req.GroupID
	c.Group = nil
	c.UnitType = req.UnitType
	c.FiscalResponsible = trimmed(req.FiscalResponsible)
	c.City = trimmed(req.City)
	c.State = trimmed(req.State)
	c.Activity = req.Activity
	c.Incorporation = req.Incorporation
	c.StateRegistration = trimmed(req.StateRegistration)
	c.MunicipalRegistration = trimmed(req.MunicipalRegistration)
	c.ResponsiblePartner = trimmed(req.ResponsiblePartner)
	c.ShareCapital = nullDecimal(req.ShareCapital)
	c.OpeningDate = req.OpeningDate.Ptr()
	c.AccountingEntryDate = req.AccountingEntryDate.Ptr()
	c.ExitDate = req.ExitDate.Ptr()
	c.TaxRegime = trimmed(req.TaxRegime)
	c.ContactName = trimmed(req.ContactName)
	c.ContactPhone = trimmed(req.ContactPhone)
	c.GroupBilling = req.GroupBilling
	if req.Active != nil {
		c.Active = *req.Active
	}
	if actor.CanSeeContractValue() {
		c.ContractValue = nullDecimal(req.ContractValue)
	}
}

func toClientResponse(c *model.Client, actor policy.Actor) ClientResponse {
	res := ClientResponse{
		ID:                    c.ID,
		LegalName:             c.LegalName,
		TaxID:                 c.TaxID,
		Domain:                c.Domain,
		GroupID:               c.GroupID,
		UnitType:              c.UnitType,
		FiscalResponsible:     c.FiscalResponsible,
		City:                  c.City,
		State:                 c.State,
		Activity:              c.Activity,
		Incorporation:         c.Incorporation,
		StateRegistration:     c.StateRegistration,
		MunicipalRegistration: c.MunicipalRegistration,
		ResponsiblePartner:    c.ResponsiblePartner,
		ShareCapital:          decimalPtr(c.ShareCapital),
		OpeningDate:           NewDate(c.OpeningDate),
		AccountingEntryDate:   NewDate(c.AccountingEntryDate),
		ExitDate:              NewDate(c.ExitDate),
		TaxRegime:             c.TaxRegime,
		ContactName:           c.ContactName,
		ContactPhone:          c.ContactPhone,
		GroupBilling:          c.GroupBilling,
		Active:                c.Active,
		CreatedAt:             c.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if c.Group != nil {
		name := c.Group.Name
		res.GroupName = &name
	}
	if actor.CanSeeContractValue() {
		res.ContractValue = decimalPtr(c.ContractValue)
	}
	if r := c.Responsibility; r != nil {
		res.Responsibility = &ResponsibilityInput{
			Commercial:  r.Commercial,
			Accounting:  r.Accounting,
			Legal:       r.Legal,
			TaxPlanning: r.TaxPlanning,
			Personnel:   r.Personnel,
			Financial:   r.Financial,
		}
	}
	if s := c.Services; s != nil {
		res.Services = &ServicesInput{
			AccountingFiscal:       s.AccountingFiscal,
			AccountingBookkeeping:  s.AccountingBookkeeping,
			AccountingPayroll:      s.AccountingPayroll,
			AccountingExpertReport: s.AccountingExpertReport,
			AccountingLegalization: s.AccountingLegalization,
			LegalCivil:             s.LegalCivil,
			LegalLabor:             s.LegalLabor,
			LegalTenders:           s.LegalTenders,
			LegalCriminal:          s.LegalCriminal,
			LegalCorporate:         s.LegalCorporate,
			TaxPlanning:            s.TaxPlanning,
		}
	}
	for _, p := range c.Partners {
		res.Partners = append(res.Partners, PartnerResponse{ID: p.ID, Name: p.Name, SharePercent: p.SharePercent})
	}
	return res
}

func (s *clientService) checkGroup(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.groups.GetByID(ctx, *id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Invalid("economic group does not exist")
		}
		return err
	}
	return nil
}

func duplicateTaxID(err error) error {
	if errors.Is(err, repository.ErrDuplicateKey) {
		return apperror.Conflict("a client with this tax ID already exists", err)
	}
	return err
}

func (s *clientService) Create(ctx context.Context, req ClientRequest) (*ClientResponse, error) {
	actor, err := mutator(ctx)
	if err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	if err := s.checkGroup(ctx, req.GroupID); err != nil {
		return nil, err
	}

	client := &model.Client{Active: true}
	req.apply(client, actor)

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, client); err != nil {
			return duplicateTaxID(err)
		}
		if err := s.repo.CreateSatellites(txCtx,
			req.Responsibility.toModel(client.ID),
			req.Services.toModel(client.ID)); err != nil {
			return errors.Wrap(err, "create client satellites")
		}
		if req.Partner != nil {
			p := &model.Partner{ClientID: client.ID, Name: req.Partner.Name, SharePercent: req.Partner.SharePercent}
			if err := s.repo.AddPartner(txCtx, p); err != nil {
				return errors.Wrap(err, "create first partner")
			}
		}
		return s.audit.Record(txCtx, model.ActionCreateClient, client.ID.String(), client.LegalName,
			map[string]any{"tax_id": client.TaxID})
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(EventClientChanged, map[string]any{"id": client.ID})
	return s.Get(ctx, client.ID)
}

func (s *clientService) Get(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "client not found")
	}
	res := toClientResponse(c, actor)
	return &res, nil
}

func (s *clientService) List(ctx context.Context, q ClientListQuery) (pagination.Page[ClientResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return pagination.Page[ClientResponse]{}, err
	}

	clients, total, err := s.repo.List(ctx, repository.ClientFilter{
		Query:   strings.TrimSpace(q.Query),
		GroupID: q.GroupID,
		Offset:  q.Page.Offset,
		Limit:   q.Page.Limit,
	})
	if err != nil {
		return pagination.Page[ClientResponse]{}, errors.Wrap(err, "list clients")
	}

	items := make([]ClientResponse, 0, len(clients))
	for i := range clients {
		items = append(items, toClientResponse(&clients[i], actor))
	}
	return pagination.NewPage(items, total, q.Page), nil
}

func (s *clientService) Update(ctx context.Context, id uuid.UUID, req ClientRequest) (*ClientResponse, error) {
	actor, err := mutator(ctx)
	if err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	if err := s.checkGroup(ctx, req.GroupID); err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		client, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return storeError(err, "client not found")
		}
		req.apply(client, actor)

		if err := s.repo.Update(txCtx, client); err != nil {
			return duplicateTaxID(err)
		}
		if err := s.repo.UpsertSatellites(txCtx,
			req.Responsibility.toModel(client.ID),
			req.Services.toModel(client.ID)); err != nil {
			return errors.Wrap(err, "upsert client satellites")
		}
		return s.audit.Record(txCtx, model.ActionUpdateClient, client.ID.String(), client.LegalName, nil)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(EventClientChanged, map[string]any{"id": id})
	return s.Get(ctx, id)
}

func (s *clientService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := mutator(ctx); err != nil {
		return err
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		client, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return storeError(err, "client not found")
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return storeError(err, "client not found")
		}
		return s.audit.Record(txCtx, model.ActionDeleteClient, id.String(), client.LegalName, nil)
	})
	if err != nil {
		return err
	}

	s.notifier.Publish(EventClientDeleted, map[string]any{"id": id})
	return nil
}

func (s *clientService) AddPartner(ctx context.Context, clientID uuid.UUID, req PartnerRequest) (*PartnerResponse, error) {
	if _, err := mutator(ctx); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	p := &model.Partner{ClientID: clientID, Name: req.Name, SharePercent: req.SharePercent}
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetByID(txCtx, clientID); err != nil {
			return storeError(err, "client not found")
		}
		if err := s.repo.AddPartner(txCtx, p); err != nil {
			return errors.Wrap(err, "add partner")
		}
		return s.audit.Record(txCtx, model.ActionAddPartner, clientID.String(), p.Name,
			map[string]any{"share_percent": p.SharePercent})
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(EventClientChanged, map[string]any{"id": clientID})
	return &PartnerResponse{ID: p.ID, Name: p.Name, SharePercent: p.SharePercent}, nil
}

func (s *clientService) RemovePartner(ctx context.Context, clientID, partnerID uuid.UUID) error {
	if _, err := mutator(ctx); err != nil {
		return err
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.DeletePartner(txCtx, clientID, partnerID); err != nil {
			return storeError(err, "partner not found")
		}
		return s.audit.Record(txCtx, model.ActionRemovePartner, clientID.String(), partnerID.String(), nil)
	})
	if err != nil {
		return err
	}

	s.notifier.Publish(EventClientChanged, map[string]any{"id": clientID})
	return nil
}
