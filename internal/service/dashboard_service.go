package service

import (
	"context"
	"strings"
	"time"

	"backoffice/internal/repository"

	"github.com/pkg/errors"
)

const dashboardSearchLimit = 20

type DashboardResponse struct {
	ActiveClients    int64            `json:"active_clients"`
	Groups           int64            `json:"groups"`
	ClientsThisMonth int64            `json:"clients_this_month"`
	Search           string           `json:"search,omitempty"`
	Results          []ClientResponse `json:"results,omitempty"`
}

type DashboardService interface {
	Summary(ctx context.Context, search string) (*DashboardResponse, error)
}

type dashboardService struct {
	clients repository.ClientRepository
	groups  repository.GroupRepository
	now     func() time.Time
}

func NewDashboardService(clients repository.ClientRepository, groups repository.GroupRepository) DashboardService {
	return &dashboardService{clients: clients, groups: groups, now: time.Now}
}

// startOfMonth is the first instant of the current UTC month.
func startOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func (s *dashboardService) Summary(ctx context.Context, search string) (*DashboardResponse, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	res := &DashboardResponse{}
	if res.ActiveClients, err = s.clients.CountActive(ctx); err != nil {
		return nil, errors.Wrap(err, "count active clients")
	}
	if res.Groups, err = s.groups.Count(ctx); err != nil {
		return nil, errors.Wrap(err, "count groups")
	}
	if res.ClientsThisMonth, err = s.clients.CountCreatedSince(ctx, startOfMonth(s.now())); err != nil {
		return nil, errors.Wrap(err, "count clients this month")
	}

	search = strings.TrimSpace(search)
	if search == "" {
		return res, nil
	}

	found, _, err := s.clients.List(ctx, repository.ClientFilter{Query: search, Limit: dashboardSearchLimit})
	if err != nil {
		return nil, errors.Wrap(err, "search clients")
	}
	res.Search = search
	res.Results = make([]ClientResponse, 0, len(found))
	for i := range found {
		res.Results = append(res.Results, toClientResponse(&found[i], actor))
	}
	return res, nil
}
