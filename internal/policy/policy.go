// Package policy decides what each user role may do. It performs no I/O;
// callers pass the freshly loaded Actor on every request.
package policy

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleUser     Role = "user"
	RoleDirector Role = "director"
	RoleFinance  Role = "finance"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleAdmin, RoleUser, RoleDirector, RoleFinance}

type capability uint8

const (
	capMutate capability = 1 << iota
	capSeeContractValue
)

var roleCapabilities = map[Role]capability{
	RoleAdmin:    capMutate,
	RoleUser:     0,
	RoleDirector: capMutate | capSeeContractValue,
	RoleFinance:  capMutate | capSeeContractValue,
}

// legacy values written by the first version of the panel
var roleAliases = map[string]Role{
	"diretor":    RoleDirector,
	"financeiro": RoleFinance,
}

// ErrForbidden is returned when an action is attempted without mutation rights.
var ErrForbidden = errors.New("action allowed for administrators only")

// ParseRole accepts the canonical role names and their legacy Portuguese spellings.
func ParseRole(s string) (Role, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if r, ok := roleAliases[s]; ok {
		return r, true
	}
	r := Role(s)
	if _, ok := roleCapabilities[r]; !ok {
		return "", false
	}
	return r, true
}

func (r Role) has(c capability) bool {
	return roleCapabilities[r]&c != 0
}

// CanMutate reports whether the role may create, update or delete records.
func CanMutate(r Role) bool {
	return r.has(capMutate)
}

// CanSeeContractValue reports whether the monetary contract value is visible to the role.
func CanSeeContractValue(r Role) bool {
	return r.has(capSeeContractValue)
}

// Actor is the authenticated user acting on a request.
type Actor struct {
	ID   uuid.UUID
	Name string
	Role Role
}

func (a Actor) CanMutate() bool {
	return CanMutate(a.Role)
}

func (a Actor) CanSeeContractValue() bool {
	return CanSeeContractValue(a.Role)
}

// AssertCanMutate is used by state-changing actions.
func (a Actor) AssertCanMutate() error {
	if !a.CanMutate() {
		return ErrForbidden
	}
	return nil
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
