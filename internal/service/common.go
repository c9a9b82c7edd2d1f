package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"backoffice/internal/apperror"
	"backoffice/internal/policy"
	"backoffice/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Notifier receives change events after successful mutations.
type Notifier interface {
	Publish(event string, payload any)
}

type noopNotifier struct{}

func (noopNotifier) Publish(string, any) {}

// NoopNotifier drops every event.
var NoopNotifier Notifier = noopNotifier{}

// Event names published to the notifier
const (
	EventClientChanged = "client.changed"
	EventClientDeleted = "client.deleted"
	EventGroupChanged  = "group.changed"
	EventGroupDeleted  = "group.deleted"
	EventImportDone    = "clients.imported"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// validateStruct returns the first failing field as an invalid-input error.
func validateStruct(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperror.Invalidf("invalid field %s: failed %s", strings.ToLower(fe.Field()), fe.Tag())
	}
	return apperror.Invalid(err.Error())
}

// actorFrom loads the acting user the session middleware stored in ctx.
func actorFrom(ctx context.Context) (policy.Actor, error) {
	a, ok := policy.ActorFrom(ctx)
	if !ok {
		return policy.Actor{}, apperror.Unauthorized("not authenticated")
	}
	return a, nil
}

// mutator returns the actor only if it may change data.
func mutator(ctx context.Context) (policy.Actor, error) {
	a, err := actorFrom(ctx)
	if err != nil {
		return a, err
	}
	if err := a.AssertCanMutate(); err != nil {
		return a, apperror.Forbidden(err)
	}
	return a, nil
}

// storeError turns repository sentinels into application errors.
func storeError(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound(notFound)
	default:
		return err
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

const dateLayout = "2006-01-02"

// Date is a calendar day encoded as YYYY-MM-DD. RFC 3339 input is accepted too.
type Date struct {
	time.Time
}

func NewDate(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	return &Date{Time: *t}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, s); err != nil {
			return errors.Errorf("invalid date %q, expected YYYY-MM-DD", s)
		}
	}
	d.Time = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return nil
}

// Ptr returns the day as a nullable column value.
func (d *Date) Ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}
