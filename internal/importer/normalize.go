package importer

import (
	"encoding/json"
	"math"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"github.com/pkg/errors"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrMissingLegalName marks a row that has to be skipped.
var ErrMissingLegalName = errors.New("row has no legal name")

// excelEpoch is day 0 of the spreadsheet serial calendar, so that serial
// 25569 falls on 1970-01-01.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var (
	nonDigit    = regexp.MustCompile(`\D`)
	yearPattern = regexp.MustCompile(`(^|\D)\d{4}(\D|$)`)
)

// dateParser adds spelled-out month and year-first slash layouts to the
// numeric layouts jinzhu/now knows.
var dateParser = &now.Config{
	TimeLocation: time.UTC,
	TimeFormats: append(slices.Clone(now.TimeFormats),
		"January 2, 2006",
		"January 2 2006",
		"Jan 2, 2006",
		"Jan 2 2006",
		"2 January 2006",
		"2 Jan 2006",
		"2006/1/2",
	),
}

// GroupIndex resolves economic group names, lower-cased and trimmed, to ids.
type GroupIndex map[string]uuid.UUID

func NewGroupIndex(groups []model.Group) GroupIndex {
	idx := make(GroupIndex, len(groups))
	for _, g := range groups {
		idx[strings.ToLower(strings.TrimSpace(g.Name))] = g.ID
	}
	return idx
}

// NormalizeTaxID keeps only the digits of a tax ID.
func NormalizeTaxID(s string) string {
	return nonDigit.ReplaceAllString(s, "")
}

// NormalizeUnitType maps free text onto Matriz/Filial.
func NormalizeUnitType(s string) *string {
	low := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.Contains(low, "matriz"):
		return ptr(model.UnitTypeHeadquarters)
	case strings.Contains(low, "filial"):
		return ptr(model.UnitTypeBranch)
	}
	return nil
}

// NormalizeActivity matches accented and unaccented spellings.
func NormalizeActivity(s string) *string {
	low := foldAccents(strings.ToLower(strings.TrimSpace(s)))
	switch {
	case strings.Contains(low, "servico"):
		return ptr(model.ActivityService)
	case strings.Contains(low, "comercio"):
		return ptr(model.ActivityCommerce)
	case strings.Contains(low, "industria"):
		return ptr(model.ActivityIndustry)
	case strings.Contains(low, "ambos"):
		return ptr(model.ActivityBoth)
	}
	return nil
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// ParseEntryDate accepts a spreadsheet serial, a DD/MM/YYYY string or any
// other dated string. Unparsable input yields nil.
func ParseEntryDate(v any) *time.Time {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		return fromSerial(x)
	case int:
		return fromSerial(float64(x))
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil
		}
		return fromSerial(f)
	case string:
		return parseDateString(x)
	}
	return nil
}

func fromSerial(serial float64) *time.Time {
	if serial <= 0 || math.IsNaN(serial) || math.IsInf(serial, 0) {
		return nil
	}
	d := excelEpoch.AddDate(0, 0, int(math.Floor(serial)))
	return &d
}

func parseDateString(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return nil
	}
	if strings.Count(s, "/") == 2 {
		if t, err := time.ParseInLocation("2/1/2006", s, time.UTC); err == nil {
			return &t
		}
	}
	// now.Parse fills missing parts from the current date, so a bare
	// time or month would silently become today.
	if !yearPattern.MatchString(s) {
		return nil
	}
	t, err := dateParser.With(time.Now().UTC()).Parse(s)
	if err != nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

// ParseIncorporation reads the yes/no incorporation column.
func ParseIncorporation(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		s := strings.ToLower(strings.TrimSpace(x))
		return s == "sim" || s == "true"
	}
	return false
}

// ResolveGroup returns nil for unknown names and the "0" placeholder.
func (idx GroupIndex) ResolveGroup(name string) *uuid.UUID {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || key == "0" {
		return nil
	}
	id, ok := idx[key]
	if !ok {
		return nil
	}
	return &id
}

// Normalize turns a row into a client ready to insert. It performs no I/O.
func Normalize(row Row, groups GroupIndex) (*model.Client, error) {
	legalName, ok := row.Text(FieldLegalName)
	if !ok {
		return nil, ErrMissingLegalName
	}

	taxID := model.TaxIDPlaceholder
	if raw, ok := row.Text(FieldTaxID); ok {
		if digits := NormalizeTaxID(raw); digits != "" {
			taxID = digits
		}
	}

	c := &model.Client{
		LegalName:             legalName,
		TaxID:                 taxID,
		Domain:                row.OptionalText(FieldDomain),
		City:                  row.OptionalText(FieldCity),
		State:                 row.OptionalText(FieldState),
		StateRegistration:     row.OptionalText(FieldStateRegistration),
		MunicipalRegistration: row.OptionalText(FieldMunicipalRegistration),
		TaxRegime:             row.OptionalText(FieldTaxRegime),
		Active:                true,
	}
	if s, ok := row.Text(FieldUnitType); ok {
		c.UnitType = NormalizeUnitType(s)
	}
	if s, ok := row.Text(FieldActivity); ok {
		c.Activity = NormalizeActivity(s)
	}
	if s, ok := row.Text(FieldGroup); ok {
		c.GroupID = groups.ResolveGroup(s)
	}
	if v, ok := row.Lookup(FieldEntryDate); ok {
		c.AccountingEntryDate = ParseEntryDate(v)
	}
	if v, ok := row.Lookup(FieldIncorporation); ok {
		c.Incorporation = ParseIncorporation(v)
	}
	return c, nil
}

func ptr[T any](v T) *T {
	return &v
}
