package importer

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Row is one spreadsheet line as decoded from JSON. Values are string,
// float64, bool or nil; anything else is rendered with fmt.
type Row map[string]any

// Field is a logical column and the header aliases accepted for it, in
// priority order.
type Field struct {
	Name    string
	Aliases []string
}

var (
	FieldLegalName             = Field{"legal_name", []string{"Empresas", "Empresa", "Razão Social", "razao_social"}}
	FieldTaxID                 = Field{"tax_id", []string{"CNPJ", "cnpj"}}
	FieldDomain                = Field{"domain", []string{"Domínio", "Dominio"}}
	FieldUnitType              = Field{"unit_type", []string{"Unidade"}}
	FieldCity                  = Field{"city", []string{"Cidade"}}
	FieldState                 = Field{"state", []string{"UF", "Estado"}}
	FieldStateRegistration     = Field{"state_registration", []string{"Insc. Estadual"}}
	FieldMunicipalRegistration = Field{"municipal_registration", []string{"Insc. Municipal"}}
	FieldTaxRegime             = Field{"tax_regime", []string{"Regime Tributação", "Regime Tributario"}}
	FieldActivity              = Field{"activity", []string{"Atividade"}}
	FieldEntryDate             = Field{"entry_date", []string{"Entrada"}}
	FieldIncorporation         = Field{"incorporation", []string{"Constituição", "Constituicao"}}
	FieldGroup                 = Field{"group", []string{"Grupo"}}
)

// foldKey lower-cases a header and collapses its whitespace.
func foldKey(k string) string {
	return strings.Join(strings.Fields(strings.ToLower(k)), " ")
}

// Lookup returns the value of the first alias present in the row. The
// second result is false when no alias matches or when the matched cell
// is null or blank; later aliases are not consulted once one matches.
func (r Row) Lookup(f Field) (any, bool) {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, alias := range f.Aliases {
		want := foldKey(alias)
		for _, k := range keys {
			if foldKey(k) != want {
				continue
			}
			v := r[k]
			if v == nil || strings.TrimSpace(stringify(v)) == "" {
				return nil, false
			}
			return v, true
		}
	}
	return nil, false
}

// Text returns the trimmed cell as a string.
func (r Row) Text(f Field) (string, bool) {
	v, ok := r.Lookup(f)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(stringify(v)), true
}

// OptionalText is Text for nullable columns.
func (r Row) OptionalText(f Field) *string {
	s, ok := r.Text(f)
	if !ok {
		return nil
	}
	return &s
}

// stringify renders numbers without an exponent so that large tax IDs
// survive the spreadsheet round-trip.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// DecodeRows parses the spreadsheet payload. Anything but a non-empty JSON
// array of objects yields ErrNoRows.
func DecodeRows(raw json.RawMessage) ([]Row, error) {
	var rows []Row
	if len(raw) == 0 || json.Unmarshal(raw, &rows) != nil || len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows, nil
}
