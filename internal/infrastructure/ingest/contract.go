package ingest

import (
	"strings"

	"github.com/techlogistics/backend/internal/domain/shared"
)

// FieldType is the expected type of a contract column.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "int"
	TypeFloat   FieldType = "float"
	TypeDecimal FieldType = "decimal"
	TypeDate    FieldType = "date"
	TypeBool    FieldType = "bool"
)

// Column binds a logical field to a CSV column. Header names are
// configuration; the cleaning and analytics code only ever sees field names.
type Column struct {
	Field       string
	Header      string
	Type        FieldType
	Identifying bool // absence of the header is fatal for the dataset
	DateFormat  string
}

// Contract is the expected column set for one dataset.
type Contract struct {
	Dataset string
	Columns []Column
}

// Validate checks the parsed headers against the contract. A missing
// identifying column yields a SchemaError; missing non-identifying columns
// degrade gracefully (their cells all read as missing and are picked up by
// the imputation stage).
func (c Contract) Validate(p *Parser) error {
	var missing []string
	for _, col := range c.Columns {
		if col.Identifying && !p.HasHeader(col.Header) {
			missing = append(missing, col.Header)
		}
	}
	if len(missing) > 0 {
		return shared.NewSchemaError(c.Dataset, missing)
	}
	return nil
}

// column returns the contract column for a logical field.
func (c Contract) column(field string) (Column, bool) {
	for _, col := range c.Columns {
		if col.Field == field {
			return col, true
		}
	}
	return Column{}, false
}

// missingTokens are source values treated as absent cells at ingest time.
// Categorical sentinels like "???" are not listed here: they survive ingest
// and are resolved by the categorical normalizer.
var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"none": true,
	"null": true,
}

func isMissingToken(v string) bool {
	return missingTokens[strings.ToLower(strings.TrimSpace(v))]
}
