package warehouse

import (
	"fmt"

	"github.com/dataprofhq/engine/pkg/apperrors"
)

// Type identifies a supported warehouse backend. The set is closed:
// profiling components are constructed for exactly one of these and
// reject anything else at construction time.
type Type string

const (
	Postgres  Type = "postgres"
	BigQuery  Type = "bigquery"
	Snowflake Type = "snowflake"
)

// ParseType converts a warehouse tag (as stored in config or supplied by a
// caller) into a Type.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case Postgres, BigQuery, Snowflake:
		return Type(s), nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownWarehouse, s)
	}
}

// Valid reports whether t is one of the supported backends.
func (t Type) Valid() bool {
	_, err := ParseType(string(t))
	return err == nil
}

// ColumnRef identifies a physical column location. It is captured by value
// at plugin/coordinator construction and never mutated afterwards.
type ColumnRef struct {
	Schema string
	Table  string
	Column string
}

// ColumnMeta is a discovered column: its name and the warehouse-native type
// string reported by the backend's catalog.
type ColumnMeta struct {
	Name       string `json:"name"`
	NativeType string `json:"native_type"`
}

// SemanticType is the category a warehouse-native column type maps to.
// It selects which insights apply to a column.
type SemanticType string

const (
	SemanticNumeric  SemanticType = "numeric"
	SemanticString   SemanticType = "string"
	SemanticDatetime SemanticType = "datetime"
	SemanticBoolean  SemanticType = "boolean"
)
