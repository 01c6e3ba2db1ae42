package warehouse

// Operator is a filter comparison operator. Each dialect declares which
// operators it supports; translation of an unsupported operator is an
// error, never a silent drop.
type Operator string

const (
	OpEq    Operator = "="
	OpNeq   Operator = "!="
	OpLt    Operator = "<"
	OpLte   Operator = "<="
	OpGt    Operator = ">"
	OpGte   Operator = ">="
	OpLike  Operator = "LIKE"
	OpILike Operator = "ILIKE"
	OpIn    Operator = "IN"
)

// Filter is an optional row predicate applied to every query a plugin or
// coordinator generates for a column. It is captured by value at
// construction and must not be mutated afterwards.
//
// Value carries the operand for scalar operators; Values carries the
// operand list for OpIn.
type Filter struct {
	Field    string
	Operator Operator
	Value    any
	Values   []any
}
