package warehouse

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dataprofhq/engine/pkg/apperrors"
)

// AggFunc is a SQL aggregate function name as understood by the query
// builder. Dialects declare which functions they support.
type AggFunc string

const (
	AggCount         AggFunc = "COUNT"
	AggCountDistinct AggFunc = "COUNT_DISTINCT"
	AggMin           AggFunc = "MIN"
	AggMax           AggFunc = "MAX"
	AggAvg           AggFunc = "AVG"
	AggSum           AggFunc = "SUM"
)

// Dialect holds the SQL-generation rules for one warehouse backend:
// identifier quoting, string-literal escaping, the supported filter
// operators and aggregate functions, expression templates, and the
// native-type translation table. Dialects are static; nothing mutates
// them after process start.
type Dialect struct {
	wtype Type

	quote        string // identifier quote character
	backslashEsc bool   // string literals escape ' with \' instead of ''

	operators  map[Operator]struct{}
	aggregates map[AggFunc]struct{}

	widthBucket bool

	// nativeTypes maps a normalized native type name to its semantic type.
	nativeTypes map[string]SemanticType
}

var scalarOps = []Operator{OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte, OpLike, OpIn}

var allAggs = []AggFunc{AggCount, AggCountDistinct, AggMin, AggMax, AggAvg, AggSum}

var dialects = map[Type]*Dialect{
	Postgres: {
		wtype:       Postgres,
		quote:       `"`,
		operators:   operatorSet(append(scalarOps, OpILike)...),
		aggregates:  aggregateSet(allAggs...),
		widthBucket: true,
		nativeTypes: postgresTypes,
	},
	BigQuery: {
		wtype:        BigQuery,
		quote:        "`",
		backslashEsc: true,
		operators:    operatorSet(scalarOps...),
		aggregates:   aggregateSet(allAggs...),
		nativeTypes:  bigqueryTypes,
	},
	Snowflake: {
		wtype:       Snowflake,
		quote:       `"`,
		operators:   operatorSet(append(scalarOps, OpILike)...),
		aggregates:  aggregateSet(allAggs...),
		widthBucket: true,
		nativeTypes: snowflakeTypes,
	},
}

// DialectFor returns the dialect rules for a warehouse type.
func DialectFor(t Type) (*Dialect, error) {
	d, ok := dialects[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownWarehouse, t)
	}
	return d, nil
}

// Type returns the warehouse this dialect belongs to.
func (d *Dialect) Type() Type { return d.wtype }

// QuoteIdent quotes a single identifier, escaping embedded quote
// characters by doubling.
func (d *Dialect) QuoteIdent(name string) string {
	escaped := strings.ReplaceAll(name, d.quote, d.quote+d.quote)
	return d.quote + escaped + d.quote
}

// QualifiedTable renders schema.table with both parts quoted.
func (d *Dialect) QualifiedTable(schema, table string) string {
	return d.QuoteIdent(schema) + "." + d.QuoteIdent(table)
}

// SupportsOperator reports whether the dialect accepts a filter operator.
func (d *Dialect) SupportsOperator(op Operator) bool {
	_, ok := d.operators[op]
	return ok
}

// SupportsAggregate reports whether the dialect accepts an aggregate function.
func (d *Dialect) SupportsAggregate(fn AggFunc) bool {
	_, ok := d.aggregates[fn]
	return ok
}

// SupportsWidthBucket reports whether the dialect has a WIDTH_BUCKET
// function (BigQuery does not).
func (d *Dialect) SupportsWidthBucket() bool { return d.widthBucket }

// QuoteLiteral renders a Go value as a SQL literal for this dialect.
// Strings are quoted with dialect-correct escaping; numbers, booleans and
// timestamps render to their canonical SQL forms.
func (d *Dialect) QuoteLiteral(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return d.quoteString(val), nil
	case bool:
		if val {
			return "TRUE", nil
		}
		return "FALSE", nil
	case int:
		return strconv.FormatInt(int64(val), 10), nil
	case int32:
		return strconv.FormatInt(int64(val), 10), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case decimal.Decimal:
		return val.String(), nil
	case time.Time:
		return d.quoteString(val.UTC().Format("2006-01-02 15:04:05")), nil
	case nil:
		return "NULL", nil
	default:
		return "", fmt.Errorf("%w: unsupported literal type %T", apperrors.ErrMalformedFilter, v)
	}
}

func (d *Dialect) quoteString(s string) string {
	if d.backslashEsc {
		s = strings.ReplaceAll(s, `\`, `\\`)
		s = strings.ReplaceAll(s, `'`, `\'`)
	} else {
		s = strings.ReplaceAll(s, `'`, `''`)
	}
	return "'" + s + "'"
}

// LengthExpr renders the string-length expression over an already-quoted
// column reference.
func (d *Dialect) LengthExpr(quotedCol string) string {
	return "LENGTH(" + quotedCol + ")"
}

// YearExpr renders the year-extraction expression over an already-quoted
// column reference.
func (d *Dialect) YearExpr(quotedCol string) string {
	return "EXTRACT(YEAR FROM " + quotedCol + ")"
}

// BoolCaseExpr renders a 1/0 indicator for a boolean column matching want.
// NULLs fall through to 0 so the expression is safe under SUM.
func (d *Dialect) BoolCaseExpr(quotedCol string, want bool) string {
	cond := quotedCol
	if !want {
		cond = "NOT " + quotedCol
	}
	return "CASE WHEN " + cond + " THEN 1 ELSE 0 END"
}

// WidthBucketExpr renders a WIDTH_BUCKET call that assigns each value to
// one of bucketCount equal-width buckets between lowSQL and highSQL
// (scalar subselects rendered by the caller). Callers must check
// SupportsWidthBucket first; construction-time validation guarantees this
// is never reached for a dialect without the function.
func (d *Dialect) WidthBucketExpr(quotedCol, lowSQL, highSQL string, bucketCount int) string {
	return fmt.Sprintf("WIDTH_BUCKET(%s, %s, %s, %d)", quotedCol, lowSQL, highSQL, bucketCount)
}

// TranslateType maps a warehouse-native column type to its semantic type.
// Precision suffixes ("number(38,0)") are stripped before lookup. The
// mapping is stable: the same native type yields the same semantic tag on
// every call.
func (d *Dialect) TranslateType(nativeType string) (SemanticType, error) {
	name := strings.ToLower(strings.TrimSpace(nativeType))
	if i := strings.IndexByte(name, '('); i > 0 {
		name = strings.TrimSpace(name[:i])
	}
	if st, ok := d.nativeTypes[name]; ok {
		return st, nil
	}
	return "", fmt.Errorf("%w: %q (%s)", apperrors.ErrUnknownColumnType, nativeType, d.wtype)
}

func operatorSet(ops ...Operator) map[Operator]struct{} {
	set := make(map[Operator]struct{}, len(ops))
	for _, op := range ops {
		set[op] = struct{}{}
	}
	return set
}

func aggregateSet(fns ...AggFunc) map[AggFunc]struct{} {
	set := make(map[AggFunc]struct{}, len(fns))
	for _, fn := range fns {
		set[fn] = struct{}{}
	}
	return set
}
