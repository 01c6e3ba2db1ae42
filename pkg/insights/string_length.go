package insights

import (
	"fmt"

	"github.com/dataprofhq/engine/pkg/sqlgen"
	"github.com/dataprofhq/engine/pkg/warehouse"
)

const (
	aliasLenMin = "len_min"
	aliasLenMax = "len_max"
	aliasLenAvg = "len_avg"
)

var stringLengthSupport = allWarehouses

// LengthStats summarizes the character lengths of a string column.
type LengthStats struct {
	Min int64   `json:"min"`
	Max int64   `json:"max"`
	Avg float64 `json:"avg"`
}

// StringLength computes min/max/avg character length over non-null values.
type StringLength struct {
	query *sqlgen.CompiledQuery
}

// NewStringLength builds a StringLength insight for one column.
func NewStringLength(ref warehouse.ColumnRef, wtype warehouse.Type, filter *warehouse.Filter) (*StringLength, error) {
	if err := requireSupport(MetricStringLength, stringLengthSupport, wtype); err != nil {
		return nil, err
	}
	d, err := warehouse.DialectFor(wtype)
	if err != nil {
		return nil, err
	}
	lengthExpr := d.LengthExpr(d.QuoteIdent(ref.Column))
	q, err := sqlgen.Build(sqlgen.Spec{
		Column:    ref,
		Warehouse: wtype,
		Filter:    filter,
		Aggregates: []sqlgen.Aggregate{
			{Func: warehouse.AggMin, Alias: aliasLenMin, Expr: lengthExpr},
			{Func: warehouse.AggMax, Alias: aliasLenMax, Expr: lengthExpr},
			{Func: warehouse.AggAvg, Alias: aliasLenAvg, Expr: lengthExpr},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s query: %w", MetricStringLength, err)
	}
	return &StringLength{query: q}, nil
}

func (i *StringLength) Key() MetricKey                     { return MetricStringLength }
func (i *StringLength) GenerateSQL() *sqlgen.CompiledQuery { return i.query }
func (i *StringLength) ChartType() ChartType               { return ChartNone }

func (i *StringLength) ParseResults(rows []map[string]any) (InsightValue, error) {
	row, err := singleRow(MetricStringLength, rows)
	if err != nil {
		return InsightValue{}, err
	}
	rawMin, err := rowValue(MetricStringLength, row, aliasLenMin)
	if err != nil {
		return InsightValue{}, err
	}
	rawMax, err := rowValue(MetricStringLength, row, aliasLenMax)
	if err != nil {
		return InsightValue{}, err
	}
	rawAvg, err := rowValue(MetricStringLength, row, aliasLenAvg)
	if err != nil {
		return InsightValue{}, err
	}
	if rawMin == nil || rawMax == nil || rawAvg == nil {
		return InsightValue{Key: MetricStringLength, Kind: KindNull, Value: nil}, nil
	}
	minLen, err := coerceInt64(rawMin)
	if err != nil {
		return InsightValue{}, fmt.Errorf("%s: %w", MetricStringLength, err)
	}
	maxLen, err := coerceInt64(rawMax)
	if err != nil {
		return InsightValue{}, fmt.Errorf("%s: %w", MetricStringLength, err)
	}
	avgLen, err := coerceFloat64(rawAvg)
	if err != nil {
		return InsightValue{}, fmt.Errorf("%s: %w", MetricStringLength, err)
	}
	return InsightValue{
		Key:   MetricStringLength,
		Kind:  KindObject,
		Value: LengthStats{Min: minLen, Max: maxLen, Avg: avgLen},
	}, nil
}

var _ ColumnInsight = (*StringLength)(nil)
