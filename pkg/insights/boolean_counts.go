package insights

import (
	"fmt"

	"github.com/dataprofhq/engine/pkg/sqlgen"
	"github.com/dataprofhq/engine/pkg/warehouse"
)

const (
	aliasTrueCount  = "true_count"
	aliasFalseCount = "false_count"
)

var booleanCountsSupport = allWarehouses

// BoolCounts holds true/false occurrence counts for a boolean column.
// NULLs are counted by NullCount, not here.
type BoolCounts struct {
	True  int64 `json:"true"`
	False int64 `json:"false"`
}

// BooleanCounts counts true and false occurrences via 1/0 indicator sums.
type BooleanCounts struct {
	query *sqlgen.CompiledQuery
}

// NewBooleanCounts builds a BooleanCounts insight for one column.
func NewBooleanCounts(ref warehouse.ColumnRef, wtype warehouse.Type, filter *warehouse.Filter) (*BooleanCounts, error) {
	if err := requireSupport(MetricBooleanCounts, booleanCountsSupport, wtype); err != nil {
		return nil, err
	}
	d, err := warehouse.DialectFor(wtype)
	if err != nil {
		return nil, err
	}
	quotedCol := d.QuoteIdent(ref.Column)
	q, err := sqlgen.Build(sqlgen.Spec{
		Column:    ref,
		Warehouse: wtype,
		Filter:    filter,
		Aggregates: []sqlgen.Aggregate{
			{Func: warehouse.AggSum, Alias: aliasTrueCount, Expr: d.BoolCaseExpr(quotedCol, true)},
			{Func: warehouse.AggSum, Alias: aliasFalseCount, Expr: d.BoolCaseExpr(quotedCol, false)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s query: %w", MetricBooleanCounts, err)
	}
	return &BooleanCounts{query: q}, nil
}

func (i *BooleanCounts) Key() MetricKey                     { return MetricBooleanCounts }
func (i *BooleanCounts) GenerateSQL() *sqlgen.CompiledQuery { return i.query }
func (i *BooleanCounts) ChartType() ChartType               { return ChartPie }

func (i *BooleanCounts) ParseResults(rows []map[string]any) (InsightValue, error) {
	row, err := singleRow(MetricBooleanCounts, rows)
	if err != nil {
		return InsightValue{}, err
	}
	trueCount, err := sumCount(row, aliasTrueCount)
	if err != nil {
		return InsightValue{}, err
	}
	falseCount, err := sumCount(row, aliasFalseCount)
	if err != nil {
		return InsightValue{}, err
	}
	return InsightValue{
		Key:   MetricBooleanCounts,
		Kind:  KindObject,
		Value: BoolCounts{True: trueCount, False: falseCount},
		Chart: ChartPie,
	}, nil
}

// sumCount reads a SUM alias; SUM over zero rows is NULL, which counts as 0.
func sumCount(row map[string]any, alias string) (int64, error) {
	raw, err := rowValue(MetricBooleanCounts, row, alias)
	if err != nil {
		return 0, err
	}
	if raw == nil {
		return 0, nil
	}
	n, err := coerceInt64(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", MetricBooleanCounts, err)
	}
	return n, nil
}

var _ ColumnInsight = (*BooleanCounts)(nil)
