package insights

import (
	"fmt"

	"github.com/dataprofhq/engine/pkg/sqlgen"
	"github.com/dataprofhq/engine/pkg/warehouse"
)

const (
	aliasMinVal = "min_val"
	aliasMaxVal = "max_val"
	aliasAvgVal = "avg_val"
)

var extremaSupport = allWarehouses

// scalarInsight is the shared shape of the Min, Max and Mean plugins: one
// aggregate over the column, one summary row, one numeric value. NULL
// results (empty or all-null column) parse to a null insight rather than
// an error.
type scalarInsight struct {
	key   MetricKey
	alias string
	query *sqlgen.CompiledQuery
}

func newScalarInsight(key MetricKey, fn warehouse.AggFunc, alias string, ref warehouse.ColumnRef, wtype warehouse.Type, filter *warehouse.Filter) (*scalarInsight, error) {
	if err := requireSupport(key, extremaSupport, wtype); err != nil {
		return nil, err
	}
	q, err := sqlgen.Build(sqlgen.Spec{
		Column:    ref,
		Warehouse: wtype,
		Filter:    filter,
		Aggregates: []sqlgen.Aggregate{
			{Func: fn, Alias: alias},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s query: %w", key, err)
	}
	return &scalarInsight{key: key, alias: alias, query: q}, nil
}

func (i *scalarInsight) Key() MetricKey                     { return i.key }
func (i *scalarInsight) GenerateSQL() *sqlgen.CompiledQuery { return i.query }
func (i *scalarInsight) ChartType() ChartType               { return ChartNone }

func (i *scalarInsight) ParseResults(rows []map[string]any) (InsightValue, error) {
	row, err := singleRow(i.key, rows)
	if err != nil {
		return InsightValue{}, err
	}
	raw, err := rowValue(i.key, row, i.alias)
	if err != nil {
		return InsightValue{}, err
	}
	if raw == nil {
		return InsightValue{Key: i.key, Kind: KindNull, Value: nil}, nil
	}
	f, err := coerceFloat64(raw)
	if err != nil {
		return InsightValue{}, fmt.Errorf("%s: %w", i.key, err)
	}
	return InsightValue{Key: i.key, Kind: KindNumber, Value: f}, nil
}

// MinValue computes MIN(column) over non-null values.
type MinValue struct{ scalarInsight }

// NewMinValue builds a MinValue insight for one column.
func NewMinValue(ref warehouse.ColumnRef, wtype warehouse.Type, filter *warehouse.Filter) (*MinValue, error) {
	s, err := newScalarInsight(MetricMin, warehouse.AggMin, aliasMinVal, ref, wtype, filter)
	if err != nil {
		return nil, err
	}
	return &MinValue{scalarInsight: *s}, nil
}

// MaxValue computes MAX(column) over non-null values.
type MaxValue struct{ scalarInsight }

// NewMaxValue builds a MaxValue insight for one column.
func NewMaxValue(ref warehouse.ColumnRef, wtype warehouse.Type, filter *warehouse.Filter) (*MaxValue, error) {
	s, err := newScalarInsight(MetricMax, warehouse.AggMax, aliasMaxVal, ref, wtype, filter)
	if err != nil {
		return nil, err
	}
	return &MaxValue{scalarInsight: *s}, nil
}

// MeanValue computes AVG(column) over non-null values.
type MeanValue struct{ scalarInsight }

// NewMeanValue builds a MeanValue insight for one column.
func NewMeanValue(ref warehouse.ColumnRef, wtype warehouse.Type, filter *warehouse.Filter) (*MeanValue, error) {
	s, err := newScalarInsight(MetricMean, warehouse.AggAvg, aliasAvgVal, ref, wtype, filter)
	if err != nil {
		return nil, err
	}
	return &MeanValue{scalarInsight: *s}, nil
}

var (
	_ ColumnInsight = (*MinValue)(nil)
	_ ColumnInsight = (*MaxValue)(nil)
	_ ColumnInsight = (*MeanValue)(nil)
)
