package insights

import (
	"fmt"

	"github.com/dataprofhq/engine/pkg/sqlgen"
	"github.com/dataprofhq/engine/pkg/warehouse"
)

const (
	aliasCountTotal   = "count_total"
	aliasCountNonNull = "count_nonnull"
)

var nullCountSupport = allWarehouses

// NullCount counts NULL values in a column. It bundles COUNT(*) and
// COUNT(column) into one query; the difference is the null count. The
// filter predicate, when present, applies to the denominator too:
// filtered-out rows are invisible to this metric.
type NullCount struct {
	query *sqlgen.CompiledQuery
}

// NewNullCount builds a NullCount insight for one column.
func NewNullCount(ref warehouse.ColumnRef, wtype warehouse.Type, filter *warehouse.Filter) (*NullCount, error) {
	if err := requireSupport(MetricNullCount, nullCountSupport, wtype); err != nil {
		return nil, err
	}
	q, err := sqlgen.Build(sqlgen.Spec{
		Column:    ref,
		Warehouse: wtype,
		Filter:    filter,
		Aggregates: []sqlgen.Aggregate{
			{Func: warehouse.AggCount, Alias: aliasCountTotal, Star: true},
			{Func: warehouse.AggCount, Alias: aliasCountNonNull},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s query: %w", MetricNullCount, err)
	}
	return &NullCount{query: q}, nil
}

func (i *NullCount) Key() MetricKey                     { return MetricNullCount }
func (i *NullCount) GenerateSQL() *sqlgen.CompiledQuery { return i.query }
func (i *NullCount) ChartType() ChartType               { return ChartNone }

func (i *NullCount) ParseResults(rows []map[string]any) (InsightValue, error) {
	row, err := singleRow(MetricNullCount, rows)
	if err != nil {
		return InsightValue{}, err
	}
	totalRaw, err := rowValue(MetricNullCount, row, aliasCountTotal)
	if err != nil {
		return InsightValue{}, err
	}
	nonNullRaw, err := rowValue(MetricNullCount, row, aliasCountNonNull)
	if err != nil {
		return InsightValue{}, err
	}
	total, err := coerceInt64(totalRaw)
	if err != nil {
		return InsightValue{}, fmt.Errorf("%s: %w", MetricNullCount, err)
	}
	nonNull, err := coerceInt64(nonNullRaw)
	if err != nil {
		return InsightValue{}, fmt.Errorf("%s: %w", MetricNullCount, err)
	}
	return InsightValue{Key: MetricNullCount, Kind: KindCount, Value: total - nonNull}, nil
}

var _ ColumnInsight = (*NullCount)(nil)
