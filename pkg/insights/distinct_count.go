package insights

import (
	"fmt"

	"github.com/dataprofhq/engine/pkg/sqlgen"
	"github.com/dataprofhq/engine/pkg/warehouse"
)

const aliasCountDistinct = "count_distinct"

var distinctCountSupport = allWarehouses

// DistinctCount counts distinct non-null values in a column.
type DistinctCount struct {
	query *sqlgen.CompiledQuery
}

// NewDistinctCount builds a DistinctCount insight for one column.
func NewDistinctCount(ref warehouse.ColumnRef, wtype warehouse.Type, filter *warehouse.Filter) (*DistinctCount, error) {
	if err := requireSupport(MetricDistinctCount, distinctCountSupport, wtype); err != nil {
		return nil, err
	}
	q, err := sqlgen.Build(sqlgen.Spec{
		Column:    ref,
		Warehouse: wtype,
		Filter:    filter,
		Aggregates: []sqlgen.Aggregate{
			{Func: warehouse.AggCountDistinct, Alias: aliasCountDistinct},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s query: %w", MetricDistinctCount, err)
	}
	return &DistinctCount{query: q}, nil
}

func (i *DistinctCount) Key() MetricKey                     { return MetricDistinctCount }
func (i *DistinctCount) GenerateSQL() *sqlgen.CompiledQuery { return i.query }
func (i *DistinctCount) ChartType() ChartType               { return ChartNone }

func (i *DistinctCount) ParseResults(rows []map[string]any) (InsightValue, error) {
	row, err := singleRow(MetricDistinctCount, rows)
	if err != nil {
		return InsightValue{}, err
	}
	raw, err := rowValue(MetricDistinctCount, row, aliasCountDistinct)
	if err != nil {
		return InsightValue{}, err
	}
	n, err := coerceInt64(raw)
	if err != nil {
		return InsightValue{}, fmt.Errorf("%s: %w", MetricDistinctCount, err)
	}
	return InsightValue{Key: MetricDistinctCount, Kind: KindCount, Value: n}, nil
}

var _ ColumnInsight = (*DistinctCount)(nil)
