package insights

import (
	"fmt"

	"github.com/dataprofhq/engine/pkg/sqlgen"
	"github.com/dataprofhq/engine/pkg/warehouse"
)

const (
	aliasValue      = "value"
	aliasValueCount = "value_count"

	// topValuesLimit caps the bucketed row set for frequent-value charts.
	topValuesLimit = 10
)

var topValuesSupport = allWarehouses

// ValueCount is one bar of a frequent-values chart.
type ValueCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// TopValues lists the most frequent values of a column with their counts,
// most frequent first.
type TopValues struct {
	query *sqlgen.CompiledQuery
}

// NewTopValues builds a TopValues insight for one column.
func NewTopValues(ref warehouse.ColumnRef, wtype warehouse.Type, filter *warehouse.Filter) (*TopValues, error) {
	if err := requireSupport(MetricTopValues, topValuesSupport, wtype); err != nil {
		return nil, err
	}
	d, err := warehouse.DialectFor(wtype)
	if err != nil {
		return nil, err
	}
	q, err := sqlgen.Build(sqlgen.Spec{
		Column:    ref,
		Warehouse: wtype,
		Filter:    filter,
		Dimension: &sqlgen.Dimension{Expr: d.QuoteIdent(ref.Column), Alias: aliasValue},
		Aggregates: []sqlgen.Aggregate{
			{Func: warehouse.AggCount, Alias: aliasValueCount, Star: true},
		},
		OrderBy:    aliasValueCount,
		Descending: true,
		Limit:      topValuesLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s query: %w", MetricTopValues, err)
	}
	return &TopValues{query: q}, nil
}

func (i *TopValues) Key() MetricKey                     { return MetricTopValues }
func (i *TopValues) GenerateSQL() *sqlgen.CompiledQuery { return i.query }
func (i *TopValues) ChartType() ChartType               { return ChartBar }

func (i *TopValues) ParseResults(rows []map[string]any) (InsightValue, error) {
	values := make([]ValueCount, 0, len(rows))
	for _, row := range rows {
		rawValue, err := rowValue(MetricTopValues, row, aliasValue)
		if err != nil {
			return InsightValue{}, err
		}
		if rawValue == nil {
			continue
		}
		rawCount, err := rowValue(MetricTopValues, row, aliasValueCount)
		if err != nil {
			return InsightValue{}, err
		}
		count, err := coerceInt64(rawCount)
		if err != nil {
			return InsightValue{}, fmt.Errorf("%s: %w", MetricTopValues, err)
		}
		values = append(values, ValueCount{Value: coerceString(rawValue), Count: count})
	}
	return InsightValue{Key: MetricTopValues, Kind: KindBuckets, Value: values, Chart: ChartBar}, nil
}

var _ ColumnInsight = (*TopValues)(nil)
