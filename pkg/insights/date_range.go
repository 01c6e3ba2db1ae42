package insights

import (
	"fmt"
	"time"

	"github.com/dataprofhq/engine/pkg/sqlgen"
	"github.com/dataprofhq/engine/pkg/warehouse"
)

const (
	aliasDtMin = "dt_min"
	aliasDtMax = "dt_max"
)

var dateRangeSupport = allWarehouses

// TimeRange is the observed span of a datetime column.
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// DateRange computes the earliest and latest value of a datetime column in
// one query.
type DateRange struct {
	query *sqlgen.CompiledQuery
}

// NewDateRange builds a DateRange insight for one column.
func NewDateRange(ref warehouse.ColumnRef, wtype warehouse.Type, filter *warehouse.Filter) (*DateRange, error) {
	if err := requireSupport(MetricDateRange, dateRangeSupport, wtype); err != nil {
		return nil, err
	}
	q, err := sqlgen.Build(sqlgen.Spec{
		Column:    ref,
		Warehouse: wtype,
		Filter:    filter,
		Aggregates: []sqlgen.Aggregate{
			{Func: warehouse.AggMin, Alias: aliasDtMin},
			{Func: warehouse.AggMax, Alias: aliasDtMax},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s query: %w", MetricDateRange, err)
	}
	return &DateRange{query: q}, nil
}

func (i *DateRange) Key() MetricKey                     { return MetricDateRange }
func (i *DateRange) GenerateSQL() *sqlgen.CompiledQuery { return i.query }
func (i *DateRange) ChartType() ChartType               { return ChartNone }

func (i *DateRange) ParseResults(rows []map[string]any) (InsightValue, error) {
	row, err := singleRow(MetricDateRange, rows)
	if err != nil {
		return InsightValue{}, err
	}
	rawMin, err := rowValue(MetricDateRange, row, aliasDtMin)
	if err != nil {
		return InsightValue{}, err
	}
	rawMax, err := rowValue(MetricDateRange, row, aliasDtMax)
	if err != nil {
		return InsightValue{}, err
	}
	if rawMin == nil || rawMax == nil {
		return InsightValue{Key: MetricDateRange, Kind: KindNull, Value: nil}, nil
	}
	from, err := coerceTime(rawMin)
	if err != nil {
		return InsightValue{}, fmt.Errorf("%s: %w", MetricDateRange, err)
	}
	to, err := coerceTime(rawMax)
	if err != nil {
		return InsightValue{}, fmt.Errorf("%s: %w", MetricDateRange, err)
	}
	return InsightValue{
		Key:   MetricDateRange,
		Kind:  KindObject,
		Value: TimeRange{From: from, To: to},
	}, nil
}

var _ ColumnInsight = (*DateRange)(nil)
