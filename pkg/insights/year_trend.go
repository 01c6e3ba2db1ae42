package insights

import (
	"fmt"

	"github.com/dataprofhq/engine/pkg/sqlgen"
	"github.com/dataprofhq/engine/pkg/warehouse"
)

const (
	aliasYear      = "year"
	aliasYearCount = "year_count"
)

var yearTrendSupport = allWarehouses

// YearCount is one bar of a per-year row-count trend.
type YearCount struct {
	Year  int64 `json:"year"`
	Count int64 `json:"count"`
}

// YearTrend counts rows per calendar year of a datetime column, earliest
// year first.
type YearTrend struct {
	query *sqlgen.CompiledQuery
}

// NewYearTrend builds a YearTrend insight for one column.
func NewYearTrend(ref warehouse.ColumnRef, wtype warehouse.Type, filter *warehouse.Filter) (*YearTrend, error) {
	if err := requireSupport(MetricYearTrend, yearTrendSupport, wtype); err != nil {
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
		Dimension: &sqlgen.Dimension{Expr: d.YearExpr(d.QuoteIdent(ref.Column)), Alias: aliasYear},
		Aggregates: []sqlgen.Aggregate{
			{Func: warehouse.AggCount, Alias: aliasYearCount, Star: true},
		},
		OrderBy: aliasYear,
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s query: %w", MetricYearTrend, err)
	}
	return &YearTrend{query: q}, nil
}

func (i *YearTrend) Key() MetricKey                     { return MetricYearTrend }
func (i *YearTrend) GenerateSQL() *sqlgen.CompiledQuery { return i.query }
func (i *YearTrend) ChartType() ChartType               { return ChartBar }

func (i *YearTrend) ParseResults(rows []map[string]any) (InsightValue, error) {
	years := make([]YearCount, 0, len(rows))
	for _, row := range rows {
		rawYear, err := rowValue(MetricYearTrend, row, aliasYear)
		if err != nil {
			return InsightValue{}, err
		}
		if rawYear == nil {
			continue
		}
		rawCount, err := rowValue(MetricYearTrend, row, aliasYearCount)
		if err != nil {
			return InsightValue{}, err
		}
		year, err := coerceInt64(rawYear)
		if err != nil {
			return InsightValue{}, fmt.Errorf("%s: %w", MetricYearTrend, err)
		}
		count, err := coerceInt64(rawCount)
		if err != nil {
			return InsightValue{}, fmt.Errorf("%s: %w", MetricYearTrend, err)
		}
		years = append(years, YearCount{Year: year, Count: count})
	}
	return InsightValue{Key: MetricYearTrend, Kind: KindBuckets, Value: years, Chart: ChartBar}, nil
}

var _ ColumnInsight = (*YearTrend)(nil)
