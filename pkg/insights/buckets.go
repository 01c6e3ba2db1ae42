package insights

import (
	"fmt"

	"github.com/dataprofhq/engine/pkg/sqlgen"
	"github.com/dataprofhq/engine/pkg/warehouse"
)

const (
	aliasBucket      = "bucket"
	aliasBucketCount = "bucket_count"

	// distributionBucketCount is the fixed number of equal-width buckets.
	distributionBucketCount = 10
)

// BigQuery has no WIDTH_BUCKET, so this insight is limited to the
// backends that do.
var distributionSupport = []warehouse.Type{warehouse.Postgres, warehouse.Snowflake}

// Bucket is one bar of a value distribution.
type Bucket struct {
	Bucket int64 `json:"bucket"`
	Count  int64 `json:"count"`
}

// DistributionBuckets assigns each non-null value to one of ten
// equal-width buckets between the column's min and max and counts rows
// per bucket. Bucket bounds come from scalar subselects that carry the
// same filter as the outer query, so the histogram always describes the
// filtered population.
type DistributionBuckets struct {
	query *sqlgen.CompiledQuery
}

// NewDistributionBuckets builds a DistributionBuckets insight for one column.
func NewDistributionBuckets(ref warehouse.ColumnRef, wtype warehouse.Type, filter *warehouse.Filter) (*DistributionBuckets, error) {
	if err := requireSupport(MetricDistribution, distributionSupport, wtype); err != nil {
		return nil, err
	}
	d, err := warehouse.DialectFor(wtype)
	if err != nil {
		return nil, err
	}
	where, err := sqlgen.RenderFilter(d, filter)
	if err != nil {
		return nil, fmt.Errorf("compile %s query: %w", MetricDistribution, err)
	}

	quotedCol := d.QuoteIdent(ref.Column)
	table := d.QualifiedTable(ref.Schema, ref.Table)
	whereSQL := ""
	if where != "" {
		whereSQL = " WHERE " + where
	}
	// WIDTH_BUCKET rejects equal bounds, which a single-valued population
	// would produce. The upper bound widens by one in that case so every
	// value lands in bucket 1 instead of failing the query.
	lowSQL := fmt.Sprintf("(SELECT MIN(%s) FROM %s%s)", quotedCol, table, whereSQL)
	highSQL := fmt.Sprintf("(SELECT CASE WHEN MIN(%s) = MAX(%s) THEN MAX(%s) + 1 ELSE MAX(%s) END FROM %s%s)",
		quotedCol, quotedCol, quotedCol, quotedCol, table, whereSQL)

	q, err := sqlgen.Build(sqlgen.Spec{
		Column:    ref,
		Warehouse: wtype,
		Filter:    filter,
		Dimension: &sqlgen.Dimension{
			Expr:  d.WidthBucketExpr(quotedCol, lowSQL, highSQL, distributionBucketCount),
			Alias: aliasBucket,
		},
		Aggregates: []sqlgen.Aggregate{
			{Func: warehouse.AggCount, Alias: aliasBucketCount, Star: true},
		},
		OrderBy: aliasBucket,
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s query: %w", MetricDistribution, err)
	}
	return &DistributionBuckets{query: q}, nil
}

func (i *DistributionBuckets) Key() MetricKey                     { return MetricDistribution }
func (i *DistributionBuckets) GenerateSQL() *sqlgen.CompiledQuery { return i.query }
func (i *DistributionBuckets) ChartType() ChartType               { return ChartBar }

func (i *DistributionBuckets) ParseResults(rows []map[string]any) (InsightValue, error) {
	buckets := make([]Bucket, 0, len(rows))
	for _, row := range rows {
		rawBucket, err := rowValue(MetricDistribution, row, aliasBucket)
		if err != nil {
			return InsightValue{}, err
		}
		if rawBucket == nil {
			// NULL values land in a NULL bucket; NullCount already covers them.
			continue
		}
		rawCount, err := rowValue(MetricDistribution, row, aliasBucketCount)
		if err != nil {
			return InsightValue{}, err
		}
		bucket, err := coerceInt64(rawBucket)
		if err != nil {
			return InsightValue{}, fmt.Errorf("%s: %w", MetricDistribution, err)
		}
		count, err := coerceInt64(rawCount)
		if err != nil {
			return InsightValue{}, fmt.Errorf("%s: %w", MetricDistribution, err)
		}
		buckets = append(buckets, Bucket{Bucket: bucket, Count: count})
	}
	return InsightValue{Key: MetricDistribution, Kind: KindBuckets, Value: buckets, Chart: ChartBar}, nil
}

var _ ColumnInsight = (*DistributionBuckets)(nil)
