package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataprofhq/engine/pkg/apperrors"
	"github.com/dataprofhq/engine/pkg/warehouse"
)

var testRef = warehouse.ColumnRef{Schema: "public", Table: "users", Column: "age"}

func TestNewInsight_UnknownWarehouse(t *testing.T) {
	_, err := NewNullCount(testRef, warehouse.Type("oracle"), nil)
	assert.ErrorIs(t, err, apperrors.ErrUnknownWarehouse)
}

// DistributionBuckets depends on WIDTH_BUCKET, which BigQuery lacks, so
// construction must fail before any query exists.
func TestNewDistributionBuckets_UnsupportedOnBigQuery(t *testing.T) {
	_, err := NewDistributionBuckets(testRef, warehouse.BigQuery, nil)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedWarehouse)
}

func TestNewDistributionBuckets_SupportedBackends(t *testing.T) {
	for _, wtype := range []warehouse.Type{warehouse.Postgres, warehouse.Snowflake} {
		insight, err := NewDistributionBuckets(testRef, wtype, nil)
		require.NoError(t, err, "warehouse %s", wtype)
		assert.Contains(t, insight.GenerateSQL().SQL(), "WIDTH_BUCKET")
	}
}

func TestNullCount_GenerateSQL(t *testing.T) {
	insight, err := NewNullCount(testRef, warehouse.Postgres, nil)
	require.NoError(t, err)

	q := insight.GenerateSQL()
	assert.Equal(t,
		`SELECT COUNT(*) AS count_total, COUNT("age") AS count_nonnull FROM "public"."users"`,
		q.SQL())
	assert.Equal(t, []string{"count_total", "count_nonnull"}, q.Aliases())
}

// A filter narrows the row population for every aggregate in the query,
// the COUNT(*) denominator included.
func TestNullCount_FilterAppliesToDenominator(t *testing.T) {
	filter := &warehouse.Filter{Field: "status", Operator: warehouse.OpEq, Value: "active"}
	insight, err := NewNullCount(testRef, warehouse.Postgres, filter)
	require.NoError(t, err)

	assert.Equal(t,
		`SELECT COUNT(*) AS count_total, COUNT("age") AS count_nonnull FROM "public"."users" WHERE "status" = 'active'`,
		insight.GenerateSQL().SQL())
}

// The precompiled query never changes between calls on the same instance.
func TestGenerateSQL_Stable(t *testing.T) {
	insight, err := NewNullCount(testRef, warehouse.Postgres, nil)
	require.NoError(t, err)

	first := insight.GenerateSQL()
	for i := 0; i < 5; i++ {
		assert.Same(t, first, insight.GenerateSQL())
	}
}

func TestNullCount_ParseResults(t *testing.T) {
	insight, err := NewNullCount(testRef, warehouse.Postgres, nil)
	require.NoError(t, err)

	value, err := insight.ParseResults([]map[string]any{
		{"count_total": int64(10), "count_nonnull": int64(9)},
	})
	require.NoError(t, err)
	assert.Equal(t, MetricNullCount, value.Key)
	assert.Equal(t, KindCount, value.Kind)
	assert.Equal(t, int64(1), value.Value)
}

func TestNullCount_ParseResults_ShapeErrors(t *testing.T) {
	insight, err := NewNullCount(testRef, warehouse.Postgres, nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		rows []map[string]any
	}{
		{name: "no rows", rows: nil},
		{name: "too many rows", rows: []map[string]any{{}, {}}},
		{name: "missing alias", rows: []map[string]any{{"count_total": int64(10)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := insight.ParseResults(tt.rows)
			assert.ErrorIs(t, err, apperrors.ErrResultShape)
		})
	}
}

func TestDistinctCount_ParseResults(t *testing.T) {
	insight, err := NewDistinctCount(testRef, warehouse.Postgres, nil)
	require.NoError(t, err)

	assert.Contains(t, insight.GenerateSQL().SQL(), `COUNT(DISTINCT "age")`)

	value, err := insight.ParseResults([]map[string]any{{"count_distinct": int64(7)}})
	require.NoError(t, err)
	assert.Equal(t, KindCount, value.Kind)
	assert.Equal(t, int64(7), value.Value)
}

func TestScalarInsights_ParseResults(t *testing.T) {
	tests := []struct {
		name  string
		build func() (ColumnInsight, error)
		alias string
	}{
		{name: "min", build: func() (ColumnInsight, error) { return NewMinValue(testRef, warehouse.Postgres, nil) }, alias: "min_val"},
		{name: "max", build: func() (ColumnInsight, error) { return NewMaxValue(testRef, warehouse.Postgres, nil) }, alias: "max_val"},
		{name: "mean", build: func() (ColumnInsight, error) { return NewMeanValue(testRef, warehouse.Postgres, nil) }, alias: "avg_val"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			insight, err := tt.build()
			require.NoError(t, err)

			value, err := insight.ParseResults([]map[string]any{{tt.alias: 12.5}})
			require.NoError(t, err)
			assert.Equal(t, KindNumber, value.Kind)
			assert.Equal(t, 12.5, value.Value)

			// Empty or all-null column: the aggregate returns NULL.
			value, err = insight.ParseResults([]map[string]any{{tt.alias: nil}})
			require.NoError(t, err)
			assert.Equal(t, KindNull, value.Kind)
			assert.Nil(t, value.Value)
		})
	}
}

// Warehouses report aggregates in native numeric types the driver does
// not always decode to float64: pgx hands back numeric strings, BigQuery
// NUMERIC comes through as *big.Rat.
func TestScalarInsights_CoercesDriverTypes(t *testing.T) {
	insight, err := NewMeanValue(testRef, warehouse.Postgres, nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  any
		want float64
	}{
		{name: "numeric string", raw: "16.666666666666668", want: 16.666666666666668},
		{name: "int64", raw: int64(20), want: 20},
		{name: "byte slice", raw: []byte("3.5"), want: 3.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := insight.ParseResults([]map[string]any{{"avg_val": tt.raw}})
			require.NoError(t, err)
			assert.InDelta(t, tt.want, value.Value, 1e-9)
		})
	}
}

func TestModeValue_GenerateSQL(t *testing.T) {
	insight, err := NewModeValue(testRef, warehouse.Postgres, nil)
	require.NoError(t, err)

	assert.Equal(t,
		`SELECT "age" AS mode_value, COUNT(*) AS mode_freq FROM "public"."users" GROUP BY 1 ORDER BY mode_freq DESC LIMIT 1`,
		insight.GenerateSQL().SQL())
}

func TestModeValue_ParseResults(t *testing.T) {
	insight, err := NewModeValue(testRef, warehouse.Postgres, nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		rows     []map[string]any
		wantKind ValueKind
		want     any
	}{
		{name: "numeric mode", rows: []map[string]any{{"mode_value": int64(20), "mode_freq": int64(2)}}, wantKind: KindNumber, want: float64(20)},
		{name: "text mode", rows: []map[string]any{{"mode_value": "active", "mode_freq": int64(5)}}, wantKind: KindText, want: "active"},
		{name: "empty input", rows: nil, wantKind: KindNull, want: nil},
		{name: "null mode value", rows: []map[string]any{{"mode_value": nil, "mode_freq": int64(3)}}, wantKind: KindNull, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := insight.ParseResults(tt.rows)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, value.Kind)
			assert.Equal(t, tt.want, value.Value)
		})
	}

	_, err = insight.ParseResults([]map[string]any{{}, {}})
	assert.ErrorIs(t, err, apperrors.ErrResultShape)
}

// The bucket-bound subselects must describe the same population as the
// outer query, so the filter shows up in both.
func TestDistributionBuckets_FilterInBounds(t *testing.T) {
	filter := &warehouse.Filter{Field: "age", Operator: warehouse.OpGt, Value: 0}
	insight, err := NewDistributionBuckets(testRef, warehouse.Postgres, filter)
	require.NoError(t, err)

	sql := insight.GenerateSQL().SQL()
	assert.Contains(t, sql, `(SELECT MIN("age") FROM "public"."users" WHERE "age" > 0)`)
	assert.Contains(t, sql,
		`(SELECT CASE WHEN MIN("age") = MAX("age") THEN MAX("age") + 1 ELSE MAX("age") END FROM "public"."users" WHERE "age" > 0)`)
	assert.Contains(t, sql, `WHERE "age" > 0 GROUP BY 1 ORDER BY bucket`)
}

// A column with one distinct value has MIN = MAX, and WIDTH_BUCKET rejects
// equal bounds on every backend that has it. The generated upper bound must
// widen instead of letting the query fail and take the whole column's
// profile with it.
func TestDistributionBuckets_WidensEqualBounds(t *testing.T) {
	insight, err := NewDistributionBuckets(testRef, warehouse.Postgres, nil)
	require.NoError(t, err)

	sql := insight.GenerateSQL().SQL()
	assert.Contains(t, sql,
		`(SELECT CASE WHEN MIN("age") = MAX("age") THEN MAX("age") + 1 ELSE MAX("age") END FROM "public"."users")`)
	assert.NotContains(t, sql, `(SELECT MAX("age") FROM "public"."users")`)
}

func TestDistributionBuckets_ParseResults(t *testing.T) {
	insight, err := NewDistributionBuckets(testRef, warehouse.Postgres, nil)
	require.NoError(t, err)

	value, err := insight.ParseResults([]map[string]any{
		{"bucket": int64(1), "bucket_count": int64(4)},
		{"bucket": nil, "bucket_count": int64(2)}, // NULL values: skipped
		{"bucket": int64(3), "bucket_count": int64(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, KindBuckets, value.Kind)
	assert.Equal(t, ChartBar, value.Chart)
	assert.Equal(t, []Bucket{{Bucket: 1, Count: 4}, {Bucket: 3, Count: 1}}, value.Value)
}

func TestStringLength_ParseResults(t *testing.T) {
	ref := warehouse.ColumnRef{Schema: "public", Table: "users", Column: "name"}
	insight, err := NewStringLength(ref, warehouse.Postgres, nil)
	require.NoError(t, err)

	assert.Contains(t, insight.GenerateSQL().SQL(), `MIN(LENGTH("name")) AS len_min`)

	value, err := insight.ParseResults([]map[string]any{
		{"len_min": int64(2), "len_max": int64(12), "len_avg": 6.5},
	})
	require.NoError(t, err)
	assert.Equal(t, KindObject, value.Kind)
	assert.Equal(t, LengthStats{Min: 2, Max: 12, Avg: 6.5}, value.Value)

	value, err = insight.ParseResults([]map[string]any{
		{"len_min": nil, "len_max": nil, "len_avg": nil},
	})
	require.NoError(t, err)
	assert.Equal(t, KindNull, value.Kind)
}

func TestTopValues_ParseResults(t *testing.T) {
	insight, err := NewTopValues(testRef, warehouse.Postgres, nil)
	require.NoError(t, err)

	assert.Contains(t, insight.GenerateSQL().SQL(), "ORDER BY value_count DESC LIMIT 10")

	value, err := insight.ParseResults([]map[string]any{
		{"value": "active", "value_count": int64(6)},
		{"value": nil, "value_count": int64(2)}, // NULL group: skipped
		{"value": int64(42), "value_count": int64(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, KindBuckets, value.Kind)
	assert.Equal(t, []ValueCount{{Value: "active", Count: 6}, {Value: "42", Count: 1}}, value.Value)
}

func TestBooleanCounts_GenerateSQL(t *testing.T) {
	ref := warehouse.ColumnRef{Schema: "public", Table: "users", Column: "active"}
	insight, err := NewBooleanCounts(ref, warehouse.Postgres, nil)
	require.NoError(t, err)

	assert.Equal(t,
		`SELECT SUM(CASE WHEN "active" THEN 1 ELSE 0 END) AS true_count, SUM(CASE WHEN NOT "active" THEN 1 ELSE 0 END) AS false_count FROM "public"."users"`,
		insight.GenerateSQL().SQL())
}

func TestBooleanCounts_ParseResults(t *testing.T) {
	ref := warehouse.ColumnRef{Schema: "public", Table: "users", Column: "active"}
	insight, err := NewBooleanCounts(ref, warehouse.Postgres, nil)
	require.NoError(t, err)

	value, err := insight.ParseResults([]map[string]any{
		{"true_count": int64(2), "false_count": int64(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, KindObject, value.Kind)
	assert.Equal(t, ChartPie, value.Chart)
	assert.Equal(t, BoolCounts{True: 2, False: 1}, value.Value)

	// SUM over an empty table is NULL on every backend.
	value, err = insight.ParseResults([]map[string]any{
		{"true_count": nil, "false_count": nil},
	})
	require.NoError(t, err)
	assert.Equal(t, BoolCounts{True: 0, False: 0}, value.Value)
}

func TestDateRange_ParseResults(t *testing.T) {
	ref := warehouse.ColumnRef{Schema: "public", Table: "users", Column: "created_at"}
	insight, err := NewDateRange(ref, warehouse.Postgres, nil)
	require.NoError(t, err)

	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

	value, err := insight.ParseResults([]map[string]any{
		{"dt_min": from, "dt_max": to},
	})
	require.NoError(t, err)
	assert.Equal(t, KindObject, value.Kind)
	assert.Equal(t, TimeRange{From: from, To: to}, value.Value)

	// Drivers without a native timestamp decode hand back strings.
	value, err = insight.ParseResults([]map[string]any{
		{"dt_min": "2020-01-01 00:00:00", "dt_max": "2024-06-30 12:00:00"},
	})
	require.NoError(t, err)
	assert.Equal(t, TimeRange{From: from, To: to}, value.Value)

	value, err = insight.ParseResults([]map[string]any{
		{"dt_min": nil, "dt_max": nil},
	})
	require.NoError(t, err)
	assert.Equal(t, KindNull, value.Kind)
}

func TestYearTrend_ParseResults(t *testing.T) {
	ref := warehouse.ColumnRef{Schema: "public", Table: "users", Column: "created_at"}
	insight, err := NewYearTrend(ref, warehouse.Postgres, nil)
	require.NoError(t, err)

	assert.Equal(t,
		`SELECT EXTRACT(YEAR FROM "created_at") AS year, COUNT(*) AS year_count FROM "public"."users" GROUP BY 1 ORDER BY year`,
		insight.GenerateSQL().SQL())

	value, err := insight.ParseResults([]map[string]any{
		{"year": int64(2020), "year_count": int64(3)},
		{"year": nil, "year_count": int64(1)},
		{"year": int64(2021), "year_count": int64(5)},
	})
	require.NoError(t, err)
	assert.Equal(t, []YearCount{{Year: 2020, Count: 3}, {Year: 2021, Count: 5}}, value.Value)
}
