package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataprofhq/engine/pkg/apperrors"
	"github.com/dataprofhq/engine/pkg/warehouse"
)

func TestNewCoordinator_Errors(t *testing.T) {
	tests := []struct {
		name    string
		colType warehouse.SemanticType
		wtype   warehouse.Type
		wantErr error
	}{
		{
			name:    "unknown semantic type",
			colType: warehouse.SemanticType("geometry"),
			wtype:   warehouse.Postgres,
			wantErr: apperrors.ErrUnknownColumnType,
		},
		{
			name:    "unknown warehouse",
			colType: warehouse.SemanticNumeric,
			wtype:   warehouse.Type("oracle"),
			wantErr: apperrors.ErrUnknownWarehouse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCoordinator(tt.colType, testRef, tt.wtype, nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// A filter that cannot be rendered for the dialect fails the whole
// coordinator at construction, before any query runs.
func TestNewCoordinator_FailFastOnBadFilter(t *testing.T) {
	filter := &warehouse.Filter{Field: "name", Operator: warehouse.OpILike, Value: "a%"}
	_, err := NewCoordinator(warehouse.SemanticNumeric, testRef, warehouse.BigQuery, filter)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedOperator)
}

// The plugin order per semantic type is fixed; MergeOutput consumes
// result sets in this exact order.
func TestCoordinator_PluginOrder(t *testing.T) {
	tests := []struct {
		name    string
		colType warehouse.SemanticType
		wtype   warehouse.Type
		want    []MetricKey
	}{
		{
			name:    "numeric on postgres",
			colType: warehouse.SemanticNumeric,
			wtype:   warehouse.Postgres,
			want: []MetricKey{
				MetricNullCount, MetricDistinctCount, MetricMin, MetricMax,
				MetricMean, MetricMode, MetricDistribution,
			},
		},
		{
			// BigQuery has no WIDTH_BUCKET; the distribution plugin is
			// skipped, not errored.
			name:    "numeric on bigquery drops distribution",
			colType: warehouse.SemanticNumeric,
			wtype:   warehouse.BigQuery,
			want: []MetricKey{
				MetricNullCount, MetricDistinctCount, MetricMin, MetricMax,
				MetricMean, MetricMode,
			},
		},
		{
			name:    "string on postgres",
			colType: warehouse.SemanticString,
			wtype:   warehouse.Postgres,
			want:    []MetricKey{MetricNullCount, MetricDistinctCount, MetricStringLength, MetricTopValues},
		},
		{
			name:    "datetime on snowflake",
			colType: warehouse.SemanticDatetime,
			wtype:   warehouse.Snowflake,
			want:    []MetricKey{MetricNullCount, MetricDistinctCount, MetricDateRange, MetricYearTrend},
		},
		{
			name:    "boolean on postgres",
			colType: warehouse.SemanticBoolean,
			wtype:   warehouse.Postgres,
			want:    []MetricKey{MetricNullCount, MetricBooleanCounts},
		},
	}

	// Each metric's query is identifiable by its leading result alias.
	firstAlias := map[MetricKey]string{
		MetricNullCount:     "count_total",
		MetricDistinctCount: "count_distinct",
		MetricMin:           "min_val",
		MetricMax:           "max_val",
		MetricMean:          "avg_val",
		MetricMode:          "mode_value",
		MetricDistribution:  "bucket",
		MetricStringLength:  "len_min",
		MetricTopValues:     "value",
		MetricDateRange:     "dt_min",
		MetricYearTrend:     "year",
		MetricBooleanCounts: "true_count",
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coord, err := NewCoordinator(tt.colType, testRef, tt.wtype, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.colType, coord.ColType())

			queries := coord.GenerateSQLs()
			require.Len(t, queries, len(tt.want))
			for i, q := range queries {
				assert.Equal(t, firstAlias[tt.want[i]], q.Aliases()[0], "position %d", i)
				assert.Equal(t, tt.wtype, q.Warehouse())
			}
		})
	}
}

func TestCoordinator_GenerateSQLs_Deterministic(t *testing.T) {
	coord, err := NewCoordinator(warehouse.SemanticNumeric, testRef, warehouse.Postgres, nil)
	require.NoError(t, err)

	first := coord.GenerateSQLs()
	again := coord.GenerateSQLs()
	require.Len(t, again, len(first))
	for i := range first {
		assert.Equal(t, first[i].SQL(), again[i].SQL())
	}
}

func TestCoordinator_MergeOutput(t *testing.T) {
	coord, err := NewCoordinator(warehouse.SemanticBoolean, testRef, warehouse.Postgres, nil)
	require.NoError(t, err)

	// One result set per query, in GenerateSQLs order:
	// NullCount, then BooleanCounts.
	results := [][]map[string]any{
		{{"count_total": int64(4), "count_nonnull": int64(3)}},
		{{"true_count": int64(2), "false_count": int64(1)}},
	}

	profile, err := coord.MergeOutput(results)
	require.NoError(t, err)
	require.Len(t, profile, 2)
	assert.Equal(t, int64(1), profile[MetricNullCount].Value)
	assert.Equal(t, BoolCounts{True: 2, False: 1}, profile[MetricBooleanCounts].Value)
}

func TestCoordinator_MergeOutput_LengthMismatch(t *testing.T) {
	coord, err := NewCoordinator(warehouse.SemanticBoolean, testRef, warehouse.Postgres, nil)
	require.NoError(t, err)

	_, err = coord.MergeOutput([][]map[string]any{
		{{"count_total": int64(4), "count_nonnull": int64(3)}},
	})
	assert.ErrorIs(t, err, apperrors.ErrMergeLengthMismatch)

	_, err = coord.MergeOutput(nil)
	assert.ErrorIs(t, err, apperrors.ErrMergeLengthMismatch)
}

// Result sets are matched to plugins positionally. Swapping two sets must
// surface as a parse failure, never as silently swapped metrics.
func TestCoordinator_MergeOutput_PositionalContract(t *testing.T) {
	coord, err := NewCoordinator(warehouse.SemanticBoolean, testRef, warehouse.Postgres, nil)
	require.NoError(t, err)

	swapped := [][]map[string]any{
		{{"true_count": int64(2), "false_count": int64(1)}},
		{{"count_total": int64(4), "count_nonnull": int64(3)}},
	}

	_, err = coord.MergeOutput(swapped)
	assert.ErrorIs(t, err, apperrors.ErrResultShape)
}
