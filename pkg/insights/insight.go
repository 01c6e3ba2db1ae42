// Package insights computes per-column statistical metrics ("column
// insights") for warehouse tables.
//
// A metric plugin owns query generation for one statistic and the parsing
// of that query's result rows into a typed value. A data-type coordinator
// owns the ordered set of plugins relevant to one semantic column type.
// Everything here is pure: construction and both phases touch no shared
// state and perform no I/O, so instances are safe to build and invoke
// concurrently.
package insights

import (
	"fmt"

	"github.com/dataprofhq/engine/pkg/apperrors"
	"github.com/dataprofhq/engine/pkg/sqlgen"
	"github.com/dataprofhq/engine/pkg/warehouse"
)

// MetricKey identifies one statistic within a column profile.
type MetricKey string

const (
	MetricNullCount     MetricKey = "nullCount"
	MetricDistinctCount MetricKey = "distinctCount"
	MetricMin           MetricKey = "min"
	MetricMax           MetricKey = "max"
	MetricMean          MetricKey = "mean"
	MetricMode          MetricKey = "mode"
	MetricDistribution  MetricKey = "distribution"
	MetricStringLength  MetricKey = "stringLength"
	MetricTopValues     MetricKey = "topValues"
	MetricBooleanCounts MetricKey = "booleanCounts"
	MetricDateRange     MetricKey = "dateRange"
	MetricYearTrend     MetricKey = "yearTrend"
)

// ChartType is an optional visualization hint attached to an insight.
type ChartType string

const (
	ChartNone ChartType = ""
	ChartBar  ChartType = "bar"
	ChartPie  ChartType = "pie"
)

// ValueKind tags the concrete type carried by an InsightValue.
type ValueKind string

const (
	KindCount     ValueKind = "count"
	KindNumber    ValueKind = "number"
	KindText      ValueKind = "text"
	KindTimestamp ValueKind = "timestamp"
	KindBuckets   ValueKind = "buckets"
	KindObject    ValueKind = "object"
	KindNull      ValueKind = "null"
)

// InsightValue is one parsed metric result.
type InsightValue struct {
	Key   MetricKey `json:"metric"`
	Kind  ValueKind `json:"kind"`
	Value any       `json:"value"`
	Chart ChartType `json:"chart,omitempty"`
}

// ColumnProfile maps metric keys to parsed insight values for one column.
type ColumnProfile map[MetricKey]InsightValue

// ColumnInsight is one metric plugin. Implementations are constructed for
// a fixed (column, warehouse, filter) identity, precompile their query,
// and never mutate themselves afterwards.
type ColumnInsight interface {
	// Key is the metric key this insight stores its value under.
	Key() MetricKey

	// GenerateSQL returns the precompiled query. Pure and deterministic:
	// the same instance always returns the same query.
	GenerateSQL() *sqlgen.CompiledQuery

	// ParseResults turns the rows produced by executing GenerateSQL's
	// query into an InsightValue. Rows that don't match the expected
	// alias/row-count shape fail with apperrors.ErrResultShape.
	ParseResults(rows []map[string]any) (InsightValue, error)

	// ChartType returns the visualization hint, ChartNone by default.
	ChartType() ChartType
}

var allWarehouses = []warehouse.Type{warehouse.Postgres, warehouse.BigQuery, warehouse.Snowflake}

// requireSupport is the fail-fast construction guard: an insight built for
// a warehouse outside its declared support set never yields a query.
func requireSupport(key MetricKey, supported []warehouse.Type, wtype warehouse.Type) error {
	if !wtype.Valid() {
		return fmt.Errorf("%w: %q", apperrors.ErrUnknownWarehouse, wtype)
	}
	for _, t := range supported {
		if t == wtype {
			return nil
		}
	}
	return fmt.Errorf("%w: %s insight on %s", apperrors.ErrUnsupportedWarehouse, key, wtype)
}

func supportsWarehouse(supported []warehouse.Type, wtype warehouse.Type) bool {
	for _, t := range supported {
		if t == wtype {
			return true
		}
	}
	return false
}

// singleRow asserts the one-summary-row shape shared by most plugins.
func singleRow(key MetricKey, rows []map[string]any) (map[string]any, error) {
	if len(rows) != 1 {
		return nil, fmt.Errorf("%w: %s expected 1 row, got %d", apperrors.ErrResultShape, key, len(rows))
	}
	return rows[0], nil
}

// rowValue fetches an alias from a result row, failing with a shape error
// when the executing side returned rows missing the expected alias.
func rowValue(key MetricKey, row map[string]any, alias string) (any, error) {
	v, ok := row[alias]
	if !ok {
		return nil, fmt.Errorf("%w: %s missing alias %q", apperrors.ErrResultShape, key, alias)
	}
	return v, nil
}
