package insights

import (
	"fmt"

	"github.com/dataprofhq/engine/pkg/apperrors"
	"github.com/dataprofhq/engine/pkg/sqlgen"
	"github.com/dataprofhq/engine/pkg/warehouse"
)

// Coordinator owns the ordered, fixed set of metric plugins for one
// semantic column type. GenerateSQLs and MergeOutput share a positional
// contract: the i-th result set belongs to the i-th query.
type Coordinator interface {
	// ColType returns the semantic type tag the orchestrator used to
	// select this coordinator. Stable across warehouse backends.
	ColType() warehouse.SemanticType

	// GenerateSQLs returns the owned plugins' queries in declaration
	// order. This order is the contract for MergeOutput.
	GenerateSQLs() []*sqlgen.CompiledQuery

	// MergeOutput parses one result set per generated query, positionally,
	// into a ColumnProfile. A length mismatch is an error, not a
	// best-effort merge.
	MergeOutput(results [][]map[string]any) (ColumnProfile, error)
}

type pluginDef struct {
	key      MetricKey
	supports []warehouse.Type
	build    func(ref warehouse.ColumnRef, wtype warehouse.Type, filter *warehouse.Filter) (ColumnInsight, error)
}

// coordinatorDefs fixes the plugin set and order per semantic type.
// Plugins whose declared support excludes the target warehouse are
// skipped at construction, so the effective list is deterministic for a
// given (semantic type, warehouse) pair.
var coordinatorDefs = map[warehouse.SemanticType][]pluginDef{
	warehouse.SemanticNumeric: {
		{MetricNullCount, nullCountSupport, func(r warehouse.ColumnRef, w warehouse.Type, f *warehouse.Filter) (ColumnInsight, error) {
			return NewNullCount(r, w, f)
		}},
		{MetricDistinctCount, distinctCountSupport, func(r warehouse.ColumnRef, w warehouse.Type, f *warehouse.Filter) (ColumnInsight, error) {
			return NewDistinctCount(r, w, f)
		}},
		{MetricMin, extremaSupport, func(r warehouse.ColumnRef, w warehouse.Type, f *warehouse.Filter) (ColumnInsight, error) {
			return NewMinValue(r, w, f)
		}},
		{MetricMax, extremaSupport, func(r warehouse.ColumnRef, w warehouse.Type, f *warehouse.Filter) (ColumnInsight, error) {
			return NewMaxValue(r, w, f)
		}},
		{MetricMean, extremaSupport, func(r warehouse.ColumnRef, w warehouse.Type, f *warehouse.Filter) (ColumnInsight, error) {
			return NewMeanValue(r, w, f)
		}},
		{MetricMode, modeSupport, func(r warehouse.ColumnRef, w warehouse.Type, f *warehouse.Filter) (ColumnInsight, error) {
			return NewModeValue(r, w, f)
		}},
		{MetricDistribution, distributionSupport, func(r warehouse.ColumnRef, w warehouse.Type, f *warehouse.Filter) (ColumnInsight, error) {
			return NewDistributionBuckets(r, w, f)
		}},
	},
	warehouse.SemanticString: {
		{MetricNullCount, nullCountSupport, func(r warehouse.ColumnRef, w warehouse.Type, f *warehouse.Filter) (ColumnInsight, error) {
			return NewNullCount(r, w, f)
		}},
		{MetricDistinctCount, distinctCountSupport, func(r warehouse.ColumnRef, w warehouse.Type, f *warehouse.Filter) (ColumnInsight, error) {
			return NewDistinctCount(r, w, f)
		}},
		{MetricStringLength, stringLengthSupport, func(r warehouse.ColumnRef, w warehouse.Type, f *warehouse.Filter) (ColumnInsight, error) {
			return NewStringLength(r, w, f)
		}},
		{MetricTopValues, topValuesSupport, func(r warehouse.ColumnRef, w warehouse.Type, f *warehouse.Filter) (ColumnInsight, error) {
			return NewTopValues(r, w, f)
		}},
	},
	warehouse.SemanticDatetime: {
		{MetricNullCount, nullCountSupport, func(r warehouse.ColumnRef, w warehouse.Type, f *warehouse.Filter) (ColumnInsight, error) {
			return NewNullCount(r, w, f)
		}},
		{MetricDistinctCount, distinctCountSupport, func(r warehouse.ColumnRef, w warehouse.Type, f *warehouse.Filter) (ColumnInsight, error) {
			return NewDistinctCount(r, w, f)
		}},
		{MetricDateRange, dateRangeSupport, func(r warehouse.ColumnRef, w warehouse.Type, f *warehouse.Filter) (ColumnInsight, error) {
			return NewDateRange(r, w, f)
		}},
		{MetricYearTrend, yearTrendSupport, func(r warehouse.ColumnRef, w warehouse.Type, f *warehouse.Filter) (ColumnInsight, error) {
			return NewYearTrend(r, w, f)
		}},
	},
	warehouse.SemanticBoolean: {
		{MetricNullCount, nullCountSupport, func(r warehouse.ColumnRef, w warehouse.Type, f *warehouse.Filter) (ColumnInsight, error) {
			return NewNullCount(r, w, f)
		}},
		{MetricBooleanCounts, booleanCountsSupport, func(r warehouse.ColumnRef, w warehouse.Type, f *warehouse.Filter) (ColumnInsight, error) {
			return NewBooleanCounts(r, w, f)
		}},
	},
}

type coordinator struct {
	colType warehouse.SemanticType
	plugins []ColumnInsight
}

// NewCoordinator builds the coordinator for a semantic type. The
// warehouse type is mandatory; there is no default dialect. Plugin
// construction errors fail the whole coordinator (fail fast).
func NewCoordinator(colType warehouse.SemanticType, ref warehouse.ColumnRef, wtype warehouse.Type, filter *warehouse.Filter) (Coordinator, error) {
	defs, ok := coordinatorDefs[colType]
	if !ok {
		return nil, fmt.Errorf("%w: semantic type %q", apperrors.ErrUnknownColumnType, colType)
	}
	if !wtype.Valid() {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownWarehouse, wtype)
	}

	plugins := make([]ColumnInsight, 0, len(defs))
	for _, def := range defs {
		if !supportsWarehouse(def.supports, wtype) {
			continue
		}
		plugin, err := def.build(ref, wtype, filter)
		if err != nil {
			return nil, fmt.Errorf("build %s insight for %s.%s.%s: %w", def.key, ref.Schema, ref.Table, ref.Column, err)
		}
		plugins = append(plugins, plugin)
	}
	return &coordinator{colType: colType, plugins: plugins}, nil
}

var _ Coordinator = (*coordinator)(nil)

func (c *coordinator) ColType() warehouse.SemanticType { return c.colType }

func (c *coordinator) GenerateSQLs() []*sqlgen.CompiledQuery {
	queries := make([]*sqlgen.CompiledQuery, len(c.plugins))
	for i, plugin := range c.plugins {
		queries[i] = plugin.GenerateSQL()
	}
	return queries
}

func (c *coordinator) MergeOutput(results [][]map[string]any) (ColumnProfile, error) {
	if len(results) != len(c.plugins) {
		return nil, fmt.Errorf("%w: got %d result sets for %d queries",
			apperrors.ErrMergeLengthMismatch, len(results), len(c.plugins))
	}

	profile := make(ColumnProfile, len(c.plugins))
	for i, plugin := range c.plugins {
		value, err := plugin.ParseResults(results[i])
		if err != nil {
			return nil, fmt.Errorf("parse %s insight: %w", plugin.Key(), err)
		}
		if _, dup := profile[plugin.Key()]; dup {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicateMetricKey, plugin.Key())
		}
		profile[plugin.Key()] = value
	}
	return profile, nil
}
