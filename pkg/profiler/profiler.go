// Package profiler orchestrates column profiling for whole tables: it
// enumerates columns, resolves semantic types, runs each coordinator's
// compile, execute and merge phases, and assembles a table-level profile
// with explicit per-column failure annotations.
package profiler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dataprofhq/engine/pkg/apperrors"
	"github.com/dataprofhq/engine/pkg/insights"
	"github.com/dataprofhq/engine/pkg/sqlgen"
	"github.com/dataprofhq/engine/pkg/warehouse"
)

// Executor runs compiled queries against a live warehouse. Adapters own
// the connection; the profiler only sees alias→value rows.
type Executor interface {
	// ListColumns returns the table's columns with warehouse-native types.
	ListColumns(ctx context.Context, schema, table string) ([]warehouse.ColumnMeta, error)

	// ExecuteQuery runs one compiled query and returns its rows.
	ExecuteQuery(ctx context.Context, query *sqlgen.CompiledQuery) ([]map[string]any, error)

	// Close releases the warehouse connection.
	Close() error
}

// DefaultConcurrency bounds how many columns are profiled in parallel
// when no explicit limit is configured.
const DefaultConcurrency = 4

// ColumnResult is the profiling outcome for one column. Failed columns
// carry their error; skipped columns had no semantic type mapping.
// Neither is ever silently omitted from the table profile.
type ColumnResult struct {
	Name       string                 `json:"name"`
	NativeType string                 `json:"native_type"`
	ColType    warehouse.SemanticType `json:"col_type,omitempty"`
	Insights   insights.ColumnProfile `json:"insights,omitempty"`
	Skipped    bool                   `json:"skipped,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// TableProfile is the merged set of all column insights for one table.
type TableProfile struct {
	RunID       uuid.UUID      `json:"run_id"`
	Warehouse   warehouse.Type `json:"warehouse"`
	Schema      string         `json:"schema"`
	Table       string         `json:"table"`
	Columns     []ColumnResult `json:"columns"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// Profiler profiles tables against one warehouse connection.
type Profiler struct {
	wtype       warehouse.Type
	exec        Executor
	logger      *zap.Logger
	concurrency int
}

// Option configures a Profiler.
type Option func(*Profiler)

// WithConcurrency bounds the number of columns profiled in parallel.
func WithConcurrency(n int) Option {
	return func(p *Profiler) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// New creates a Profiler. The warehouse type is mandatory and must match
// the dialect the executor connects to.
func New(wtype warehouse.Type, exec Executor, logger *zap.Logger, opts ...Option) (*Profiler, error) {
	if !wtype.Valid() {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownWarehouse, wtype)
	}
	p := &Profiler{
		wtype:       wtype,
		exec:        exec,
		logger:      logger.Named("profiler"),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ProfileTable profiles every column of a table. Individual column
// failures are annotated on their ColumnResult; the table profile itself
// fails only when column enumeration fails or the context is cancelled.
func (p *Profiler) ProfileTable(ctx context.Context, schema, table string, filter *warehouse.Filter) (*TableProfile, error) {
	columns, err := p.exec.ListColumns(ctx, schema, table)
	if err != nil {
		return nil, fmt.Errorf("list columns for %s.%s: %w", schema, table, err)
	}

	results := make([]ColumnResult, len(columns))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, col := range columns {
		g.Go(func() error {
			results[i] = p.profileColumn(gctx, schema, table, col, filter)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("profile %s.%s: %w", schema, table, err)
	}

	return &TableProfile{
		RunID:       uuid.New(),
		Warehouse:   p.wtype,
		Schema:      schema,
		Table:       table,
		Columns:     results,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (p *Profiler) profileColumn(ctx context.Context, schema, table string, col warehouse.ColumnMeta, filter *warehouse.Filter) ColumnResult {
	result := ColumnResult{Name: col.Name, NativeType: col.NativeType}

	dialect, err := warehouse.DialectFor(p.wtype)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	colType, err := dialect.TranslateType(col.NativeType)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnknownColumnType) {
			p.logger.Debug("skipping column with unmapped type",
				zap.String("column", col.Name),
				zap.String("native_type", col.NativeType))
			result.Skipped = true
			return result
		}
		result.Error = err.Error()
		return result
	}
	result.ColType = colType

	ref := warehouse.ColumnRef{Schema: schema, Table: table, Column: col.Name}
	coord, err := insights.NewCoordinator(colType, ref, p.wtype, filter)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	// Compile → Execute → Merge. The merge consumes result sets in the
	// exact order GenerateSQLs returned the queries.
	queries := coord.GenerateSQLs()
	resultSets := make([][]map[string]any, 0, len(queries))
	for _, q := range queries {
		rows, err := p.exec.ExecuteQuery(ctx, q)
		if err != nil {
			p.logger.Warn("insight query failed",
				zap.String("column", col.Name),
				zap.Error(err))
			result.Error = fmt.Sprintf("execute insight query: %v", err)
			return result
		}
		resultSets = append(resultSets, rows)
	}

	profile, err := coord.MergeOutput(resultSets)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Insights = profile
	return result
}
