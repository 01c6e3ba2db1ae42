package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/dataprofhq/engine/pkg/config"
	"github.com/dataprofhq/engine/pkg/logging"
	"github.com/dataprofhq/engine/pkg/sqlgen"
	"github.com/dataprofhq/engine/pkg/warehouse"
)

// Executor runs profiling queries against PostgreSQL.
type Executor struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewExecutor connects a PostgreSQL executor.
func NewExecutor(ctx context.Context, cfg *config.WarehouseConfig, logger *zap.Logger) (*Executor, error) {
	connStr := cfg.ConnectionString()
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres %s: %w", logging.SanitizeConnectionString(connStr), err)
	}
	return &Executor{
		pool:   pool,
		logger: logger.Named("postgres-executor"),
	}, nil
}

const listColumnsSQL = `
SELECT column_name, data_type
FROM information_schema.columns
WHERE table_schema = $1 AND table_name = $2
ORDER BY ordinal_position`

// ListColumns returns the table's columns with their native types.
func (e *Executor) ListColumns(ctx context.Context, schema, table string) ([]warehouse.ColumnMeta, error) {
	rows, err := e.pool.Query(ctx, listColumnsSQL, schema, table)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	defer rows.Close()

	var columns []warehouse.ColumnMeta
	for rows.Next() {
		var col warehouse.ColumnMeta
		if err := rows.Scan(&col.Name, &col.NativeType); err != nil {
			return nil, fmt.Errorf("scan column metadata: %w", err)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate column metadata: %w", err)
	}
	return columns, nil
}

// ExecuteQuery runs a compiled insight query and returns alias→value rows.
func (e *Executor) ExecuteQuery(ctx context.Context, query *sqlgen.CompiledQuery) ([]map[string]any, error) {
	e.logger.Debug("executing insight query", zap.String("sql", logging.SanitizeQuery(query.SQL())))

	rows, err := e.pool.Query(ctx, query.SQL())
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	names := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		names[i] = string(fd.Name)
	}

	resultRows := make([]map[string]any, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}
		rowMap := make(map[string]any, len(names))
		for i, name := range names {
			rowMap[name] = normalizeValue(values[i])
		}
		resultRows = append(resultRows, rowMap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return resultRows, nil
}

// normalizeValue flattens pgx-specific decodes. NUMERIC columns (AVG,
// EXTRACT results) come back as pgtype.Numeric, which downstream parsing
// does not know about.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case pgtype.Numeric:
		if !val.Valid {
			return nil
		}
		if f, err := val.Float64Value(); err == nil && f.Valid {
			return f.Float64
		}
		return v
	default:
		return v
	}
}

// Close releases the connection pool.
func (e *Executor) Close() error {
	e.pool.Close()
	return nil
}
