package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sf "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/dataprofhq/engine/pkg/config"
	"github.com/dataprofhq/engine/pkg/logging"
	"github.com/dataprofhq/engine/pkg/sqlgen"
	"github.com/dataprofhq/engine/pkg/warehouse"
)

// Executor runs profiling queries against Snowflake through the
// gosnowflake database/sql driver.
type Executor struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExecutor connects a Snowflake executor.
func NewExecutor(ctx context.Context, cfg *config.WarehouseConfig, logger *zap.Logger) (*Executor, error) {
	dsn, err := sf.DSN(&sf.Config{
		Account:   cfg.Account,
		User:      cfg.User,
		Password:  cfg.Password,
		Database:  cfg.Database,
		Warehouse: cfg.WarehouseName,
		Role:      cfg.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("build snowflake DSN: %w", err)
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("open snowflake connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping snowflake: %w", err)
	}
	return &Executor{
		db:     db,
		logger: logger.Named("snowflake-executor"),
	}, nil
}

const listColumnsSQL = `
SELECT COLUMN_NAME, DATA_TYPE
FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
ORDER BY ORDINAL_POSITION`

// ListColumns returns the table's columns with their native types.
// Unquoted Snowflake identifiers are stored uppercase, so the lookup
// arguments are uppercased.
func (e *Executor) ListColumns(ctx context.Context, schema, table string) ([]warehouse.ColumnMeta, error) {
	rows, err := e.db.QueryContext(ctx, listColumnsSQL, strings.ToUpper(schema), strings.ToUpper(table))
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

	rows, err := e.db.QueryContext(ctx, query.SQL())
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read result columns: %w", err)
	}

	resultRows := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(names))
		scanTargets := make([]any, len(names))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		rowMap := make(map[string]any, len(names))
		for i, name := range names {
			// Snowflake reports result aliases uppercase; the compiled
			// query's aliases are lowercase.
			rowMap[strings.ToLower(name)] = values[i]
		}
		resultRows = append(resultRows, rowMap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return resultRows, nil
}

// Close releases the connection.
func (e *Executor) Close() error {
	return e.db.Close()
}
