package bigquery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/dataprofhq/engine/pkg/config"
	"github.com/dataprofhq/engine/pkg/logging"
	"github.com/dataprofhq/engine/pkg/sqlgen"
	"github.com/dataprofhq/engine/pkg/warehouse"
)

// Executor runs profiling queries against BigQuery. The schema argument
// of the profiling API maps to a BigQuery dataset.
type Executor struct {
	client *bigquery.Client
	logger *zap.Logger
}

// NewExecutor connects a BigQuery executor using application default
// credentials for the configured project.
func NewExecutor(ctx context.Context, cfg *config.WarehouseConfig, logger *zap.Logger) (*Executor, error) {
	if cfg.Project == "" {
		return nil, errors.New("bigquery project is required")
	}
	client, err := bigquery.NewClient(ctx, cfg.Project)
	if err != nil {
		return nil, fmt.Errorf("create bigquery client: %w", err)
	}
	return &Executor{
		client: client,
		logger: logger.Named("bigquery-executor"),
	}, nil
}

// ListColumns returns the table's columns from its dataset metadata.
func (e *Executor) ListColumns(ctx context.Context, schema, table string) ([]warehouse.ColumnMeta, error) {
	meta, err := e.client.Dataset(schema).Table(table).Metadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("read table metadata: %w", err)
	}

	columns := make([]warehouse.ColumnMeta, 0, len(meta.Schema))
	for _, field := range meta.Schema {
		columns = append(columns, warehouse.ColumnMeta{
			Name:       field.Name,
			NativeType: strings.ToLower(string(field.Type)),
		})
	}
	return columns, nil
}

// ExecuteQuery runs a compiled insight query and returns alias→value rows.
func (e *Executor) ExecuteQuery(ctx context.Context, query *sqlgen.CompiledQuery) ([]map[string]any, error) {
	e.logger.Debug("executing insight query", zap.String("sql", logging.SanitizeQuery(query.SQL())))

	it, err := e.client.Query(query.SQL()).Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}

	resultRows := make([]map[string]any, 0)
	for {
		var row map[string]bigquery.Value
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate rows: %w", err)
		}
		rowMap := make(map[string]any, len(row))
		for alias, value := range row {
			rowMap[alias] = value
		}
		resultRows = append(resultRows, rowMap)
	}
	return resultRows, nil
}

// Close releases the client.
func (e *Executor) Close() error {
	return e.client.Close()
}
