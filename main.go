package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dataprofhq/engine/pkg/adapters/executor"
	_ "github.com/dataprofhq/engine/pkg/adapters/executor/bigquery"
	_ "github.com/dataprofhq/engine/pkg/adapters/executor/postgres"
	_ "github.com/dataprofhq/engine/pkg/adapters/executor/snowflake"
	"github.com/dataprofhq/engine/pkg/config"
	"github.com/dataprofhq/engine/pkg/profiler"
	"github.com/dataprofhq/engine/pkg/warehouse"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	schema := flag.String("schema", "", "schema (or BigQuery dataset) of the table to profile")
	table := flag.String("table", "", "table to profile")
	filterField := flag.String("filter-field", "", "optional filter column")
	filterOp := flag.String("filter-op", "=", "filter operator")
	filterValue := flag.String("filter-value", "", "filter value")
	flag.Parse()

	if *schema == "" || *table == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	wtype, err := warehouse.ParseType(cfg.Warehouse.Type)
	if err != nil {
		logger.Fatal("Invalid warehouse type", zap.Error(err))
	}

	var filter *warehouse.Filter
	if *filterField != "" {
		filter = &warehouse.Filter{
			Field:    *filterField,
			Operator: warehouse.Operator(*filterOp),
			Value:    *filterValue,
		}
	}

	ctx := context.Background()

	factory, err := executor.ForType(wtype)
	if err != nil {
		logger.Fatal("No executor for warehouse", zap.Error(err))
	}
	exec, err := factory(ctx, &cfg.Warehouse, logger)
	if err != nil {
		logger.Fatal("Failed to connect to warehouse", zap.Error(err))
	}
	defer exec.Close()

	p, err := profiler.New(wtype, exec, logger, profiler.WithConcurrency(cfg.Concurrency))
	if err != nil {
		logger.Fatal("Failed to build profiler", zap.Error(err))
	}

	logger.Info("Profiling table",
		zap.String("warehouse", string(wtype)),
		zap.String("schema", *schema),
		zap.String("table", *table),
		zap.String("version", cfg.Version))

	profile, err := p.ProfileTable(ctx, *schema, *table, filter)
	if err != nil {
		logger.Fatal("Profiling failed", zap.Error(err))
	}

	out, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		logger.Fatal("Failed to encode profile", zap.Error(err))
	}
	fmt.Println(string(out))
}

// buildLogger builds a zap logger on stderr, leaving stdout for the
// profile JSON.
func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Env == "local" {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.LogLevel, err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}
