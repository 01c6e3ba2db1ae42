package snowflake

import (
	"context"

	"go.uber.org/zap"

	"github.com/dataprofhq/engine/pkg/adapters/executor"
	"github.com/dataprofhq/engine/pkg/config"
	"github.com/dataprofhq/engine/pkg/profiler"
	"github.com/dataprofhq/engine/pkg/warehouse"
)

func init() {
	executor.Register(warehouse.Snowflake, func(ctx context.Context, cfg *config.WarehouseConfig, logger *zap.Logger) (profiler.Executor, error) {
		return NewExecutor(ctx, cfg, logger)
	})
}
