// Package executor registers warehouse executor factories. Each backend
// adapter registers itself from init(), keyed by warehouse type; callers
// resolve a factory for the configured warehouse and get back a connected
// profiler.Executor.
package executor

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/dataprofhq/engine/pkg/apperrors"
	"github.com/dataprofhq/engine/pkg/config"
	"github.com/dataprofhq/engine/pkg/profiler"
	"github.com/dataprofhq/engine/pkg/warehouse"
)

// Factory creates a connected executor for one warehouse backend.
type Factory func(ctx context.Context, cfg *config.WarehouseConfig, logger *zap.Logger) (profiler.Executor, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[warehouse.Type]Factory)
)

// Register is called by each adapter's init() function.
// Thread-safe for concurrent init() calls.
func Register(wtype warehouse.Type, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[wtype] = factory
}

// ForType returns the factory for a warehouse type.
func ForType(wtype warehouse.Type) (Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	factory, ok := registry[wtype]
	if !ok {
		return nil, fmt.Errorf("%w: no executor registered for %q", apperrors.ErrUnknownWarehouse, wtype)
	}
	return factory, nil
}

// Registered returns the registered warehouse types, sorted.
func Registered() []warehouse.Type {
	registryMu.RLock()
	defer registryMu.RUnlock()

	types := make([]warehouse.Type, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
