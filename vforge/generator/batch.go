package generator

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/ZanzyTHEbar/value-forge/vforge/catalog"
	"github.com/ZanzyTHEbar/value-forge/vforge/randsource"
)

// GenerateBatch produces count independent values concurrently. Every task
// owns a private generator over a fresh generative source; only the catalog
// is shared, which is safe because its population is synchronized. Draw
// sources are never shared across goroutines, so recorded batches are not
// supported here: record one value at a time instead.
func GenerateBatch(ctx context.Context, cfg Config, cat *catalog.Catalog, count int) ([]any, error) {
	if count < 0 {
		return nil, fmt.Errorf("batch count cannot be negative, got %d", count)
	}
	results := make([]any, count)
	p := pool.New().
		WithMaxGoroutines(runtime.NumCPU()).
		WithContext(ctx).
		WithCancelOnError()
	for i := 0; i < count; i++ {
		p.Go(func(ctx context.Context) error {
			g, err := New(cfg, randsource.NewGenerative(), cat)
			if err != nil {
				return fmt.Errorf("failed to build batch generator: %w", err)
			}
			v, err := g.Generate(0)
			if err != nil {
				return fmt.Errorf("failed to generate batch value %d: %w", i, err)
			}
			results[i] = v
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
