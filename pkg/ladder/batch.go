package ladder

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// GenerateAll generates independent ladders concurrently. Each run owns its
// own Program; results come back in the order of opts. The first failure
// cancels runs that have not started yet.
func GenerateAll(ctx context.Context, opts []Options) ([]*Result, error) {
	return GenerateAllStage(ctx, opts, StageResolved)
}

// GenerateAllStage is GenerateAll stopped after the given resolution stage.
func GenerateAllStage(ctx context.Context, opts []Options, stage Stage) ([]*Result, error) {
	results := make([]*Result, len(opts))
	g, ctx := errgroup.WithContext(ctx)
	for i, o := range opts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := GenerateStage(o, stage)
			if err != nil {
				return errors.Wrapf(err, "ladder #%d", i)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
