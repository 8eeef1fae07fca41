package backend

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// BuildAll builds independent units concurrently. Each unit gets its own
// graph, writer and diagnostic bag, so nothing is shared between goroutines;
// within one unit the stage order is still strictly sequential. Results are
// returned in request order regardless of completion order.
func BuildAll(ctx context.Context, reqs []*BuildRequest) ([]BuildResult, error) {
	results := make([]BuildResult, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			res, err := Build(ctx, req)
			results[i] = res
			return err
		})
	}
	err := g.Wait()
	return results, err
}
