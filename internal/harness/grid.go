// Grid execution: independent runs are embarrassingly parallel, so they
// fan out over an errgroup with a worker cap. Results come back in input
// order regardless of completion order.
package harness

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/talgya/cellview/internal/config"
)

// ExecuteGrid runs every configuration concurrently, at most parallelism
// at a time (0 means unbounded). The first failing run cancels nothing —
// runs share no state — but its error aborts the grid result.
func ExecuteGrid(cfgs []config.Run, parallelism int) ([]*Outcome, error) {
	var g errgroup.Group
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}

	outcomes := make([]*Outcome, len(cfgs))
	for i, cfg := range cfgs {
		i, cfg := i, cfg
		g.Go(func() error {
			out, err := Execute(cfg)
			if err != nil {
				return fmt.Errorf("grid run %d: %w", i, err)
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// SeedVariants clones a base configuration across explicit hex seeds,
// the usual way a grid explores run-to-run variance.
func SeedVariants(base config.Run, seeds []string) []config.Run {
	out := make([]config.Run, len(seeds))
	for i, s := range seeds {
		cfg := base
		cfg.SeedHex = s
		out[i] = cfg
	}
	return out
}
