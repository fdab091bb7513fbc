// Package propagate implements the three-phase Gao-Rexford valley-free
// propagation engine: UP (to providers), ACROSS (to peers), DOWN (to
// customers).
//
// Sends within a phase are logically concurrent: they are buffered into
// per-receiver queues and drained deterministically once every sender at
// the current rank (or, for ACROSS, every AS) has finished sending. A
// parallelising implementation may process a rank's receivers concurrently
// since the graph topology and neighbor lists are read-only during
// propagation and each AS's own RIB/queue is mutated only by that AS — this
// engine exploits exactly that by fanning per-rank process/clear work out
// across goroutines with golang.org/x/sync/errgroup, the same package the
// daemon/router/control/dispatcher main.go startup paths use to fan out
// their own independent goroutines. Bounding that fan-out with SetLimit is
// this package's own addition on top of the errgroup idiom: a CAIDA-scale
// rank can hold tens of thousands of ASes, and letting every one of them
// spawn a goroutine at once would be wasteful, not a pattern carried over
// from elsewhere in the examples.
package propagate

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/netsim/bgpsim/internal/log"
	"github.com/netsim/bgpsim/internal/metrics"
	"github.com/netsim/bgpsim/pkg/asgraph"
)

// MaxWorkers bounds the number of goroutines used to process a single
// rank's (or, for ACROSS, the whole graph's) receivers concurrently.
const MaxWorkers = 64

// Run executes the three phases in order: UP, ACROSS, DOWN. It is
// deterministic and non-retrying. Every node always has a policy (one is
// assigned at node creation in asgraph.Graph.getOrCreate), so propagate
// never needs to skip a neighbor reference for lacking one; a boundary
// adapter that prunes the graph is expected to do so before Run is called.
func Run(ctx context.Context, g *asgraph.Graph) error {
	start := time.Now()
	defer func() { metrics.PropagationSeconds.Observe(time.Since(start).Seconds()) }()

	logger := log.FromCtx(ctx)
	ranked, err := g.AssignRanks()
	if err != nil {
		return err
	}
	metrics.MaxRank.Set(float64(len(ranked) - 1))
	logger.Info("topology ranked", "levels", len(ranked), "ases", g.Len())

	if err := phaseUp(ctx, g, ranked); err != nil {
		return err
	}
	if err := phaseAcross(ctx, g); err != nil {
		return err
	}
	if err := phaseDown(ctx, g, ranked); err != nil {
		return err
	}
	return nil
}

// processNodes runs Process then ClearQueue for every node in nodes,
// fanned out across a bounded worker pool. Process/ClearQueue on distinct
// nodes touch disjoint state (each AS owns its own RIB and queue), so this
// is safe to parallelize without locking.
func processNodes(ctx context.Context, nodes []*asgraph.Node) error {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(MaxWorkers)
	for _, n := range nodes {
		n := n
		g.Go(func() error {
			n.Policy.Process(n.ASN)
			n.Policy.ClearQueue()
			return nil
		})
	}
	return g.Wait()
}
