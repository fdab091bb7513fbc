package propagate

import (
	"context"

	"github.com/netsim/bgpsim/pkg/announcement"
	"github.com/netsim/bgpsim/pkg/asgraph"
)

// phaseUp iterates ranks 0..max_rank ascending. At each rank r, every AS X
// sends its exportable installed routes to its providers (labelling the
// forwarded announcement Customer, since from the provider's point of view
// it arrived from a customer — see SPEC_FULL.md §9 Open Question 1: the
// label attached reflects the receiver's view, not the sender's relation to
// X). Once every rank-r sender has finished, every AS at rank r+1 processes
// and clears its queue, guaranteeing each AS only ever sees candidates from
// strictly lower ranks before it itself sends upward.
func phaseUp(ctx context.Context, g *asgraph.Graph, ranked [][]*asgraph.Node) error {
	for r := 0; r < len(ranked); r++ {
		for _, x := range ranked[r] {
			for _, a := range x.Policy.RIB() {
				// Valley-free: never re-export a route learned from a
				// provider or peer back up to a provider.
				if a.ReceivedFrom != announcement.Origin && a.ReceivedFrom != announcement.Customer {
					continue
				}
				for _, p := range g.ResolveProviders(x) {
					if a.Contains(p.ASN) {
						continue // loop prevention
					}
					p.Policy.Receive(a.Forward(x.ASN, announcement.Customer), p.ASN)
				}
			}
		}
		if r+1 < len(ranked) {
			if err := processNodes(ctx, ranked[r+1]); err != nil {
				return err
			}
		}
	}
	return nil
}
