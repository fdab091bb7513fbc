package propagate

import (
	"context"

	"github.com/netsim/bgpsim/pkg/announcement"
	"github.com/netsim/bgpsim/pkg/asgraph"
)

// phaseDown iterates ranks max_rank..0 descending. At each rank r, every AS
// X sends every installed route (any ReceivedFrom — customers may learn
// anything their provider has, that is the whole point of valley-free
// export) down to its customers, labelled Provider from the customer's
// point of view. Once every rank-r sender has finished, every AS at rank
// r-1 processes and clears its queue.
func phaseDown(ctx context.Context, g *asgraph.Graph, ranked [][]*asgraph.Node) error {
	for r := len(ranked) - 1; r >= 0; r-- {
		for _, x := range ranked[r] {
			for _, a := range x.Policy.RIB() {
				for _, c := range g.ResolveCustomers(x) {
					if a.Contains(c.ASN) {
						continue
					}
					c.Policy.Receive(a.Forward(x.ASN, announcement.Provider), c.ASN)
				}
			}
		}
		if r-1 >= 0 {
			if err := processNodes(ctx, ranked[r-1]); err != nil {
				return err
			}
		}
	}
	return nil
}
