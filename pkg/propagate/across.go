package propagate

import (
	"context"

	"github.com/netsim/bgpsim/pkg/announcement"
	"github.com/netsim/bgpsim/pkg/asgraph"
)

// phaseAcross sends every AS's Origin/Customer-learned installed routes to
// its peers, one hop. All sends happen before any AS processes/clears its
// queue, so no AS can see a peer-forwarded route in time to re-export it
// within this same phase. Because peer-learned routes install with
// ReceivedFrom == Peer, and phaseUp/phaseDown both gate re-export on
// ReceivedFrom, the "one hop only" property falls out of the label alone —
// no hop counter is needed (see SPEC_FULL.md §9 Open Question 2).
func phaseAcross(ctx context.Context, g *asgraph.Graph) error {
	var all []*asgraph.Node
	g.All(func(n *asgraph.Node) { all = append(all, n) })

	for _, x := range all {
		for _, a := range x.Policy.RIB() {
			if a.ReceivedFrom != announcement.Origin && a.ReceivedFrom != announcement.Customer {
				continue
			}
			for _, q := range g.ResolvePeers(x) {
				if a.Contains(q.ASN) {
					continue
				}
				q.Policy.Receive(a.Forward(x.ASN, announcement.Peer), q.ASN)
			}
		}
	}
	return processNodes(ctx, all)
}
