package propagate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/netsim/bgpsim/internal/log"
	"github.com/netsim/bgpsim/pkg/announcement"
	"github.com/netsim/bgpsim/pkg/asgraph"
	"github.com/netsim/bgpsim/pkg/asn"
	"github.com/netsim/bgpsim/pkg/prefix"
)

// buildTopology builds the §8 scenario topology: 1,2,3,4,5 with 1-2 peer;
// 1->3, 1->4 (1 provider of 3,4); 3->5, 4->5 (3,4 providers of 5).
func buildTopology() *asgraph.Graph {
	g := asgraph.New()
	g.AddEdge(1, 2, asgraph.Peer)
	g.AddEdge(1, 3, asgraph.Customer)
	g.AddEdge(1, 4, asgraph.Customer)
	g.AddEdge(3, 5, asgraph.Customer)
	g.AddEdge(4, 5, asgraph.Customer)
	return g
}

func seedOrigin(t *testing.T, g *asgraph.Graph, origin asn.ASN, pfxStr string, rovInvalid bool) {
	t.Helper()
	n, ok := g.Lookup(origin)
	require.True(t, ok)
	n.Policy.Seed(announcement.NewOrigin(origin, prefix.Parse(pfxStr), rovInvalid))
}

func installedPath(t *testing.T, g *asgraph.Graph, who asn.ASN, pfxStr string) ([]asn.ASN, bool) {
	t.Helper()
	n, ok := g.Lookup(who)
	require.True(t, ok)
	ann, ok := n.Policy.Get(prefix.Parse(pfxStr))
	if !ok {
		return nil, false
	}
	return ann.ASPath, true
}

func ctxWithLogger() context.Context {
	return log.CtxWith(context.Background(), log.Nop())
}

// Scenario 1: origin at 1, no ROV.
func TestScenario1OriginAtOne(t *testing.T) {
	defer goleak.VerifyNone(t)
	g := buildTopology()
	seedOrigin(t, g, 1, "10.0.0.0/8", false)
	require.NoError(t, Run(ctxWithLogger(), g))

	assertPath(t, g, 1, "10.0.0.0/8", []asn.ASN{1})
	assertPath(t, g, 2, "10.0.0.0/8", []asn.ASN{2, 1})
	assertPath(t, g, 3, "10.0.0.0/8", []asn.ASN{3, 1})
	assertPath(t, g, 4, "10.0.0.0/8", []asn.ASN{4, 1})
	assertPath(t, g, 5, "10.0.0.0/8", []asn.ASN{5, 3, 1})
}

// Scenario 2: origin at 5, no ROV.
func TestScenario2OriginAtFive(t *testing.T) {
	g := buildTopology()
	seedOrigin(t, g, 5, "2.0.0.0/8", false)
	require.NoError(t, Run(ctxWithLogger(), g))

	assertPath(t, g, 5, "2.0.0.0/8", []asn.ASN{5})
	assertPath(t, g, 3, "2.0.0.0/8", []asn.ASN{3, 5})
	assertPath(t, g, 4, "2.0.0.0/8", []asn.ASN{4, 5})
	assertPath(t, g, 1, "2.0.0.0/8", []asn.ASN{1, 3, 5})
	assertPath(t, g, 2, "2.0.0.0/8", []asn.ASN{2, 1, 3, 5})
}

// Scenario 3: origin at 1 rov_invalid=true, ROV deployed at {3,5}.
func TestScenario3ROVDrops(t *testing.T) {
	g := buildTopology()
	n3, _ := g.Lookup(3)
	n3.Policy.UpgradeToROV()
	n5, _ := g.Lookup(5)
	n5.Policy.UpgradeToROV()

	seedOrigin(t, g, 1, "10.0.0.0/8", true)
	require.NoError(t, Run(ctxWithLogger(), g))

	assertPath(t, g, 1, "10.0.0.0/8", []asn.ASN{1})
	assertPath(t, g, 2, "10.0.0.0/8", []asn.ASN{2, 1})
	assertNoRoute(t, g, 3, "10.0.0.0/8")
	assertPath(t, g, 4, "10.0.0.0/8", []asn.ASN{4, 1})
	assertNoRoute(t, g, 5, "10.0.0.0/8")
}

// Scenario 4: two competing origins for the same prefix -- 5 and 2 for
// 3.0.0.0/8. AS1 sees Customer (via 3 or 4, length 3) and Peer (via 2,
// length 2); Customer < Peer wins even though it is a longer path.
func TestScenario4CustomerBeatsPeerOnPriority(t *testing.T) {
	g := buildTopology()
	seedOrigin(t, g, 5, "3.0.0.0/8", false)
	seedOrigin(t, g, 2, "3.0.0.0/8", false)
	require.NoError(t, Run(ctxWithLogger(), g))

	assertPath(t, g, 1, "3.0.0.0/8", []asn.ASN{1, 3, 5})
}

// Scenario 5: loop prevention -- an announcement whose as_path already
// contains the receiver's ASN must not be enqueued.
func TestScenario5LoopPrevention(t *testing.T) {
	g := asgraph.New()
	g.AddEdge(1, 3, asgraph.Customer)
	n1, _ := g.Lookup(1)

	pfx := prefix.Parse("9.0.0.0/8")
	crafted := announcement.Announcement{
		Prefix:       pfx,
		NextHopASN:   1,
		ASPath:       []asn.ASN{1, 3}, // already contains 3
		ReceivedFrom: announcement.Origin,
	}
	n1.Policy.Seed(crafted)

	require.NoError(t, Run(ctxWithLogger(), g))
	assertNoRoute(t, g, 3, "9.0.0.0/8")
}

// Scenario 6: disconnected AS 9 has no edges; propagation leaves its RIB
// empty, and graph build/cycle-check/ranking all succeed with rank 0.
func TestScenario6DisconnectedAS(t *testing.T) {
	g := buildTopology()
	g.EnsureNode(9)
	seedOrigin(t, g, 1, "10.0.0.0/8", false)
	require.NoError(t, Run(ctxWithLogger(), g))

	n9, ok := g.Lookup(9)
	require.True(t, ok)
	assert.Equal(t, 0, n9.Rank)
	assert.Empty(t, n9.Policy.RIB())
}

// P4: running the engine twice on the same inputs yields identical RIBs.
func TestDeterminism(t *testing.T) {
	build := func() *asgraph.Graph {
		g := buildTopology()
		seedOrigin(t, g, 5, "2.0.0.0/8", false)
		seedOrigin(t, g, 2, "3.0.0.0/8", false)
		return g
	}

	g1 := build()
	require.NoError(t, Run(ctxWithLogger(), g1))
	g2 := build()
	require.NoError(t, Run(ctxWithLogger(), g2))

	for _, asNum := range []asn.ASN{1, 2, 3, 4, 5} {
		n1, _ := g1.Lookup(asNum)
		n2, _ := g2.Lookup(asNum)
		assert.Equal(t, n1.Policy.RIB(), n2.Policy.RIB(), "AS %d RIB differs between runs", asNum)
	}
}

// Peers that also share a common provider must not leak an extra hop
// through the ACROSS phase (SPEC_FULL.md §9 Open Question 2).
func TestPeerAndCommonProviderNoExtraHop(t *testing.T) {
	g := asgraph.New()
	g.AddEdge(10, 20, asgraph.Peer)
	g.AddEdge(100, 10, asgraph.Customer) // 100 provider of 10
	g.AddEdge(100, 20, asgraph.Customer) // 100 provider of 20

	seedOrigin(t, g, 10, "4.0.0.0/8", false)
	require.NoError(t, Run(ctxWithLogger(), g))

	// 20 should learn [20,10] directly across the peer link, one hop, and
	// must not also learn (or prefer) any route that hops through 100.
	assertPath(t, g, 20, "4.0.0.0/8", []asn.ASN{20, 10})
	// 100 only ever learns the route via the customer edge to 10 -- the
	// peer-learned route at 20 must never leak back up through 100.
	assertPath(t, g, 100, "4.0.0.0/8", []asn.ASN{100, 10})
}

func assertPath(t *testing.T, g *asgraph.Graph, who asn.ASN, pfxStr string, want []asn.ASN) {
	t.Helper()
	got, ok := installedPath(t, g, who, pfxStr)
	require.True(t, ok, "expected AS %d to have an installed route for %s", who, pfxStr)
	assert.Equal(t, want, got, "AS %d as_path for %s", who, pfxStr)
}

func assertNoRoute(t *testing.T, g *asgraph.Graph, who asn.ASN, pfxStr string) {
	t.Helper()
	_, ok := installedPath(t, g, who, pfxStr)
	assert.False(t, ok, "expected AS %d to have no installed route for %s", who, pfxStr)
}
