// Package asgraph implements the in-memory AS relationship graph: node
// storage, edge insertion, the provider/customer DAG validator, and the
// topological ranker.
//
// Nodes live in a dense arena (a slice indexed by nodeID) with an ASN→nodeID
// side table, and neighbor lists are slices of nodeID rather than a
// map-of-pointers graph. This layout is this package's own choice, not
// carried over from a teacher data structure: a CAIDA-scale AS graph has
// tens of thousands of nodes and hundreds of thousands of edges, and walking rank by
// rank during propagation wants those neighbor lists contiguous rather than
// scattered behind pointer chases.
package asgraph

import (
	"github.com/netsim/bgpsim/internal/metrics"
	"github.com/netsim/bgpsim/pkg/asn"
	"github.com/netsim/bgpsim/pkg/policy"
)

// Relationship labels an edge from the perspective of the first AS named in
// add_edge.
type Relationship int8

const (
	Customer Relationship = iota // first AS is the provider of the second
	Peer
	Provider // first AS is the customer of the second
)

func (r Relationship) String() string {
	switch r {
	case Customer:
		return "customer"
	case Peer:
		return "peer"
	case Provider:
		return "provider"
	default:
		return "unknown"
	}
}

// nodeID is a dense index into Graph.nodes.
type nodeID int32

// UnrankedSentinel marks a node that has not yet been assigned a rank.
const UnrankedSentinel = -1

// Node is one AS in the graph.
type Node struct {
	ASN       asn.ASN
	Providers []nodeID
	Customers []nodeID
	Peers     []nodeID
	Rank      int
	Policy    policy.Policy
}

// Graph is the AS relationship graph.
type Graph struct {
	nodes []*Node
	index map[asn.ASN]nodeID

	edgeCounts map[Relationship]int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		index:      make(map[asn.ASN]nodeID),
		edgeCounts: make(map[Relationship]int),
	}
}

// ReserveHint presizes the ASN table to avoid rehashing during bulk ingest
// of n nodes.
func (g *Graph) ReserveHint(n int) {
	if n <= len(g.index) {
		return
	}
	grown := make(map[asn.ASN]nodeID, n)
	for k, v := range g.index {
		grown[k] = v
	}
	g.index = grown
	if cap(g.nodes) < n {
		bigger := make([]*Node, len(g.nodes), n)
		copy(bigger, g.nodes)
		g.nodes = bigger
	}
}

// getOrCreate returns the nodeID for a, creating a new node on first
// reference.
func (g *Graph) getOrCreate(a asn.ASN) nodeID {
	if id, ok := g.index[a]; ok {
		return id
	}
	id := nodeID(len(g.nodes))
	g.nodes = append(g.nodes, &Node{ASN: a, Rank: UnrankedSentinel, Policy: policy.NewStandard()})
	g.index[a] = id
	return id
}

// EnsureNode creates a node for a if it does not already exist, without
// adding any edge, so a disconnected AS can be present in the graph.
func (g *Graph) EnsureNode(a asn.ASN) {
	g.getOrCreate(a)
}

// AddEdge inserts a symmetric edge pair per the relationship label, from
// a1's perspective: Provider means a1 is a customer of a2, Customer means
// a1 is a provider of a2, Peer is symmetric. No deduplication of parallel
// edges is performed; edge counts are maintained for telemetry.
func (g *Graph) AddEdge(a1, a2 asn.ASN, rel Relationship) {
	x := g.getOrCreate(a1)
	y := g.getOrCreate(a2)
	switch rel {
	case Provider:
		g.nodes[x].Providers = append(g.nodes[x].Providers, y)
		g.nodes[y].Customers = append(g.nodes[y].Customers, x)
	case Customer:
		g.nodes[x].Customers = append(g.nodes[x].Customers, y)
		g.nodes[y].Providers = append(g.nodes[y].Providers, x)
	case Peer:
		g.nodes[x].Peers = append(g.nodes[x].Peers, y)
		g.nodes[y].Peers = append(g.nodes[y].Peers, x)
	}
	g.edgeCounts[rel]++
	metrics.EdgeCount.WithLabelValues(rel.String()).Set(float64(g.edgeCounts[rel]))
}

// Lookup returns the Node for a and whether it exists.
func (g *Graph) Lookup(a asn.ASN) (*Node, bool) {
	id, ok := g.index[a]
	if !ok {
		return nil, false
	}
	return g.nodes[id], true
}

// NodeByID returns the node at arena index id. The id type is unexported,
// so code outside asgraph walks neighbors through the Resolve* methods
// below instead.
func (g *Graph) NodeByID(id nodeID) *Node { return g.nodes[id] }

// Len returns the number of AS nodes in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// EdgeCount returns the number of edges inserted under the given
// relationship label.
func (g *Graph) EdgeCount(rel Relationship) int { return g.edgeCounts[rel] }

// All calls fn for every node in the graph, in arena (insertion) order.
func (g *Graph) All(fn func(n *Node)) {
	for _, n := range g.nodes {
		fn(n)
	}
}

// ResolveProviders/ResolveCustomers/ResolvePeers resolve a node's
// neighbor-id slice into *Node slices; propagate uses them to reach each
// AS's neighbors while it walks by rank.
func (g *Graph) ResolveProviders(n *Node) []*Node { return g.resolve(n.Providers) }
func (g *Graph) ResolveCustomers(n *Node) []*Node { return g.resolve(n.Customers) }
func (g *Graph) ResolvePeers(n *Node) []*Node     { return g.resolve(n.Peers) }

func (g *Graph) resolve(ids []nodeID) []*Node {
	out := make([]*Node, len(ids))
	for i, id := range ids {
		out[i] = g.nodes[id]
	}
	return out
}
