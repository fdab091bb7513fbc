package asgraph

import "github.com/netsim/bgpsim/internal/xerrors"

// AssignRanks computes each AS's rank by a Kahn-style topological pass over
// the customer DAG: leaves (no customers) start at rank 0; every other AS
// waits for all its customers to be ranked, then takes one more than the
// maximum rank among them. Returns ranked[0..max_rank], where ranked[r]
// lists the node ids at that rank (order within a rank is unspecified).
//
// CheckAcyclic must have already succeeded; AssignRanks does not re-verify
// acyclicity, and will return InternalInvariantViolation if a cycle slipped
// through (a node's unresolved-customer counter never reaches zero).
func (g *Graph) AssignRanks() ([][]*Node, error) {
	counters := make([]int, len(g.nodes))
	var queue []nodeID
	for id, n := range g.nodes {
		counters[id] = len(n.Customers)
		if counters[id] == 0 {
			n.Rank = 0
			queue = append(queue, nodeID(id))
		}
	}

	maxRank := 0
	ranked := 0
	for len(queue) > 0 {
		x := queue[0]
		queue = queue[1:]
		ranked++
		r := g.nodes[x].Rank
		if r > maxRank {
			maxRank = r
		}
		for _, p := range g.nodes[x].Providers {
			if newRank := r + 1; newRank > g.nodes[p].Rank {
				g.nodes[p].Rank = newRank
			}
			counters[p]--
			if counters[p] == 0 {
				queue = append(queue, p)
			}
		}
	}

	if ranked != len(g.nodes) {
		return nil, xerrors.New(xerrors.InternalInvariantViolation,
			"Kahn pass left ASes unranked; the provider/customer DAG has an undetected cycle",
			"ranked", ranked, "total", len(g.nodes))
	}

	result := make([][]*Node, maxRank+1)
	for _, n := range g.nodes {
		result[n.Rank] = append(result[n.Rank], n)
	}
	return result, nil
}
