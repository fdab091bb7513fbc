// Package policy implements the per-AS policy: the Standard/ROV tagged
// variant, its local RIB, and its receive queue.
//
// The Standard/ROV distinction is a tagged union over one concrete
// process/receive pair rather than an interface with two implementations —
// there is no dynamic dispatch here, following the design note that a sum
// type plus a shared concrete process function replaces the prior
// object-oriented virtual-receive hierarchy.
package policy

import (
	"github.com/netsim/bgpsim/internal/metrics"
	"github.com/netsim/bgpsim/pkg/announcement"
	"github.com/netsim/bgpsim/pkg/asn"
	"github.com/netsim/bgpsim/pkg/prefix"
)

// Kind distinguishes the two policy variants.
type Kind uint8

const (
	Standard Kind = iota
	ROV
)

// Policy is the per-AS routing policy: variant tag, local RIB, and receive
// queue.
type Policy struct {
	kind  Kind
	rib   map[prefix.Prefix]announcement.Announcement
	queue map[prefix.Prefix][]announcement.Announcement
}

// NewStandard returns a Policy with no ROV filtering.
func NewStandard() Policy {
	return Policy{kind: Standard, rib: make(map[prefix.Prefix]announcement.Announcement), queue: make(map[prefix.Prefix][]announcement.Announcement)}
}

// NewROV returns a Policy that drops rov_invalid announcements on receive.
func NewROV() Policy {
	return Policy{kind: ROV, rib: make(map[prefix.Prefix]announcement.Announcement), queue: make(map[prefix.Prefix][]announcement.Announcement)}
}

// Kind reports the policy variant.
func (p *Policy) Kind() Kind { return p.kind }

// UpgradeToROV replaces a Standard policy with a fresh ROV policy, dropping
// the prior RIB. It is a no-op if p is already ROV. Per the design note,
// this is an explicit operation invoked only before propagation begins.
func (p *Policy) UpgradeToROV() {
	if p.kind == ROV {
		return
	}
	*p = NewROV()
}

// Receive appends ann to the queue for its prefix. The ROV variant instead
// drops (and counts, keyed by asnForMetrics) any ann with RovInvalid set.
func (p *Policy) Receive(ann announcement.Announcement, asnForMetrics asn.ASN) {
	if p.kind == ROV && ann.RovInvalid {
		metrics.RovDrops.WithLabelValues(asnForMetrics.String()).Inc()
		return
	}
	p.queue[ann.Prefix] = append(p.queue[ann.Prefix], ann)
}

// Process selects, for every prefix with a non-empty candidate list, the
// best candidate under announcement.Less, installs it (with own prepended
// to its as_path) if the RIB has no entry for that prefix or the new
// installed announcement is strictly better than the current one, and
// returns whether any RIB entry changed. The installed announcement's
// ReceivedFrom is that of the selected candidate, never the prior entry's.
func (p *Policy) Process(own asn.ASN) bool {
	changed := false
	for pfx, candidates := range p.queue {
		if len(candidates) == 0 {
			continue
		}
		best := candidates[0]
		for _, c := range candidates[1:] {
			if announcement.Less(c, best) {
				best = c
			}
		}
		installed := best.WithOwnASNPrepended(own)
		cur, ok := p.rib[pfx]
		if !ok || announcement.Less(installed, cur) {
			p.rib[pfx] = installed
			changed = true
		}
	}
	return changed
}

// ClearQueue empties the receive queue at a phase boundary.
func (p *Policy) ClearQueue() {
	for k := range p.queue {
		delete(p.queue, k)
	}
}

// Seed directly installs ann into the RIB. Used only for origin ASes; ann's
// as_path already contains the origin ASN, so no prepending happens here.
func (p *Policy) Seed(ann announcement.Announcement) {
	p.rib[ann.Prefix] = ann
}

// Get returns the installed announcement for pfx, if any.
func (p *Policy) Get(pfx prefix.Prefix) (announcement.Announcement, bool) {
	a, ok := p.rib[pfx]
	return a, ok
}

// RIB returns the full installed-route table. Callers must treat the
// returned map as read-only.
func (p *Policy) RIB() map[prefix.Prefix]announcement.Announcement {
	return p.rib
}
