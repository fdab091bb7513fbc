// Package announcement implements the immutable route announcement value
// and its total ordering for route selection.
package announcement

import (
	"github.com/netsim/bgpsim/pkg/asn"
	"github.com/netsim/bgpsim/pkg/prefix"
)

// ReceivedFrom classifies how an announcement arrived at its holder.
type ReceivedFrom uint8

const (
	Origin ReceivedFrom = iota
	Customer
	Peer
	Provider
)

// priority returns this ReceivedFrom's position in the §3 ordering:
// Origin < Customer < Peer < Provider.
func (r ReceivedFrom) priority() int { return int(r) }

func (r ReceivedFrom) String() string {
	switch r {
	case Origin:
		return "origin"
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

// Announcement is an immutable route announcement. All mutation goes
// through the constructors below, which return a new value.
type Announcement struct {
	Prefix       prefix.Prefix
	NextHopASN   asn.ASN
	ASPath       []asn.ASN
	ReceivedFrom ReceivedFrom
	RovInvalid   bool
}

// NewOrigin constructs a fresh origin announcement at AS a for prefix p.
func NewOrigin(a asn.ASN, p prefix.Prefix, rovInvalid bool) Announcement {
	return Announcement{
		Prefix:       p,
		NextHopASN:   a,
		ASPath:       []asn.ASN{a},
		ReceivedFrom: Origin,
		RovInvalid:   rovInvalid,
	}
}

// Forward produces the announcement sender should transmit to a neighbor of
// relationship rel, as seen from the neighbor: same prefix, as_path, and
// rov_invalid flag, with next_hop_asn set to sender and received_from set to
// rel. The receiver's own ASN is prepended only when it later installs the
// announcement (see policy.Process), not here.
func (a Announcement) Forward(sender asn.ASN, rel ReceivedFrom) Announcement {
	path := make([]asn.ASN, len(a.ASPath))
	copy(path, a.ASPath)
	return Announcement{
		Prefix:       a.Prefix,
		NextHopASN:   sender,
		ASPath:       path,
		ReceivedFrom: rel,
		RovInvalid:   a.RovInvalid,
	}
}

// Contains reports whether who already appears in the as_path, used by the
// propagation engine for loop prevention before enqueue.
func (a Announcement) Contains(who asn.ASN) bool {
	for _, hop := range a.ASPath {
		if hop == who {
			return true
		}
	}
	return false
}

// WithOwnASNPrepended returns the installed form of a candidate at AS
// own: own prepended to as_path. Used by policy.Process when selecting a
// winner from a receive queue.
func (a Announcement) WithOwnASNPrepended(own asn.ASN) Announcement {
	path := make([]asn.ASN, len(a.ASPath)+1)
	path[0] = own
	copy(path[1:], a.ASPath)
	return Announcement{
		Prefix:       a.Prefix,
		NextHopASN:   a.NextHopASN,
		ASPath:       path,
		ReceivedFrom: a.ReceivedFrom,
		RovInvalid:   a.RovInvalid,
	}
}

// Less implements the §3 total route ordering: smaller is better.
//  1. received_from priority: Origin < Customer < Peer < Provider.
//  2. shorter as_path.
//  3. smaller next_hop_asn.
func Less(a, b Announcement) bool {
	if a.ReceivedFrom.priority() != b.ReceivedFrom.priority() {
		return a.ReceivedFrom.priority() < b.ReceivedFrom.priority()
	}
	if len(a.ASPath) != len(b.ASPath) {
		return len(a.ASPath) < len(b.ASPath)
	}
	return a.NextHopASN < b.NextHopASN
}
