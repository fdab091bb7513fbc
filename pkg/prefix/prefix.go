// Package prefix implements the IPv4/IPv6 CIDR prefix codec: parsing,
// canonical stringification, equality, and hashing.
package prefix

import (
	"net/netip"
)

// Family discriminates the two prefix variants.
type Family uint8

const (
	// Invalid marks the sentinel zero-value Prefix returned by Parse on a
	// malformed input. The core treats all Prefix values it is handed as
	// well-formed; filtering Invalid prefixes is the boundary adapter's job.
	Invalid Family = iota
	IPv4
	IPv6
)

// Prefix is a tagged union of an IPv4 or IPv6 network: address plus CIDR
// length. The zero value is the Invalid sentinel.
type Prefix struct {
	family Family
	addr   netip.Addr
	length uint8
}

// Family reports whether p is IPv4, IPv6, or the Invalid sentinel.
func (p Prefix) Family() Family { return p.family }

// Addr returns the network address (not masked further; Parse already masks
// it to Length bits).
func (p Prefix) Addr() netip.Addr { return p.addr }

// Length returns the CIDR prefix length.
func (p Prefix) Length() int { return int(p.length) }

// IsValid reports whether p is not the Invalid sentinel.
func (p Prefix) IsValid() bool { return p.family != Invalid }

// Parse parses s as "a.b.c.d/n" or an IPv6 CIDR (full or "::"-abbreviated).
// On any malformed input it returns the zero-value (Invalid) Prefix and no
// error is surfaced to the core — callers that need to report malformed
// input check IsValid().
func Parse(s string) Prefix {
	netPfx, err := netip.ParsePrefix(s)
	if err != nil {
		return Prefix{}
	}
	addr := netPfx.Addr()
	length := netPfx.Bits()
	if length < 0 {
		return Prefix{}
	}
	masked := netPfx.Masked().Addr()
	if addr.Is4() || addr.Is4In6() {
		if length > 32 {
			return Prefix{}
		}
		return Prefix{family: IPv4, addr: masked, length: uint8(length)}
	}
	if length > 128 {
		return Prefix{}
	}
	return Prefix{family: IPv6, addr: masked, length: uint8(length)}
}

// String renders p in its canonical form: dotted-quad/length for IPv4,
// RFC 5952 colon-hex/length for IPv6. The Invalid sentinel renders as "".
func (p Prefix) String() string {
	if p.family == Invalid {
		return ""
	}
	return netip.PrefixFrom(p.addr, int(p.length)).String()
}

// Equal reports whether p and o denote the same (family, address, length).
func (p Prefix) Equal(o Prefix) bool {
	return p.family == o.family && p.length == o.length && p.addr == o.addr
}

// Key returns a value suitable for use as a map key, equal iff Equal(o) is
// true for all o. Prefix itself is already comparable (netip.Addr is
// comparable), so Key just returns p; the method exists to make call sites
// self-documenting about intent.
func (p Prefix) Key() Prefix { return p }

// Netip returns the standard-library netip.Prefix equivalent of p, for
// interop with code (e.g. go4.org/netipx) that operates on that type. The
// Invalid sentinel returns the zero netip.Prefix.
func (p Prefix) Netip() netip.Prefix {
	if p.family == Invalid {
		return netip.Prefix{}
	}
	return netip.PrefixFrom(p.addr, int(p.length))
}

// FromNetip wraps a netip.Prefix as a Prefix, masking it to its own bit
// length as Parse does.
func FromNetip(np netip.Prefix) Prefix {
	return Parse(np.Masked().String())
}
