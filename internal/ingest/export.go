package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"go4.org/netipx"

	"github.com/netsim/bgpsim/pkg/announcement"
	"github.com/netsim/bgpsim/pkg/asgraph"
	"github.com/netsim/bgpsim/pkg/asn"
	"github.com/netsim/bgpsim/pkg/prefix"
)

// PathShape selects how ExportRIB renders an as_path field.
type PathShape uint8

const (
	// SpaceJoined renders "a1 a2 a3" (leftmost = installing AS).
	SpaceJoined PathShape = iota
	// TupleLiteral renders "(a1, a2, a3)", and "(a1,)" for a single-element
	// path, to round-trip into tuple-parsing consumers.
	TupleLiteral
)

// ExportRIB writes one CSV row per (AS, installed announcement) across the
// whole graph, header "asn,prefix,as_path", in ascending ASN then prefix
// order so repeated runs over the same inputs produce byte-identical
// output (spec.md P4, determinism).
func ExportRIB(w io.Writer, g *asgraph.Graph, shape PathShape) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"asn", "prefix", "as_path"}); err != nil {
		return err
	}

	type row struct {
		a   asn.ASN
		pfx prefix.Prefix
		ann announcement.Announcement
	}
	var rows []row
	g.All(func(n *asgraph.Node) {
		for pfx, ann := range n.Policy.RIB() {
			rows = append(rows, row{a: n.ASN, pfx: pfx, ann: ann})
		}
	})
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].a != rows[j].a {
			return rows[i].a < rows[j].a
		}
		return rows[i].pfx.String() < rows[j].pfx.String()
	})

	for _, r := range rows {
		if err := cw.Write([]string{r.a.String(), r.pfx.String(), formatPath(r.ann.ASPath, shape)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatPath(path []asn.ASN, shape PathShape) string {
	switch shape {
	case TupleLiteral:
		parts := make([]string, len(path))
		for i, a := range path {
			parts[i] = a.String()
		}
		if len(parts) == 1 {
			return fmt.Sprintf("(%s,)", parts[0])
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		parts := make([]string, len(path))
		for i, a := range path {
			parts[i] = a.String()
		}
		return strings.Join(parts, " ")
	}
}

// SummarizeRIB aggregates, per origin ASN (the rightmost as_path entry), the
// minimal set of covering prefixes across every AS's installed routes for
// that origin, using go4.org/netipx's interval-based set builder. A single
// origin can appear with many overlapping or adjacent prefixes once every
// AS's RIB is pooled together, so this builds each origin's IPSet instead of
// printing the raw per-AS list. It is not part of the per-AS RIB export and
// is offered as a separate reporting view via the CLI's --summarize flag.
func SummarizeRIB(g *asgraph.Graph) map[asn.ASN][]prefix.Prefix {
	builders := make(map[asn.ASN]*netipx.IPSetBuilder)
	g.All(func(n *asgraph.Node) {
		for _, ann := range n.Policy.RIB() {
			if len(ann.ASPath) == 0 {
				continue
			}
			origin := ann.ASPath[len(ann.ASPath)-1]
			b, ok := builders[origin]
			if !ok {
				b = &netipx.IPSetBuilder{}
				builders[origin] = b
			}
			b.AddPrefix(ann.Prefix.Netip())
		}
	})

	result := make(map[asn.ASN][]prefix.Prefix, len(builders))
	for origin, b := range builders {
		set, err := b.IPSet()
		if err != nil {
			continue
		}
		var pfxs []prefix.Prefix
		for _, p := range set.Prefixes() {
			pfxs = append(pfxs, prefix.FromNetip(p))
		}
		result[origin] = pfxs
	}
	return result
}
