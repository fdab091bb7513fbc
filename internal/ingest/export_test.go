package ingest

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netsim/bgpsim/pkg/announcement"
	"github.com/netsim/bgpsim/pkg/asgraph"
	"github.com/netsim/bgpsim/pkg/asn"
	"github.com/netsim/bgpsim/pkg/prefix"
)

func buildExportGraph() *asgraph.Graph {
	g := asgraph.New()
	g.AddEdge(1, 2, asgraph.Customer) // 1 provider of 2
	g.AddEdge(1, 3, asgraph.Peer)

	n1, _ := g.Lookup(1)
	n1.Policy.Seed(announcement.NewOrigin(1, prefix.Parse("10.0.0.0/8"), false))

	n2, _ := g.Lookup(2)
	n2.Policy.Seed(announcement.NewOrigin(2, prefix.Parse("172.16.0.0/12"), true))

	n3, _ := g.Lookup(3)
	ann := announcement.NewOrigin(1, prefix.Parse("10.0.0.0/8"), false).Forward(1, announcement.Peer)
	n3.Policy.Seed(ann.WithOwnASNPrepended(3))

	return g
}

// parsePath reverses formatPath for both documented shapes.
func parsePath(t *testing.T, s string, shape PathShape) []asn.ASN {
	t.Helper()
	var parts []string
	switch shape {
	case TupleLiteral:
		inner := strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
		inner = strings.TrimSuffix(inner, ",")
		for _, p := range strings.Split(inner, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				parts = append(parts, p)
			}
		}
	default:
		parts = strings.Fields(s)
	}
	out := make([]asn.ASN, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 32)
		require.NoError(t, err)
		out[i] = asn.ASN(v)
	}
	return out
}

func runExportRoundTrip(t *testing.T, shape PathShape) {
	t.Helper()
	g := buildExportGraph()

	var buf bytes.Buffer
	require.NoError(t, ExportRIB(&buf, g, shape))

	cr := csv.NewReader(&buf)
	header, err := cr.Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"asn", "prefix", "as_path"}, header)

	type row struct {
		asn  asn.ASN
		pfx  prefix.Prefix
		path []asn.ASN
	}
	var rows []row
	for {
		rec, err := cr.Read()
		if err != nil {
			break
		}
		a, perr := asn.Parse(rec[0])
		require.NoError(t, perr)
		rows = append(rows, row{asn: a, pfx: prefix.Parse(rec[1]), path: parsePath(t, rec[2], shape)})
	}

	// Reconstructed rows must match exactly what's installed in every AS's RIB.
	var expected []row
	g.All(func(n *asgraph.Node) {
		for pfx, ann := range n.Policy.RIB() {
			expected = append(expected, row{asn: n.ASN, pfx: pfx, path: ann.ASPath})
		}
	})

	require.Len(t, rows, len(expected))
	for _, exp := range expected {
		found := false
		for _, got := range rows {
			if got.asn == exp.asn && got.pfx.Equal(exp.pfx) {
				found = true
				assert.Equal(t, exp.path, got.path, "as_path for asn=%s prefix=%s", exp.asn, exp.pfx)
				break
			}
		}
		assert.True(t, found, "missing export row for asn=%s prefix=%s", exp.asn, exp.pfx)
	}
}

func TestExportImportRoundTripSpaceJoined(t *testing.T) {
	runExportRoundTrip(t, SpaceJoined)
}

func TestExportImportRoundTripTupleLiteral(t *testing.T) {
	runExportRoundTrip(t, TupleLiteral)
}

func TestExportRIBOrdersByASNThenPrefix(t *testing.T) {
	g := asgraph.New()
	g.AddEdge(2, 1, asgraph.Provider)
	n1, _ := g.Lookup(1)
	n1.Policy.Seed(announcement.NewOrigin(1, prefix.Parse("10.0.0.0/8"), false))
	n2, _ := g.Lookup(2)
	n2.Policy.Seed(announcement.NewOrigin(2, prefix.Parse("192.0.2.0/24"), false))

	var buf bytes.Buffer
	require.NoError(t, ExportRIB(&buf, g, SpaceJoined))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "1,"))
	assert.True(t, strings.HasPrefix(lines[2], "2,"))
}

func TestFormatPathTupleSingleElement(t *testing.T) {
	assert.Equal(t, "(1,)", formatPath([]asn.ASN{1}, TupleLiteral))
}

func TestSummarizeRIBAggregatesByOrigin(t *testing.T) {
	g := asgraph.New()
	g.AddEdge(1, 2, asgraph.Customer)
	n1, _ := g.Lookup(1)
	n1.Policy.Seed(announcement.NewOrigin(1, prefix.Parse("10.0.0.0/24"), false))
	n2, _ := g.Lookup(2)
	n2.Policy.Seed(announcement.NewOrigin(1, prefix.Parse("10.0.1.0/24"), false))

	summary := SummarizeRIB(g)
	pfxs, ok := summary[1]
	require.True(t, ok)
	assert.NotEmpty(t, pfxs)
}
