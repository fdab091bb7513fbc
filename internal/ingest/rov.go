package ingest

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/netsim/bgpsim/internal/log"
	"github.com/netsim/bgpsim/internal/metrics"
	"github.com/netsim/bgpsim/internal/xerrors"
	"github.com/netsim/bgpsim/pkg/asgraph"
	"github.com/netsim/bgpsim/pkg/asn"
)

const rovFile = "rov_asns"

// ROVStats reports how many ROV-list lines were read, how many were skipped
// as malformed, and how many upgraded an AS. Listed ASNs absent from the
// graph are logged but not counted.
type ROVStats struct {
	LinesRead    int
	LinesSkipped int
	Upgraded     int
}

// LoadROVASNs reads one decimal ASN per line (blanks and '#' comments
// skipped, ASN 0 skipped) and upgrades each listed ASN that exists in the
// graph from Standard to ROV, discarding any prior RIB. This must be called
// before propagate.Run.
func LoadROVASNs(ctx context.Context, r io.Reader, g *asgraph.Graph) (ROVStats, error) {
	logger := log.FromCtx(ctx)
	var stats ROVStats

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimRight(scanner.Text(), "\r"))
		stats.LinesRead++
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		a, perr := asn.Parse(line)
		if perr != nil {
			stats.LinesSkipped++
			metrics.MalformedLines.WithLabelValues(rovFile).Inc()
			err := xerrors.Wrap(xerrors.MalformedRecord, "skipping malformed ROV ASN line", perr, "line", stats.LinesRead)
			logger.Warn("skipping malformed ROV ASN line", "err", err)
			continue
		}
		if a == 0 {
			continue
		}
		node, ok := g.Lookup(a)
		if !ok {
			logger.Warn("ROV ASN not present in graph", "asn", a)
			continue
		}
		node.Policy.UpgradeToROV()
		stats.Upgraded++
	}
	if err := scanner.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}
