package ingest

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/netsim/bgpsim/internal/log"
	"github.com/netsim/bgpsim/internal/metrics"
	"github.com/netsim/bgpsim/internal/xerrors"
	"github.com/netsim/bgpsim/pkg/announcement"
	"github.com/netsim/bgpsim/pkg/asgraph"
	"github.com/netsim/bgpsim/pkg/asn"
	"github.com/netsim/bgpsim/pkg/prefix"
)

const seedsFile = "seeds"

// SeedStats reports how many seed rows were skipped or dropped.
type SeedStats struct {
	RowsRead      int
	RowsMalformed int
	RowsUnknownAS int
}

// LoadSeeds reads a CSV seed file with header row "seed_asn,prefix,rov_invalid"
// and directly installs one origin announcement per valid row into the
// named AS's RIB. A row referencing an ASN absent from the graph is
// recovered locally: the seed is dropped and counted, not fatal.
func LoadSeeds(ctx context.Context, r io.Reader, g *asgraph.Graph) (SeedStats, error) {
	logger := log.FromCtx(ctx)
	var stats SeedStats

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	if _, err := cr.Read(); err != nil {
		if err == io.EOF {
			return stats, nil
		}
		return stats, err
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, err
		}
		stats.RowsRead++
		if len(record) < 3 {
			stats.RowsMalformed++
			metrics.MalformedLines.WithLabelValues(seedsFile).Inc()
			err := xerrors.New(xerrors.MalformedRecord, "seed row has too few fields", "row", stats.RowsRead, "fields", len(record))
			logger.Warn("skipping malformed seed row", "err", err)
			continue
		}
		seedASN, perr := asn.Parse(strings.TrimSpace(record[0]))
		if perr != nil {
			stats.RowsMalformed++
			metrics.MalformedLines.WithLabelValues(seedsFile).Inc()
			err := xerrors.Wrap(xerrors.MalformedRecord, "seed row has an invalid seed_asn field", perr, "row", stats.RowsRead)
			logger.Warn("skipping malformed seed row", "err", err)
			continue
		}
		pfx := prefix.Parse(strings.TrimSpace(record[1]))
		if !pfx.IsValid() {
			stats.RowsMalformed++
			metrics.MalformedLines.WithLabelValues(seedsFile).Inc()
			err := xerrors.New(xerrors.MalformedRecord, "seed row has an invalid prefix field", "row", stats.RowsRead)
			logger.Warn("skipping malformed seed row", "err", err)
			continue
		}
		rovInvalid, ok := parseBool(strings.TrimSpace(strings.TrimRight(record[2], "\r")))
		if !ok {
			stats.RowsMalformed++
			metrics.MalformedLines.WithLabelValues(seedsFile).Inc()
			err := xerrors.New(xerrors.MalformedRecord, "seed row has an invalid rov_invalid field", "row", stats.RowsRead)
			logger.Warn("skipping malformed seed row", "err", err)
			continue
		}

		node, ok := g.Lookup(seedASN)
		if !ok {
			stats.RowsUnknownAS++
			metrics.UnknownSeedAsns.Inc()
			err := xerrors.New(xerrors.UnknownSeedAsn, "dropping seed for unknown ASN", "asn", seedASN, "row", stats.RowsRead)
			logger.Warn("dropping seed for unknown ASN", "err", err)
			continue
		}
		node.Policy.Seed(announcement.NewOrigin(seedASN, pfx, rovInvalid))
	}
	return stats, nil
}

func parseBool(s string) (bool, bool) {
	switch s {
	case "True", "true", "TRUE":
		return true, true
	case "False", "false", "FALSE":
		return false, true
	default:
		return false, false
	}
}
