// Package ingest implements the boundary adapters: the relationship-file
// parser, seed-list loader, ROV-list loader, and RIB exporter. This is the
// only layer that parses or renders file contents; the loaders and the
// exporter take an io.Reader/io.Writer (the CLI opens the files) so the
// core and these tests never see a filesystem path.
package ingest

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/netsim/bgpsim/internal/log"
	"github.com/netsim/bgpsim/internal/metrics"
	"github.com/netsim/bgpsim/internal/xerrors"
	"github.com/netsim/bgpsim/pkg/asgraph"
	"github.com/netsim/bgpsim/pkg/asn"
)

const relationshipsFile = "relationships"

// RelationshipStats reports how many lines were skipped while parsing a
// relationship file.
type RelationshipStats struct {
	LinesRead    int
	LinesSkipped int
}

// LoadRelationships reads a line-oriented relationship file: blank lines
// and lines starting with '#' are skipped; every other line must have at
// least three '|'-separated fields, "<asn1>|<asn2>|<rel>[|source...]", where
// rel is one of -1 (Customer), 0 (Peer), 1 (Provider), labelling the edge
// asn1 -> asn2 from asn1's perspective. Malformed lines are skipped,
// counted, and logged at warn level.
func LoadRelationships(ctx context.Context, r io.Reader, g *asgraph.Graph) (RelationshipStats, error) {
	logger := log.FromCtx(ctx)
	var stats RelationshipStats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		stats.LinesRead++
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rel, ok := parseRelationshipLine(line)
		if !ok {
			stats.LinesSkipped++
			metrics.MalformedLines.WithLabelValues(relationshipsFile).Inc()
			err := xerrors.New(xerrors.MalformedRecord, "skipping malformed relationship line", "line", stats.LinesRead)
			logger.Warn("skipping malformed relationship line", "err", err)
			continue
		}
		g.AddEdge(rel.a1, rel.a2, rel.label)
	}
	if err := scanner.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

type parsedRelationship struct {
	a1, a2 asn.ASN
	label  asgraph.Relationship
}

func parseRelationshipLine(line string) (parsedRelationship, bool) {
	fields := strings.Split(line, "|")
	if len(fields) < 3 {
		return parsedRelationship{}, false
	}
	a1, err := asn.Parse(strings.TrimSpace(fields[0]))
	if err != nil {
		return parsedRelationship{}, false
	}
	a2, err := asn.Parse(strings.TrimSpace(fields[1]))
	if err != nil {
		return parsedRelationship{}, false
	}
	relCode, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return parsedRelationship{}, false
	}
	var label asgraph.Relationship
	switch relCode {
	case -1:
		label = asgraph.Customer
	case 0:
		label = asgraph.Peer
	case 1:
		label = asgraph.Provider
	default:
		return parsedRelationship{}, false
	}
	return parsedRelationship{a1: a1, a2: a2, label: label}, true
}
