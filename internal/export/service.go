// Package export produces downloadable provenance records: the audit ledger
// as CSV plus a plain-text summary retailers attach to deliveries.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/harvesttrail/harvesttrail/internal/batch"
)

// BatchLister is the slice of the workflow the exporter needs.
type BatchLister interface {
	List(ctx context.Context) ([]*batch.Batch, error)
}

type Service struct {
	batches BatchLister
}

func NewService(batches BatchLister) *Service {
	return &Service{batches: batches}
}

var ledgerHeader = []string{
	"lot_number", "crop", "quality", "weight", "current_status",
	"timestamp", "event", "note", "actor", "location",
}

// WriteLedger streams the audit ledger as CSV: one row per audit entry,
// batches ordered most recently updated first, entries in append order.
// A non-nil status keeps only batches currently in that status.
func (s *Service) WriteLedger(ctx context.Context, w io.Writer, status *batch.Status) error {
	batches, err := s.batches.List(ctx)
	if err != nil {
		return fmt.Errorf("listing batches: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ledgerHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, b := range batches {
		if status != nil && b.Status != *status {
			continue
		}

		lot := ""
		if b.LotNumber != nil {
			lot = *b.LotNumber
		}

		for _, e := range b.TrackingHistory {
			row := []string{
				lot, b.Crop, string(b.Quality), b.Weight, b.Status.Label(),
				e.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
				e.Status, e.Note, e.Actor, e.Location,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing ledger row: %w", err)
			}
		}
	}

	cw.Flush()

	return cw.Error()
}

// Summary renders a short plain-text overview: batch counts per status,
// stable order.
func (s *Service) Summary(ctx context.Context) (string, error) {
	batches, err := s.batches.List(ctx)
	if err != nil {
		return "", fmt.Errorf("listing batches: %w", err)
	}

	counts := make(map[batch.Status]int)
	for _, b := range batches {
		counts[b.Status]++
	}

	statuses := make([]batch.Status, 0, len(counts))
	for st := range counts {
		statuses = append(statuses, st)
	}

	sort.Slice(statuses, func(i, j int) bool { return statuses[i] < statuses[j] })

	out := fmt.Sprintf("Provenance summary: %d batches tracked.\n", len(batches))
	for _, st := range statuses {
		out += fmt.Sprintf("  %s: %d\n", st.Label(), counts[st])
	}

	return out, nil
}
