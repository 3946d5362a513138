// Package importer ingests bulk harvest CSVs so a farm office can register a
// season's lots in one upload instead of one form per batch.
package importer

import (
	"io"

	"github.com/harvesttrail/harvesttrail/internal/batch"
	"github.com/harvesttrail/harvesttrail/internal/importer/harvest"
)

type Service struct {
	harvest Parser
}

func NewService() *Service {
	return &Service{harvest: harvest.NewParser()}
}

// Import parses an uploaded spreadsheet. The layout (field log vs co-op
// ledger) is auto-detected from the header row.
func (s *Service) Import(r io.Reader) ([]batch.UploadParams, error) {
	return s.harvest.Parse(r)
}
