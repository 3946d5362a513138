package importer

import (
	"io"

	"github.com/harvesttrail/harvesttrail/internal/batch"
)

// Parser turns an uploaded harvest spreadsheet into direct-upload params,
// one per valid row.
type Parser interface {
	Parse(r io.Reader) ([]batch.UploadParams, error)
}
