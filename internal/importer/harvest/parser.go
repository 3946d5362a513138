package harvest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/harvesttrail/harvesttrail/internal/batch"
	enc "github.com/harvesttrail/harvesttrail/internal/encoding"
)

// Parser reads harvest spreadsheet exports and produces direct-upload
// params. It auto-detects which layout (field log or co-op ledger) is being
// used by matching column headers against known profiles.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]batch.UploadParams, error) {
	utf8r, err := enc.UTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, colMap, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("no recognized harvest log layout: expected field log or co-op ledger columns")
	}

	return parseRows(profile, colMap, rows[headerIdx+1:], headerIdx+1)
}

// colIndex maps column names to their index in the row.
type colIndex map[string]int

// detectProfile scans rows for a header that matches a known profile.
// Exports often carry preamble lines (report title, farm name) before the
// header, so every row is a candidate.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.TrimSpace(cell)
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

// matchesProfile checks if all required columns of a profile are present.
func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows extracts upload params from data rows using the matched profile.
// Rows without a parseable date are skipped (totals, footers); rows with a
// date but bad required fields are an error so silent data loss can't hide.
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]batch.UploadParams, error) {
	var params []batch.UploadParams

	for i, row := range rows {
		rowNum := headerRowNum + i + 2 // 1-based, skipping header

		date, ok := parseDate(row, cols[p.DateCol], p.DateFormat)
		if !ok {
			continue
		}

		crop := cellValue(row, cols[p.CropCol])
		if crop == "" {
			return nil, fmt.Errorf("row %d: missing crop", rowNum)
		}

		weight, err := strconv.ParseFloat(cellValue(row, cols[p.WeightCol]), 64)
		if err != nil || weight <= 0 {
			return nil, fmt.Errorf("row %d: invalid weight %q", rowNum, cellValue(row, cols[p.WeightCol]))
		}

		grade, ok := batch.ParseGrade(cellValue(row, cols[p.GradeCol]))
		if !ok {
			return nil, fmt.Errorf("row %d: unknown grade %q", rowNum, cellValue(row, cols[p.GradeCol]))
		}

		up := batch.UploadParams{
			Crop:        crop,
			WeightKg:    weight,
			HarvestDate: date.Format(time.DateOnly),
			Quality:     grade,
		}

		if idx, ok := cols[p.FarmerCol]; ok {
			up.Farmer = cellValue(row, idx)
		}

		if idx, ok := cols[p.LocationCol]; ok {
			up.FarmLocation = cellValue(row, idx)
		}

		params = append(params, up)
	}

	return params, nil
}

// parseDate tries to parse a date from the given cell index.
// Returns false for empty cells or unparseable values.
func parseDate(row []string, idx int, layout string) (time.Time, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return time.Time{}, false
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
