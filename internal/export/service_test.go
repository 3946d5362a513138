package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvesttrail/harvesttrail/internal/batch"
	"github.com/harvesttrail/harvesttrail/internal/export"
)

type fakeLister struct {
	batches []*batch.Batch
}

func (f *fakeLister) List(context.Context) ([]*batch.Batch, error) {
	return f.batches, nil
}

func testBatches() []*batch.Batch {
	lotA := "LOT-2026-00001"
	lotB := "LOT-2026-00002"
	ts := time.Date(2026, 1, 14, 10, 0, 0, 0, time.UTC)

	return []*batch.Batch{
		{
			ID:        uuid.New(),
			LotNumber: &lotA,
			Crop:      "Tomatoes",
			Quality:   batch.GradeA,
			Weight:    "100 kg",
			Status:    batch.StatusSold,
			TrackingHistory: []batch.AuditEntry{
				{Timestamp: ts, Status: "Pending Verification", Note: "Batch created", Actor: "John Smith", Location: "Sunny Acres Farm"},
				{Timestamp: ts.Add(time.Hour), Status: "Sold", Note: "Sold to consumer.", Actor: "Fresh Market Co."},
			},
		},
		{
			ID:        uuid.New(),
			LotNumber: &lotB,
			Crop:      "Carrots",
			Quality:   batch.GradeAPlus,
			Weight:    "200 kg",
			Status:    batch.StatusInTransit,
			TrackingHistory: []batch.AuditEntry{
				{Timestamp: ts, Status: "Pending Verification", Note: "Batch created", Actor: "Sarah Johnson"},
			},
		},
	}
}

func TestService_WriteLedger(t *testing.T) {
	svc := export.NewService(&fakeLister{batches: testBatches()})

	var buf bytes.Buffer

	require.NoError(t, svc.WriteLedger(context.Background(), &buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4, "header plus one row per audit entry")

	assert.Equal(t, "lot_number", rows[0][0])
	assert.Equal(t, "event", rows[0][6])

	assert.Equal(t, "LOT-2026-00001", rows[1][0])
	assert.Equal(t, "Tomatoes", rows[1][1])
	assert.Equal(t, "Sold", rows[1][4])
	assert.Equal(t, "2026-01-14T10:00:00Z", rows[1][5])
	assert.Equal(t, "Batch created", rows[1][7])
	assert.Equal(t, "Sunny Acres Farm", rows[1][9])

	assert.Equal(t, "Sold to consumer.", rows[2][7])
	assert.Equal(t, "LOT-2026-00002", rows[3][0])
}

func TestService_WriteLedger_StatusFilter(t *testing.T) {
	svc := export.NewService(&fakeLister{batches: testBatches()})

	var buf bytes.Buffer

	st := batch.StatusInTransit
	require.NoError(t, svc.WriteLedger(context.Background(), &buf, &st))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "LOT-2026-00002", rows[1][0])
}

func TestService_Summary(t *testing.T) {
	svc := export.NewService(&fakeLister{batches: testBatches()})

	got, err := svc.Summary(context.Background())

	require.NoError(t, err)
	assert.Contains(t, got, "2 batches tracked")
	assert.Contains(t, got, "Sold: 1")
	assert.Contains(t, got, "In Transit: 1")
}

func TestService_Summary_Empty(t *testing.T) {
	svc := export.NewService(&fakeLister{})

	got, err := svc.Summary(context.Background())

	require.NoError(t, err)
	assert.Contains(t, got, "0 batches tracked")
}
