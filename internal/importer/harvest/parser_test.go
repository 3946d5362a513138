package harvest_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvesttrail/harvesttrail/internal/batch"
	"github.com/harvesttrail/harvesttrail/internal/importer/harvest"
)

func TestParser_FieldLog(t *testing.T) {
	input := `Crop,Weight (kg),Harvest Date,Grade,Farmer,Farm Location
Tomatoes,100,2026-01-14,A,John Smith,Sunny Acres Farm
Carrots,82.5,2026-01-15,A+,Sarah Johnson,Green Valley
`

	got, err := harvest.NewParser().Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, batch.UploadParams{
		Crop:         "Tomatoes",
		WeightKg:     100,
		HarvestDate:  "2026-01-14",
		Quality:      batch.GradeA,
		Farmer:       "John Smith",
		FarmLocation: "Sunny Acres Farm",
	}, got[0])

	assert.Equal(t, "Carrots", got[1].Crop)
	assert.Equal(t, 82.5, got[1].WeightKg)
	assert.Equal(t, batch.GradeAPlus, got[1].Quality)
}

func TestParser_FieldLogWithPreamble(t *testing.T) {
	input := `Sunny Acres Farm - Harvest Report
Generated 2026-01-20

Crop,Weight (kg),Harvest Date,Grade,Farmer,Farm Location
Tomatoes,100,2026-01-14,A,John Smith,Sunny Acres Farm
`

	got, err := harvest.NewParser().Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Tomatoes", got[0].Crop)
}

func TestParser_CoopLedger(t *testing.T) {
	input := `Produce,Qty Kg,Date of Harvest,Quality Grade,Member Name,Village
Onions,250,14/01/2026,Grade B,Ravi Kumar,Mandya
Rice,1000,20/01/2026,A,Lakshmi Devi,Hassan
`

	got, err := harvest.NewParser().Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Onions", got[0].Crop)
	assert.Equal(t, "2026-01-14", got[0].HarvestDate)
	assert.Equal(t, batch.GradeB, got[0].Quality)
	assert.Equal(t, "Ravi Kumar", got[0].Farmer)
	assert.Equal(t, "Mandya", got[0].FarmLocation)

	assert.Equal(t, "2026-01-20", got[1].HarvestDate)
}

func TestParser_SkipsRowsWithoutDate(t *testing.T) {
	input := `Crop,Weight (kg),Harvest Date,Grade,Farmer,Farm Location
Tomatoes,100,2026-01-14,A,John Smith,Sunny Acres Farm
Total,100,,,,
`

	got, err := harvest.NewParser().Parse(strings.NewReader(input))

	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestParser_BadRows(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name: "InvalidWeight",
			input: `Crop,Weight (kg),Harvest Date,Grade,Farmer,Farm Location
Tomatoes,lots,2026-01-14,A,John Smith,Sunny Acres Farm
`,
			wantErr: "invalid weight",
		},
		{
			name: "UnknownGrade",
			input: `Crop,Weight (kg),Harvest Date,Grade,Farmer,Farm Location
Tomatoes,100,2026-01-14,Z,John Smith,Sunny Acres Farm
`,
			wantErr: "unknown grade",
		},
		{
			name: "MissingCrop",
			input: `Crop,Weight (kg),Harvest Date,Grade,Farmer,Farm Location
,100,2026-01-14,A,John Smith,Sunny Acres Farm
`,
			wantErr: "missing crop",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := harvest.NewParser().Parse(strings.NewReader(tt.input))

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParser_UnrecognizedLayout(t *testing.T) {
	input := `Name,Amount,When
Tomatoes,100,2026-01-14
`

	_, err := harvest.NewParser().Parse(strings.NewReader(input))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no recognized harvest log layout")
}

func TestParser_Windows1252Encoding(t *testing.T) {
	// "Señor Müller" in Windows-1252 bytes inside the farmer column.
	input := "Crop,Weight (kg),Harvest Date,Grade,Farmer,Farm Location\n" +
		"Tomatoes,100,2026-01-14,A,Se\xf1or M\xfcller,Sunny Acres Farm\n"

	got, err := harvest.NewParser().Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Señor Müller", got[0].Farmer)
}
