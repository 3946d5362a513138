package batch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvesttrail/harvesttrail/internal/batch"
)

func TestParseKilograms(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "CanonicalForm", input: "100 kg", want: 100},
		{name: "NoSpace", input: "82.5kg", want: 82.5},
		{name: "CapitalUnit", input: "40 Kg", want: 40},
		{name: "BareNumber", input: "15", want: 15},
		{name: "SurroundingWhitespace", input: "  7 kg  ", want: 7},
		{name: "Empty", input: "", wantErr: true},
		{name: "NotANumber", input: "heavy kg", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := batch.ParseKilograms(tt.input)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatKilograms(t *testing.T) {
	assert.Equal(t, "100 kg", batch.FormatKilograms(100))
	assert.Equal(t, "82.5 kg", batch.FormatKilograms(82.5))
	assert.Equal(t, "0.25 kg", batch.FormatKilograms(0.25))
}

func TestParseGrade(t *testing.T) {
	tests := []struct {
		input string
		want  batch.Grade
		ok    bool
	}{
		{input: "A+", want: batch.GradeAPlus, ok: true},
		{input: "a", want: batch.GradeA, ok: true},
		{input: "Grade A+", want: batch.GradeAPlus, ok: true},
		{input: " b ", want: batch.GradeB, ok: true},
		{input: "grade c", want: batch.GradeC, ok: true},
		{input: "D", ok: false},
		{input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := batch.ParseGrade(tt.input)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, batch.StatusSold.Terminal())
	assert.True(t, batch.StatusRejected.Terminal())
	assert.False(t, batch.StatusRequested.Terminal())
	assert.False(t, batch.StatusReadyForSale.Terminal())
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Awaiting Farmer Confirmation", batch.StatusAwaitingFarmer.Label())
	assert.Equal(t, "Ready for Sale", batch.StatusReadyForSale.Label())
	assert.Equal(t, "mystery", batch.Status("mystery").Label())
}
