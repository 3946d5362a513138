package pricing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvesttrail/harvesttrail/internal/batch"
	"github.com/harvesttrail/harvesttrail/internal/pricing"
)

type fakeRepo struct {
	prices map[string]map[batch.Grade]int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{prices: make(map[string]map[batch.Grade]int64)}
}

func (r *fakeRepo) Lookup(_ context.Context, crop string, grade batch.Grade) (int64, error) {
	if p, ok := r.prices[crop][grade]; ok {
		return p, nil
	}

	return 0, pricing.ErrNoPrice
}

func (r *fakeRepo) Upsert(_ context.Context, p pricing.Price) error {
	if r.prices[p.Crop] == nil {
		r.prices[p.Crop] = make(map[batch.Grade]int64)
	}

	r.prices[p.Crop][p.Grade] = p.PerKg

	return nil
}

func (r *fakeRepo) List(_ context.Context) ([]pricing.Price, error) {
	var out []pricing.Price

	for crop, grades := range r.prices {
		for grade, perKg := range grades {
			out = append(out, pricing.Price{Crop: crop, Grade: grade, PerKg: perKg})
		}
	}

	return out, nil
}

func TestService_Set(t *testing.T) {
	tests := []struct {
		name    string
		price   pricing.Price
		wantErr bool
	}{
		{
			name:  "Valid",
			price: pricing.Price{Crop: "Tomatoes", Grade: batch.GradeA, PerKg: 800},
		},
		{
			name:    "MissingCrop",
			price:   pricing.Price{Grade: batch.GradeA, PerKg: 800},
			wantErr: true,
		},
		{
			name:    "NonPositivePrice",
			price:   pricing.Price{Crop: "Tomatoes", Grade: batch.GradeA, PerKg: 0},
			wantErr: true,
		},
		{
			name:    "UnknownGrade",
			price:   pricing.Price{Crop: "Tomatoes", Grade: "Z", PerKg: 800},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := pricing.NewService(newFakeRepo())

			err := svc.Set(context.Background(), tt.price)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_LookupAfterSet(t *testing.T) {
	ctx := context.Background()
	svc := pricing.NewService(newFakeRepo())

	require.NoError(t, svc.Set(ctx, pricing.Price{Crop: "Carrots", Grade: batch.GradeAPlus, PerKg: 700}))

	got, err := svc.Lookup(ctx, "Carrots", batch.GradeAPlus)
	require.NoError(t, err)
	assert.Equal(t, int64(700), got)

	_, err = svc.Lookup(ctx, "Carrots", batch.GradeC)
	assert.ErrorIs(t, err, pricing.ErrNoPrice)
}

func TestService_EnsureDefaults(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := pricing.NewService(repo)

	// Pre-existing operator override must survive seeding.
	require.NoError(t, repo.Upsert(ctx, pricing.Price{Crop: "Tomatoes", Grade: batch.GradeA, PerKg: 999}))

	require.NoError(t, svc.EnsureDefaults(ctx))

	got, err := svc.Lookup(ctx, "Tomatoes", batch.GradeA)
	require.NoError(t, err)
	assert.Equal(t, int64(999), got)

	got, err = svc.Lookup(ctx, "Rice", batch.GradeB)
	require.NoError(t, err)
	assert.Equal(t, int64(3500), got)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(pricing.Defaults()))

	// Idempotent on a second run.
	require.NoError(t, svc.EnsureDefaults(ctx))

	all, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(pricing.Defaults()))
}
