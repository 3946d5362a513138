// Package pricing maintains the indicative per-kg price guide shown to
// farmers and retailers. Prices here are informational; they never move
// money and never gate a workflow transition.
package pricing

import (
	"context"
	"errors"

	"github.com/harvesttrail/harvesttrail/internal/batch"
)

// ErrNoPrice is returned when the guide has no entry for a crop and grade.
var ErrNoPrice = errors.New("no price listed for this crop and grade")

// Price is one guide entry. PerKg is in minor currency units (paise) per
// kilogram.
type Price struct {
	Crop  string
	Grade batch.Grade
	PerKg int64
}

type Repository interface {
	Lookup(ctx context.Context, crop string, grade batch.Grade) (int64, error)
	Upsert(ctx context.Context, p Price) error
	List(ctx context.Context) ([]Price, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Lookup returns the indicative per-kg price for a crop at a grade.
func (s *Service) Lookup(ctx context.Context, crop string, grade batch.Grade) (int64, error) {
	return s.repo.Lookup(ctx, crop, grade)
}

// Set records or replaces a guide entry.
func (s *Service) Set(ctx context.Context, p Price) error {
	if p.Crop == "" || p.PerKg <= 0 {
		return errors.New("crop and a positive per-kg price are required")
	}

	if _, ok := batch.ParseGrade(string(p.Grade)); !ok {
		return errors.New("unknown grade")
	}

	return s.repo.Upsert(ctx, p)
}

// List returns the full guide.
func (s *Service) List(ctx context.Context) ([]Price, error) {
	return s.repo.List(ctx)
}

// EnsureDefaults seeds guide entries that are missing, leaving existing
// entries untouched. Called once at startup.
func (s *Service) EnsureDefaults(ctx context.Context) error {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return err
	}

	type key struct {
		crop  string
		grade batch.Grade
	}

	have := make(map[key]struct{}, len(existing))
	for _, p := range existing {
		have[key{p.Crop, p.Grade}] = struct{}{}
	}

	for _, p := range Defaults() {
		if _, ok := have[key{p.Crop, p.Grade}]; ok {
			continue
		}

		if err := s.repo.Upsert(ctx, p); err != nil {
			return err
		}
	}

	return nil
}

// Defaults is the launch price guide: paise per kilogram by crop and grade.
func Defaults() []Price {
	perKg := map[string]map[batch.Grade]int64{
		"Tomatoes": {batch.GradeAPlus: 1000, batch.GradeA: 800, batch.GradeB: 600, batch.GradeC: 400},
		"Carrots":  {batch.GradeAPlus: 700, batch.GradeA: 500, batch.GradeB: 350, batch.GradeC: 250},
		"Wheat":    {batch.GradeAPlus: 2500, batch.GradeA: 2200, batch.GradeB: 1900, batch.GradeC: 1500},
		"Rice":     {batch.GradeAPlus: 4500, batch.GradeA: 4000, batch.GradeB: 3500, batch.GradeC: 3000},
		"Maize":    {batch.GradeAPlus: 1800, batch.GradeA: 1500, batch.GradeB: 1200, batch.GradeC: 900},
		"Potatoes": {batch.GradeAPlus: 1200, batch.GradeA: 1000, batch.GradeB: 800, batch.GradeC: 600},
		"Lettuce":  {batch.GradeAPlus: 900, batch.GradeA: 700, batch.GradeB: 500, batch.GradeC: 300},
		"Onions":   {batch.GradeAPlus: 1100, batch.GradeA: 900, batch.GradeB: 700, batch.GradeC: 500},
	}

	var prices []Price

	for crop, grades := range perKg {
		for grade, price := range grades {
			prices = append(prices, Price{Crop: crop, Grade: grade, PerKg: price})
		}
	}

	return prices
}
