package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harvesttrail/harvesttrail/internal/batch"
	"github.com/harvesttrail/harvesttrail/internal/pricing"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Lookup(ctx context.Context, crop string, grade batch.Grade) (int64, error) {
	query := `
		SELECT per_kg
		FROM crop_prices
		WHERE crop = $1 AND grade = $2
	`

	var perKg int64

	err := s.db.QueryRowContext(ctx, query, crop, string(grade)).Scan(&perKg)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, pricing.ErrNoPrice
		}

		return 0, fmt.Errorf("looking up price: %w", err)
	}

	return perKg, nil
}

func (s *Store) Upsert(ctx context.Context, p pricing.Price) error {
	query := `
		INSERT INTO crop_prices (crop, grade, per_kg, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (crop, grade) DO UPDATE SET per_kg = EXCLUDED.per_kg, updated_at = NOW()
	`

	_, err := s.db.ExecContext(ctx, query, p.Crop, string(p.Grade), p.PerKg)
	if err != nil {
		return fmt.Errorf("upserting price: %w", err)
	}

	return nil
}

func (s *Store) List(ctx context.Context) ([]pricing.Price, error) {
	query := `
		SELECT crop, grade, per_kg
		FROM crop_prices
		ORDER BY crop ASC, per_kg DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing prices: %w", err)
	}
	defer rows.Close()

	var prices []pricing.Price

	for rows.Next() {
		var (
			p        pricing.Price
			gradeStr string
		)

		if err := rows.Scan(&p.Crop, &gradeStr, &p.PerKg); err != nil {
			return nil, fmt.Errorf("scanning price: %w", err)
		}

		p.Grade = batch.Grade(gradeStr)
		prices = append(prices, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating price rows: %w", err)
	}

	return prices, nil
}
