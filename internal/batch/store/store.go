package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/harvesttrail/harvesttrail/internal/batch"
)

// Store persists batches in Postgres. Each batch is a single row: the
// tracking history and sensor data live in jsonb columns of that row, so a
// batch and its full audit trail always read and write atomically.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectBatchColumns = `
	id, lot_number, confirmation_token, crop, quality, weight, price,
	farmer, retailer, retailer_contact, harvest_date, farm_location, status,
	tracking_history, sensor_data, notes, track_url, created_at, updated_at
`

// scanBatch reads one batch row. Column order must match selectBatchColumns.
func scanBatch(s scanner) (*batch.Batch, error) {
	var (
		b                    batch.Batch
		lotNumber, token     sql.NullString
		price, farmer        sql.NullString
		retailer, contact    sql.NullString
		farmLocation, notes  sql.NullString
		trackURL             sql.NullString
		qualityStr, statuses string
		history              []byte
		sensor               []byte
	)

	if err := s.Scan(
		&b.ID, &lotNumber, &token, &b.Crop, &qualityStr, &b.Weight, &price,
		&farmer, &retailer, &contact, &b.HarvestDate, &farmLocation, &statuses,
		&history, &sensor, &notes, &trackURL, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}

	b.Quality = batch.Grade(qualityStr)
	b.Status = batch.Status(statuses)
	b.LotNumber = nullable(lotNumber)
	b.ConfirmationToken = nullable(token)
	b.Price = nullable(price)
	b.Farmer = nullable(farmer)
	b.Retailer = nullable(retailer)
	b.RetailerContact = nullable(contact)
	b.FarmLocation = nullable(farmLocation)
	b.Notes = nullable(notes)
	b.TrackURL = nullable(trackURL)

	if len(history) > 0 {
		if err := json.Unmarshal(history, &b.TrackingHistory); err != nil {
			return nil, fmt.Errorf("decoding tracking history: %w", err)
		}
	}

	if len(sensor) > 0 {
		var r batch.SensorReading
		if err := json.Unmarshal(sensor, &r); err != nil {
			return nil, fmt.Errorf("decoding sensor data: %w", err)
		}

		b.SensorData = &r
	}

	return &b, nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}

	v := s.String
	return &v
}

func (s *Store) Create(ctx context.Context, b *batch.Batch) error {
	history, sensor, err := encodeEmbedded(b)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO batches (
			id, lot_number, confirmation_token, crop, quality, weight, price,
			farmer, retailer, retailer_contact, harvest_date, farm_location, status,
			tracking_history, sensor_data, notes, track_url, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err = s.db.ExecContext(ctx, query,
		b.ID, b.LotNumber, b.ConfirmationToken, b.Crop, string(b.Quality), b.Weight, b.Price,
		b.Farmer, b.Retailer, b.RetailerContact, b.HarvestDate, b.FarmLocation, string(b.Status),
		history, sensor, b.Notes, b.TrackURL, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating batch: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*batch.Batch, error) {
	query := `SELECT ` + selectBatchColumns + ` FROM batches WHERE id = $1`

	b, err := scanBatch(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, batch.ErrNotFound
		}

		return nil, fmt.Errorf("getting batch: %w", err)
	}

	return b, nil
}

func (s *Store) GetByLotNumber(ctx context.Context, lotNumber string) (*batch.Batch, error) {
	query := `SELECT ` + selectBatchColumns + ` FROM batches WHERE lot_number = $1`

	b, err := scanBatch(s.db.QueryRowContext(ctx, query, lotNumber))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, batch.ErrNotFound
		}

		return nil, fmt.Errorf("getting batch by lot number: %w", err)
	}

	return b, nil
}

func (s *Store) List(ctx context.Context) ([]*batch.Batch, error) {
	query := `SELECT ` + selectBatchColumns + ` FROM batches ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing batches: %w", err)
	}
	defer rows.Close()

	var batches []*batch.Batch

	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning batch: %w", err)
		}

		batches = append(batches, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating batch rows: %w", err)
	}

	return batches, nil
}

// Update writes the batch conditionally on the status the caller read.
// A racing transition that changed the status first leaves this write with
// zero matched rows, which is reported as batch.ErrStaleStatus.
func (s *Store) Update(ctx context.Context, b *batch.Batch, expected batch.Status) error {
	history, sensor, err := encodeEmbedded(b)
	if err != nil {
		return err
	}

	query := `
		UPDATE batches
		SET lot_number = $1, confirmation_token = $2, crop = $3, quality = $4,
			weight = $5, price = $6, farmer = $7, retailer = $8, retailer_contact = $9,
			harvest_date = $10, farm_location = $11, status = $12,
			tracking_history = $13, sensor_data = $14, notes = $15, track_url = $16,
			updated_at = $17
		WHERE id = $18 AND status = $19
	`

	res, err := s.db.ExecContext(ctx, query,
		b.LotNumber, b.ConfirmationToken, b.Crop, string(b.Quality),
		b.Weight, b.Price, b.Farmer, b.Retailer, b.RetailerContact,
		b.HarvestDate, b.FarmLocation, string(b.Status),
		history, sensor, b.Notes, b.TrackURL,
		b.UpdatedAt,
		b.ID, string(expected),
	)
	if err != nil {
		return fmt.Errorf("updating batch: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}

	if n == 0 {
		var exists bool
		if err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM batches WHERE id = $1)`, b.ID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("checking batch existence: %w", err)
		}

		if !exists {
			return batch.ErrNotFound
		}

		return batch.ErrStaleStatus
	}

	return nil
}

func encodeEmbedded(b *batch.Batch) (history, sensor []byte, err error) {
	history, err = json.Marshal(b.TrackingHistory)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding tracking history: %w", err)
	}

	if b.SensorData != nil {
		sensor, err = json.Marshal(b.SensorData)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding sensor data: %w", err)
		}
	}

	return history, sensor, nil
}
