package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tirestock-platform/api/internal/domain"
)

const transactionColumns = `id, type, serial_number, brand, size, condition, date,
	plate_number, odometer, notes, actor, created_at`

func (s *Store) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY created_at DESC`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	entries := make([]domain.Transaction, 0, 64)
	for rows.Next() {
		entry, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, classify(rows.Err())
}

func (s *Store) InsertTransaction(ctx context.Context, entry domain.Transaction) error {
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		return insertTransaction(ctx, tx, entry)
	})
	return err
}

// UpsertTransaction is restore-only: entries are immutable in normal
// operation, but a backup may carry ids that already exist.
func (s *Store) UpsertTransaction(ctx context.Context, entry domain.Transaction) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO transactions (id, type, serial_number, brand, size, condition, date,
			plate_number, odometer, notes, actor)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			type = EXCLUDED.type,
			serial_number = EXCLUDED.serial_number,
			brand = EXCLUDED.brand,
			size = EXCLUDED.size,
			condition = EXCLUDED.condition,
			date = EXCLUDED.date,
			plate_number = EXCLUDED.plate_number,
			odometer = EXCLUDED.odometer,
			notes = EXCLUDED.notes,
			actor = EXCLUDED.actor
	`, entry.ID, entry.Type, entry.SerialNumber, entry.Brand, entry.Size, entry.Condition,
		entry.Date, entry.PlateNumber, entry.Odometer, entry.Notes, entry.Actor)
	return classify(err)
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func insertTransaction(ctx context.Context, tx pgx.Tx, entry domain.Transaction) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO transactions (id, type, serial_number, brand, size, condition, date,
			plate_number, odometer, notes, actor)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, entry.ID, entry.Type, entry.SerialNumber, entry.Brand, entry.Size, entry.Condition,
		entry.Date, entry.PlateNumber, entry.Odometer, entry.Notes, entry.Actor)
	return err
}

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var (
		entry domain.Transaction
		date  time.Time
	)
	err := row.Scan(&entry.ID, &entry.Type, &entry.SerialNumber, &entry.Brand, &entry.Size,
		&entry.Condition, &date, &entry.PlateNumber, &entry.Odometer, &entry.Notes,
		&entry.Actor, &entry.CreatedAt)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	entry.Date = dateString(date)
	return entry, nil
}
