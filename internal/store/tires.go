package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tirestock-platform/api/internal/domain"
)

const tireColumns = `id, serial_number, brand, size, condition, status, location, supplier,
	date_in, date_out, plate_number, odometer, notes, created_by, created_at, updated_at`

func (s *Store) ListTires(ctx context.Context) ([]domain.Tire, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+tireColumns+` FROM tires ORDER BY created_at DESC`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	tires := make([]domain.Tire, 0, 64)
	for rows.Next() {
		tire, err := scanTire(rows)
		if err != nil {
			return nil, err
		}
		tires = append(tires, tire)
	}
	return tires, classify(rows.Err())
}

func (s *Store) GetTire(ctx context.Context, id string) (domain.Tire, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+tireColumns+` FROM tires WHERE id = $1`, id)
	tire, err := scanTire(row)
	if err != nil {
		return domain.Tire{}, classify(err)
	}
	return tire, nil
}

// ListTireSerials returns the upper-cased serial numbers of every live tire.
func (s *Store) ListTireSerials(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT upper(serial_number) FROM tires`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	serials := make([]string, 0, 64)
	for rows.Next() {
		var serial string
		if err := rows.Scan(&serial); err != nil {
			return nil, err
		}
		serials = append(serials, serial)
	}
	return serials, classify(rows.Err())
}

// SerialInUse reports whether another tire already holds the serial.
// excludeID skips one record so edits do not collide with themselves.
func (s *Store) SerialInUse(ctx context.Context, serial, excludeID string) (bool, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM tires
		WHERE upper(serial_number) = upper($1) AND ($2 = '' OR id <> $2)
	`, serial, excludeID).Scan(&count)
	if err != nil {
		return false, classify(err)
	}
	return count > 0, nil
}

// SaveTire upserts by id. Used for edits and for backup restore, where the
// incoming id may predate this deployment.
func (s *Store) SaveTire(ctx context.Context, tire domain.Tire) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tires (id, serial_number, brand, size, condition, status, location, supplier,
			date_in, date_out, plate_number, odometer, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			serial_number = EXCLUDED.serial_number,
			brand = EXCLUDED.brand,
			size = EXCLUDED.size,
			condition = EXCLUDED.condition,
			status = EXCLUDED.status,
			location = EXCLUDED.location,
			supplier = EXCLUDED.supplier,
			date_in = EXCLUDED.date_in,
			date_out = EXCLUDED.date_out,
			plate_number = EXCLUDED.plate_number,
			odometer = EXCLUDED.odometer,
			notes = EXCLUDED.notes,
			updated_at = now()
	`, tire.ID, tire.SerialNumber, tire.Brand, tire.Size, tire.Condition, tire.Status,
		tire.Location, tire.Supplier, tire.DateIn, tire.DateOut, tire.PlateNumber,
		tire.Odometer, tire.Notes, tire.CreatedBy)
	return classify(err)
}

// CreateTireWithEntry inserts a tire and its paired stock-in transaction in
// one database transaction, so a tire can never exist without its audit
// entry. A duplicate serial surfaces as ErrDuplicateSerial.
func (s *Store) CreateTireWithEntry(ctx context.Context, tire domain.Tire, entry domain.Transaction) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if err := insertTire(ctx, tx, tire); err != nil {
			return err
		}
		return insertTransaction(ctx, tx, entry)
	})
}

// StockOutTire flips a tire to out, records the paired out-transaction and,
// when the plate matches a known vehicle, appends to that vehicle's tire
// history. All three writes share one database transaction.
func (s *Store) StockOutTire(ctx context.Context, tire domain.Tire, entry domain.Transaction, vehicle *domain.Vehicle) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE tires SET status = $2, date_out = $3, plate_number = $4, odometer = $5,
				notes = $6, updated_at = now()
			WHERE id = $1
		`, tire.ID, tire.Status, tire.DateOut, tire.PlateNumber, tire.Odometer, tire.Notes)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		if err := insertTransaction(ctx, tx, entry); err != nil {
			return err
		}
		if vehicle != nil {
			return saveVehicle(ctx, tx, *vehicle)
		}
		return nil
	})
}

func (s *Store) DeleteTire(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tires WHERE id = $1`, id)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteTires(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM tires WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, classify(err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return classify(err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return classify(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return classify(err)
	}
	return nil
}

func insertTire(ctx context.Context, tx pgx.Tx, tire domain.Tire) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO tires (id, serial_number, brand, size, condition, status, location, supplier,
			date_in, date_out, plate_number, odometer, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, tire.ID, tire.SerialNumber, tire.Brand, tire.Size, tire.Condition, tire.Status,
		tire.Location, tire.Supplier, tire.DateIn, tire.DateOut, tire.PlateNumber,
		tire.Odometer, tire.Notes, tire.CreatedBy)
	return err
}

func scanTire(row pgx.Row) (domain.Tire, error) {
	var (
		tire    domain.Tire
		dateIn  time.Time
		dateOut *time.Time
	)
	err := row.Scan(&tire.ID, &tire.SerialNumber, &tire.Brand, &tire.Size, &tire.Condition,
		&tire.Status, &tire.Location, &tire.Supplier, &dateIn, &dateOut, &tire.PlateNumber,
		&tire.Odometer, &tire.Notes, &tire.CreatedBy, &tire.CreatedAt, &tire.UpdatedAt)
	if err != nil {
		return domain.Tire{}, fmt.Errorf("scan tire: %w", err)
	}
	tire.DateIn = dateString(dateIn)
	tire.DateOut = datePtrString(dateOut)
	return tire, nil
}
