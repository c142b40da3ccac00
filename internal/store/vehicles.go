package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tirestock-platform/api/internal/domain"
)

const vehicleColumns = `id, plate_number, vehicle_type, department, driver, status,
	tire_history, created_at, updated_at`

func (s *Store) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+vehicleColumns+` FROM vehicles ORDER BY plate_number`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	vehicles := make([]domain.Vehicle, 0, 32)
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}
	return vehicles, classify(rows.Err())
}

func (s *Store) GetVehicle(ctx context.Context, id string) (domain.Vehicle, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id)
	vehicle, err := scanVehicle(row)
	if err != nil {
		return domain.Vehicle{}, classify(err)
	}
	return vehicle, nil
}

// FindVehicleByPlate matches case-insensitively on the plate's natural key.
func (s *Store) FindVehicleByPlate(ctx context.Context, plate string) (domain.Vehicle, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE upper(plate_number) = upper($1)`, plate)
	vehicle, err := scanVehicle(row)
	if err != nil {
		return domain.Vehicle{}, classify(err)
	}
	return vehicle, nil
}

// SaveVehicle upserts by id, replacing every field including tire history.
// Callers that must preserve history (the import upsert gate) carry the
// existing history into the candidate before saving.
func (s *Store) SaveVehicle(ctx context.Context, vehicle domain.Vehicle) error {
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		return saveVehicle(ctx, tx, vehicle)
	})
	return err
}

func (s *Store) DeleteVehicle(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func saveVehicle(ctx context.Context, tx pgx.Tx, vehicle domain.Vehicle) error {
	history := vehicle.TireHistory
	if history == nil {
		history = []domain.TireInstall{}
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal tire history: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO vehicles (id, plate_number, vehicle_type, department, driver, status, tire_history)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			plate_number = EXCLUDED.plate_number,
			vehicle_type = EXCLUDED.vehicle_type,
			department = EXCLUDED.department,
			driver = EXCLUDED.driver,
			status = EXCLUDED.status,
			tire_history = EXCLUDED.tire_history,
			updated_at = now()
	`, vehicle.ID, vehicle.PlateNumber, vehicle.VehicleType, vehicle.Department,
		vehicle.Driver, vehicle.Status, historyJSON)
	return err
}

func scanVehicle(row pgx.Row) (domain.Vehicle, error) {
	var (
		vehicle domain.Vehicle
		history []byte
	)
	err := row.Scan(&vehicle.ID, &vehicle.PlateNumber, &vehicle.VehicleType, &vehicle.Department,
		&vehicle.Driver, &vehicle.Status, &history, &vehicle.CreatedAt, &vehicle.UpdatedAt)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("scan vehicle: %w", err)
	}
	if err := json.Unmarshal(history, &vehicle.TireHistory); err != nil {
		return domain.Vehicle{}, fmt.Errorf("decode tire history: %w", err)
	}
	if vehicle.TireHistory == nil {
		vehicle.TireHistory = []domain.TireInstall{}
	}
	return vehicle, nil
}
