package importer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tirestock-platform/api/internal/domain"
	"github.com/tirestock-platform/api/internal/store"
)

// ImportActor is the recorded author of records created by bulk import.
const ImportActor = "Import"

// Store is the slice of the persistence layer the importer needs.
type Store interface {
	ListTireSerials(ctx context.Context) ([]string, error)
	CreateTireWithEntry(ctx context.Context, tire domain.Tire, entry domain.Transaction) error
	FindVehicleByPlate(ctx context.Context, plate string) (domain.Vehicle, error)
	SaveVehicle(ctx context.Context, vehicle domain.Vehicle) error
}

// Summary is the batch result reported to the operator. Row-level failures
// are only counted; no per-row detail is retained.
type Summary struct {
	SuccessCount int `json:"successCount"`
	FailCount    int `json:"failCount"`
}

type Importer struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func New(st Store, logger *slog.Logger) *Importer {
	return &Importer{store: st, logger: logger, now: time.Now}
}

// ImportTires loads tire rows with insert-only semantics: a serial that
// already exists, in the live set or earlier in the same batch, is a
// duplicate failure, never an update. Each accepted row writes the tire and
// its paired stock-in transaction atomically. Row failures never abort the
// batch; only an error from loading the live serial set does.
func (imp *Importer) ImportTires(ctx context.Context, sheet *Sheet) (Summary, error) {
	cols := ResolveColumns(sheet.Headers, tireAliases)

	serials, err := imp.store.ListTireSerials(ctx)
	if err != nil {
		return Summary{}, err
	}
	seen := make(map[string]bool, len(serials))
	for _, serial := range serials {
		seen[serial] = true
	}

	var summary Summary
	for _, cells := range sheet.Rows {
		tire, ok := MapTire(cells, cols, imp.now())
		if !ok {
			summary.FailCount++
			continue
		}
		if seen[tire.SerialNumber] {
			summary.FailCount++
			continue
		}

		entry := domain.Transaction{
			ID:           uuid.NewString(),
			Type:         domain.EntryTypeIn,
			SerialNumber: tire.SerialNumber,
			Brand:        tire.Brand,
			Size:         tire.Size,
			Condition:    tire.Condition,
			Date:         tire.DateIn,
			Actor:        ImportActor,
		}

		if err := imp.store.CreateTireWithEntry(ctx, tire, entry); err != nil {
			// The unique index closes the race a pre-check cannot: a serial
			// inserted by another session since ListTireSerials lands here.
			if !errors.Is(err, store.ErrDuplicateSerial) {
				imp.logger.Warn("tire_import_row_failed", "serial", tire.SerialNumber, "error", err)
			}
			summary.FailCount++
			continue
		}
		seen[tire.SerialNumber] = true
		summary.SuccessCount++
	}
	return summary, nil
}

// ImportVehicles loads fleet rows with upsert semantics: a plate that
// matches an existing vehicle keeps that vehicle's id and tire history and
// overwrites everything else. No transaction entries are written.
func (imp *Importer) ImportVehicles(ctx context.Context, sheet *Sheet) (Summary, error) {
	cols := ResolveColumns(sheet.Headers, vehicleAliases)

	var summary Summary
	for _, cells := range sheet.Rows {
		vehicle, ok := MapVehicle(cells, cols)
		if !ok {
			summary.FailCount++
			continue
		}

		existing, err := imp.store.FindVehicleByPlate(ctx, vehicle.PlateNumber)
		switch {
		case err == nil:
			vehicle.ID = existing.ID
			vehicle.TireHistory = existing.TireHistory
		case errors.Is(err, store.ErrNotFound):
			// brand-new plate, keep the fresh id and empty history
		default:
			summary.FailCount++
			continue
		}

		if err := imp.store.SaveVehicle(ctx, vehicle); err != nil {
			imp.logger.Warn("vehicle_import_row_failed", "plate", vehicle.PlateNumber, "error", err)
			summary.FailCount++
			continue
		}
		summary.SuccessCount++
	}
	return summary, nil
}
