package backup

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/tirestock-platform/api/internal/domain"
)

// Document is the portable backup format: all three collections plus the
// moment the backup was taken.
type Document struct {
	Tires        []domain.Tire        `json:"tires"`
	Transactions []domain.Transaction `json:"transactions"`
	Vehicles     []domain.Vehicle     `json:"vehicles"`
	Timestamp    time.Time            `json:"timestamp"`
}

type Store interface {
	ListTires(ctx context.Context) ([]domain.Tire, error)
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
	ListVehicles(ctx context.Context) ([]domain.Vehicle, error)
	SaveTire(ctx context.Context, tire domain.Tire) error
	UpsertTransaction(ctx context.Context, entry domain.Transaction) error
	SaveVehicle(ctx context.Context, vehicle domain.Vehicle) error
}

type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewService(st Store, logger *slog.Logger) *Service {
	return &Service{store: st, logger: logger, now: time.Now}
}

func (s *Service) Create(ctx context.Context) (Document, error) {
	tires, err := s.store.ListTires(ctx)
	if err != nil {
		return Document{}, err
	}
	transactions, err := s.store.ListTransactions(ctx)
	if err != nil {
		return Document{}, err
	}
	vehicles, err := s.store.ListVehicles(ctx)
	if err != nil {
		return Document{}, err
	}
	return Document{
		Tires:        tires,
		Transactions: transactions,
		Vehicles:     vehicles,
		Timestamp:    s.now().UTC(),
	}, nil
}

// Restore upserts every record of each non-empty array by id; absent arrays
// leave their collection untouched. Malformed JSON reports false. A write
// failure mid-restore also reports false, and upserts already applied stay
// applied; there is no rollback.
func (s *Service) Restore(ctx context.Context, data []byte) bool {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("restore_rejected", "error", err)
		return false
	}

	for _, tire := range doc.Tires {
		if tire.ID == "" {
			continue
		}
		if err := s.store.SaveTire(ctx, tire); err != nil {
			s.logger.Error("restore_tire_failed", "id", tire.ID, "error", err)
			return false
		}
	}
	for _, entry := range doc.Transactions {
		if entry.ID == "" {
			continue
		}
		if err := s.store.UpsertTransaction(ctx, entry); err != nil {
			s.logger.Error("restore_transaction_failed", "id", entry.ID, "error", err)
			return false
		}
	}
	for _, vehicle := range doc.Vehicles {
		if vehicle.ID == "" {
			continue
		}
		if err := s.store.SaveVehicle(ctx, vehicle); err != nil {
			s.logger.Error("restore_vehicle_failed", "id", vehicle.ID, "error", err)
			return false
		}
	}
	return true
}
