package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/tirestock-platform/api/internal/domain"
	"github.com/tirestock-platform/api/internal/store"
)

type mockStore struct {
	serials       []string
	serialsErr    error
	createErr     map[string]error
	created       []domain.Tire
	entries       []domain.Transaction
	vehicles      map[string]domain.Vehicle
	savedVehicles []domain.Vehicle
	saveErr       error
}

func newMockStore() *mockStore {
	return &mockStore{
		createErr: map[string]error{},
		vehicles:  map[string]domain.Vehicle{},
	}
}

func (m *mockStore) ListTireSerials(ctx context.Context) ([]string, error) {
	return m.serials, m.serialsErr
}

func (m *mockStore) CreateTireWithEntry(ctx context.Context, tire domain.Tire, entry domain.Transaction) error {
	if err := m.createErr[tire.SerialNumber]; err != nil {
		return err
	}
	m.created = append(m.created, tire)
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockStore) FindVehicleByPlate(ctx context.Context, plate string) (domain.Vehicle, error) {
	if v, ok := m.vehicles[plate]; ok {
		return v, nil
	}
	return domain.Vehicle{}, store.ErrNotFound
}

func (m *mockStore) SaveVehicle(ctx context.Context, vehicle domain.Vehicle) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.savedVehicles = append(m.savedVehicles, vehicle)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tireSheet(rows ...[]any) *Sheet {
	return &Sheet{
		Headers: []string{"Nomor Seri", "Merk", "Ukuran", "Kondisi", "Tanggal"},
		Rows:    rows,
	}
}

func TestImportTires(t *testing.T) {
	t.Run("accepted rows write tire and paired entry", func(t *testing.T) {
		st := newMockStore()
		imp := New(st, testLogger())

		summary, err := imp.ImportTires(context.Background(), tireSheet(
			[]any{"SN-100", "Bridgestone", "BAN MASAK", "Baru", "2026-01-08"},
			[]any{"SN-101", "MRF", "", "", "08-01-2026"},
		))
		if err != nil {
			t.Fatalf("ImportTires: %v", err)
		}
		if summary.SuccessCount != 2 || summary.FailCount != 0 {
			t.Fatalf("summary = %+v, want 2 successes", summary)
		}
		if len(st.created) != 2 || len(st.entries) != 2 {
			t.Fatalf("created %d tires and %d entries, want 2 each", len(st.created), len(st.entries))
		}
		for i, entry := range st.entries {
			tire := st.created[i]
			if entry.Type != domain.EntryTypeIn {
				t.Fatalf("entry type = %q, want in", entry.Type)
			}
			if entry.SerialNumber != tire.SerialNumber || entry.Date != tire.DateIn {
				t.Fatalf("entry %+v does not mirror tire %+v", entry, tire)
			}
			if entry.Actor != ImportActor {
				t.Fatalf("entry actor = %q, want %q", entry.Actor, ImportActor)
			}
		}
	})

	t.Run("existing serial fails the row", func(t *testing.T) {
		st := newMockStore()
		st.serials = []string{"SN-100"}
		imp := New(st, testLogger())

		summary, err := imp.ImportTires(context.Background(), tireSheet(
			[]any{"SN-100", "", "", "", ""},
			[]any{"SN-200", "", "", "", ""},
		))
		if err != nil {
			t.Fatalf("ImportTires: %v", err)
		}
		if summary.SuccessCount != 1 || summary.FailCount != 1 {
			t.Fatalf("summary = %+v, want 1 success 1 failure", summary)
		}
		if len(st.created) != 1 || st.created[0].SerialNumber != "SN-200" {
			t.Fatalf("created = %+v, want only SN-200", st.created)
		}
	})

	t.Run("duplicate check is case insensitive", func(t *testing.T) {
		st := newMockStore()
		st.serials = []string{"SN-100"}
		imp := New(st, testLogger())

		summary, err := imp.ImportTires(context.Background(), tireSheet(
			[]any{"sn-100", "", "", "", ""},
		))
		if err != nil {
			t.Fatalf("ImportTires: %v", err)
		}
		if summary.FailCount != 1 || summary.SuccessCount != 0 {
			t.Fatalf("summary = %+v, want the lower-cased duplicate rejected", summary)
		}
	})

	t.Run("duplicate within the batch fails the later row", func(t *testing.T) {
		st := newMockStore()
		imp := New(st, testLogger())

		summary, err := imp.ImportTires(context.Background(), tireSheet(
			[]any{"SN-300", "", "", "", ""},
			[]any{"SN-300", "", "", "", ""},
		))
		if err != nil {
			t.Fatalf("ImportTires: %v", err)
		}
		if summary.SuccessCount != 1 || summary.FailCount != 1 {
			t.Fatalf("summary = %+v, want first row in and second rejected", summary)
		}
	})

	t.Run("missing serial fails the row without aborting", func(t *testing.T) {
		st := newMockStore()
		imp := New(st, testLogger())

		summary, err := imp.ImportTires(context.Background(), tireSheet(
			[]any{"", "Bridgestone", "", "", ""},
			[]any{"SN-400", "", "", "", ""},
		))
		if err != nil {
			t.Fatalf("ImportTires: %v", err)
		}
		if summary.SuccessCount != 1 || summary.FailCount != 1 {
			t.Fatalf("summary = %+v, want 1 success 1 failure", summary)
		}
	})

	t.Run("unique index violation counts as duplicate failure", func(t *testing.T) {
		st := newMockStore()
		st.createErr["SN-500"] = store.ErrDuplicateSerial
		imp := New(st, testLogger())

		summary, err := imp.ImportTires(context.Background(), tireSheet(
			[]any{"SN-500", "", "", "", ""},
		))
		if err != nil {
			t.Fatalf("ImportTires: %v", err)
		}
		if summary.FailCount != 1 {
			t.Fatalf("summary = %+v, want the racing insert counted as failure", summary)
		}
	})

	t.Run("serial listing failure aborts the batch", func(t *testing.T) {
		st := newMockStore()
		st.serialsErr = errors.New("connection reset")
		imp := New(st, testLogger())

		if _, err := imp.ImportTires(context.Background(), tireSheet([]any{"SN-600", "", "", "", ""})); err == nil {
			t.Fatal("expected batch to abort when the live serial set cannot load")
		}
	})
}

func vehicleSheet(rows ...[]any) *Sheet {
	return &Sheet{
		Headers: []string{"Plat Nomor", "Tipe", "Departemen", "Supir"},
		Rows:    rows,
	}
}

func TestImportVehicles(t *testing.T) {
	t.Run("new plate inserts with fresh id", func(t *testing.T) {
		st := newMockStore()
		imp := New(st, testLogger())

		summary, err := imp.ImportVehicles(context.Background(), vehicleSheet(
			[]any{"B 9001 XY", "FAW", "RKI", "Asep"},
		))
		if err != nil {
			t.Fatalf("ImportVehicles: %v", err)
		}
		if summary.SuccessCount != 1 {
			t.Fatalf("summary = %+v, want 1 success", summary)
		}
		saved := st.savedVehicles[0]
		if saved.ID == "" {
			t.Fatal("expected a generated id")
		}
		if len(saved.TireHistory) != 0 {
			t.Fatalf("expected empty history, got %d entries", len(saved.TireHistory))
		}
	})

	t.Run("matching plate keeps id and tire history", func(t *testing.T) {
		st := newMockStore()
		st.vehicles["B 9001 XY"] = domain.Vehicle{
			ID:          "existing-id",
			PlateNumber: "B 9001 XY",
			Driver:      "Old Driver",
			TireHistory: []domain.TireInstall{
				{SerialNumber: "SN-100", DateInstalled: "2025-06-01", Odometer: 120000},
			},
		}
		imp := New(st, testLogger())

		summary, err := imp.ImportVehicles(context.Background(), vehicleSheet(
			[]any{"B 9001 XY", "FUSO", "TEAM", "New Driver"},
		))
		if err != nil {
			t.Fatalf("ImportVehicles: %v", err)
		}
		if summary.SuccessCount != 1 {
			t.Fatalf("summary = %+v, want 1 success", summary)
		}
		saved := st.savedVehicles[0]
		if saved.ID != "existing-id" {
			t.Fatalf("id = %q, want the existing id preserved", saved.ID)
		}
		if len(saved.TireHistory) != 1 || saved.TireHistory[0].SerialNumber != "SN-100" {
			t.Fatalf("history = %+v, want the existing history preserved", saved.TireHistory)
		}
		if saved.Driver != "New Driver" || saved.VehicleType != "FUSO" {
			t.Fatalf("saved = %+v, want descriptive fields overwritten", saved)
		}
	})

	t.Run("missing plate fails the row", func(t *testing.T) {
		st := newMockStore()
		imp := New(st, testLogger())

		summary, err := imp.ImportVehicles(context.Background(), vehicleSheet(
			[]any{"", "FAW", "", ""},
			[]any{"B 9002 XY", "", "", ""},
		))
		if err != nil {
			t.Fatalf("ImportVehicles: %v", err)
		}
		if summary.SuccessCount != 1 || summary.FailCount != 1 {
			t.Fatalf("summary = %+v, want 1 success 1 failure", summary)
		}
	})

	t.Run("save failure fails the row without aborting", func(t *testing.T) {
		st := newMockStore()
		st.saveErr = errors.New("disk full")
		imp := New(st, testLogger())

		summary, err := imp.ImportVehicles(context.Background(), vehicleSheet(
			[]any{"B 9003 XY", "", "", ""},
		))
		if err != nil {
			t.Fatalf("ImportVehicles: %v", err)
		}
		if summary.FailCount != 1 {
			t.Fatalf("summary = %+v, want the failed save counted", summary)
		}
	})
}
