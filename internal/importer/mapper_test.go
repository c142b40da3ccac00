package importer

import (
	"testing"

	"github.com/tirestock-platform/api/internal/domain"
)

func TestResolveColumns(t *testing.T) {
	t.Run("indonesian headers", func(t *testing.T) {
		headers := []string{"Nomor Seri", "Merk", "Ukuran", "Kondisi", "Tanggal"}
		cols := ResolveColumns(headers, tireAliases)
		want := map[string]int{"serialNumber": 0, "brand": 1, "size": 2, "condition": 3, "dateIn": 4}
		for field, idx := range want {
			if cols[field] != idx {
				t.Fatalf("field %q resolved to column %d, want %d", field, cols[field], idx)
			}
		}
	})

	t.Run("english headers in different order", func(t *testing.T) {
		headers := []string{"Date", "Brand", "Serial"}
		cols := ResolveColumns(headers, tireAliases)
		if cols["serialNumber"] != 2 || cols["brand"] != 1 || cols["dateIn"] != 0 {
			t.Fatalf("unexpected resolution: %v", cols)
		}
	})

	t.Run("template header with format hint", func(t *testing.T) {
		cols := ResolveColumns([]string{"Nomor Seri", "Tanggal Masuk (YYYY-MM-DD)"}, tireAliases)
		if cols["dateIn"] != 1 {
			t.Fatalf("dateIn resolved to %d, want 1", cols["dateIn"])
		}
	})

	t.Run("normalization ignores case and separators", func(t *testing.T) {
		cols := ResolveColumns([]string{"plat_nomor", "SUPIR"}, vehicleAliases)
		if cols["plateNumber"] != 0 || cols["driver"] != 1 {
			t.Fatalf("unexpected resolution: %v", cols)
		}
	})

	t.Run("unknown headers resolve nothing", func(t *testing.T) {
		cols := ResolveColumns([]string{"Foo", "Bar"}, tireAliases)
		if len(cols) != 0 {
			t.Fatalf("expected empty resolution, got %v", cols)
		}
	})
}

func TestMapTire(t *testing.T) {
	cols := ResolveColumns([]string{"Nomor Seri", "Merk", "Ukuran", "Kondisi", "Tanggal"}, tireAliases)

	t.Run("full row", func(t *testing.T) {
		tire, ok := MapTire([]any{"sn-001", "Bridgestone", "BAN MASAK", "Bekas Baik", "08-01-2026"}, cols, fixedNow)
		if !ok {
			t.Fatal("expected row to map")
		}
		if tire.SerialNumber != "SN-001" {
			t.Fatalf("serial = %q, want upper-cased SN-001", tire.SerialNumber)
		}
		if tire.DateIn != "2026-01-08" {
			t.Fatalf("dateIn = %q, want 2026-01-08", tire.DateIn)
		}
		if tire.Status != domain.StatusAvailable {
			t.Fatalf("status = %q, want %q", tire.Status, domain.StatusAvailable)
		}
		if tire.ID == "" {
			t.Fatal("expected a generated id")
		}
	})

	t.Run("missing serial rejects the row", func(t *testing.T) {
		if _, ok := MapTire([]any{"   ", "Bridgestone"}, cols, fixedNow); ok {
			t.Fatal("expected row without serial to be rejected")
		}
	})

	t.Run("blank optionals get defaults", func(t *testing.T) {
		tire, ok := MapTire([]any{"SN-002", "", "", "", ""}, cols, fixedNow)
		if !ok {
			t.Fatal("expected row to map")
		}
		if tire.Brand != "-" {
			t.Fatalf("brand = %q, want -", tire.Brand)
		}
		if tire.Size != domain.SizeOptions[0] {
			t.Fatalf("size = %q, want %q", tire.Size, domain.SizeOptions[0])
		}
		if tire.Condition != domain.ConditionOptions[0] {
			t.Fatalf("condition = %q, want %q", tire.Condition, domain.ConditionOptions[0])
		}
		if tire.Location != domain.DefaultLocation {
			t.Fatalf("location = %q, want %q", tire.Location, domain.DefaultLocation)
		}
		if tire.DateIn != fixedNow.Format("2006-01-02") {
			t.Fatalf("dateIn = %q, want today fallback", tire.DateIn)
		}
	})

	t.Run("short row is padded with defaults", func(t *testing.T) {
		tire, ok := MapTire([]any{"SN-003"}, cols, fixedNow)
		if !ok {
			t.Fatal("expected row to map")
		}
		if tire.Brand != "-" {
			t.Fatalf("brand = %q, want -", tire.Brand)
		}
	})
}

func TestMapVehicle(t *testing.T) {
	cols := ResolveColumns([]string{"Plat Nomor", "Tipe", "Departemen", "Supir"}, vehicleAliases)

	t.Run("full row", func(t *testing.T) {
		vehicle, ok := MapVehicle([]any{"b 9001 xyz", "FUSO", "TEAM", "Asep"}, cols)
		if !ok {
			t.Fatal("expected row to map")
		}
		if vehicle.PlateNumber != "B 9001 XYZ" {
			t.Fatalf("plate = %q, want upper-cased B 9001 XYZ", vehicle.PlateNumber)
		}
		if vehicle.Driver != "Asep" {
			t.Fatalf("driver = %q, want Asep", vehicle.Driver)
		}
		if len(vehicle.TireHistory) != 0 {
			t.Fatalf("expected empty history, got %d entries", len(vehicle.TireHistory))
		}
	})

	t.Run("missing plate rejects the row", func(t *testing.T) {
		if _, ok := MapVehicle([]any{"", "FAW"}, cols); ok {
			t.Fatal("expected row without plate to be rejected")
		}
	})

	t.Run("blank optionals get defaults", func(t *testing.T) {
		vehicle, ok := MapVehicle([]any{"B 9002 XY", "", "", ""}, cols)
		if !ok {
			t.Fatal("expected row to map")
		}
		if vehicle.VehicleType != domain.VehicleTypes[0] {
			t.Fatalf("type = %q, want %q", vehicle.VehicleType, domain.VehicleTypes[0])
		}
		if vehicle.Driver != domain.DefaultDriver {
			t.Fatalf("driver = %q, want %q", vehicle.Driver, domain.DefaultDriver)
		}
	})
}
