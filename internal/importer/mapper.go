package importer

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tirestock-platform/api/internal/domain"
)

// FieldAliases lists the spreadsheet headers accepted for one canonical
// field, in priority order; the first header present in the file wins.
// Both the Indonesian and English label sets are accepted.
type FieldAliases struct {
	Field   string
	Headers []string
}

var tireAliases = []FieldAliases{
	{Field: "serialNumber", Headers: []string{"Nomor Seri", "Serial", "serialNumber"}},
	{Field: "brand", Headers: []string{"Merk", "Brand"}},
	{Field: "size", Headers: []string{"Ukuran", "Size"}},
	{Field: "condition", Headers: []string{"Kondisi"}},
	{Field: "dateIn", Headers: []string{"Tanggal", "Date", "dateIn", "Tanggal Masuk", "Tanggal Masuk (YYYY-MM-DD)"}},
}

var vehicleAliases = []FieldAliases{
	{Field: "plateNumber", Headers: []string{"Plat Nomor", "Plate", "plateNumber"}},
	{Field: "vehicleType", Headers: []string{"Tipe", "Type"}},
	{Field: "department", Headers: []string{"Departemen", "Dept"}},
	{Field: "driver", Headers: []string{"Supir", "Driver"}},
}

// ResolveColumns resolves alias lists against the file's header row once,
// producing canonical-field → column-index. Headers are compared after
// normalization (case, spaces, separators stripped), so "Plat Nomor" and
// "plat_nomor" are the same header.
func ResolveColumns(headers []string, aliases []FieldAliases) map[string]int {
	byKey := make(map[string]int, len(headers))
	for idx, header := range headers {
		key := normalizeHeaderKey(header)
		if _, taken := byKey[key]; !taken {
			byKey[key] = idx
		}
	}

	resolved := make(map[string]int, len(aliases))
	for _, alias := range aliases {
		for _, header := range alias.Headers {
			if idx, ok := byKey[normalizeHeaderKey(header)]; ok {
				resolved[alias.Field] = idx
				break
			}
		}
	}
	return resolved
}

func normalizeHeaderKey(raw string) string {
	replacer := strings.NewReplacer(" ", "", "_", "", "-", "", ".", "", "/", "", "(", "", ")", "")
	return strings.ToLower(replacer.Replace(strings.TrimPrefix(strings.TrimSpace(raw), "\uFEFF")))
}

// MapTire builds a stock-in candidate from one row. It reports false when
// the row has no resolvable serial number; every other gap gets a default.
func MapTire(cells []any, cols map[string]int, now time.Time) (domain.Tire, bool) {
	serial := strings.ToUpper(cellString(cellAt(cells, cols, "serialNumber")))
	if serial == "" {
		return domain.Tire{}, false
	}

	dateIn := normalizeDate(cellAt(cells, cols, "dateIn"), now)

	return domain.Tire{
		ID:           uuid.NewString(),
		SerialNumber: serial,
		Brand:        cellStringDefault(cellAt(cells, cols, "brand"), "-"),
		Size:         cellStringDefault(cellAt(cells, cols, "size"), domain.SizeOptions[0]),
		Condition:    cellStringDefault(cellAt(cells, cols, "condition"), domain.ConditionOptions[0]),
		Status:       domain.StatusAvailable,
		Location:     domain.DefaultLocation,
		DateIn:       dateIn,
		CreatedBy:    ImportActor,
	}, true
}

// MapVehicle builds a fleet candidate from one row. It reports false when
// the row has no resolvable plate number.
func MapVehicle(cells []any, cols map[string]int) (domain.Vehicle, bool) {
	plate := strings.ToUpper(cellString(cellAt(cells, cols, "plateNumber")))
	if plate == "" {
		return domain.Vehicle{}, false
	}

	return domain.Vehicle{
		ID:          uuid.NewString(),
		PlateNumber: plate,
		VehicleType: cellStringDefault(cellAt(cells, cols, "vehicleType"), domain.VehicleTypes[0]),
		Department:  cellStringDefault(cellAt(cells, cols, "department"), domain.VehicleGroups[0]),
		Driver:      cellStringDefault(cellAt(cells, cols, "driver"), domain.DefaultDriver),
		Status:      domain.VehicleActive,
		TireHistory: []domain.TireInstall{},
	}, true
}

func cellAt(cells []any, cols map[string]int, field string) any {
	idx, ok := cols[field]
	if !ok || idx < 0 || idx >= len(cells) {
		return nil
	}
	return cells[idx]
}

func cellString(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case time.Time:
		return v.Format(canonicalDateLayout)
	default:
		return ""
	}
}

func cellStringDefault(cell any, fallback string) string {
	if value := cellString(cell); value != "" {
		return value
	}
	return fallback
}
