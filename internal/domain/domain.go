package domain

import "time"

const (
	StatusAvailable = "available"
	StatusOut       = "out"

	VehicleActive   = "active"
	VehicleInactive = "inactive"

	EntryTypeIn  = "in"
	EntryTypeOut = "out"
)

// Option lists shipped with the shop's workbook templates. The first entry
// of each list doubles as the import default when a column is absent.
var (
	SizeOptions = []string{
		"BAN TMD 97 11.00",
		"BAN TMD 18 10.00",
		"BAN MRF M77 11.00",
		"BAN MASAK",
	}
	ConditionOptions = []string{"Baru", "Bekas Baik", "Bekas Cukup", "Perlu Repair"}
	VehicleGroups    = []string{"RKI", "TEAM", "TKN", "GAB", "RSI", "TONI"}
	VehicleTypes     = []string{"FAW", "FUSO"}
)

// DefaultDriver is the placeholder for fleet rows imported without a driver.
const DefaultDriver = "Belum Ada"

// DefaultLocation is where imported stock lands until it is relocated.
const DefaultLocation = "Gudang"

type Tire struct {
	ID           string    `json:"id"`
	SerialNumber string    `json:"serialNumber"`
	Brand        string    `json:"brand"`
	Size         string    `json:"size"`
	Condition    string    `json:"condition"`
	Status       string    `json:"status"`
	Location     string    `json:"location"`
	Supplier     *string   `json:"supplier,omitempty"`
	DateIn       string    `json:"dateIn"`
	DateOut      *string   `json:"dateOut,omitempty"`
	PlateNumber  *string   `json:"plateNumber,omitempty"`
	Odometer     *int      `json:"odometer,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	CreatedBy    string    `json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Transaction is the immutable audit entry paired with a stock movement.
// It snapshots the tire fields at the time of the movement and is never
// updated afterwards; deleting one does not reverse the tire state.
type Transaction struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	SerialNumber string    `json:"serialNumber"`
	Brand        string    `json:"brand"`
	Size         string    `json:"size"`
	Condition    string    `json:"condition"`
	Date         string    `json:"date"`
	PlateNumber  *string   `json:"plateNumber,omitempty"`
	Odometer     *int      `json:"odometer,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	Actor        string    `json:"user"`
	CreatedAt    time.Time `json:"timestamp"`
}

// TireInstall is one element of a vehicle's append-only tire history.
type TireInstall struct {
	SerialNumber  string `json:"serialNumber"`
	DateInstalled string `json:"dateInstalled"`
	Odometer      int    `json:"odometer"`
}

type Vehicle struct {
	ID          string        `json:"id"`
	PlateNumber string        `json:"plateNumber"`
	VehicleType string        `json:"vehicleType"`
	Department  string        `json:"department"`
	Driver      string        `json:"driver"`
	Status      string        `json:"status"`
	TireHistory []TireInstall `json:"tireHistory"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}
