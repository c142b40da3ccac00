package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tirestock-platform/api/internal/audit"
	"github.com/tirestock-platform/api/internal/domain"
	"github.com/tirestock-platform/api/internal/httpx"
	"github.com/tirestock-platform/api/internal/middleware"
)

func (s *Server) GetTires(w http.ResponseWriter, r *http.Request) {
	tires, err := s.Store.ListTires(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err, "tire")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tires)
}

func (s *Server) GetTiresTireId(w http.ResponseWriter, r *http.Request) {
	tire, err := s.Store.GetTire(r.Context(), chi.URLParam(r, "tireId"))
	if err != nil {
		s.writeStoreError(w, r, err, "tire")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tire)
}

type stockInRequest struct {
	SerialNumber string  `json:"serialNumber"`
	Brand        string  `json:"brand"`
	Size         string  `json:"size"`
	Condition    string  `json:"condition"`
	Location     string  `json:"location"`
	Supplier     *string `json:"supplier"`
	Date         string  `json:"date"`
	Notes        *string `json:"notes"`
}

// PostTiresStockIn registers a new tire and its paired "in" ledger entry in
// one transaction.
func (s *Server) PostTiresStockIn(w http.ResponseWriter, r *http.Request) {
	var req stockInRequest
	if !decodeBody(w, r, &req) {
		return
	}
	serial := strings.ToUpper(strings.TrimSpace(req.SerialNumber))
	if serial == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "validation_error", "serialNumber is required", nil)
		return
	}
	date, ok := normalizeBodyDate(req.Date)
	if !ok {
		httpx.WriteError(w, r, http.StatusBadRequest, "validation_error", "date must be YYYY-MM-DD", nil)
		return
	}

	now := time.Now().UTC()
	tire := domain.Tire{
		ID:           uuid.NewString(),
		SerialNumber: serial,
		Brand:        valueOr(req.Brand, "-"),
		Size:         valueOr(req.Size, domain.SizeOptions[0]),
		Condition:    valueOr(req.Condition, domain.ConditionOptions[0]),
		Status:       domain.StatusAvailable,
		Location:     valueOr(req.Location, domain.DefaultLocation),
		Supplier:     req.Supplier,
		DateIn:       date,
		Notes:        req.Notes,
		CreatedBy:    actorFrom(r),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	entry := domain.Transaction{
		ID:           uuid.NewString(),
		Type:         domain.EntryTypeIn,
		SerialNumber: tire.SerialNumber,
		Brand:        tire.Brand,
		Size:         tire.Size,
		Condition:    tire.Condition,
		Date:         tire.DateIn,
		Notes:        req.Notes,
		Actor:        actorFrom(r),
		CreatedAt:    now,
	}
	if err := s.Store.CreateTireWithEntry(r.Context(), tire, entry); err != nil {
		s.writeStoreError(w, r, err, "tire")
		return
	}

	s.logAudit(r, audit.Entry{
		Action:     "tires.stock_in",
		EntityType: "tire",
		EntityID:   tire.ID,
		Metadata:   map[string]any{"serialNumber": tire.SerialNumber},
	})
	httpx.WriteJSON(w, http.StatusCreated, tire)
}

type stockOutRequest struct {
	PlateNumber string  `json:"plateNumber"`
	Date        string  `json:"date"`
	Odometer    *int    `json:"odometer"`
	Notes       *string `json:"notes"`
}

// PostTiresTireIdStockOut marks a tire as mounted on a vehicle. The tire
// update, the "out" ledger entry, and the vehicle history append all commit
// together. A plate with no matching vehicle is tolerated; the movement is
// still recorded against the plate string alone.
func (s *Server) PostTiresTireIdStockOut(w http.ResponseWriter, r *http.Request) {
	var req stockOutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	plate := strings.ToUpper(strings.TrimSpace(req.PlateNumber))
	if plate == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "validation_error", "plateNumber is required", nil)
		return
	}
	date, ok := normalizeBodyDate(req.Date)
	if !ok {
		httpx.WriteError(w, r, http.StatusBadRequest, "validation_error", "date must be YYYY-MM-DD", nil)
		return
	}

	tire, err := s.Store.GetTire(r.Context(), chi.URLParam(r, "tireId"))
	if err != nil {
		s.writeStoreError(w, r, err, "tire")
		return
	}
	if tire.Status == domain.StatusOut {
		httpx.WriteError(w, r, http.StatusConflict, "tire_already_out", "Tire is already out of stock", nil)
		return
	}

	now := time.Now().UTC()
	tire.Status = domain.StatusOut
	tire.DateOut = &date
	tire.PlateNumber = &plate
	tire.Odometer = req.Odometer
	tire.Notes = req.Notes
	tire.UpdatedAt = now

	entry := domain.Transaction{
		ID:           uuid.NewString(),
		Type:         domain.EntryTypeOut,
		SerialNumber: tire.SerialNumber,
		Brand:        tire.Brand,
		Size:         tire.Size,
		Condition:    tire.Condition,
		Date:         date,
		PlateNumber:  &plate,
		Odometer:     req.Odometer,
		Notes:        req.Notes,
		Actor:        actorFrom(r),
		CreatedAt:    now,
	}

	var vehicle *domain.Vehicle
	found, err := s.Store.FindVehicleByPlate(r.Context(), plate)
	switch {
	case err == nil:
		odometer := 0
		if req.Odometer != nil {
			odometer = *req.Odometer
		}
		found.TireHistory = append(found.TireHistory, domain.TireInstall{
			SerialNumber:  tire.SerialNumber,
			DateInstalled: date,
			Odometer:      odometer,
		})
		found.UpdatedAt = now
		vehicle = &found
	case isNotFound(err):
		s.Logger.Warn("stock_out_unknown_plate", "plate", plate, "tireId", tire.ID)
	default:
		s.writeStoreError(w, r, err, "vehicle")
		return
	}

	if err := s.Store.StockOutTire(r.Context(), tire, entry, vehicle); err != nil {
		s.writeStoreError(w, r, err, "tire")
		return
	}

	s.logAudit(r, audit.Entry{
		Action:     "tires.stock_out",
		EntityType: "tire",
		EntityID:   tire.ID,
		Metadata:   map[string]any{"serialNumber": tire.SerialNumber, "plateNumber": plate},
	})
	httpx.WriteJSON(w, http.StatusOK, tire)
}

type tireUpdateRequest struct {
	SerialNumber string  `json:"serialNumber"`
	Brand        string  `json:"brand"`
	Size         string  `json:"size"`
	Condition    string  `json:"condition"`
	Status       string  `json:"status"`
	Location     string  `json:"location"`
	Supplier     *string `json:"supplier"`
	DateIn       string  `json:"dateIn"`
	DateOut      *string `json:"dateOut"`
	PlateNumber  *string `json:"plateNumber"`
	Odometer     *int    `json:"odometer"`
	Notes        *string `json:"notes"`
}

func (s *Server) PutTiresTireId(w http.ResponseWriter, r *http.Request) {
	var req tireUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	tire, err := s.Store.GetTire(r.Context(), chi.URLParam(r, "tireId"))
	if err != nil {
		s.writeStoreError(w, r, err, "tire")
		return
	}

	serial := strings.ToUpper(strings.TrimSpace(req.SerialNumber))
	if serial == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "validation_error", "serialNumber is required", nil)
		return
	}
	if serial != tire.SerialNumber {
		inUse, err := s.Store.SerialInUse(r.Context(), serial, tire.ID)
		if err != nil {
			s.writeStoreError(w, r, err, "tire")
			return
		}
		if inUse {
			httpx.WriteError(w, r, http.StatusConflict, "duplicate_serial", "Serial number already exists", nil)
			return
		}
	}
	dateIn, ok := normalizeBodyDate(req.DateIn)
	if !ok {
		httpx.WriteError(w, r, http.StatusBadRequest, "validation_error", "dateIn must be YYYY-MM-DD", nil)
		return
	}

	tire.SerialNumber = serial
	tire.Brand = valueOr(req.Brand, tire.Brand)
	tire.Size = valueOr(req.Size, tire.Size)
	tire.Condition = valueOr(req.Condition, tire.Condition)
	tire.Status = valueOr(req.Status, tire.Status)
	tire.Location = valueOr(req.Location, tire.Location)
	tire.Supplier = req.Supplier
	tire.DateIn = dateIn
	tire.DateOut = req.DateOut
	tire.PlateNumber = req.PlateNumber
	tire.Odometer = req.Odometer
	tire.Notes = req.Notes
	tire.UpdatedAt = time.Now().UTC()

	if err := s.Store.SaveTire(r.Context(), tire); err != nil {
		s.writeStoreError(w, r, err, "tire")
		return
	}

	s.logAudit(r, audit.Entry{
		Action:     "tires.update",
		EntityType: "tire",
		EntityID:   tire.ID,
		Metadata:   map[string]any{"serialNumber": tire.SerialNumber},
	})
	httpx.WriteJSON(w, http.StatusOK, tire)
}

func (s *Server) DeleteTiresTireId(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tireId")
	if err := s.Store.DeleteTire(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err, "tire")
		return
	}
	s.logAudit(r, audit.Entry{Action: "tires.delete", EntityType: "tire", EntityID: id})
	w.WriteHeader(http.StatusNoContent)
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) PostTiresBulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		httpx.WriteError(w, r, http.StatusBadRequest, "validation_error", "ids must be non-empty", nil)
		return
	}
	deleted, err := s.Store.DeleteTires(r.Context(), req.IDs)
	if err != nil {
		s.writeStoreError(w, r, err, "tire")
		return
	}
	s.logAudit(r, audit.Entry{
		Action:     "tires.bulk_delete",
		EntityType: "tire",
		Metadata:   map[string]any{"requested": len(req.IDs), "deleted": deleted},
	})
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

// GetTiresSerialCheck answers whether a serial number is free. When the
// schema is missing the check reports unique so that the first import into a
// fresh database is not blocked by the probe.
func (s *Server) GetTiresSerialCheck(w http.ResponseWriter, r *http.Request) {
	serial := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("serial")))
	if serial == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "validation_error", "serial query parameter is required", nil)
		return
	}
	inUse, err := s.Store.SerialInUse(r.Context(), serial, r.URL.Query().Get("excludeId"))
	if err != nil {
		if isSchemaMissing(err) {
			httpx.WriteJSON(w, http.StatusOK, map[string]bool{"unique": true})
			return
		}
		s.writeStoreError(w, r, err, "tire")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"unique": !inUse})
}

func (s *Server) logAudit(r *http.Request, entry audit.Entry) {
	entry.Actor = actorFrom(r)
	entry.RequestID = middleware.RequestIDFromContext(r.Context())
	if err := s.Audit.Log(r.Context(), entry); err != nil {
		s.Logger.Warn("audit_write_failed", "action", entry.Action, "error", err)
	}
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
