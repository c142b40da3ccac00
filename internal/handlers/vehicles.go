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
)

func (s *Server) GetVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := s.Store.ListVehicles(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err, "vehicle")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, vehicles)
}

func (s *Server) GetVehiclesVehicleId(w http.ResponseWriter, r *http.Request) {
	vehicle, err := s.Store.GetVehicle(r.Context(), chi.URLParam(r, "vehicleId"))
	if err != nil {
		s.writeStoreError(w, r, err, "vehicle")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, vehicle)
}

type vehicleRequest struct {
	PlateNumber string `json:"plateNumber"`
	VehicleType string `json:"vehicleType"`
	Department  string `json:"department"`
	Driver      string `json:"driver"`
	Status      string `json:"status"`
}

func (s *Server) PostVehicles(w http.ResponseWriter, r *http.Request) {
	var req vehicleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	plate := strings.ToUpper(strings.TrimSpace(req.PlateNumber))
	if plate == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "validation_error", "plateNumber is required", nil)
		return
	}

	now := time.Now().UTC()
	vehicle := domain.Vehicle{
		ID:          uuid.NewString(),
		PlateNumber: plate,
		VehicleType: valueOr(req.VehicleType, domain.VehicleTypes[0]),
		Department:  valueOr(req.Department, domain.VehicleGroups[0]),
		Driver:      valueOr(req.Driver, domain.DefaultDriver),
		Status:      valueOr(req.Status, domain.VehicleActive),
		TireHistory: []domain.TireInstall{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.SaveVehicle(r.Context(), vehicle); err != nil {
		s.writeStoreError(w, r, err, "vehicle")
		return
	}

	s.logAudit(r, audit.Entry{
		Action:     "vehicles.create",
		EntityType: "vehicle",
		EntityID:   vehicle.ID,
		Metadata:   map[string]any{"plateNumber": vehicle.PlateNumber},
	})
	httpx.WriteJSON(w, http.StatusCreated, vehicle)
}

// PutVehiclesVehicleId edits the descriptive fields of a vehicle. The tire
// history is append-only through stock-out and is never replaced here.
func (s *Server) PutVehiclesVehicleId(w http.ResponseWriter, r *http.Request) {
	var req vehicleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	vehicle, err := s.Store.GetVehicle(r.Context(), chi.URLParam(r, "vehicleId"))
	if err != nil {
		s.writeStoreError(w, r, err, "vehicle")
		return
	}

	plate := strings.ToUpper(strings.TrimSpace(req.PlateNumber))
	if plate == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "validation_error", "plateNumber is required", nil)
		return
	}

	vehicle.PlateNumber = plate
	vehicle.VehicleType = valueOr(req.VehicleType, vehicle.VehicleType)
	vehicle.Department = valueOr(req.Department, vehicle.Department)
	vehicle.Driver = valueOr(req.Driver, vehicle.Driver)
	vehicle.Status = valueOr(req.Status, vehicle.Status)
	vehicle.UpdatedAt = time.Now().UTC()

	if err := s.Store.SaveVehicle(r.Context(), vehicle); err != nil {
		s.writeStoreError(w, r, err, "vehicle")
		return
	}

	s.logAudit(r, audit.Entry{
		Action:     "vehicles.update",
		EntityType: "vehicle",
		EntityID:   vehicle.ID,
		Metadata:   map[string]any{"plateNumber": vehicle.PlateNumber},
	})
	httpx.WriteJSON(w, http.StatusOK, vehicle)
}

func (s *Server) DeleteVehiclesVehicleId(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "vehicleId")
	if err := s.Store.DeleteVehicle(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err, "vehicle")
		return
	}
	s.logAudit(r, audit.Entry{Action: "vehicles.delete", EntityType: "vehicle", EntityID: id})
	w.WriteHeader(http.StatusNoContent)
}
