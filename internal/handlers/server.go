package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tirestock-platform/api/internal/audit"
	"github.com/tirestock-platform/api/internal/backup"
	"github.com/tirestock-platform/api/internal/config"
	"github.com/tirestock-platform/api/internal/httpx"
	"github.com/tirestock-platform/api/internal/importer"
	"github.com/tirestock-platform/api/internal/realtime"
	"github.com/tirestock-platform/api/internal/store"
)

type Server struct {
	Config   config.Config
	Store    *store.Store
	Hub      *realtime.Hub
	Importer *importer.Importer
	Backup   *backup.Service
	Audit    *audit.Logger
	Logger   *slog.Logger
}

func NewServer(cfg config.Config, st *store.Store, hub *realtime.Hub, auditLogger *audit.Logger, logger *slog.Logger) *Server {
	return &Server{
		Config:   cfg,
		Store:    st,
		Hub:      hub,
		Importer: importer.New(st, logger),
		Backup:   backup.NewService(st, logger),
		Audit:    auditLogger,
		Logger:   logger,
	}
}

func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// actorFrom names the acting operator. There is no session layer; clients
// identify themselves with a header and everything else is "Admin".
func actorFrom(r *http.Request) string {
	if actor := r.Header.Get("X-Actor"); actor != "" {
		return actor
	}
	return "Admin"
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Malformed JSON body", nil)
		return false
	}
	return true
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error, entity string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, r, http.StatusNotFound, entity+"_not_found", "Record was not found", nil)
	case errors.Is(err, store.ErrSchemaMissing):
		httpx.WriteError(w, r, http.StatusServiceUnavailable, "schema_missing",
			"Database schema is not initialized; run migrations", nil)
	case errors.Is(err, store.ErrDuplicateSerial):
		httpx.WriteError(w, r, http.StatusConflict, "duplicate_serial", "Serial number already exists", nil)
	case errors.Is(err, store.ErrDuplicatePlate):
		httpx.WriteError(w, r, http.StatusConflict, "duplicate_plate", "Plate number already exists", nil)
	default:
		s.Logger.Error("store_error", "entity", entity, "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Unexpected storage failure", nil)
	}
}

func isNotFound(err error) bool      { return errors.Is(err, store.ErrNotFound) }
func isSchemaMissing(err error) bool { return errors.Is(err, store.ErrSchemaMissing) }

// normalizeBodyDate validates an explicit YYYY-MM-DD value, defaulting to
// today when the field was omitted.
func normalizeBodyDate(value string) (string, bool) {
	if value == "" {
		return time.Now().Format("2006-01-02"), true
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return "", false
	}
	return value, true
}
