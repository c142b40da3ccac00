package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	openapimiddleware "github.com/oapi-codegen/nethttp-middleware"

	"github.com/tirestock-platform/api/internal/audit"
	"github.com/tirestock-platform/api/internal/config"
	"github.com/tirestock-platform/api/internal/handlers"
	"github.com/tirestock-platform/api/internal/httpx"
	"github.com/tirestock-platform/api/internal/middleware"
	"github.com/tirestock-platform/api/internal/realtime"
	"github.com/tirestock-platform/api/internal/store"
)

func NewRouter(cfg config.Config, st *store.Store, hub *realtime.Hub, logger *slog.Logger) (http.Handler, error) {
	specPath := filepath.Join("openapi.yaml")
	if _, err := os.Stat(specPath); err != nil {
		return nil, fmt.Errorf("openapi spec not found at %s: %w", specPath, err)
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(specPath)
	if err != nil {
		return nil, fmt.Errorf("load openapi spec: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate openapi spec: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders(cfg.Env))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.LimitBodyBytesWithOverrides(cfg.APIMaxBodyBytes, []middleware.BodyLimitOverride{
		{PathPrefix: "/imports", MaxBytes: cfg.ImportMaxFileBytes},
		{PathPrefix: "/backup/restore", MaxBytes: cfg.ImportMaxFileBytes},
	}))

	api := chi.NewRouter()
	api.Use(openapimiddleware.OapiRequestValidatorWithOptions(doc, &openapimiddleware.Options{
		SilenceServersWarning: true,
		ErrorHandler: func(w http.ResponseWriter, message string, statusCode int) {
			requestID := w.Header().Get("X-Request-Id")
			httpx.WriteJSON(w, statusCode, httpx.ErrorEnvelope{
				Error:     httpx.ErrorBody{Code: "validation_error", Message: message},
				RequestID: requestID,
			})
		},
	}))

	auditLogger := audit.NewLogger(st.Pool())
	h := handlers.NewServer(cfg, st, hub, auditLogger, logger)

	api.Get("/health", h.GetHealth)
	api.Get("/system/status", h.GetSystemStatus)
	api.Get("/events", h.GetEvents)

	api.Get("/tires", h.GetTires)
	api.Post("/tires/stock-in", h.PostTiresStockIn)
	api.Post("/tires/bulk-delete", h.PostTiresBulkDelete)
	api.Get("/tires/serial-check", h.GetTiresSerialCheck)
	api.Get("/tires/{tireId}", h.GetTiresTireId)
	api.Put("/tires/{tireId}", h.PutTiresTireId)
	api.Delete("/tires/{tireId}", h.DeleteTiresTireId)
	api.Post("/tires/{tireId}/stock-out", h.PostTiresTireIdStockOut)

	api.Get("/vehicles", h.GetVehicles)
	api.Post("/vehicles", h.PostVehicles)
	api.Get("/vehicles/{vehicleId}", h.GetVehiclesVehicleId)
	api.Put("/vehicles/{vehicleId}", h.PutVehiclesVehicleId)
	api.Delete("/vehicles/{vehicleId}", h.DeleteVehiclesVehicleId)

	api.Get("/transactions", h.GetTransactions)
	api.Delete("/transactions/{transactionId}", h.DeleteTransactionsTransactionId)

	api.Post("/imports/tires", h.PostImportsTires)
	api.Post("/imports/vehicles", h.PostImportsVehicles)
	api.Get("/imports/templates/{template}", h.GetImportsTemplatesTemplate)

	api.Get("/backup", h.GetBackup)
	api.Post("/backup/restore", h.PostBackupRestore)

	r.Mount("/api", api)
	return r, nil
}
