package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tirestock-platform/api/internal/audit"
	"github.com/tirestock-platform/api/internal/httpx"
	"github.com/tirestock-platform/api/internal/importer"
)

type appError struct {
	Status  int
	Code    string
	Message string
	Details any
}

// importTemplates are the blank workbooks handed to operators. Headers match
// the aliases the column mapper resolves, so a filled template round-trips.
var importTemplates = map[string]string{
	"tires": "Nomor Seri,Merk,Ukuran,Kondisi,Tanggal Masuk (YYYY-MM-DD)\n" +
		"SN-001234,Bridgestone,BAN TMD 97 11.00,Baru,2026-01-08\n",
	"vehicles": "Plat Nomor,Tipe,Departemen,Supir\n" +
		"B 9001 XYZ,FAW,RKI,Belum Ada\n",
}

func (s *Server) PostImportsTires(w http.ResponseWriter, r *http.Request) {
	s.runImport(w, r, "tires", func(r *http.Request, sheet *importer.Sheet) (importer.Summary, error) {
		return s.Importer.ImportTires(r.Context(), sheet)
	})
}

func (s *Server) PostImportsVehicles(w http.ResponseWriter, r *http.Request) {
	s.runImport(w, r, "vehicles", func(r *http.Request, sheet *importer.Sheet) (importer.Summary, error) {
		return s.Importer.ImportVehicles(r.Context(), sheet)
	})
}

type importRunFunc func(r *http.Request, sheet *importer.Sheet) (importer.Summary, error)

func (s *Server) runImport(w http.ResponseWriter, r *http.Request, kind string, run importRunFunc) {
	filename, data, appErr := parseImportUpload(r, s.Config.ImportMaxFileBytes)
	if appErr != nil {
		httpx.WriteError(w, r, appErr.Status, appErr.Code, appErr.Message, appErr.Details)
		return
	}

	digest := sha256.Sum256(data)
	fileSHA256 := hex.EncodeToString(digest[:])

	s.logAudit(r, audit.Entry{
		Action:     "import.started",
		EntityType: "import",
		Metadata: map[string]any{
			"kind":       kind,
			"filename":   filename,
			"fileSha256": fileSHA256,
		},
	})

	sheet, err := importer.ReadSheet(filename, data, s.Config.ImportMaxRows)
	if err != nil {
		writeSheetError(w, r, err, s.Config.ImportMaxRows)
		return
	}

	summary, err := run(r, sheet)
	if err != nil {
		s.writeStoreError(w, r, err, "import")
		return
	}

	s.logAudit(r, audit.Entry{
		Action:     "import.completed",
		EntityType: "import",
		Metadata: map[string]any{
			"kind":         kind,
			"filename":     filename,
			"fileSha256":   fileSHA256,
			"successCount": summary.SuccessCount,
			"failCount":    summary.FailCount,
		},
	})

	// Listener notifications arrive eventually; refreshing here makes the
	// new rows visible to subscribers before the response lands.
	s.Hub.RefreshAll(r.Context())

	httpx.WriteJSON(w, http.StatusOK, summary)
}

func writeSheetError(w http.ResponseWriter, r *http.Request, err error, maxRows int) {
	switch {
	case errors.Is(err, importer.ErrEmptyFile):
		httpx.WriteError(w, r, http.StatusBadRequest, "empty_file", "Uploaded file has no data rows", nil)
	case errors.Is(err, importer.ErrTooManyRows):
		httpx.WriteError(w, r, http.StatusBadRequest, "row_limit_exceeded",
			"Uploaded file exceeds the row limit", map[string]any{"maxRows": maxRows})
	case errors.Is(err, importer.ErrUnsupportedFile):
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_file_type", "Only .csv and .xlsx uploads are supported", nil)
	default:
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_file", "Failed to parse uploaded file", nil)
	}
}

func parseImportUpload(r *http.Request, maxFileBytes int64) (string, []byte, *appError) {
	if !strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data") {
		return "", nil, &appError{
			Status:  http.StatusBadRequest,
			Code:    "invalid_content_type",
			Message: "Content-Type must be multipart/form-data",
		}
	}

	if err := r.ParseMultipartForm(maxFileBytes); err != nil {
		return "", nil, &appError{
			Status:  http.StatusBadRequest,
			Code:    "invalid_multipart",
			Message: "Failed to parse multipart form",
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, &appError{
			Status:  http.StatusBadRequest,
			Code:    "missing_file",
			Message: "file is required",
		}
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxFileBytes+1))
	if err != nil {
		return "", nil, &appError{
			Status:  http.StatusBadRequest,
			Code:    "invalid_file",
			Message: "Failed to read uploaded file",
		}
	}
	if int64(len(data)) > maxFileBytes {
		return "", nil, &appError{
			Status:  http.StatusRequestEntityTooLarge,
			Code:    "file_too_large",
			Message: "Uploaded file exceeds the size limit",
			Details: map[string]any{"maxBytes": maxFileBytes},
		}
	}

	return header.Filename, data, nil
}

func (s *Server) GetImportsTemplatesTemplate(w http.ResponseWriter, r *http.Request) {
	normalized := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "template")))
	content, ok := importTemplates[normalized]
	if !ok {
		httpx.WriteError(w, r, http.StatusNotFound, "template_not_found", "Import template not found", nil)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s-template.csv\"", normalized))
	_, _ = w.Write([]byte(content))
}
