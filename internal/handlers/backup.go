package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tirestock-platform/api/internal/audit"
	"github.com/tirestock-platform/api/internal/httpx"
)

// GetBackup serves a full JSON snapshot of the three collections as a
// downloadable file.
func (s *Server) GetBackup(w http.ResponseWriter, r *http.Request) {
	doc, err := s.Backup.Create(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err, "backup")
		return
	}

	s.logAudit(r, audit.Entry{
		Action:     "backup.created",
		EntityType: "backup",
		Metadata: map[string]any{
			"tires":        len(doc.Tires),
			"transactions": len(doc.Transactions),
			"vehicles":     len(doc.Vehicles),
		},
	})

	filename := fmt.Sprintf("tirestock-backup-%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	httpx.WriteJSON(w, http.StatusOK, doc)
}

// PostBackupRestore merges a previously exported snapshot back in. The
// result is a boolean; a malformed document reports false rather than an
// error envelope so callers can treat restore as a single yes or no.
func (s *Server) PostBackupRestore(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Failed to read request body", nil)
		return
	}

	restored := s.Backup.Restore(r.Context(), data)

	s.logAudit(r, audit.Entry{
		Action:     "backup.restored",
		EntityType: "backup",
		Metadata:   map[string]any{"restored": restored, "bytes": len(data)},
	})

	if restored {
		s.Hub.RefreshAll(r.Context())
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"restored": restored})
}
