package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tirestock-platform/api/internal/audit"
	"github.com/tirestock-platform/api/internal/httpx"
)

func (s *Server) GetTransactions(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Store.ListTransactions(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err, "transaction")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, entries)
}

// DeleteTransactionsTransactionId removes a ledger entry only. The tire it
// described keeps whatever state the movement left it in.
func (s *Server) DeleteTransactionsTransactionId(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "transactionId")
	if err := s.Store.DeleteTransaction(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err, "transaction")
		return
	}
	s.logAudit(r, audit.Entry{Action: "transactions.delete", EntityType: "transaction", EntityID: id})
	w.WriteHeader(http.StatusNoContent)
}
