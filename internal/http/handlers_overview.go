package http

import (
	"net/http"

	"github.com/raiyan37/Centinel/internal/core"
)

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := s.services.Overview.Get(r.Context())
	if err != nil {
		s.writeError(w, r, "get_overview", err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

func (s *Server) handleRecurringBills(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sortBy, err := core.ParseSortOption(q.Get("sort"))
	if err != nil {
		s.writeError(w, r, "list_recurring_bills", err)
		return
	}

	bills, err := s.services.Bills.List(r.Context(), sanitizeInput(q.Get("search")), sortBy)
	if err != nil {
		s.writeError(w, r, "list_recurring_bills", err)
		return
	}
	writeJSON(w, http.StatusOK, bills)
}
