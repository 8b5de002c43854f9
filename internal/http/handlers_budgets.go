package http

import (
	"encoding/json"
	"net/http"

	"github.com/raiyan37/Centinel/internal/core"
)

type createBudgetRequest struct {
	Category string       `json:"category" validate:"required"`
	Maximum  *json.Number `json:"maximum" validate:"required"`
	Theme    string       `json:"theme" validate:"required"`
}

type updateBudgetRequest struct {
	Category *string      `json:"category"`
	Maximum  *json.Number `json:"maximum"`
	Theme    *string      `json:"theme"`
}

func (req updateBudgetRequest) toPatch() (core.BudgetPatch, error) {
	var patch core.BudgetPatch
	if req.Category != nil {
		category := core.Category(*req.Category)
		patch.Category = &category
	}
	if req.Maximum != nil {
		maximum, err := parseAmount(req.Maximum)
		if err != nil {
			return patch, err
		}
		patch.Maximum = &maximum
	}
	if req.Theme != nil {
		theme := core.Theme(*req.Theme)
		patch.Theme = &theme
	}
	return patch, nil
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.services.Budgets.List(r.Context())
	if err != nil {
		s.writeError(w, r, "list_budgets", err)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	budget, err := s.services.Budgets.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, "get_budget", err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req createBudgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, "create_budget", err)
		return
	}
	maximum, err := parseAmount(req.Maximum)
	if err != nil {
		s.writeError(w, r, "create_budget", err)
		return
	}

	created, err := s.services.Budgets.Create(r.Context(), core.Budget{
		Category: core.Category(req.Category),
		Maximum:  maximum,
		Theme:    core.Theme(req.Theme),
	})
	if err != nil {
		s.writeError(w, r, "create_budget", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var req updateBudgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, "update_budget", err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		s.writeError(w, r, "update_budget", err)
		return
	}

	updated, err := s.services.Budgets.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.writeError(w, r, "update_budget", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.services.Budgets.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, "delete_budget", err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{ID: id, Deleted: true})
}
