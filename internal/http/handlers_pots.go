package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/raiyan37/Centinel/internal/core"
)

type createPotRequest struct {
	Name   string       `json:"name" validate:"required,max=30"`
	Target *json.Number `json:"target" validate:"required"`
	Theme  string       `json:"theme" validate:"required"`
}

type updatePotRequest struct {
	Name   *string      `json:"name" validate:"omitempty,max=30"`
	Target *json.Number `json:"target"`
	Theme  *string      `json:"theme"`
}

func (req updatePotRequest) toPatch() (core.PotPatch, error) {
	var patch core.PotPatch
	if req.Name != nil {
		name := sanitizeInput(*req.Name)
		patch.Name = &name
	}
	if req.Target != nil {
		target, err := parseAmount(req.Target)
		if err != nil {
			return patch, err
		}
		patch.Target = &target
	}
	if req.Theme != nil {
		theme := core.Theme(*req.Theme)
		patch.Theme = &theme
	}
	return patch, nil
}

type transferRequest struct {
	Amount *json.Number `json:"amount" validate:"required"`
}

func (s *Server) handleListPots(w http.ResponseWriter, r *http.Request) {
	pots, err := s.services.Pots.List(r.Context())
	if err != nil {
		s.writeError(w, r, "list_pots", err)
		return
	}
	writeJSON(w, http.StatusOK, pots)
}

func (s *Server) handleGetPot(w http.ResponseWriter, r *http.Request) {
	pot, err := s.services.Pots.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, "get_pot", err)
		return
	}
	writeJSON(w, http.StatusOK, pot)
}

func (s *Server) handleCreatePot(w http.ResponseWriter, r *http.Request) {
	var req createPotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, "create_pot", err)
		return
	}
	target, err := parseAmount(req.Target)
	if err != nil {
		s.writeError(w, r, "create_pot", err)
		return
	}

	created, err := s.services.Pots.Create(r.Context(), core.Pot{
		Name:   sanitizeInput(req.Name),
		Target: target,
		Theme:  core.Theme(req.Theme),
	})
	if err != nil {
		s.writeError(w, r, "create_pot", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdatePot(w http.ResponseWriter, r *http.Request) {
	var req updatePotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, "update_pot", err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		s.writeError(w, r, "update_pot", err)
		return
	}

	updated, err := s.services.Pots.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.writeError(w, r, "update_pot", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleDeletePot returns the pot's funds to the balance before deleting it.
func (s *Server) handleDeletePot(w http.ResponseWriter, r *http.Request) {
	result, err := s.services.Pots.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, "delete_pot", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	s.handleTransfer(w, r, "deposit", s.services.Pots.Deposit)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	s.handleTransfer(w, r, "withdraw", s.services.Pots.Withdraw)
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request, operation string,
	transfer func(ctx context.Context, id string, amount decimal.Decimal) (core.TransferResult, error)) {
	var req transferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, operation, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		s.writeError(w, r, operation, err)
		return
	}

	result, err := transfer(r.Context(), r.PathValue("id"), amount)
	if err != nil {
		s.writeError(w, r, operation, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
