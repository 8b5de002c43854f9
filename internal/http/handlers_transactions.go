package http

import (
	"encoding/json"
	"net/http"

	"github.com/raiyan37/Centinel/internal/core"
)

type createTransactionRequest struct {
	Name      string       `json:"name" validate:"required,max=100"`
	Amount    *json.Number `json:"amount" validate:"required"`
	Category  string       `json:"category" validate:"required"`
	Date      *core.Date   `json:"date" validate:"required"`
	Recurring bool         `json:"recurring"`
}

func (req createTransactionRequest) toDomain() (core.Transaction, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Name:      sanitizeInput(req.Name),
		Amount:    amount,
		Category:  core.Category(req.Category),
		Date:      *req.Date,
		Recurring: req.Recurring,
	}, nil
}

type updateTransactionRequest struct {
	Name      *string      `json:"name" validate:"omitempty,max=100"`
	Amount    *json.Number `json:"amount"`
	Category  *string      `json:"category"`
	Date      *core.Date   `json:"date"`
	Recurring *bool        `json:"recurring"`
}

func (req updateTransactionRequest) toPatch() (core.TransactionPatch, error) {
	var patch core.TransactionPatch
	if req.Name != nil {
		name := sanitizeInput(*req.Name)
		patch.Name = &name
	}
	if req.Amount != nil {
		amount, err := parseAmount(req.Amount)
		if err != nil {
			return patch, err
		}
		patch.Amount = &amount
	}
	if req.Category != nil {
		category := core.Category(*req.Category)
		patch.Category = &category
	}
	patch.Date = req.Date
	patch.Recurring = req.Recurring
	return patch, nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	query, err := parseTransactionQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, "list_transactions", err)
		return
	}
	page, err := s.services.Transactions.List(r.Context(), query)
	if err != nil {
		s.writeError(w, r, "list_transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.services.Transactions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, "get_transaction", err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, "create_transaction", err)
		return
	}
	t, err := req.toDomain()
	if err != nil {
		s.writeError(w, r, "create_transaction", err)
		return
	}

	created, err := s.services.Transactions.Create(r.Context(), t)
	if err != nil {
		s.writeError(w, r, "create_transaction", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req updateTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, "update_transaction", err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		s.writeError(w, r, "update_transaction", err)
		return
	}

	updated, err := s.services.Transactions.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.writeError(w, r, "update_transaction", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.services.Transactions.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, "delete_transaction", err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{ID: id, Deleted: true})
}
