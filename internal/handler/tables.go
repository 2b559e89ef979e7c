package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/comanda-pos/terminal/internal/model"
	"github.com/comanda-pos/terminal/internal/pos"
)

// TableHandler serves the floor plan.
type TableHandler struct {
	board *pos.TableBoard
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(board *pos.TableBoard) *TableHandler {
	return &TableHandler{board: board}
}

// RegisterRoutes registers table endpoints on the given Chi router.
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tables", h.List)
	r.Post("/tables/{number}/seat", h.Seat)
	r.Post("/tables/{number}/reserve", h.Reserve)
	r.Post("/tables/{number}/cancel-reservation", h.CancelReservation)
	r.Post("/tables/{number}/release", h.Release)
	r.Post("/tables/{number}/clean", h.MarkClean)
}

type tablesResponse struct {
	Tables []model.Table `json:"tables"`
}

type seatRequest struct {
	OrderID string `json:"order_id,omitempty"`
}

type reserveRequest struct {
	Name string `json:"name"`
}

// List returns the floor plan ordered by table number.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tablesResponse{Tables: h.board.List()})
}

// Seat marks a table occupied.
func (h *TableHandler) Seat(w http.ResponseWriter, r *http.Request) {
	number, ok := tableNumber(w, r)
	if !ok {
		return
	}
	var req seatRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}
	h.respondTransition(w, number, h.board.Seat(number, req.OrderID))
}

// Reserve holds a table under a customer name.
func (h *TableHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	number, ok := tableNumber(w, r)
	if !ok {
		return
	}
	var req reserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	h.respondTransition(w, number, h.board.Reserve(number, req.Name))
}

// CancelReservation frees a reserved table.
func (h *TableHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	number, ok := tableNumber(w, r)
	if !ok {
		return
	}
	h.respondTransition(w, number, h.board.CancelReservation(number))
}

// Release moves an occupied table to cleaning.
func (h *TableHandler) Release(w http.ResponseWriter, r *http.Request) {
	number, ok := tableNumber(w, r)
	if !ok {
		return
	}
	h.respondTransition(w, number, h.board.Release(number))
}

// MarkClean returns a cleaned table to available.
func (h *TableHandler) MarkClean(w http.ResponseWriter, r *http.Request) {
	number, ok := tableNumber(w, r)
	if !ok {
		return
	}
	h.respondTransition(w, number, h.board.MarkClean(number))
}

func (h *TableHandler) respondTransition(w http.ResponseWriter, number int, err error) {
	switch {
	case errors.Is(err, pos.ErrUnknownTable):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
	case errors.Is(err, pos.ErrTableTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	default:
		table, getErr := h.board.Get(number)
		if getErr != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		writeJSON(w, http.StatusOK, table)
	}
}

func tableNumber(w http.ResponseWriter, r *http.Request) (int, bool) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table number"})
		return 0, false
	}
	return number, true
}
