package api

import (
	"net/http"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/rental"
)

// RentalsHandler handles rent, return, extension and waiting list endpoints.
type RentalsHandler struct {
	Coordinator *rental.Coordinator
}

type rentRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
	ItemID int64 `json:"item_id" validate:"required,gt=0"`
}

type extendRequest struct {
	Days int `json:"days" validate:"gt=0,lte=365"`
}

// Rent handles POST /api/rentals. A rented item answers 201, a queued
// request 202.
func (h *RentalsHandler) Rent(w http.ResponseWriter, r *http.Request) {
	var req rentRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.Coordinator.Rent(r.Context(), req.UserID, req.ItemID)
	if err != nil {
		writeError(w, err, "failed to rent item")
		return
	}

	status := http.StatusCreated
	if res.Outcome == rental.OutcomeQueued {
		status = http.StatusAccepted
	}
	jsonResponse(w, status, res)
}

// Return handles POST /api/rentals/{id}/return.
func (h *RentalsHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid rental id")
		return
	}

	returned, err := h.Coordinator.ReturnItem(r.Context(), id)
	if err != nil {
		writeError(w, err, "failed to return item")
		return
	}
	jsonResponse(w, http.StatusOK, returned)
}

// Extend handles POST /api/rentals/{id}/extend.
func (h *RentalsHandler) Extend(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid rental id")
		return
	}

	var req extendRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	extended, err := h.Coordinator.ExtendDueDate(r.Context(), id, req.Days)
	if err != nil {
		writeError(w, err, "failed to extend rental")
		return
	}
	jsonResponse(w, http.StatusOK, extended)
}

// Overdue handles GET /api/rentals/overdue.
func (h *RentalsHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.Coordinator.OverdueRentals(r.Context())
	if err != nil {
		writeError(w, err, "failed to list overdue rentals")
		return
	}
	if rentals == nil {
		rentals = []model.Rental{}
	}
	jsonResponse(w, http.StatusOK, rentals)
}

// JoinWaitingList handles POST /api/waiting-list.
func (h *RentalsHandler) JoinWaitingList(w http.ResponseWriter, r *http.Request) {
	var req rentRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.Coordinator.JoinWaitingList(r.Context(), req.UserID, req.ItemID)
	if err != nil {
		writeError(w, err, "failed to join waiting list")
		return
	}
	jsonResponse(w, http.StatusCreated, entry)
}
