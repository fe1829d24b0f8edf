package api

import (
	"net/http"
	"strings"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/rental"
	"github.com/erazemk/izposoja/internal/store"
)

// UsersHandler handles requester endpoints.
type UsersHandler struct {
	Users       *store.Users
	Coordinator *rental.Coordinator
}

type createUserRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,max=320"`
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.QueryAll(r.Context(), nil)
	if err != nil {
		writeError(w, err, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if err := model.ValidateEmail(req.Email); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	user := &model.User{Name: strings.TrimSpace(req.Name), Email: req.Email}
	if _, err := h.Users.Add(r.Context(), user); err != nil {
		writeError(w, err, "failed to create user")
		return
	}

	jsonResponse(w, http.StatusCreated, user)
}

// Get handles GET /api/users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.Users.Get(r.Context(), id)
	if err != nil {
		writeError(w, err, "failed to get user")
		return
	}
	if user == nil || user.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	jsonResponse(w, http.StatusOK, user)
}

// Delete handles DELETE /api/users/{id}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.Users.Get(r.Context(), id)
	if err != nil {
		writeError(w, err, "failed to get user")
		return
	}
	if user == nil || user.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := h.Users.Delete(r.Context(), id); err != nil {
		writeError(w, err, "failed to delete user")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// Rentals handles GET /api/users/{id}/rentals.
func (h *UsersHandler) Rentals(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	rentals, err := h.Coordinator.RentalHistory(r.Context(), id)
	if err != nil {
		writeError(w, err, "failed to list rentals")
		return
	}
	if rentals == nil {
		rentals = []model.Rental{}
	}
	jsonResponse(w, http.StatusOK, rentals)
}
