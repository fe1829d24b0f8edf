package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/erazemk/izposoja/internal/cover"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/rental"
	"github.com/erazemk/izposoja/internal/store"
)

// ItemsHandler handles catalog endpoints.
type ItemsHandler struct {
	Items       *store.Items
	Coordinator *rental.Coordinator
}

type itemRequest struct {
	Title  string `json:"title" validate:"required,max=300"`
	Author string `json:"author" validate:"max=200"`
	ISBN   string `json:"isbn" validate:"max=20"`
	Genre  string `json:"genre" validate:"max=100"`
}

// List handles GET /api/items. ?available=true limits the list to items that
// can be rented now, ?title= and ?genre= search the catalog.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	title := strings.TrimSpace(q.Get("title"))
	genre := strings.TrimSpace(q.Get("genre"))
	available := q.Get("available") == "true"

	match := func(item *model.Item) bool {
		if available && !item.Available() {
			return false
		}
		return item.Matches(title, genre)
	}

	items, err := h.Items.QueryAll(r.Context(), match)
	if err != nil {
		writeError(w, err, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	item := &model.Item{
		Title:  strings.TrimSpace(req.Title),
		Author: strings.TrimSpace(req.Author),
		ISBN:   strings.TrimSpace(req.ISBN),
		Genre:  strings.TrimSpace(req.Genre),
	}
	if _, err := h.Items.Add(r.Context(), item); err != nil {
		writeError(w, err, "failed to create item")
		return
	}

	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, ok := h.activeItem(w, r, id)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}. Availability is left to rentals.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, ok := h.activeItem(w, r, id); !ok {
		return
	}

	err := h.Items.UpdateDetails(r.Context(), id,
		strings.TrimSpace(req.Title), strings.TrimSpace(req.Author),
		strings.TrimSpace(req.ISBN), strings.TrimSpace(req.Genre))
	if err != nil {
		writeError(w, err, "failed to update item")
		return
	}

	item, ok := h.activeItem(w, r, id)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}. Checked out items cannot be deleted.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := h.Coordinator.RemoveItem(r.Context(), id); err != nil {
		writeError(w, err, "failed to delete item")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// UploadCover handles PUT /api/items/{id}/cover. The body is the raw image.
func (h *ItemsHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if _, ok := h.activeItem(w, r, id); !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, cover.MaxUploadBytes)
	defer r.Body.Close()

	c, err := cover.Normalize(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			err = cover.ErrTooLarge
		}
		writeError(w, err, "failed to process cover")
		return
	}

	if err := h.Items.SetCover(r.Context(), id, c.Data, c.MIME); err != nil {
		writeError(w, err, "failed to save cover")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{"width": c.Width, "height": c.Height})
}

// GetCover handles GET /api/items/{id}/cover.
func (h *ItemsHandler) GetCover(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	data, mime, err := h.Items.GetCover(r.Context(), id)
	if err != nil {
		writeError(w, err, "failed to get cover")
		return
	}
	if len(data) == 0 {
		jsonError(w, http.StatusNotFound, "no cover")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// WaitingList handles GET /api/items/{id}/waiting-list.
func (h *ItemsHandler) WaitingList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	entries, err := h.Coordinator.WaitingList(r.Context(), id)
	if err != nil {
		writeError(w, err, "failed to list waiting list")
		return
	}
	if entries == nil {
		entries = []model.WaitingListEntry{}
	}
	jsonResponse(w, http.StatusOK, entries)
}

func (h *ItemsHandler) activeItem(w http.ResponseWriter, r *http.Request, id int64) (*model.Item, bool) {
	item, err := h.Items.Get(r.Context(), id)
	if err != nil {
		writeError(w, err, "failed to get item")
		return nil, false
	}
	if item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return nil, false
	}
	return item, true
}
