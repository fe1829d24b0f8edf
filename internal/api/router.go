package api

import (
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/izposoja/internal/rental"
	"github.com/erazemk/izposoja/internal/store"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sqlx.DB, coord *rental.Coordinator, sweep *rental.Sweep) http.Handler {
	mux := http.NewServeMux()

	usersHandler := &UsersHandler{Users: store.NewUsers(db), Coordinator: coord}
	itemsHandler := &ItemsHandler{Items: store.NewItems(db), Coordinator: coord}
	rentalsHandler := &RentalsHandler{Coordinator: coord}
	adminHandler := &AdminHandler{Journal: store.NewNotifications(db), Sweep: sweep}

	mux.HandleFunc("GET /api/health", adminHandler.Health)

	// Users.
	mux.HandleFunc("GET /api/users", usersHandler.List)
	mux.HandleFunc("POST /api/users", usersHandler.Create)
	mux.HandleFunc("GET /api/users/{id}", usersHandler.Get)
	mux.HandleFunc("DELETE /api/users/{id}", usersHandler.Delete)
	mux.HandleFunc("GET /api/users/{id}/rentals", usersHandler.Rentals)

	// Items.
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("POST /api/items", itemsHandler.Create)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.HandleFunc("PUT /api/items/{id}", itemsHandler.Update)
	mux.HandleFunc("DELETE /api/items/{id}", itemsHandler.Delete)
	mux.HandleFunc("PUT /api/items/{id}/cover", itemsHandler.UploadCover)
	mux.HandleFunc("GET /api/items/{id}/cover", itemsHandler.GetCover)
	mux.HandleFunc("GET /api/items/{id}/waiting-list", itemsHandler.WaitingList)

	// Rentals and waiting list.
	mux.HandleFunc("POST /api/rentals", rentalsHandler.Rent)
	mux.HandleFunc("POST /api/rentals/{id}/return", rentalsHandler.Return)
	mux.HandleFunc("POST /api/rentals/{id}/extend", rentalsHandler.Extend)
	mux.HandleFunc("GET /api/rentals/overdue", rentalsHandler.Overdue)
	mux.HandleFunc("POST /api/waiting-list", rentalsHandler.JoinWaitingList)

	// Notifications and sweep.
	mux.HandleFunc("GET /api/notifications", adminHandler.Notifications)
	mux.HandleFunc("POST /api/sweep", adminHandler.RunSweep)

	return LoggingMiddleware(mux)
}
