package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Dashboard routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/companies", handler.GetCompanies).Methods("GET")
	api.HandleFunc("/summary", handler.GetSummary).Methods("GET")
	api.HandleFunc("/kpis", handler.GetKPIs).Methods("GET")
	api.HandleFunc("/watchlist", handler.GetWatchlist).Methods("GET")
	api.HandleFunc("/series/{chart}", handler.GetSeries).Methods("GET")

	return r
}
