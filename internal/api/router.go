package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/me", s.handleMe)

			// Device presence and per-device resources
			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleListDevices)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetDevice)
					r.Put("/offline-mode", s.handleSetOfflineMode)

					// Offline event journal
					r.Route("/events", func(r chi.Router) {
						r.Get("/", s.handleListDeviceEvents)
						r.Get("/unprocessed", s.handleListUnprocessedEvents)
						r.Post("/process-all", s.handleMarkAllProcessed)
						r.Delete("/", s.handlePurgeDeviceEvents)
					})

					// Medication schedules
					r.Route("/medicines", func(r chi.Router) {
						r.Get("/", s.handleListMedicines)
						r.Post("/", s.handleCreateMedicine)
					})

					// Outbound commands
					r.Post("/sync", s.handleSyncMedicines)
					r.Post("/command", s.handleSendCommand)
				})
			})

			// Journal operations not scoped to a single device
			r.Route("/events", func(r chi.Router) {
				r.Get("/unprocessed", s.handleListAllUnprocessed)
				r.Post("/{eventID}/process", s.handleMarkProcessed)
			})

			// Medicine records addressed by their own ID
			r.Route("/medicines/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetMedicine)
				r.Put("/", s.handleUpdateMedicine)
				r.Delete("/", s.handleDeleteMedicine)
			})

			// Notification histories
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", s.handleNotificationHistory)
				r.Post("/test", s.handleTestNotification)
				r.Post("/{id}/read", s.handleMarkNotificationRead)
				r.Delete("/", s.handleClearNotifications)
			})

			// Fleet-wide broadcast (admin only)
			r.With(s.requireAdmin).Post("/broadcast", s.handleBroadcast)

			// User management (admin only)
			r.Route("/users", func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Post("/", s.handleCreateUser)
			})

			// WebSocket (token validated in middleware or query parameter)
			r.Get("/ws", s.handleWebSocket)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
