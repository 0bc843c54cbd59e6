// Package api provides the HTTP REST API and WebSocket server for MedBox Core.
//
// It exposes device presence, the offline event journal, notification
// histories, medication schedules, and outbound device commands to
// caregiver dashboards and mobile apps.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
