// Package achievement implements the course achievement registry: an
// append-only sequence of issuance records with point verification and
// per-user listing.
package achievement

import (
	"log/slog"

	"laurel/internal/achievement/handler"
	"laurel/internal/achievement/service"
	"laurel/internal/achievement/store"
)

// Service exposes registry issuance and lookups.
type Service = service.Service

// Handler wires HTTP endpoints to the registry service.
type Handler = handler.Handler

// Store is the injected host-storage interface.
type Store = store.Store

// NewService constructs the registry service with required dependencies.
func NewService(st store.Store, opts ...service.Option) (*Service, error) {
	return service.New(st, opts...)
}

// NewHandler constructs an HTTP handler for the registry routes.
func NewHandler(s *Service, logger *slog.Logger, opts ...handler.Option) *Handler {
	return handler.New(s, logger, opts...)
}
