package routes

import (
	"smartentrance/internal/api/registry"
	"smartentrance/internal/api/throttle"
	"smartentrance/internal/apiclient"
	"smartentrance/internal/session"
)

// Dependencies are the shared collaborators the route groups hand to their handlers.
type Dependencies struct {
	Sessions session.Store
	Backend  *apiclient.Client
	Limiter  throttle.Limiter
	Registry *registry.Registry
}
