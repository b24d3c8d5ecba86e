package discover

import (
	"github.com/go-chi/chi/v5"

	"github.com/emberapp/ember-backend/internal/app"
)

// Registrar ties the discover service into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the discover service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register mounts the feed route on the router
func (r *Registrar) Register(router chi.Router) {
	service := NewService(r.appCtx)
	router.Get("/api/feed", service.GetFeed)
}
