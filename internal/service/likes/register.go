package likes

import (
	"github.com/go-chi/chi/v5"

	"github.com/emberapp/ember-backend/internal/app"
)

// Registrar ties the likes service into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the likes service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register mounts the likes routes on the router
func (r *Registrar) Register(router chi.Router) {
	service := NewService(r.appCtx)
	router.Get("/api/likes/received", service.ListReceived)
	router.Get("/api/likes/count", service.CountReceived)
}
