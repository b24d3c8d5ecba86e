package swipe

import (
	"github.com/go-chi/chi/v5"

	"github.com/emberapp/ember-backend/internal/app"
	"github.com/emberapp/ember-backend/internal/notify"
)

// Registrar ties the swipe service into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
	sink   notify.Sink
}

// NewRegistrar creates a new Registrar for the swipe service
func NewRegistrar(appCtx *app.AppContext, sink notify.Sink) *Registrar {
	return &Registrar{appCtx: appCtx, sink: sink}
}

// Register mounts the swipe routes on the router
func (r *Registrar) Register(router chi.Router) {
	service := NewService(r.appCtx, r.sink)
	router.Post("/api/interactions", service.PutInteraction)
	router.Delete("/api/interactions/{userID}", service.DeleteInteraction)
	router.Get("/api/matches", service.ListMatches)
}
