package inbox

import (
	"github.com/go-chi/chi/v5"

	"github.com/emberapp/ember-backend/internal/app"
)

// Registrar ties the inbox service into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the inbox service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register mounts the notification routes on the router
func (r *Registrar) Register(router chi.Router) {
	service := NewService(r.appCtx)
	router.Get("/api/notifications", service.List)
	router.Put("/api/notifications/{notificationID}/read", service.MarkRead)
}
