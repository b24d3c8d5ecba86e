package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/emberapp/ember-backend/internal/config"
)

// StartHTTPServer boots the HTTP server and mounts all provided services
func StartHTTPServer(cfg *config.Config, registrars ...Registrar) error {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-User-ID"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	// every API route runs behind the identity middleware
	r.Group(func(api chi.Router) {
		api.Use(RequireUser)
		for _, reg := range registrars {
			reg.Register(api)
		}
	})

	addr := fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port)
	return http.ListenAndServe(addr, r)
}
