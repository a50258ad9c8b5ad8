package prefs

import (
	"net/http"

	"github.com/Solairith/SC2006-app-creation/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(sessionFetcher middleware.SessionFetcher) http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Get("/", GetHandler)
		r.Put("/", PutHandler)
	})

	return r
}
