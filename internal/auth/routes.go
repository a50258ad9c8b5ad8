package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Post("/signup", SignupHandler)
	r.Post("/login", LoginHandler)
	r.Get("/email-exists", EmailExistsHandler)
	r.Post("/password/reset-lite", PasswordResetLiteHandler)

	return r
}
