package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", SearchHandler)
	r.Get("/details", DetailsHandler)
	r.Get("/options", OptionsHandler)
	r.Get("/recommend", RecommendHandler)
	r.Post("/recommend", RecommendHandler)

	return r
}
