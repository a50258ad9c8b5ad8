package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/Solairith/SC2006-app-creation/internal/auth"
	"github.com/Solairith/SC2006-app-creation/internal/catalog"
	"github.com/Solairith/SC2006-app-creation/internal/db"
	"github.com/Solairith/SC2006-app-creation/internal/geo"
	"github.com/Solairith/SC2006-app-creation/internal/middleware"
	"github.com/Solairith/SC2006-app-creation/internal/prefs"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Backend is running!")
}

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	auth.Init()
	prefs.Init()
	geo.Init()
	catalog.Init()

	sessionFetcher := auth.SessionInfo{}

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)

	r.Route("/api", func(api chi.Router) {
		api.Mount("/auth", auth.SetupRoutes())
		api.Post("/logout", auth.LogoutHandler)
		api.Get("/me", auth.MeHandler)
		api.Mount("/preferences", prefs.SetupRoutes(sessionFetcher))
		api.Mount("/schools", catalog.SetupRoutes())
	})

	fmt.Println("Server listening on port :" + port + "...")

	http.ListenAndServe("0.0.0.0:"+port, r)
}
