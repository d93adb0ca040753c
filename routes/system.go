package routes

import (
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"masterboxer.com/kpitter-web/handlers"
	"masterboxer.com/kpitter-web/middleware"
)

func CreateSystemRoutes(d *handlers.Deps, static fs.FS, registry *prometheus.Registry, router *mux.Router) *mux.Router {
	router.HandleFunc("/", handlers.Index(d)).Methods("GET")
	router.HandleFunc("/healthz", handlers.Healthz).Methods("GET")
	router.HandleFunc("/lang/{lang}", handlers.SetLanguage(d)).Methods("GET")
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})).Methods("GET")
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(static)))).Methods("GET")

	router.NotFoundHandler = http.HandlerFunc(d.Render404)

	return router
}

// NewRouter wires every page route on a fresh router.
func NewRouter(d *handlers.Deps, limiter *middleware.RateLimiter, static fs.FS, registry *prometheus.Registry) *mux.Router {
	router := mux.NewRouter()
	CreateAuthRoutes(d, limiter, router)
	CreateUserRoutes(d, router)
	CreatePostRoutes(d, router)
	CreateSystemRoutes(d, static, registry, router)
	return router
}
