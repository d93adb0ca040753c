package routes

import (
	"github.com/gorilla/mux"
	"masterboxer.com/kpitter-web/handlers"
	"masterboxer.com/kpitter-web/middleware"
)

func CreateAuthRoutes(d *handlers.Deps, limiter *middleware.RateLimiter, router *mux.Router) *mux.Router {
	router.HandleFunc("/login", handlers.LoginForm(d)).Methods("GET")
	router.Handle("/login", limiter.Middleware(handlers.Login(d))).Methods("POST")
	router.HandleFunc("/register", handlers.RegisterForm(d)).Methods("GET")
	router.Handle("/register", limiter.Middleware(handlers.Register(d))).Methods("POST")
	router.HandleFunc("/logout", handlers.Logout(d)).Methods("POST")

	return router
}
