package routes

import (
	"github.com/gorilla/mux"
	"masterboxer.com/kpitter-web/handlers"
	"masterboxer.com/kpitter-web/middleware"
)

func CreateUserRoutes(d *handlers.Deps, router *mux.Router) *mux.Router {
	router.Handle("/me", middleware.RequireSession(handlers.Profile(d))).Methods("GET")
	router.HandleFunc("/me/posts", handlers.CreatePost(d)).Methods("POST")
	router.HandleFunc("/users/{username}", handlers.UserPage(d)).Methods("GET")

	return router
}
