package routes

import (
	"github.com/gorilla/mux"
	"masterboxer.com/kpitter-web/handlers"
	"masterboxer.com/kpitter-web/middleware"
)

func CreatePostRoutes(d *handlers.Deps, router *mux.Router) *mux.Router {
	router.HandleFunc("/users/{username}/posts/{post_id}", handlers.PostPage(d)).Methods("GET")
	router.Handle("/users/{username}/posts/{post_id}/like", middleware.RequireSession(handlers.Like(d))).Methods("POST", "PUT", "DELETE")

	return router
}
