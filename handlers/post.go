package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"masterboxer.com/kpitter-web/auth"
	"masterboxer.com/kpitter-web/feed"
	"masterboxer.com/kpitter-web/models"
	"masterboxer.com/kpitter-web/services"
)

func PostPage(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		username := vars["username"]
		id := models.PostID(vars["post_id"])
		session := auth.FromContext(r.Context())

		data := d.page(r)
		data.User = models.User{Username: username}

		post, err := d.Backend.GetPost(r.Context(), auth.CredentialsFrom(r.Context()), username, id)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				data.Error = data.T(KeyPostNotFound)
				d.render(w, http.StatusNotFound, "post.html", data)
				return
			}
			log.Printf("[Post] loading %s/%s failed: %v", username, id, err)
			data.Error = data.T(KeyPostLoadFailed)
			d.render(w, http.StatusBadGateway, "post.html", data)
			return
		}

		if session != nil {
			view := feed.PostView(username, id.String())
			list := d.Views.List(session.ID, view)
			list.Replace(models.PostPage{Posts: []models.Post{post}, Page: 1, TotalPages: 1})
			data.CanLike = true
			data.View = view
		}

		data.Post = post
		data.Next = r.URL.RequestURI()
		d.render(w, http.StatusOK, "post.html", data)
	}
}
