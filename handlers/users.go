package handlers

import (
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"masterboxer.com/kpitter-web/auth"
	"masterboxer.com/kpitter-web/feed"
	"masterboxer.com/kpitter-web/models"
	"masterboxer.com/kpitter-web/services"
)

// UserPage renders /users/{username}. Anonymous visitors see the newest
// posts only, without pagination; logged-in visitors page through them and
// can like.
func UserPage(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := mux.Vars(r)["username"]
		session := auth.FromContext(r.Context())
		creds := auth.CredentialsFrom(r.Context())
		page := pageParam(r)

		var (
			wg      sync.WaitGroup
			user    models.User
			posts   models.PostPage
			userErr error
			postErr error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			user, userErr = d.Backend.GetUser(r.Context(), username)
		}()
		go func() {
			defer wg.Done()
			posts, postErr = d.Backend.ListPosts(r.Context(), creds, username, page)
		}()
		wg.Wait()

		data := d.page(r)
		if err := errors.Join(userErr, postErr); err != nil {
			status := http.StatusBadGateway
			if errors.Is(err, services.ErrNotFound) {
				status = http.StatusNotFound
			} else {
				log.Printf("[User] loading %s failed: %v", username, err)
			}
			data.Error = data.T(KeyUserLoadFailed)
			d.render(w, status, "user.html", data)
			return
		}

		data.User = user
		data.Next = r.URL.RequestURI()

		if session == nil {
			data.Posts = posts.Posts
			data.LoginPrompt = len(posts.Posts) > 0 && len(posts.Posts) <= services.AnonymousPostLimit
			d.render(w, http.StatusOK, "user.html", data)
			return
		}

		list := d.Views.List(session.ID, feed.UserView(username))
		list.SetOwner(user)
		list.Replace(posts)

		data.Posts = list.Posts()
		data.Pagination = list.Pagination()
		data.ShowPagination = true
		data.CanLike = true
		data.View = feed.UserView(username)
		d.render(w, http.StatusOK, "user.html", data)
	}
}
