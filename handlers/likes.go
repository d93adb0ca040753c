package handlers

import (
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"masterboxer.com/kpitter-web/auth"
	"masterboxer.com/kpitter-web/feed"
	"masterboxer.com/kpitter-web/middleware"
	"masterboxer.com/kpitter-web/models"
	"masterboxer.com/kpitter-web/services"
)

type likeResponse struct {
	Post  *models.Post `json:"post,omitempty"`
	Error string       `json:"error,omitempty"`
}

// Like handles POST/PUT (like) and DELETE (unlike). The view list is updated
// before the backend is asked; the response reports the reconciled state.
func Like(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		username := vars["username"]
		id := models.PostID(vars["post_id"])
		session := auth.FromContext(r.Context())
		liked := r.Method != http.MethodDelete
		ajax := middleware.IsAJAX(r)
		next := localPath(r.PostFormValue("next"), "/users/"+url.PathEscape(username)+"/posts/"+url.PathEscape(id.String()))

		list, err := d.likeTarget(r, session, username, id)
		if err != nil {
			key := KeyLikeFailed
			status := http.StatusBadGateway
			if errors.Is(err, services.ErrNotFound) {
				key, status = KeyPostNotFound, http.StatusNotFound
			}
			log.Printf("[Like] %s/%s for %s: %v", username, id, session.Username(), err)
			d.likeFailed(w, r, session, status, key, nil, next)
			return
		}

		_, done, err := d.Liker.Set(r.Context(), list, session.Credentials, username, id, liked)
		if err != nil {
			log.Printf("[Like] %s/%s for %s: %v", username, id, session.Username(), err)
			d.likeFailed(w, r, session, http.StatusBadRequest, KeyLikeFailed, nil, next)
			return
		}

		var outcome feed.Outcome
		select {
		case outcome = <-done:
		case <-r.Context().Done():
			return
		}

		if outcome.Err != nil {
			d.likeFailed(w, r, session, http.StatusBadGateway, KeyLikeFailed, &outcome.Post, next)
			return
		}

		if ajax {
			writeJSON(w, http.StatusOK, likeResponse{Post: &outcome.Post})
			return
		}
		http.Redirect(w, r, next, http.StatusSeeOther)
	}
}

// likeTarget finds the view list holding the post. A post outside every
// known view is loaded on its own.
func (d *Deps) likeTarget(r *http.Request, session *auth.Session, username string, id models.PostID) (*feed.List, error) {
	if view := r.PostFormValue("view"); view != "" {
		if list, ok := d.Views.Lookup(session.ID, view); ok {
			if _, found := list.Find(id); found {
				return list, nil
			}
		}
	}

	post, err := d.Backend.GetPost(r.Context(), session.Credentials, username, id)
	if err != nil {
		return nil, err
	}
	list := d.Views.List(session.ID, feed.PostView(username, id.String()))
	list.Replace(models.PostPage{Posts: []models.Post{post}, Page: 1, TotalPages: 1})
	return list, nil
}

func (d *Deps) likeFailed(w http.ResponseWriter, r *http.Request, session *auth.Session, status int, key string, post *models.Post, next string) {
	message := d.text(r, key)
	if middleware.IsAJAX(r) {
		writeJSON(w, status, likeResponse{Post: post, Error: message})
		return
	}
	d.Sessions.SetFlash(r.Context(), session, message)
	http.Redirect(w, r, next, http.StatusSeeOther)
}
