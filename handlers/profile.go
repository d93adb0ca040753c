package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"masterboxer.com/kpitter-web/auth"
	"masterboxer.com/kpitter-web/feed"
	"masterboxer.com/kpitter-web/middleware"
	"masterboxer.com/kpitter-web/models"
	"masterboxer.com/kpitter-web/services"
)

// Profile renders /me. The user and the requested page of posts are fetched
// together; if either fails the visitor is sent back to the login form.
func Profile(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := auth.FromContext(r.Context())
		creds := session.Credentials
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
			user, userErr = d.Backend.Me(r.Context(), creds)
		}()
		go func() {
			defer wg.Done()
			posts, postErr = d.Backend.ListPosts(r.Context(), creds, creds.Username, page)
		}()
		wg.Wait()

		if err := errors.Join(userErr, postErr); err != nil {
			log.Printf("[Profile] loading %s failed: %v", creds.Username, err)
			if errors.Is(err, services.ErrUnauthorized) {
				d.Views.DropSession(session.ID)
				if err := d.Sessions.End(r.Context(), w, session); err != nil {
					log.Printf("[Profile] could not end session of %s: %v", creds.Username, err)
				}
			}
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		list := d.Views.List(session.ID, feed.ProfileView)
		list.SetOwner(user)
		list.Replace(posts)

		d.renderProfile(w, r, http.StatusOK, list, d.page(r))
	}
}

// CreatePost publishes a post and shows it at the top of the profile list
// without refetching the page.
func CreatePost(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := auth.FromContext(r.Context())
		ajax := middleware.IsAJAX(r)

		if session == nil {
			if ajax {
				middleware.WriteJSONError(w, http.StatusUnauthorized, d.text(r, KeyLoginToPost))
				return
			}
			data := d.page(r)
			data.Error = data.T(KeyLoginToPost)
			d.render(w, http.StatusUnauthorized, "login.html", data)
			return
		}

		list := d.Views.List(session.ID, feed.ProfileView)
		content := strings.TrimSpace(r.PostFormValue("content"))

		if content == "" {
			d.createPostFailed(w, r, http.StatusBadRequest, KeyEmptyPost, list, content)
			return
		}

		post, err := d.Backend.CreatePost(r.Context(), session.Credentials, content)
		if err != nil {
			log.Printf("[Post] create for %s failed: %v", session.Username(), err)
			d.createPostFailed(w, r, http.StatusBadGateway, KeyPostFailed, list, content)
			return
		}

		if post.Author.Username == "" {
			post.Author = ownerOf(list, session)
		}
		if post.Content == "" {
			post.Content = content
		}
		list.Prepend(post)
		log.Printf("[Post] %s published post %s", session.Username(), post.ID)

		if ajax {
			writeJSON(w, http.StatusCreated, post)
			return
		}
		d.renderProfile(w, r, http.StatusCreated, list, d.page(r))
	}
}

func (d *Deps) createPostFailed(w http.ResponseWriter, r *http.Request, status int, key string, list *feed.List, content string) {
	if middleware.IsAJAX(r) {
		middleware.WriteJSONError(w, status, d.text(r, key))
		return
	}
	data := d.page(r)
	data.Error = data.T(key)
	data.Form.Content = content
	d.renderProfile(w, r, status, list, data)
}

// renderProfile draws the profile from the session's view list.
func (d *Deps) renderProfile(w http.ResponseWriter, r *http.Request, status int, list *feed.List, data TemplateData) {
	data.User = ownerOf(list, data.Session)
	data.Posts = list.Posts()
	data.Pagination = list.Pagination()
	data.ShowPagination = true
	data.CanLike = true
	data.View = feed.ProfileView
	data.Next = "/me?page=" + strconv.Itoa(data.Pagination.Page)
	d.render(w, status, "profile.html", data)
}

func ownerOf(list *feed.List, session *auth.Session) models.User {
	owner := list.Owner()
	if owner.Username == "" {
		owner.Username = session.Username()
	}
	return owner
}
