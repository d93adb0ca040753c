package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"masterboxer.com/kpitter-web/auth"
	"masterboxer.com/kpitter-web/feed"
	"masterboxer.com/kpitter-web/models"
)

const languageCookie = "lang"

// Backend is the part of services.Backend the pages use.
type Backend interface {
	Me(ctx context.Context, creds models.Credentials) (models.User, error)
	Register(ctx context.Context, req models.RegisterRequest) (models.User, error)
	GetUser(ctx context.Context, username string) (models.User, error)
	ListPosts(ctx context.Context, creds models.Credentials, username string, page int) (models.PostPage, error)
	CreatePost(ctx context.Context, creds models.Credentials, content string) (models.Post, error)
	GetPost(ctx context.Context, creds models.Credentials, username string, id models.PostID) (models.Post, error)
	LikePost(ctx context.Context, creds models.Credentials, username string, id models.PostID) error
	UnlikePost(ctx context.Context, creds models.Credentials, username string, id models.PostID) error
}

// Deps is everything the page handlers share.
type Deps struct {
	Backend  Backend
	Sessions *auth.Manager
	Views    *feed.Views
	Liker    *feed.Liker
	Renderer *Renderer
	Locale   *Localization
}

type FormData struct {
	Username string
	FullName string
	Content  string
}

// TemplateData holds data passed to HTML templates.
type TemplateData struct {
	Lang           string
	Session        *auth.Session
	Flash          string
	Error          string
	Form           FormData
	User           models.User
	Posts          []models.Post
	Post           models.Post
	Pagination     models.Pagination
	ShowPagination bool
	LoginPrompt    bool
	CanLike        bool
	View           string
	Next           string

	locale *Localization
}

func (d TemplateData) T(key string) string {
	return d.locale.Text(d.Lang, key)
}

// postItem is one post as rendered inside a page.
type postItem struct {
	models.Post
	Owner   string
	CanLike bool
	View    string
	Next    string

	data TemplateData
}

func (i postItem) T(key string) string {
	return i.data.T(key)
}

func newPostItem(d TemplateData, p models.Post) postItem {
	if p.Author.Username == "" {
		p.Author = d.User
	}
	return postItem{
		Post:    p,
		Owner:   p.Author.Username,
		CanLike: d.CanLike,
		View:    d.View,
		Next:    d.Next,
		data:    d,
	}
}

var pages = []string{
	"login.html",
	"register.html",
	"profile.html",
	"user.html",
	"post.html",
	"error.html",
}

// Renderer keeps one parsed template set per page, each combining the
// layout, the shared partials and the page's own blocks.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer(fsys fs.FS) (*Renderer, error) {
	base, err := template.New("").Funcs(template.FuncMap{
		"item":       newPostItem,
		"pathEscape": url.PathEscape,
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.UTC().Format("02.01.2006 15:04")
		},
	}).ParseFS(fsys, "templates/layout.html", "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(fsys, "templates/"+page); err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// Render executes into a buffer first so a failing template never sends a
// half-written page.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data TemplateData) {
	t, ok := r.pages[page]
	if !ok {
		log.Printf("Error rendering template %s: unknown page", page)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Printf("Error rendering template %s: %v", page, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// page fills the per-request fields every template needs.
func (d *Deps) page(r *http.Request) TemplateData {
	session := auth.FromContext(r.Context())
	data := TemplateData{
		Lang:    d.language(r),
		Session: session,
		locale:  d.Locale,
	}
	if session != nil {
		data.Flash = d.Sessions.TakeFlash(r.Context(), session)
	}
	return data
}

func (d *Deps) render(w http.ResponseWriter, status int, page string, data TemplateData) {
	d.Renderer.Render(w, status, page, data)
}

func (d *Deps) language(r *http.Request) string {
	if c, err := r.Cookie(languageCookie); err == nil && d.Locale.Supported(c.Value) {
		return strings.ToLower(c.Value)
	}
	return d.Locale.Default()
}

func (d *Deps) text(r *http.Request, key string) string {
	return d.Locale.Text(d.language(r), key)
}

func (d *Deps) Render404(w http.ResponseWriter, r *http.Request) {
	data := d.page(r)
	data.Error = data.T(KeyPageNotFound)
	d.render(w, http.StatusNotFound, "error.html", data)
}

func (d *Deps) Render500(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("Internal Server Error on %s %s: %v", r.Method, r.URL.Path, err)
	data := d.page(r)
	data.Error = data.T(KeyServerError)
	d.render(w, http.StatusInternalServerError, "error.html", data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// localPath keeps only same-site paths, so redirects cannot leave the site.
func localPath(raw, fallback string) string {
	u, err := url.Parse(raw)
	if err != nil || raw == "" || u.IsAbs() || u.Host != "" {
		return fallback
	}
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") || strings.Contains(u.Path, `\`) {
		return fallback
	}
	return u.RequestURI()
}
