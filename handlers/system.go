package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"masterboxer.com/kpitter-web/auth"
)

func Index(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth.FromContext(r.Context()) != nil {
			http.Redirect(w, r, "/me", http.StatusFound)
			return
		}
		http.Redirect(w, r, "/login", http.StatusFound)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("OK"))
}

// SetLanguage stores the UI language in a cookie and goes back to the page
// the visitor came from.
func SetLanguage(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := strings.ToLower(mux.Vars(r)["lang"])
		if !d.Locale.Supported(lang) {
			d.Render404(w, r)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     languageCookie,
			Value:    lang,
			Path:     "/",
			MaxAge:   int((365 * 24 * time.Hour).Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		back := "/"
		if ref, err := url.Parse(r.Referer()); err == nil && ref.Host == r.Host {
			back = localPath(ref.RequestURI(), "/")
		}
		http.Redirect(w, r, back, http.StatusFound)
	}
}
