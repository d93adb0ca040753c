package middleware

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"masterboxer.com/kpitter-web/auth"
)

// IsAJAX reports whether the caller wants JSON instead of a page.
func IsAJAX(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest" ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}

// Session resolves the session cookie and puts the session in the request
// context. A bad or expired cookie is cleared and the request continues
// anonymously. A store failure keeps the cookie, so an outage does not log
// everyone out.
func Session(manager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := manager.Load(r)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrNoSession):
				case staleSession(err):
					log.Printf("[Session] dropping cookie: %v", err)
					manager.Clear(w)
				default:
					log.Printf("[Session] could not load session, serving anonymously: %v", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), session)))
		})
	}
}

func staleSession(err error) bool {
	return errors.Is(err, auth.ErrInvalidToken) ||
		errors.Is(err, auth.ErrSessionNotFound) ||
		errors.Is(err, auth.ErrUnseal)
}

// RequireSession redirects anonymous page requests to /login and answers
// AJAX requests with a JSON 401.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.FromContext(r.Context()) == nil {
			if IsAJAX(r) {
				WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WriteJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
