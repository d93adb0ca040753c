package middleware

import "net/http"

// MethodOverride lets HTML forms send PUT and DELETE through a _method field.
// It has to wrap the router, since routes match on the method.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Failed to parse form", http.StatusBadRequest)
				return
			}
			method := r.PostForm.Get("_method")
			if method == http.MethodPut || method == http.MethodDelete {
				r.Method = method
			}
		}
		next.ServeHTTP(w, r)
	})
}
