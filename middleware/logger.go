package middleware

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"masterboxer.com/kpitter-web/services"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Logger writes one line per request and feeds the request metrics.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		services.ObserveRequest(strconv.Itoa(rec.status), elapsed)
		log.Printf("Method: %s | URL: %s | Status: %d | Duration: %s | From: %s",
			r.Method, r.URL.Path, rec.status, elapsed, r.RemoteAddr)
	})
}
