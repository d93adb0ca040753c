package services

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openzipkin/zipkin-go"
	"github.com/openzipkin/zipkin-go/reporter/recorder"
)

func TestTracedBackendCalls(t *testing.T) {
	rec := recorder.NewReporter()
	defer rec.Close()
	tracer, err := zipkin.NewTracer(rec, zipkin.WithSampler(zipkin.AlwaysSample))
	if err != nil {
		t.Fatalf("NewTracer: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-B3-TraceId") == "" {
			t.Error("backend call carried no trace headers")
		}
		w.Write([]byte(`{"username": "alice"}`))
	}))
	defer server.Close()

	client, err := NewTracedClient(tracer, time.Second)
	if err != nil {
		t.Fatalf("NewTracedClient: %v", err)
	}
	b, err := NewBackend(server.URL+"/api", WithHTTPClient(client))
	if err != nil {
		t.Fatal(err)
	}

	handler := TracingMiddleware(tracer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := b.GetUser(r.Context(), "alice"); err != nil {
			t.Errorf("GetUser: %v", err)
		}
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/alice", nil))

	if spans := rec.Flush(); len(spans) == 0 {
		t.Error("no spans recorded")
	}
}
