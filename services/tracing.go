package services

import (
	"net/http"
	"time"

	"github.com/openzipkin/zipkin-go"
	zipkinhttp "github.com/openzipkin/zipkin-go/middleware/http"
	httpreporter "github.com/openzipkin/zipkin-go/reporter/http"
)

// NewTracer reports spans to the zipkin collector at address (host:port).
// The returned close func flushes the reporter.
func NewTracer(serviceName, hostPort, address string) (*zipkin.Tracer, func() error, error) {
	reporter := httpreporter.NewReporter("http://" + address + "/api/v2/spans")

	endpoint, err := zipkin.NewEndpoint(serviceName, hostPort)
	if err != nil {
		reporter.Close()
		return nil, nil, err
	}

	tracer, err := zipkin.NewTracer(reporter, zipkin.WithLocalEndpoint(endpoint))
	if err != nil {
		reporter.Close()
		return nil, nil, err
	}

	return tracer, reporter.Close, nil
}

// NewTracedClient wraps the backend HTTP client so each call becomes a child span.
func NewTracedClient(tracer *zipkin.Tracer, timeout time.Duration) (*zipkinhttp.Client, error) {
	return zipkinhttp.NewClient(
		tracer,
		zipkinhttp.WithClient(&http.Client{Timeout: timeout}),
		zipkinhttp.ClientTrace(true),
	)
}

func TracingMiddleware(tracer *zipkin.Tracer) func(http.Handler) http.Handler {
	return zipkinhttp.NewServerMiddleware(tracer, zipkinhttp.TagResponseSize(true))
}
