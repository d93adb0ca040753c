package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"masterboxer.com/kpitter-web/auth"
	"masterboxer.com/kpitter-web/config"
	"masterboxer.com/kpitter-web/database"
	"masterboxer.com/kpitter-web/feed"
	"masterboxer.com/kpitter-web/handlers"
	"masterboxer.com/kpitter-web/middleware"
	"masterboxer.com/kpitter-web/routes"
	"masterboxer.com/kpitter-web/services"
	"masterboxer.com/kpitter-web/web"
)

// Idle view lists older than this are dropped by the sweep job.
const viewIdleTimeout = 2 * time.Hour

func main() {
	cfg := config.Load()

	var store auth.Store = auth.NewMemoryStore()
	if cfg.Database.DSN != "" {
		db, err := database.ConnectDB(cfg.Database.DSN)
		if err != nil {
			log.Fatal("Web: DB connection failed:", err)
		}
		defer db.Close()
		if err := database.Migrate(db); err != nil {
			log.Fatal("Web: migration failed:", err)
		}
		store = database.NewSessionStore(db)
	} else {
		log.Println("[Session] DATABASE_URL not set, keeping sessions in memory")
	}

	sessions, err := auth.NewManager(store, auth.Options{
		Secret:       cfg.Session.Secret,
		TTL:          cfg.Session.Expiration,
		SecureCookie: cfg.Server.CookieSecure,
	})
	if err != nil {
		log.Fatal("Web: session manager:", err)
	}

	var backendOpts []services.BackendOption
	var tracing func(http.Handler) http.Handler
	if cfg.Tracing.ZipkinAddress != "" {
		tracer, closeTracer, err := services.NewTracer("kpitter-web", "0.0.0.0:"+cfg.Server.Port, cfg.Tracing.ZipkinAddress)
		if err != nil {
			log.Fatal("Web: zipkin tracer:", err)
		}
		defer closeTracer()

		client, err := services.NewTracedClient(tracer, cfg.Backend.Timeout)
		if err != nil {
			log.Fatal("Web: traced client:", err)
		}
		backendOpts = append(backendOpts, services.WithHTTPClient(client))
		tracing = services.TracingMiddleware(tracer)
		log.Println("[Tracing] Reporting spans to", cfg.Tracing.ZipkinAddress)
	} else {
		backendOpts = append(backendOpts, services.WithHTTPClient(&http.Client{Timeout: cfg.Backend.Timeout}))
	}
	if cfg.Cache.MemcacheURL != "" {
		backendOpts = append(backendOpts, services.WithUserCache(services.NewMemcacheCache(cfg.Cache.MemcacheURL, cfg.Cache.UserTTL)))
	}

	backend, err := services.NewBackend(cfg.Backend.BaseURL, backendOpts...)
	if err != nil {
		log.Fatal("Web: backend client:", err)
	}

	renderer, err := handlers.NewRenderer(web.Templates)
	if err != nil {
		log.Fatal("Web: templates:", err)
	}

	views := feed.NewViews()
	liker := feed.NewLiker(backend)
	deps := &handlers.Deps{
		Backend:  backend,
		Sessions: sessions,
		Views:    views,
		Liker:    liker,
		Renderer: renderer,
		Locale:   handlers.NewLocalization(cfg.Locale.Default),
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.LoginPerMinute)
	router := routes.NewRouter(deps, limiter, web.Static(), services.GetRegistry())

	var handler http.Handler = middleware.Session(sessions)(router)
	handler = middleware.MethodOverride(handler)
	handler = middleware.SecureHeaders(handler)
	handler = middleware.Logger(handler)
	if tracing != nil {
		handler = tracing(handler)
	}

	c := cron.New()
	_, err = c.AddFunc("@every 30m", func() {
		removed, err := sessions.PurgeExpired(context.Background())
		if err != nil {
			log.Printf("[Cleanup] session purge failed: %v", err)
		}
		log.Printf("[Cleanup] purged %d sessions, %d idle views, %d rate limit entries",
			removed, views.Sweep(viewIdleTimeout), limiter.Cleanup(10*time.Minute))
	})
	if err != nil {
		log.Fatalf("Failed to schedule cleanup: %v", err)
	}
	c.Start()
	defer c.Stop()

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 3 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Println("Server is starting on port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Web: server failed:", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown: %v", err)
	}
	liker.Wait()
}
