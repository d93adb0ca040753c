package main

import (
	"context"
	"log"
	"time"

	"masterboxer.com/kpitter-web/config"
	"masterboxer.com/kpitter-web/database"
)

// One-shot purge of expired sessions, for deployments that run several web
// instances against one database and schedule cleanup externally.
func main() {
	cfg := config.Load()
	if cfg.Database.DSN == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := database.ConnectDB(cfg.Database.DSN)
	if err != nil {
		log.Fatal("SessionCleanup: DB connection failed:", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("SessionCleanup: migration failed:", err)
	}

	log.Println("Running expired session cleanup job")
	removed, err := database.NewSessionStore(db).DeleteExpired(context.Background(), time.Now())
	if err != nil {
		log.Fatal("SessionCleanup: purge failed:", err)
	}
	log.Printf("Expired session cleanup finished, %d removed", removed)
}
