package main

// Run database migrations for the profiles table:
//   go run ./cmd/migrate [up|down|status]

import (
	"context"
	"log"
	"os"

	"resume-matcher/internal/shared/config"
	"resume-matcher/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	command := db.MigrateUp
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer sqlDB.Close()

	if err := db.Migrate(ctx, sqlDB, command); err != nil {
		log.Printf("migrate %s failed: %v", command, err)
		os.Exit(1)
	}
	log.Printf("migrate %s done", command)
}
