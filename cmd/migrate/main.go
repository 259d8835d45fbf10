package main

// Run database migrations:
//   go run ./cmd/migrate [up|down|status]

import (
	"context"
	"fmt"
	"os"

	"studymate-backend/internal/shared/config"
	"studymate-backend/internal/shared/storage/db"
	"studymate-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	action := "up"
	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFor(db.ProfileMigrate))
	if err != nil {
		telemetry.Error("migrate.connect.failed", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
	defer sqlDB.Close()

	switch action {
	case "up":
		err = db.RunMigrations(ctx, sqlDB)
	case "down":
		err = db.RollbackMigration(ctx, sqlDB)
	case "status":
		err = db.MigrationStatus(ctx, sqlDB)
	default:
		err = fmt.Errorf("unknown action %q (want up, down or status)", action)
	}
	if err != nil {
		telemetry.Error("migrate.failed", map[string]any{"action": action, "err": err.Error()})
		sqlDB.Close()
		os.Exit(1)
	}
	telemetry.Info("migrate.done", map[string]any{"action": action})
}
