package main

import (
	"os"

	"clinic-booking/config"
	"clinic-booking/internal/infrastructure/database"

	"github.com/sirupsen/logrus"
)

// Usage: migrate [up|down]
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	direction := database.MigrateUp
	if len(os.Args) >= 2 {
		direction = database.MigrateDirection(os.Args[1])
	}
	if direction != database.MigrateUp && direction != database.MigrateDown {
		log.Fatalf("unknown command %q, expected up or down", os.Args[1])
	}

	cfg, err := config.LoadConfig(".env")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := database.RunMigrations(cfg.DB, direction, log); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	log.Info("migrations complete")
}
