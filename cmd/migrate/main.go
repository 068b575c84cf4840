package main

import (
	"fmt"
	"os"

	"github.com/lumen-ops/alertgate-go/internal/config"
	"github.com/lumen-ops/alertgate-go/internal/database"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Usage: migrate <migrations-path> <database-path> [up|down]")
		os.Exit(1)
	}

	migrationsPath := os.Args[1]
	databasePath := os.Args[2]
	direction := "up"
	if len(os.Args) > 3 {
		direction = os.Args[3]
	}

	db, err := database.Initialize(config.DatabaseConfig{Path: databasePath, MaxConnections: 2})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	switch direction {
	case "up":
		err = database.Migrate(db, migrationsPath)
	case "down":
		err = database.MigrateDown(db, migrationsPath)
	default:
		fmt.Fprintf(os.Stderr, "Unknown direction %q, use up or down\n", direction)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Migrations %s complete\n", direction)
}
