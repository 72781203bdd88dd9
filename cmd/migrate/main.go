// cmd/migrate applies or rolls back the embedded SQL migrations.
//
//	go run ./cmd/migrate up
//	go run ./cmd/migrate down 1
//	go run ./cmd/migrate version
package main

import (
	"os"
	"strconv"

	"modapos/internal/infra"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env not found, using process environment")
	}
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "up":
		if err := infra.RunMigrations(dsn); err != nil {
			log.Fatal().Err(err).Msg("migrate up failed")
		}
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			n, err := strconv.Atoi(os.Args[2])
			if err != nil || n < 1 {
				log.Fatal().Str("steps", os.Args[2]).Msg("steps must be a positive integer")
			}
			steps = n
		}
		if err := infra.RollbackMigrations(dsn, steps); err != nil {
			log.Fatal().Err(err).Msg("migrate down failed")
		}
	case "version":
	default:
		log.Fatal().Str("command", cmd).Msg("usage: migrate [up|down [steps]|version]")
	}

	v, dirty, err := infra.MigrationVersion(dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read schema version")
	}
	log.Info().Uint("version", v).Bool("dirty", dirty).Msg("schema version")
}
