// cmd/seeduser creates the first admin account, or resets its password and
// role when it already exists.
//
//	SEED_PASSWORD=... go run ./cmd/seeduser -username admin -name "Store Admin"
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"modapos/internal/config"
	"modapos/internal/infra"
	"modapos/internal/model"
	"modapos/internal/repository"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	username := flag.String("username", "admin", "login name")
	name := flag.String("name", "Administrador", "display name")
	email := flag.String("email", "", "optional email")
	flag.Parse()

	password := os.Getenv("SEED_PASSWORD")
	if len(password) < 8 {
		log.Fatal().Msg("SEED_PASSWORD must be set (at least 8 characters)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := repository.NewUserRepository(db)
	u, err := users.FindByUsername(ctx, *username)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		u = &model.User{Username: *username, Name: *name, Role: model.RoleAdmin, Active: true}
		if *email != "" {
			u.Email = email
		}
		u.PasswordHash = string(hash)
		if err := users.Create(ctx, u); err != nil {
			log.Fatal().Err(err).Msg("failed to create user")
		}
		log.Info().Str("username", u.Username).Msg("admin user created")
	case err != nil:
		log.Fatal().Err(err).Msg("failed to look up user")
	default:
		u.PasswordHash = string(hash)
		u.Role = model.RoleAdmin
		u.Name = *name
		if err := users.Update(ctx, u); err != nil {
			log.Fatal().Err(err).Msg("failed to update user")
		}
		log.Info().Str("username", u.Username).Msg("admin user reset")
	}
}
