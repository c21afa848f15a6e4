// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command seed provisions the permission catalogue, the super_admin role and
// the first administrator account. It applies pending migrations first and
// is safe to run repeatedly.
//
// The administrator password is read from SEED_ADMIN_PASSWORD.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/taibuivan/adminauth/internal/platform/config"
	"github.com/taibuivan/adminauth/internal/platform/constants"
	"github.com/taibuivan/adminauth/internal/platform/migration"
	pgstore "github.com/taibuivan/adminauth/internal/platform/postgres"
	"github.com/taibuivan/adminauth/internal/platform/sec"
	"github.com/taibuivan/adminauth/internal/users/account"
	"github.com/taibuivan/adminauth/internal/users/role"
	"github.com/taibuivan/adminauth/internal/users/seed"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("app", constants.AppName+"-seed"))

	cfg, err := config.Load()
	if err != nil {
		fail(log, err, "load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
		fail(log, err, "run migrations")
	}

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		fail(log, err, "connect to postgres")
	}
	defer pool.Close()

	roleStore := role.NewPostgresStore(pool)
	roleService := role.NewService(roleStore, log)
	accountService := account.NewService(
		account.NewAccountRepository(pool),
		roleStore,
		sec.NewPasswordHasher(cfg.BcryptSaltRounds),
		log,
	)

	if _, err := seed.Run(ctx, roleService, accountService, seed.DefaultAdministrator(cfg.SeedAdminPassword), log); err != nil {
		pool.Close()
		fail(log, err, "seed")
	}
}

func fail(log *slog.Logger, err error, step string) {
	log.Error("seed_failure", slog.String("step", step), slog.Any("error", err))
	os.Exit(1)
}
