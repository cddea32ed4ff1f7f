package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/shieldscan/shield-backend/internal/users"
	"github.com/shieldscan/shield-backend/pkg/config"
	"github.com/shieldscan/shield-backend/pkg/db"
	"github.com/shieldscan/shield-backend/pkg/enums"
	"github.com/shieldscan/shield-backend/pkg/logger"
)

// Seeds the bootstrap SysAdmin account. Safe to run repeatedly: an existing
// account is left alone unless -force is set, in which case its role, status
// and namespace grants are reset to the bootstrap values.
func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	email := flag.String("email", "", "admin email (falls back to SHIELD_SEED_ADMIN_EMAIL)")
	name := flag.String("name", "", "admin full name (falls back to SHIELD_SEED_ADMIN_FULL_NAME)")
	force := flag.Bool("force", false, "reset an existing account to bootstrap values")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	adminEmail := *email
	if adminEmail == "" {
		adminEmail = cfg.Seed.AdminEmail
	}
	adminName := *name
	if adminName == "" {
		adminName = cfg.Seed.AdminFullName
	}
	if adminEmail == "" {
		logg.Error(context.Background(), "admin email is required (-email or SHIELD_SEED_ADMIN_EMAIL)", nil)
		os.Exit(1)
	}
	if adminName == "" {
		adminName = "System Administrator"
	}

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	repo := users.NewRepository(dbClient.DB())
	svc, err := users.NewService(repo)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	ctx := logg.WithField(context.Background(), "email", adminEmail)

	existing, err := repo.FindByEmail(ctx, adminEmail)
	switch {
	case err == nil:
		if !*force {
			logg.Info(logg.WithField(ctx, "user_id", existing.ID.String()), "admin account already present, nothing to do")
			return
		}
		role := enums.UserRoleSysAdmin
		status := enums.UserStatusActive
		grants := []string{"*"}
		if _, err := svc.Update(ctx, existing.ID, users.UpdateUserDTO{
			Role:       &role,
			Status:     &status,
			Namespaces: &grants,
		}); err != nil {
			logg.Error(ctx, "failed to reset admin account", err)
			os.Exit(1)
		}
		logg.Info(logg.WithField(ctx, "user_id", existing.ID.String()), "admin account reset to bootstrap values")

	case errors.Is(err, gorm.ErrRecordNotFound):
		created, err := svc.Create(ctx, users.CreateUserDTO{
			Email:      adminEmail,
			FullName:   adminName,
			Role:       enums.UserRoleSysAdmin,
			Namespaces: []string{"*"},
		})
		if err != nil {
			logg.Error(ctx, "failed to create admin account", err)
			os.Exit(1)
		}
		logg.Info(logg.WithField(ctx, "user_id", created.ID.String()), "admin account created")

	default:
		logg.Error(ctx, "failed to look up admin account", err)
		os.Exit(1)
	}
}
