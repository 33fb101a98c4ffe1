package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"user-admin/pkg/config"
	"user-admin/pkg/database"
	"user-admin/pkg/jwt"
	"user-admin/pkg/logger"
	"user-admin/services/user/internal/entity"
	"user-admin/services/user/internal/repo/persistent"
)

func main() {
	var (
		adminPassword  = flag.String("admin-password", "Admin!123", "password for the seeded admin account")
		memberPassword = flag.String("member-password", "Member!123", "password for the seeded member account")
		migrate        = flag.Bool("migrate", false, "run gorm AutoMigrate before seeding")
		printToken     = flag.Bool("token", true, "print a bearer token for the admin account")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.NewWithOptions(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	db, err := database.New(cfg, log)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	defer database.Close(db)

	if *migrate {
		if err := persistent.AutoMigrate(db); err != nil {
			log.Error("Failed to migrate database: %v", err)
			os.Exit(1)
		}
	}

	if err := persistent.Seed(context.Background(), db, *adminPassword, *memberPassword); err != nil {
		log.Error("Failed to seed database: %v", err)
		os.Exit(1)
	}
	log.Info("Seeded roles %s, %s and users admin, member", entity.RoleAdminName, entity.RoleMemberName)

	if *printToken {
		token, err := jwt.NewService(cfg.JWTSecret).GenerateToken(entity.UserAdminID, entity.RoleAdminName)
		if err != nil {
			log.Error("Failed to generate token: %v", err)
			os.Exit(1)
		}
		fmt.Println(token)
	}
}
