package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/tillpoint/tillpoint-backend/internal/users"
	"github.com/tillpoint/tillpoint-backend/pkg/config"
	"github.com/tillpoint/tillpoint-backend/pkg/db"
	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	"github.com/tillpoint/tillpoint-backend/pkg/logger"
	"github.com/tillpoint/tillpoint-backend/pkg/security"
)

const tempPasswordLength = 16

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "create-admin"})

	_ = godotenv.Load()

	email := flag.String("email", "", "admin email (required)")
	firstName := flag.String("first-name", "Admin", "admin first name")
	lastName := flag.String("last-name", "User", "admin last name")
	password := flag.String("password", "", "admin password (generated when omitted)")
	role := flag.String("role", string(enums.UserRoleAdmin), "account role: admin|manager|cashier")
	flag.Parse()

	if strings.TrimSpace(*email) == "" {
		fmt.Fprintln(os.Stderr, "missing -email")
		os.Exit(1)
	}

	parsedRole, err := enums.ParseUserRole(strings.TrimSpace(*role))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -role: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "create-admin",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	plaintext := *password
	generated := false
	if plaintext == "" {
		plaintext, err = security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			logg.Error(ctx, "failed to generate password", err)
			os.Exit(1)
		}
		generated = true
	}

	hash, err := security.HashPassword(plaintext, cfg.Password)
	if err != nil {
		logg.Error(ctx, "failed to hash password", err)
		os.Exit(1)
	}

	repo := users.NewRepository(dbClient.DB())
	user, err := repo.Create(ctx, users.CreateUserDTO{
		Email:        *email,
		PasswordHash: hash,
		FirstName:    *firstName,
		LastName:     *lastName,
		Role:         parsedRole,
	})
	if err != nil {
		logg.Error(ctx, "failed to create user", err)
		os.Exit(1)
	}

	fmt.Println("created user:", user.Email)
	fmt.Println("id:", user.ID)
	fmt.Println("role:", user.Role)
	if generated {
		fmt.Println("temporary password:", plaintext)
	}
}
