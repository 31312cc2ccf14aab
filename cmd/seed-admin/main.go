// seed-admin creates or updates a reporting-portal user.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//	  go run ./cmd/seed-admin -username ops -password secret -role ADMIN
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/paynetra/reports_backend/config"
	"github.com/paynetra/reports_backend/models"
	"github.com/paynetra/reports_backend/utils"
)

func main() {
	username := flag.String("username", "", "Username to create or update (required)")
	password := flag.String("password", "", "Password to set (required)")
	role := flag.String("role", string(models.UserRoleMerchant), "Role: ADMIN or MERCHANT")
	clientCode := flag.String("client-code", "", "Merchant client_code (required for MERCHANT role)")
	flag.Parse()

	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "-username and -password are required")
		os.Exit(2)
	}
	userRole := models.UserRole(*role)
	if userRole != models.UserRoleAdmin && userRole != models.UserRoleMerchant {
		fmt.Fprintln(os.Stderr, "-role must be ADMIN or MERCHANT")
		os.Exit(2)
	}
	if userRole == models.UserRoleMerchant && *clientCode == "" {
		fmt.Fprintln(os.Stderr, "-client-code is required for MERCHANT users")
		os.Exit(2)
	}

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	models.MigrateTable()

	existing, err := models.FindReportUserByUsername(ctx, *username)
	switch {
	case err == nil:
		hashed, hashErr := utils.HashPassword(*password)
		if hashErr != nil {
			fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", hashErr)
			os.Exit(1)
		}
		if err := db.WithContext(ctx).Model(existing).Updates(map[string]interface{}{
			"password_hash": string(hashed),
			"role":          userRole,
			"client_code":   *clientCode,
			"is_active":     true,
		}).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to update user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated user %s (id=%d role=%s)\n", *username, existing.ID, userRole)
	case errors.Is(err, utils.ErrorRecordNotFound):
		user, createErr := models.CreateReportUser(ctx, *username, *password, userRole, *clientCode)
		if createErr != nil {
			fmt.Fprintf(os.Stderr, "failed to create user: %v\n", createErr)
			os.Exit(1)
		}
		fmt.Printf("Created user %s (id=%d role=%s)\n", user.Username, user.ID, user.Role)
	default:
		fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
		os.Exit(1)
	}
}
