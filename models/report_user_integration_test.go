package models_test

import (
	"context"
	"errors"
	"testing"

	"github.com/paynetra/reports_backend/config"
	"github.com/paynetra/reports_backend/models"
	"github.com/paynetra/reports_backend/utils"
)

func TestReportUserLookupAndLogin(t *testing.T) {
	setupIntegration(t)
	t.Setenv("BCRYPT_COST", "4")
	ctx := context.Background()

	if _, err := models.FindReportUserByUsername(ctx, "nobody"); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected ErrorRecordNotFound for missing account; got %v", err)
	}

	created, err := models.CreateReportUser(ctx, "ops", "hunter2", models.UserRoleAdmin, "")
	if err != nil {
		t.Fatalf("CreateReportUser: %v", err)
	}

	found, err := models.FindReportUserByUsername(ctx, "ops")
	if err != nil {
		t.Fatalf("FindReportUserByUsername: %v", err)
	}
	if found.ID != created.ID {
		t.Fatalf("expected id %d; got %d", created.ID, found.ID)
	}

	user, token, err := models.Login(ctx, "ops", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" || user.Role != models.UserRoleAdmin {
		t.Fatalf("unexpected login result: token=%q user=%+v", token, user)
	}

	if _, _, err := models.Login(ctx, "ops", "wrong"); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password; got %v", err)
	}
	if _, _, err := models.Login(ctx, "ghost", "hunter2"); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown account; got %v", err)
	}

	// Disabled accounts cannot log in, and the error is indistinguishable.
	if err := config.GetDB().WithContext(ctx).Model(&models.ReportUser{}).
		Where("id = ?", created.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("disable account: %v", err)
	}
	if _, _, err := models.Login(ctx, "ops", "hunter2"); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for disabled account; got %v", err)
	}
}
