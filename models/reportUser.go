package models

import (
	"context"
	"errors"
	"time"

	"github.com/paynetra/reports_backend/config"
	"github.com/paynetra/reports_backend/utils"
	"gorm.io/gorm"
)

// ReportUser is a reporting-portal account. Merchant users carry the
// client_code their queries are pinned to; admins see every merchant.
type ReportUser struct {
	ID           int        `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"size:150;uniqueIndex" json:"username"`
	PasswordHash string     `gorm:"size:255" json:"-"`
	Role         UserRole   `gorm:"size:32;default:'MERCHANT'" json:"role"`
	ClientCode   string     `gorm:"size:255;index" json:"client_code"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ReportUser) TableName() string {
	return "report_users"
}

var ErrInvalidCredentials = errors.New("invalid username or password")

// FindReportUserByUsername returns utils.ErrorRecordNotFound when no such
// account exists.
func FindReportUserByUsername(ctx context.Context, username string) (*ReportUser, error) {
	var user ReportUser
	if err := config.GetDB().WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Login verifies credentials and returns the user plus a signed JWT.
// Unknown accounts, disabled accounts and wrong passwords are deliberately
// indistinguishable to the caller.
func Login(ctx context.Context, username string, password string) (*ReportUser, string, error) {
	db := config.GetDB()

	user, err := FindReportUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !user.IsActive {
		return nil, "", ErrInvalidCredentials
	}

	if err := utils.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := utils.JwtGenerate(user.ID, user.Username, string(user.Role), user.ClientCode)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	user.LastLogin = &now
	if err := db.WithContext(ctx).Model(&ReportUser{}).Where("id = ?", user.ID).
		Update("last_login", now).Error; err != nil {
		config.LogError(config.GetLogger(), "models", "Login", "update last_login", user.Username, err)
	}

	return user, token, nil
}

// CreateReportUser hashes the password and stores the account.
func CreateReportUser(ctx context.Context, username, password string, role UserRole, clientCode string) (*ReportUser, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &ReportUser{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		ClientCode:   clientCode,
		IsActive:     true,
	}
	if err := config.GetDB().WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}
