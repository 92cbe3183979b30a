package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/compoundrx/storefront/internal/config"
	"github.com/compoundrx/storefront/internal/constants"
	"github.com/compoundrx/storefront/internal/models"
	"github.com/compoundrx/storefront/internal/repository"
)

func setupUserAuthTest(t *testing.T) (*UserAuthService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:user_auth_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	cfg := &config.Config{}
	cfg.UserJWT.SecretKey = "user-auth-test-secret-key-0123456789"
	cfg.UserJWT.ExpireHours = 1
	cfg.Security.PasswordPolicy = config.PasswordPolicyConfig{MinLength: 8}
	return NewUserAuthService(repository.NewUserRepository(db), cfg), db
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := setupUserAuthTest(t)

	user, err := svc.Register("Pat@Example.com", "correcthorse", "Pat")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "pat@example.com" {
		t.Fatalf("email must be normalized, got %s", user.Email)
	}
	if user.Status != constants.UserStatusActive {
		t.Fatalf("new accounts start active, got %s", user.Status)
	}

	token, loggedIn, err := svc.Login("pat@example.com", "correcthorse", false)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" || loggedIn.ID != user.ID {
		t.Fatalf("unexpected login result")
	}

	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := setupUserAuthTest(t)

	if _, err := svc.Register("dup@example.com", "correcthorse", ""); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register("DUP@example.com", "correcthorse", ""); err != ErrEmailTaken {
		t.Fatalf("want ErrEmailTaken, got %v", err)
	}
}

func TestRegisterWeakPassword(t *testing.T) {
	svc, _ := setupUserAuthTest(t)
	if _, err := svc.Register("weak@example.com", "short", ""); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("want ErrWeakPassword, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := setupUserAuthTest(t)
	if _, err := svc.Register("who@example.com", "correcthorse", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, _, err := svc.Login("who@example.com", "wronghorse", false); err != ErrInvalidCredentials {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login("nobody@example.com", "correcthorse", false); err != ErrInvalidCredentials {
		t.Fatalf("unknown email want ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	svc, db := setupUserAuthTest(t)
	user, err := svc.Register("off@example.com", "correcthorse", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("status", constants.UserStatusDisabled).Error; err != nil {
		t.Fatalf("disable user failed: %v", err)
	}
	if _, _, err := svc.Login("off@example.com", "correcthorse", false); err != ErrUserDisabled {
		t.Fatalf("want ErrUserDisabled, got %v", err)
	}
}

func TestParseTokenRejectsWrongKey(t *testing.T) {
	svc, _ := setupUserAuthTest(t)
	other, _ := setupUserAuthTest(t)
	other.cfg.UserJWT.SecretKey = "a-completely-different-signing-key!!"

	user, err := svc.Register("keys@example.com", "correcthorse", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	token, _, err := svc.Login(user.Email, "correcthorse", false)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := other.ParseToken(token); err != ErrInvalidCredentials {
		t.Fatalf("foreign key must reject the token, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := setupUserAuthTest(t)
	user, err := svc.Register("rotate@example.com", "correcthorse", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.ChangePassword(user.ID, "wronghorse", "batterystaple"); err != ErrInvalidCredentials {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
	if err := svc.ChangePassword(user.ID, "correcthorse", "tiny"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("want ErrWeakPassword, got %v", err)
	}
	if err := svc.ChangePassword(user.ID, "correcthorse", "batterystaple"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	if _, _, err := svc.Login(user.Email, "correcthorse", false); err != ErrInvalidCredentials {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, _, err := svc.Login(user.Email, "batterystaple", false); err != nil {
		t.Fatalf("new password login failed: %v", err)
	}
}

func TestSetUserStatus(t *testing.T) {
	svc, _ := setupUserAuthTest(t)
	user, err := svc.Register("status@example.com", "correcthorse", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.SetUserStatus(user.ID, "banned"); err != ErrUserStatusInvalid {
		t.Fatalf("want ErrUserStatusInvalid, got %v", err)
	}
	if err := svc.SetUserStatus(9999, constants.UserStatusDisabled); err != ErrUserNotFound {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
	if err := svc.SetUserStatus(user.ID, constants.UserStatusDisabled); err != nil {
		t.Fatalf("disable failed: %v", err)
	}
	got, err := svc.GetUser(user.ID)
	if err != nil {
		t.Fatalf("get user failed: %v", err)
	}
	if got.Status != constants.UserStatusDisabled {
		t.Fatalf("status want disabled, got %s", got.Status)
	}
}
