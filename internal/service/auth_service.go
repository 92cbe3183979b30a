package service

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/compoundrx/storefront/internal/config"
	"github.com/compoundrx/storefront/internal/logger"
	"github.com/compoundrx/storefront/internal/models"
	"github.com/compoundrx/storefront/internal/repository"
)

// HashPassword returns the bcrypt hash of a password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// AdminClaims is the JWT payload for the admin backend.
type AdminClaims struct {
	AdminID  uint   `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AuthService authenticates admins for the management backend.
type AuthService struct {
	adminRepo repository.AdminRepository
	cfg       *config.Config
}

// NewAuthService builds an admin auth service.
func NewAuthService(adminRepo repository.AdminRepository, cfg *config.Config) *AuthService {
	return &AuthService{adminRepo: adminRepo, cfg: cfg}
}

// Login checks credentials and issues an admin token.
func (s *AuthService) Login(username, password string) (string, *models.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	admin, err := s.adminRepo.GetByUsername(username)
	if err != nil {
		logger.Errorw("admin_lookup_failed", "username", username, "error", err)
		return "", nil, ErrInvalidCredentials
	}
	if admin == nil || !VerifyPassword(admin.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(admin)
	if err != nil {
		logger.Errorw("admin_token_sign_failed", "admin_id", admin.ID, "error", err)
		return "", nil, err
	}
	logger.Infow("admin_login", "admin_id", admin.ID, "username", admin.Username)
	return token, admin, nil
}

func (s *AuthService) issueToken(admin *models.Admin) (string, error) {
	expireHours := s.cfg.JWT.ExpireHours
	if expireHours <= 0 {
		expireHours = 24
	}
	now := time.Now()
	claims := AdminClaims{
		AdminID:  admin.ID,
		Username: admin.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expireHours) * time.Hour)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWT.SecretKey))
}

// ParseToken validates an admin token and returns its claims.
func (s *AuthService) ParseToken(tokenString string) (*AdminClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &AdminClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	return claims, nil
}

// GetAdmin returns one admin account.
func (s *AuthService) GetAdmin(id uint) (*models.Admin, error) {
	return s.adminRepo.GetByID(id)
}

// ChangePassword rotates an admin password after re-checking the current
// one.
func (s *AuthService) ChangePassword(adminID uint, currentPassword, newPassword string) error {
	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		return err
	}
	if admin == nil || !VerifyPassword(admin.PasswordHash, currentPassword) {
		return ErrInvalidCredentials
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, newPassword); err != nil {
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	admin.PasswordHash = hash
	return s.adminRepo.Update(admin)
}
