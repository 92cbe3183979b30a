package service

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/compoundrx/storefront/internal/config"
	"github.com/compoundrx/storefront/internal/constants"
	"github.com/compoundrx/storefront/internal/logger"
	"github.com/compoundrx/storefront/internal/models"
	"github.com/compoundrx/storefront/internal/repository"
)

// UserClaims is the JWT payload for storefront accounts.
type UserClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// UserAuthService registers and authenticates storefront accounts. Signing
// uses a key separate from the admin backend, so a leaked storefront token
// can never open the management API.
type UserAuthService struct {
	userRepo repository.UserRepository
	cfg      *config.Config
}

// NewUserAuthService builds a user auth service.
func NewUserAuthService(userRepo repository.UserRepository, cfg *config.Config) *UserAuthService {
	return &UserAuthService{userRepo: userRepo, cfg: cfg}
}

// Register creates an account.
func (s *UserAuthService) Register(email, password, displayName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidCredentials
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, password); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(displayName),
		Status:       constants.UserStatusActive,
	}
	if err := s.userRepo.Create(user); err != nil {
		logger.Errorw("user_register_failed", "email", email, "error", err)
		return nil, err
	}
	logger.Infow("user_registered", "user_id", user.ID, "email", email)
	return user, nil
}

// Login checks credentials and issues a storefront token.
func (s *UserAuthService) Login(email, password string, rememberMe bool) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		logger.Errorw("user_lookup_failed", "email", email, "error", err)
		return "", nil, ErrInvalidCredentials
	}
	if user == nil || !VerifyPassword(user.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}
	if user.Status != constants.UserStatusActive {
		return "", nil, ErrUserDisabled
	}

	token, err := s.issueToken(user, rememberMe)
	if err != nil {
		logger.Errorw("user_token_sign_failed", "user_id", user.ID, "error", err)
		return "", nil, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		logger.Warnw("user_last_login_update_failed", "user_id", user.ID, "error", err)
	}

	logger.Infow("user_login", "user_id", user.ID)
	return token, user, nil
}

func (s *UserAuthService) issueToken(user *models.User, rememberMe bool) (string, error) {
	expireHours := s.cfg.UserJWT.ExpireHours
	if rememberMe && s.cfg.UserJWT.RememberMeExpireHours > 0 {
		expireHours = s.cfg.UserJWT.RememberMeExpireHours
	}
	if expireHours <= 0 {
		expireHours = 24
	}
	now := time.Now()
	claims := UserClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expireHours) * time.Hour)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.UserJWT.SecretKey))
}

// ParseToken validates a storefront token and returns its claims.
func (s *UserAuthService) ParseToken(tokenString string) (*UserClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &UserClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.UserJWT.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	return claims, nil
}

// GetUser returns one account.
func (s *UserAuthService) GetUser(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ChangePassword rotates an account password after re-checking the current
// one.
func (s *UserAuthService) ChangePassword(userID uint, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil || !VerifyPassword(user.PasswordHash, currentPassword) {
		return ErrInvalidCredentials
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, newPassword); err != nil {
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.userRepo.Update(user)
}

// ListUsers returns an account page for the admin backend.
func (s *UserAuthService) ListUsers(filter repository.UserListFilter) ([]models.User, int64, error) {
	return s.userRepo.List(filter)
}

// SetUserStatus enables or disables an account.
func (s *UserAuthService) SetUserStatus(userID uint, status string) error {
	if status != constants.UserStatusActive && status != constants.UserStatusDisabled {
		return ErrUserStatusInvalid
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return s.userRepo.UpdateStatus(userID, status)
}
