package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/config"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/models"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/validate"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const MinPasswordLength = 8

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordRequired   = errors.New("password is required")
)

// CoachPurge removes everything a coach owns inside tx.
type CoachPurge func(tx *gorm.DB, coachID uuid.UUID) error

type AuthService struct {
	db       *gorm.DB
	cfg      *config.Config
	settings *SettingsService
	purge    CoachPurge
}

func NewAuthService(db *gorm.DB, cfg *config.Config, settings *SettingsService) *AuthService {
	return &AuthService{db: db, cfg: cfg, settings: settings}
}

// SetCoachPurge installs the cascade run when a coach deletes their account.
func (s *AuthService) SetCoachPurge(fn CoachPurge) {
	s.purge = fn
}

// Register creates a coach account. Customers are onboarded by their coach.
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	errs := validate.Errors{}
	validate.Email(errs, "email", email)
	validate.Required(errs, "full_name", req.FullName)
	if len(req.Password) < MinPasswordLength {
		errs.Add("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	var user *models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		u, err := CreateUser(tx, email, req.Password, strings.TrimSpace(req.FullName), models.RoleAdmin)
		if err != nil {
			return err
		}
		user = u
		if s.settings != nil {
			return s.settings.SeedDefaults(tx, u.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.generateTokenPair(user)
}

// CreateUser inserts a user inside the caller's transaction. It is shared with
// customer onboarding, which creates portal accounts.
func CreateUser(tx *gorm.DB, email, password, fullName, role string) (*models.User, error) {
	email = normalizeEmail(email)

	var count int64
	if err := tx.Unscoped().Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:       uuid.New(),
		Email:    email,
		Password: hash,
		Role:     role,
		FullName: fullName,
	}
	if err := tx.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *AuthService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokenPair(&user)
}

func (s *AuthService) Refresh(req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	if err := s.db.Where("token_hash = ? AND revoked = false", tokenHash).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	// Rotation: the presented token is spent whether or not it is still valid.
	// Only one of two concurrent refreshes flips the row.
	usable := stored.Usable(time.Now())
	result := s.db.Model(&models.RefreshToken{}).
		Where("id = ? AND revoked = false", stored.ID).
		Update("revoked", true)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", result.Error)
	}
	if result.RowsAffected != 1 || !usable {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	return s.generateTokenPair(&user)
}

func (s *AuthService) Logout(req *dto.LogoutRequest) error {
	return s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ?", hashToken(req.RefreshToken)).
		Update("revoked", true).Error
}

func (s *AuthService) ChangePassword(userID uuid.UUID, req *dto.ChangePasswordRequest) error {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}
	if len(req.NewPassword) < MinPasswordLength {
		return validate.Errors{"new_password": fmt.Sprintf("must be at least %d characters", MinPasswordLength)}
	}

	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("password", hash).Error; err != nil {
			return err
		}
		// Existing sessions end with the old password.
		return models.RevokeSessions(tx, userID)
	})
}

// DeleteAccount removes the user. A coach takes their customers (and the
// customers' portal accounts) with them; a customer account is unlinked from
// its coaching record, which the coach keeps.
func (s *AuthService) DeleteAccount(userID uuid.UUID, password string) error {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return ErrUserNotFound
	}
	if password == "" {
		return ErrPasswordRequired
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		if user.IsAdmin() {
			if err := s.purgeCoach(tx, userID); err != nil {
				return err
			}
		} else {
			if err := tx.Unscoped().Model(&models.Customer{}).Where("user_id = ?", userID).Update("user_id", nil).Error; err != nil {
				return err
			}
		}
		// Hard delete frees the email for a new registration.
		return tx.Unscoped().Delete(&user).Error
	})
}

func (s *AuthService) purgeCoach(tx *gorm.DB, coachID uuid.UUID) error {
	if s.purge != nil {
		return s.purge(tx, coachID)
	}
	// Without the feature cascade only shared tables can be cleared.
	var portalIDs []uuid.UUID
	if err := tx.Unscoped().Model(&models.Customer{}).
		Where("coach_id = ? AND user_id IS NOT NULL", coachID).Pluck("user_id", &portalIDs).Error; err != nil {
		return err
	}
	if err := tx.Unscoped().Where("coach_id = ?", coachID).Delete(&models.Customer{}).Error; err != nil {
		return err
	}
	if len(portalIDs) > 0 {
		if err := tx.Where("user_id IN ?", portalIDs).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("id IN ?", portalIDs).Delete(&models.User{}).Error; err != nil {
			return err
		}
	}
	return tx.Where("coach_id = ?", coachID).Delete(&models.CoachSetting{}).Error
}

func (s *AuthService) generateTokenPair(user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: dto.UserResponse{
			ID:       user.ID,
			Email:    user.Email,
			Role:     user.Role,
			FullName: user.FullName,
		},
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)

	record := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
