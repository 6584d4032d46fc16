package services

import (
	"errors"
	"time"

	"github.com/atelierworks/atelier-backend/apperr"
	"github.com/atelierworks/atelier-backend/dto"
	"github.com/atelierworks/atelier-backend/logger"
	"github.com/atelierworks/atelier-backend/models"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService handles registration, login and token issuance. Registration
// creates three records (identity, organization, profile) without a spanning
// transaction; the two compensation points below keep the sequence from
// leaving a usable-looking but broken account behind.
type AuthService struct {
	db       *gorm.DB
	secret   []byte
	tokenTTL time.Duration
	log      *zap.Logger
}

// NewAuthService creates an auth service signing tokens with the given secret
func NewAuthService(db *gorm.DB, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{db: db, secret: []byte(secret), tokenTTL: tokenTTL, log: logger.Get()}
}

// Register creates a new identity plus its organization and admin profile.
// If organization creation fails the identity is deleted; if profile creation
// fails the organization is deleted.
func (s *AuthService) Register(req dto.RegisterRequest) (*dto.AuthResponse, error) {
	var existing models.User
	result := s.db.Where("email = ?", req.Email).First(&existing)
	if result.RowsAffected > 0 {
		return nil, apperr.New(apperr.CodeConflict, "email already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUpstream, "could not hash password", err)
	}

	user := models.User{
		Email:    req.Email,
		Password: string(hashed),
		Name:     req.Name,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, storeError(err)
	}

	tenant := models.Tenant{Name: req.TenantName}
	if err := s.db.Create(&tenant).Error; err != nil {
		if derr := s.db.Unscoped().Delete(&user).Error; derr != nil {
			s.log.Error("failed to roll back user after organization create failure",
				zap.String("user", user.ID.String()), zap.Error(derr))
		}
		return nil, apperr.Wrap(apperr.CodeUpstream, "could not create organization", err)
	}

	profile := models.Profile{
		UserID:   user.ID,
		TenantID: tenant.ID,
		Role:     models.RoleAdmin,
	}
	if err := s.db.Create(&profile).Error; err != nil {
		if derr := s.db.Unscoped().Delete(&tenant).Error; derr != nil {
			s.log.Error("failed to roll back organization after profile create failure",
				zap.String("tenant", tenant.ID.String()), zap.Error(derr))
		}
		return nil, apperr.Wrap(apperr.CodeUpstream, "could not create profile", err)
	}

	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	user.Password = ""
	return &dto.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
		TenantID:  tenant.ID,
		Role:      profile.Role,
	}, nil
}

// Login authenticates a user and returns a token. Wrong email and wrong
// password produce the same error.
func (s *AuthService) Login(req dto.LoginRequest) (*dto.AuthResponse, error) {
	var user models.User
	err := s.db.Where("email = ?", req.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.CodeUnauthenticated, "invalid email or password")
	}
	if err != nil {
		return nil, storeError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.New(apperr.CodeUnauthenticated, "invalid email or password")
	}

	var profile models.Profile
	err = s.db.Where("user_id = ?", user.ID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.CodeUnauthenticated, "no tenant profile for user")
	}
	if err != nil {
		return nil, storeError(err)
	}

	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	user.Password = ""
	return &dto.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
		TenantID:  profile.TenantID,
		Role:      profile.Role,
	}, nil
}

// generateToken issues a JWT carrying only the identity. Tenant and role are
// resolved per-request from the profile, never trusted from the token.
func (s *AuthService) generateToken(user models.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.tokenTTL)
	claims := identityClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, apperr.Wrap(apperr.CodeUpstream, "could not sign token", err)
	}
	return signed, expiresAt, nil
}
