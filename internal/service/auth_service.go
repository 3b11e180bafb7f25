package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"staybnb/internal/db"
	"staybnb/internal/entities"
	apperrors "staybnb/internal/errors"
	"staybnb/internal/repository"
)

// Claims is the JWT payload. ID (jti) identifies the token for revocation.
type Claims struct {
	UserID int    `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, req entities.RegisterRequest) (*entities.AuthResponse, error)
	Login(ctx context.Context, req entities.LoginRequest) (*entities.AuthResponse, error)
	Me(ctx context.Context, userID int) (*db.User, error)
	UpdateProfile(ctx context.Context, userID int, req entities.UpdateProfileRequest) (*db.User, error)
	ChangePassword(ctx context.Context, userID int, req entities.ChangePasswordRequest) error
	BecomeHost(ctx context.Context, userID int, req entities.BecomeHostRequest) (*db.User, error)
	Logout(ctx context.Context, claims *Claims) error
	ParseToken(ctx context.Context, token string) (*Claims, error)
}

type authService struct {
	users     repository.UserRepository
	blocklist repository.TokenBlocklist
	secret    []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewAuthService(users repository.UserRepository, blocklist repository.TokenBlocklist, secret string, ttl time.Duration) AuthService {
	return &authService{
		users:     users,
		blocklist: blocklist,
		secret:    []byte(secret),
		ttl:       ttl,
		now:       time.Now,
	}
}

var errInvalidCredentials = apperrors.ErrUnauthorized("invalid credentials")

func (s *authService) Register(ctx context.Context, req entities.RegisterRequest) (*entities.AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	user := &db.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Languages:    []string{},
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, apperrors.ErrConflict("an account with this email already exists")
		}
		return nil, err
	}
	log.WithField("user_id", user.ID).Info("user registered")
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, req entities.LoginRequest) (*entities.AuthResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, err
	}
	if user == nil || !checkPasswordHash(req.Password, user.PasswordHash) {
		return nil, errInvalidCredentials
	}
	return s.issue(user)
}

func (s *authService) issue(user *db.User) (*entities.AuthResponse, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}
	return &entities.AuthResponse{Token: token, User: *user}, nil
}

// ParseToken verifies the signature, the expiry and that the token was not revoked.
func (s *authService) ParseToken(ctx context.Context, token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, apperrors.ErrUnauthorized("invalid or expired token")
	}
	revoked, err := s.blocklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		// a blocklist outage must not lock every user out
		log.WithError(err).Warn("token revocation check failed")
	} else if revoked {
		return nil, apperrors.ErrUnauthorized("token has been revoked")
	}
	return claims, nil
}

func (s *authService) Me(ctx context.Context, userID int) (*db.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrUnauthorized("user no longer exists")
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID int, req entities.UpdateProfileRequest) (*db.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Name = req.Name
	user.Phone = req.Phone
	user.DateOfBirth = req.DateOfBirth
	user.Address = strings.TrimSpace(req.Address)
	user.Bio = req.Bio
	user.Experience = req.Experience
	user.Languages = req.Languages
	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID int, req entities.ChangePasswordRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if !checkPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return apperrors.NewValidationError(apperrors.FieldErrors{"currentPassword": "is incorrect"})
	}
	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

func (s *authService) BecomeHost(ctx context.Context, userID int, req entities.BecomeHostRequest) (*db.User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.users.SetHost(ctx, userID, req.Bio, req.Experience, req.Languages); err != nil {
		return nil, err
	}
	log.WithField("user_id", userID).Info("user became a host")
	return s.Me(ctx, userID)
}

// Logout revokes the token for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	return s.blocklist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time.Sub(s.now()))
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
