// Package auth implements remote.Auth with users in gorm, HS256 session
// tokens and redis for revoked tokens and password reset tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/schedmate/internal/httperr"
	"github.com/BruksfildServices01/schedmate/internal/models"
	"github.com/BruksfildServices01/schedmate/internal/remote"
	"github.com/BruksfildServices01/schedmate/internal/validators"
)

const (
	revokedKeyPrefix = "session:revoked:"
	resetKeyPrefix   = "password:reset:"

	MinPasswordLength = 6
)

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Options struct {
	Secret   string
	TTL      time.Duration
	ResetTTL time.Duration
}

type Service struct {
	db     *gorm.DB
	rdb    *redis.Client
	mailer Mailer
	log    *zap.Logger
	opts   Options

	now func() time.Time
}

func NewService(db *gorm.DB, rdb *redis.Client, mailer Mailer, log *zap.Logger, opts Options) *Service {
	if opts.ResetTTL <= 0 {
		opts.ResetTTL = time.Hour
	}
	return &Service{
		db:     db,
		rdb:    rdb,
		mailer: mailer,
		log:    log,
		opts:   opts,
		now:    time.Now,
	}
}

// --------------------------------------------------
// Users
// --------------------------------------------------

// CreateUser stores a new user with a bcrypt hash. It does not sign in.
func (s *Service) CreateUser(ctx context.Context, email, password string) (*models.User, error) {
	email = validators.NormalizeEmail(email)
	if len(password) < MinPasswordLength {
		return nil, remote.ErrWeakPassword
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, remote.ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Email: email, PasswordHash: string(hashed)}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			return nil, remote.ErrEmailTaken
		}
		return nil, err
	}

	return &user, nil
}

func (s *Service) SignUp(ctx context.Context, email, password string) (*remote.Session, error) {
	user, err := s.CreateUser(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*remote.Session, error) {
	email = validators.NormalizeEmail(email)

	var user models.User
	if err := s.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, remote.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, remote.ErrInvalidCredentials
	}

	return s.issue(&user)
}

// --------------------------------------------------
// Sessions
// --------------------------------------------------

func (s *Service) GetSession(ctx context.Context, token string) (*remote.Session, error) {
	if token == "" {
		return nil, remote.ErrNoSession
	}

	claims, err := s.parse(token)
	if err != nil {
		return nil, remote.ErrNoSession
	}

	revoked, err := s.rdb.Exists(ctx, revokedKeyPrefix+claims.ID).Result()
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked > 0 {
		return nil, remote.ErrNoSession
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, remote.ErrNoSession
	}

	return &remote.Session{
		ID:        claims.ID,
		Token:     token,
		UserID:    uint(userID),
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// SignOut revokes the token until it would have expired anyway. Unknown or
// expired tokens are already signed out.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}

	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	return s.rdb.Set(ctx, revokedKeyPrefix+claims.ID, claims.Subject, ttl).Err()
}

func (s *Service) issue(user *models.User) (*remote.Session, error) {
	now := s.now()
	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.opts.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &remote.Session{
		ID:        claims.ID,
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *Service) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenMalformed
		}
		return []byte(s.opts.Secret), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// --------------------------------------------------
// Password reset
// --------------------------------------------------

// SendPasswordReset answers the same way whether or not the address exists.
func (s *Service) SendPasswordReset(ctx context.Context, email, redirectURL string) error {
	email = validators.NormalizeEmail(email)

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	link, err := url.Parse(redirectURL)
	if err != nil {
		return fmt.Errorf("parse redirect url: %w", err)
	}

	token := uuid.NewString()
	if err := s.rdb.Set(ctx, resetKeyPrefix+token, user.ID, s.opts.ResetTTL).Err(); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	q := link.Query()
	q.Set("token", token)
	link.RawQuery = q.Encode()

	return s.mailer.SendPasswordReset(ctx, user.Email, link.String())
}

func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return remote.ErrWeakPassword
	}

	userID, err := s.rdb.GetDel(ctx, resetKeyPrefix+resetToken).Uint64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return remote.ErrInvalidResetToken
		}
		return fmt.Errorf("load reset token: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("password_hash", string(hashed))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return remote.ErrInvalidResetToken
	}

	s.log.Info("password reset", zap.Uint64("user_id", userID))
	return nil
}
