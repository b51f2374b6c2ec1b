package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/ewright/todo-backend/internal/config"
	"github.com/ewright/todo-backend/internal/domain"
	"github.com/ewright/todo-backend/internal/repository"
	"github.com/ewright/todo-backend/internal/repository/redisstore"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	userRepo repository.UserRepository
	sessions *redisstore.SessionStore
	pending  *redisstore.VerificationStore
	cfg      *config.Config
}

func NewAuthService(userRepo repository.UserRepository, sessions *redisstore.SessionStore, pending *redisstore.VerificationStore, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		sessions: sessions,
		pending:  pending,
		cfg:      cfg,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type RegisterResult struct {
	User             *domain.User
	VerificationCode string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	User  *domain.User
	Token string
}

// Identity is the decoded session token: the caller's identity snapshot.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err == nil && existing != nil {
		return nil, domain.ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	code, err := generateVerificationCode()
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:               uuid.New(),
		Name:             input.Name,
		Email:            input.Email,
		PasswordHash:     string(hashedPassword),
		Verified:         false,
		VerificationCode: code,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration for the same email.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrEmailExists
		}
		return nil, err
	}

	// Demo convenience standing in for an email send; never fails the
	// registration.
	if err := s.pending.Stage(ctx, user.Email, code); err != nil {
		log.Printf("WARN [service.Auth] failed to stage pending verification: %v", err)
	}

	return &RegisterResult{User: user, VerificationCode: code}, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, code, email string) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	// Once verified the code is gone, so repeat verification is a not-found
	// condition rather than a silent success.
	if user.Verified || user.VerificationCode == "" {
		return nil, domain.ErrUserNotFound
	}

	if user.VerificationCode != code {
		return nil, domain.ErrInvalidCode
	}

	user.Verified = true
	user.VerificationCode = ""
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if err := s.pending.Clear(ctx); err != nil {
		log.Printf("WARN [service.Auth] failed to clear pending verification: %v", err)
	}

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.Verified {
		return nil, domain.ErrEmailNotVerified
	}

	lifetime := time.Duration(s.cfg.JWTExpirationHours) * time.Hour

	token, err := s.generateToken(user, lifetime)
	if err != nil {
		return nil, err
	}

	// Overwrites any previously current session for this user.
	if err := s.sessions.Put(ctx, user.ID.String(), token, lifetime); err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	// Safe with no active session: deleting a missing slot is a no-op.
	return s.sessions.Delete(ctx, userID.String())
}

func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) generateToken(user *domain.User, lifetime time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"id":    user.ID.String(),
		"email": user.Email,
		"exp":   time.Now().Add(lifetime).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// DecodeToken resolves a bearer token to the identity it encodes. The
// signature is always verified; expiry checking follows configuration, since
// the system this emulates embedded exp without ever enforcing it.
func (s *AuthService) DecodeToken(tokenString string) (*Identity, error) {
	var opts []jwt.ParserOption
	if !s.cfg.JWTEnforceExpiry {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	idStr, ok := claims["id"].(string)
	if !ok {
		return nil, errors.New("missing 'id' claim in token")
	}
	userID, err := uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}

	email, ok := claims["email"].(string)
	if !ok {
		return nil, errors.New("missing 'email' claim in token")
	}

	return &Identity{UserID: userID, Email: email}, nil
}

func generateVerificationCode() (string, error) {
	// Six digits, 100000..999999.
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
