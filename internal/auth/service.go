package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ebarcelosf/active-learn-hub-backup/internal/config"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrUserNotFound       = errors.New("user not found")
)

// Session is the authenticated identity attached to an issued token.
type Session struct {
	UserID    uuid.UUID
	Email     string
	Token     string
	ExpiresAt time.Time
}

type EventKind string

const (
	EventSignedIn  EventKind = "signed_in"
	EventSignedOut EventKind = "signed_out"
)

// Event is an auth-state-change notification. Session is nil on sign-out.
type Event struct {
	Kind    EventKind
	Session *Session
}

// Service is the email/password identity boundary: bcrypt hashes, HS256
// access tokens and revocable persisted session rows.
type Service struct {
	db  *gorm.DB
	cfg *config.Config

	mu   sync.RWMutex
	subs []func(Event)
}

func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{db: db, cfg: cfg}
}

// NormalizeEmail lowercases and trims an email before any keyed use.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates the identity row only. The caller inserts the linked
// profile in a second, non-transactional step.
func (s *Service) SignUp(email, password string) (*models.User, error) {
	email = NormalizeEmail(email)
	if email == "" || len(password) < 8 {
		return nil, errors.New("email required and password must be at least 8 characters")
	}

	var existing models.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:       uuid.New(),
		Email:    email,
		Password: string(hash),
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

func (s *Service) SignIn(email, password string) (*Session, error) {
	var user models.User
	if err := s.db.Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session, err := s.issueSession(&user)
	if err != nil {
		return nil, err
	}

	s.emit(Event{Kind: EventSignedIn, Session: session})
	return session, nil
}

func (s *Service) SignOut(token string) error {
	err := s.db.Model(&models.AuthSession{}).
		Where("token_hash = ?", hashToken(token)).
		Update("revoked", true).Error
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	s.emit(Event{Kind: EventSignedOut})
	return nil
}

// Validate re-checks a token against both its signature and the stored
// session row, so revocation and expiry are honored on every call.
func (s *Service) Validate(token string) (*Session, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidSession
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidSession
	}
	email, _ := claims["email"].(string)

	var stored models.AuthSession
	if err := s.db.Where("token_hash = ? AND revoked = false", hashToken(token)).First(&stored).Error; err != nil {
		return nil, ErrInvalidSession
	}

	if time.Now().After(stored.ExpiresAt) {
		s.db.Model(&stored).Update("revoked", true)
		return nil, ErrInvalidSession
	}

	return &Session{
		UserID:    userID,
		Email:     email,
		Token:     token,
		ExpiresAt: stored.ExpiresAt,
	}, nil
}

// Subscribe registers a callback for auth-state changes (login, logout).
func (s *Service) Subscribe(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Service) issueSession(user *models.User) (*Session, error) {
	expiresAt := time.Now().Add(s.cfg.JWTAccessExpiry)

	// iat/exp are second-resolution; jti keeps tokens from two sign-ins in
	// the same second distinct, since the stored hash is unique per token.
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"jti":   uuid.NewString(),
		"iat":   time.Now().Unix(),
		"exp":   expiresAt.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	record := models.AuthSession{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(token),
		ExpiresAt: expiresAt,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return &Session{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *Service) emit(e Event) {
	s.mu.RLock()
	subs := make([]func(Event), len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(e)
	}
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
