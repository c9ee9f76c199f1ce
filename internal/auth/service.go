package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	dErrors "giftlist/pkg/domain-errors"
	"giftlist/pkg/platform/sentinel"
	"giftlist/pkg/requestcontext"
)

// UserStore resolves and creates users.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
}

// SessionStore persists sessions; Redis-backed in production, in-memory
// otherwise.
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Find(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// Service implements login, logout and token validation.
type Service struct {
	users      UserStore
	sessions   SessionStore
	signingKey []byte
	sessionTTL time.Duration
}

func NewService(users UserStore, sessions SessionStore, signingKey string, sessionTTL time.Duration) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		signingKey: []byte(signingKey),
		sessionTTL: sessionTTL,
	}
}

type sessionClaims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// Login verifies the password and issues a signed session token. Bad
// username and bad password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	now := requestcontext.Now(ctx)
	session := &Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to save session")
	}

	claims := sessionClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign session token")
	}
	return token, nil
}

// Logout deletes the session behind the token; the JWT stops validating at
// the same moment.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete session")
	}
	return nil
}

// ValidateToken checks the signature and the live session behind the token.
// Satisfies middleware.SessionValidator.
func (s *Service) ValidateToken(ctx context.Context, token string) (int64, string, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return 0, "", fmt.Errorf("invalid session token")
	}

	session, err := s.sessions.Find(ctx, claims.ID)
	if err != nil {
		return 0, "", fmt.Errorf("session not found")
	}
	if session.Expired(requestcontext.Now(ctx)) {
		_ = s.sessions.Delete(ctx, session.ID)
		return 0, "", fmt.Errorf("session expired")
	}
	return session.UserID, session.ID, nil
}

// Register creates a user with a bcrypt password hash. Used by seeding and
// tests; there is no public sign-up endpoint.
func (s *Service) Register(ctx context.Context, username, email, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	user, err := s.users.Create(ctx, &User{Username: username, Email: email, PasswordHash: string(hash)})
	if err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "username already taken")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}
	return user, nil
}
