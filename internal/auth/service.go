// Package auth implements session issuance and validation, credential
// checks, and the password-reset flow. Clients hold a signed JWT whose only
// claim is an opaque session token; the sessions table is the source of
// truth, so deleting a row revokes access immediately.
package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/youthunite/youthunite/internal/model"
	"github.com/youthunite/youthunite/internal/store"
)

var (
	ErrConflict           = errors.New("auth: name or email already taken")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrInvalidSession     = errors.New("auth: invalid session")
	ErrSessionNotFound    = errors.New("auth: session not found")
	ErrInvalidResetToken  = errors.New("auth: invalid reset token")
)

const (
	sessionLifetime = 30 * 24 * time.Hour
	bcryptCost      = 10
)

// dummyHash is compared against when a login hits an unknown email, so the
// unknown-email and wrong-password paths cost about the same.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type Service struct {
	db       *sql.DB
	users    *store.UserStore
	sessions *store.SessionStore
	resets   *store.ResetTokenStore
	key      []byte
	logger   *slog.Logger
}

func NewService(db *sql.DB, users *store.UserStore, sessions *store.SessionStore, resets *store.ResetTokenStore, jwtKey []byte, logger *slog.Logger) *Service {
	return &Service{
		db:       db,
		users:    users,
		sessions: sessions,
		resets:   resets,
		key:      jwtKey,
		logger:   logger,
	}
}

// Register creates the account and logs it in, returning the user and a
// signed session token.
func (s *Service) Register(name, email, password, ip string) (*model.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(name, email, string(hash))
	if errors.Is(err, store.ErrConflict) {
		return nil, "", ErrConflict
	}
	if err != nil {
		return nil, "", err
	}

	token, err := s.CreateSession(user.ID, ip)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("user registered", "user_id", user.ID, "tier", user.Tier)
	return user, token, nil
}

// VerifyCredentials checks an email and password pair. When the email is
// unknown a dummy hash is still compared so both failure paths take about
// as long.
func (s *Service) VerifyCredentials(email, password string) (*model.User, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login verifies credentials and issues a fresh session.
func (s *Service) Login(email, password, ip string) (*model.User, string, error) {
	user, err := s.VerifyCredentials(email, password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.CreateSession(user.ID, ip)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return user, token, nil
}

// CreateSession mints a session row and returns it wrapped in a signed JWT.
func (s *Service) CreateSession(userID int64, ip string) (string, error) {
	expiresAt := time.Now().UTC().Add(sessionLifetime)
	sess, err := s.sessions.Create(userID, expiresAt, ip)
	if err != nil {
		return "", err
	}
	return signSessionToken(s.key, sess.Token, expiresAt)
}

// ValidateSession resolves a bearer token to its live session. Expired
// sessions are deleted on sight and reported as invalid.
func (s *Service) ValidateSession(tokenString string) (*model.Session, error) {
	sid, err := parseSessionToken(s.key, tokenString)
	if err != nil {
		return nil, ErrInvalidSession
	}
	sess, err := s.sessions.GetByToken(sid)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrInvalidSession
	}
	if !sess.ExpiresAt.After(time.Now()) {
		if err := s.sessions.Delete(sess.ID); err != nil {
			s.logger.Warn("delete expired session", "error", err)
		}
		return nil, ErrInvalidSession
	}
	return sess, nil
}

// Logout revokes the session behind the token. A token whose session is
// already gone yields ErrSessionNotFound.
func (s *Service) Logout(tokenString string) error {
	sid, err := parseSessionToken(s.key, tokenString)
	if err != nil {
		return ErrInvalidSession
	}
	sess, err := s.sessions.GetByToken(sid)
	if err != nil {
		return err
	}
	if sess == nil {
		return ErrSessionNotFound
	}
	return s.sessions.Delete(sess.ID)
}

// RequestPasswordReset mints a reset token for the account behind the
// email. Unknown emails return (nil, nil, nil): the handler responds
// identically either way so the endpoint cannot be used to probe accounts.
func (s *Service) RequestPasswordReset(email string) (*model.PasswordResetToken, *model.User, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, nil
	}
	tok, err := s.resets.Create(user.ID)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("password reset requested", "user_id", user.ID)
	return tok, user, nil
}

// ValidateResetToken checks that a reset token exists, is unused, and has
// not expired. Expired tokens are deleted on sight.
func (s *Service) ValidateResetToken(token string) (*model.PasswordResetToken, error) {
	tok, err := s.resets.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if tok == nil || tok.UsedAt != nil {
		return nil, ErrInvalidResetToken
	}
	if !tok.ExpiresAt.After(time.Now()) {
		if err := s.resets.Delete(tok.ID); err != nil {
			s.logger.Warn("delete expired reset token", "error", err)
		}
		return nil, ErrInvalidResetToken
	}
	return tok, nil
}

// ResetPassword redeems a reset token. The password update, the used-at
// stamp, and the revocation of every session run in one transaction.
func (s *Service) ResetPassword(token, newPassword string) error {
	tok, err := s.ValidateResetToken(token)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := s.users.UpdatePasswordTx(tx, tok.UserID, string(hash)); err != nil {
		return err
	}
	if err := s.resets.MarkUsedTx(tx, tok.ID); err != nil {
		return err
	}
	if err := s.sessions.DeleteByUserIDTx(tx, tok.UserID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Info("password reset completed", "user_id", tok.UserID)
	return nil
}
