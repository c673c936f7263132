package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/youthunite/youthunite/internal/model"
)

// tokenRetries bounds how many times session creation retries a colliding
// token before giving up. Collisions on a v4 UUID are effectively
// impossible, so hitting the bound means something is badly wrong.
const tokenRetries = 3

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func scanSession(scanner interface{ Scan(...any) error }) (*model.Session, error) {
	var s model.Session
	var ip sql.NullString
	err := scanner.Scan(&s.ID, &s.Token, &s.UserID, &ip, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	if ip.Valid {
		s.IPAddress = &ip.String
	}
	return &s, nil
}

const sessionCols = `id, token, user_id, ip_address, expires_at, created_at`

// Create inserts a session with a fresh random token. The UNIQUE constraint
// on the token column is the real uniqueness guarantee; on a collision the
// insert is retried with a new token.
func (s *SessionStore) Create(userID int64, expiresAt time.Time, ip string) (*model.Session, error) {
	var ipVal sql.NullString
	if ip != "" {
		ipVal = sql.NullString{String: ip, Valid: true}
	}

	var id int64
	backoff := retry.WithMaxRetries(tokenRetries, retry.NewConstant(time.Millisecond))
	err := retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		token := uuid.NewString()
		result, err := s.db.Exec(
			`INSERT INTO sessions (token, user_id, ip_address, expires_at) VALUES (?, ?, ?, ?)`,
			token, userID, ipVal, expiresAt.UTC(),
		)
		if isUniqueViolation(err) {
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}
		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+sessionCols+` FROM sessions WHERE id = ?`, id)
	return scanSession(row)
}

// GetByToken returns the session for the given token, or nil if not found.
// Expiry is not filtered here: the auth service checks it so an expired
// session can be deleted on first lookup.
func (s *SessionStore) GetByToken(token string) (*model.Session, error) {
	row := s.db.QueryRow(`SELECT `+sessionCols+` FROM sessions WHERE token = ?`, token)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session by token: %w", err)
	}
	return sess, nil
}

func (s *SessionStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) DeleteByUserID(userID int64) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("delete sessions by user: %w", err)
	}
	return nil
}

// DeleteByUserIDTx is the transactional variant used by password-reset
// redemption.
func (s *SessionStore) DeleteByUserIDTx(tx *sql.Tx, userID int64) error {
	_, err := tx.Exec(`DELETE FROM sessions WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("delete sessions by user: %w", err)
	}
	return nil
}

func (s *SessionStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM sessions WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
