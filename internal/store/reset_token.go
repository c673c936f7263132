package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/youthunite/youthunite/internal/model"
)

// resetTokenLifetime is how long a password-reset token stays redeemable.
const resetTokenLifetime = time.Hour

type ResetTokenStore struct {
	db *sql.DB
}

func NewResetTokenStore(db *sql.DB) *ResetTokenStore {
	return &ResetTokenStore{db: db}
}

func scanResetToken(scanner interface{ Scan(...any) error }) (*model.PasswordResetToken, error) {
	var t model.PasswordResetToken
	var usedAt sql.NullTime
	err := scanner.Scan(&t.ID, &t.Token, &t.UserID, &t.ExpiresAt, &usedAt, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	if usedAt.Valid {
		t.UsedAt = &usedAt.Time
	}
	return &t, nil
}

const resetTokenCols = `id, token, user_id, expires_at, used_at, created_at`

// Create mints a one-hour reset token for the user. Any existing tokens for
// the same user are deleted first, so at most one token is ever live.
func (s *ResetTokenStore) Create(userID int64) (*model.PasswordResetToken, error) {
	_, err := s.db.Exec(`DELETE FROM password_reset_tokens WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("delete previous reset tokens: %w", err)
	}

	token := uuid.NewString()
	expiresAt := time.Now().UTC().Add(resetTokenLifetime)

	result, err := s.db.Exec(
		`INSERT INTO password_reset_tokens (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, userID, expiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reset token: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+resetTokenCols+` FROM password_reset_tokens WHERE id = ?`, id)
	return scanResetToken(row)
}

// GetByToken returns the reset token row regardless of expiry or use; the
// auth service applies the validity rules.
func (s *ResetTokenStore) GetByToken(token string) (*model.PasswordResetToken, error) {
	row := s.db.QueryRow(`SELECT `+resetTokenCols+` FROM password_reset_tokens WHERE token = ?`, token)
	t, err := scanResetToken(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reset token: %w", err)
	}
	return t, nil
}

func (s *ResetTokenStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM password_reset_tokens WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete reset token: %w", err)
	}
	return nil
}

// MarkUsedTx stamps the token as redeemed inside an existing transaction.
// Used tokens are kept, not deleted, so reuse can be detected and rejected.
func (s *ResetTokenStore) MarkUsedTx(tx *sql.Tx, id int64) error {
	_, err := tx.Exec(
		`UPDATE password_reset_tokens SET used_at = datetime('now') WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark reset token used: %w", err)
	}
	return nil
}

func (s *ResetTokenStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM password_reset_tokens WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired reset tokens: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
