package store

import (
	"database/sql"
	"fmt"

	"github.com/youthunite/youthunite/internal/model"
)

type RegistrationStore struct {
	db *sql.DB
}

func NewRegistrationStore(db *sql.DB) *RegistrationStore {
	return &RegistrationStore{db: db}
}

func scanRegistration(scanner interface{ Scan(...any) error }) (*model.EventRegistration, error) {
	var r model.EventRegistration
	var userID sql.NullInt64
	var info sql.NullString

	err := scanner.Scan(
		&r.ID, &r.EventID, &userID, &r.FirstName, &r.LastName,
		&r.Email, &r.Phone, &r.Age, &info, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		r.UserID = &userID.Int64
	}
	if info.Valid {
		r.AdditionalInfo = &info.String
	}
	return &r, nil
}

const registrationCols = `id, event_id, user_id, first_name, last_name, email, phone, age, additional_info, created_at`

// Create records an event signup. The same email cannot register twice for
// one event; that duplicate surfaces as ErrConflict.
func (s *RegistrationStore) Create(eventID int64, userID *int64, firstName, lastName, email, phone string, age int, additionalInfo *string) (*model.EventRegistration, error) {
	var uid sql.NullInt64
	if userID != nil {
		uid = sql.NullInt64{Int64: *userID, Valid: true}
	}
	var info sql.NullString
	if additionalInfo != nil && *additionalInfo != "" {
		info = sql.NullString{String: *additionalInfo, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO event_registrations (event_id, user_id, first_name, last_name, email, phone, age, additional_info)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		eventID, uid, firstName, lastName, email, phone, age, info,
	)
	if isUniqueViolation(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("insert registration: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+registrationCols+` FROM event_registrations WHERE id = ?`, id)
	return scanRegistration(row)
}

func (s *RegistrationStore) EmailRegistered(eventID int64, email string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM event_registrations WHERE event_id = ? AND email = ?`,
		eventID, email,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check registration: %w", err)
	}
	return count > 0, nil
}

func (s *RegistrationStore) ListByEvent(eventID int64) ([]model.EventRegistration, error) {
	rows, err := s.db.Query(
		`SELECT `+registrationCols+` FROM event_registrations WHERE event_id = ? ORDER BY created_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.EventRegistration
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, *r)
	}
	return regs, rows.Err()
}
