package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/youthunite/youthunite/internal/model"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

const eventCols = `id, title, description, location, start_time, end_time, organizer_id,
	verification_status, verified_by, verified_at, rejection_reason, created_at, updated_at`

const eventColsPrefixed = `e.id, e.title, e.description, e.location, e.start_time, e.end_time, e.organizer_id,
	e.verification_status, e.verified_by, e.verified_at, e.rejection_reason, e.created_at, e.updated_at`

func scanEvent(scanner interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	var verifiedBy sql.NullInt64
	var verifiedAt sql.NullTime
	var reason sql.NullString

	err := scanner.Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.StartTime, &e.EndTime,
		&e.OrganizerID, &e.VerificationStatus, &verifiedBy, &verifiedAt, &reason,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if verifiedBy.Valid {
		e.VerifiedBy = &verifiedBy.Int64
	}
	if verifiedAt.Valid {
		e.VerifiedAt = &verifiedAt.Time
	}
	if reason.Valid {
		e.RejectionReason = &reason.String
	}
	return &e, nil
}

// Create inserts a new event in the pending state.
func (s *EventStore) Create(title, description, location string, startTime, endTime time.Time, organizerID int64) (*model.Event, error) {
	result, err := s.db.Exec(
		`INSERT INTO events (title, description, location, start_time, end_time, organizer_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		title, description, location, startTime.UTC(), endTime.UTC(), organizerID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *EventStore) GetByID(id int64) (*model.Event, error) {
	row := s.db.QueryRow(`SELECT `+eventCols+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// GetApproved returns the event only if it has been approved, with the
// organizer's public identity joined in.
func (s *EventStore) GetApproved(id int64) (*model.Event, error) {
	row := s.db.QueryRow(
		`SELECT `+eventColsPrefixed+`, u.id, u.name
		 FROM events e JOIN users u ON u.id = e.organizer_id
		 WHERE e.id = ? AND e.verification_status = ?`,
		id, model.StatusApproved,
	)
	e, err := scanEventWithOrganizer(row, false)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get approved event: %w", err)
	}
	return e, nil
}

// ListApproved returns the public event listing: approved events ordered by
// start time ascending, with organizer identity joined in.
func (s *EventStore) ListApproved() ([]model.Event, error) {
	rows, err := s.db.Query(
		`SELECT `+eventColsPrefixed+`, u.id, u.name
		 FROM events e JOIN users u ON u.id = e.organizer_id
		 WHERE e.verification_status = ?
		 ORDER BY e.start_time ASC`,
		model.StatusApproved,
	)
	if err != nil {
		return nil, fmt.Errorf("list approved events: %w", err)
	}
	return collectEventsWithOrganizer(rows, false)
}

// ListPending returns events awaiting adjudication, newest first, with the
// organizer's name and email for the moderation panel.
func (s *EventStore) ListPending() ([]model.Event, error) {
	rows, err := s.db.Query(
		`SELECT `+eventColsPrefixed+`, u.id, u.name, u.email
		 FROM events e JOIN users u ON u.id = e.organizer_id
		 WHERE e.verification_status = ?
		 ORDER BY e.created_at DESC`,
		model.StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending events: %w", err)
	}
	return collectEventsWithOrganizer(rows, true)
}

// ListByOrganizer returns all of a user's own events, including status and
// rejection reason, ordered by start time.
func (s *EventStore) ListByOrganizer(organizerID int64) ([]model.Event, error) {
	rows, err := s.db.Query(
		`SELECT `+eventCols+` FROM events WHERE organizer_id = ? ORDER BY start_time ASC`,
		organizerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list events by organizer: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// ListAll returns every event regardless of status, for the admin panel.
func (s *EventStore) ListAll() ([]model.Event, error) {
	rows, err := s.db.Query(`SELECT ` + eventCols + ` FROM events ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// Verify records an adjudication. Re-adjudication overwrites the previous
// decision; no history is kept. Approval clears any rejection reason,
// rejection records one (defaulted when absent).
func (s *EventStore) Verify(id int64, status string, verifiedBy int64, reason *string) (*model.Event, error) {
	if !model.ValidStatus(status) {
		return nil, fmt.Errorf("verify event: invalid status %q", status)
	}

	var reasonVal sql.NullString
	if status == model.StatusRejected {
		r := model.DefaultRejectionReason
		if reason != nil && *reason != "" {
			r = *reason
		}
		reasonVal = sql.NullString{String: r, Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE events
		 SET verification_status = ?, verified_by = ?, verified_at = datetime('now'),
		     rejection_reason = ?, updated_at = datetime('now')
		 WHERE id = ?`,
		status, verifiedBy, reasonVal, id,
	)
	if err != nil {
		return nil, fmt.Errorf("verify event: %w", err)
	}
	return s.GetByID(id)
}

func (s *EventStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func scanEventWithOrganizer(scanner interface{ Scan(...any) error }, withEmail bool) (*model.Event, error) {
	var e model.Event
	var org model.Organizer
	var verifiedBy sql.NullInt64
	var verifiedAt sql.NullTime
	var reason sql.NullString

	dest := []any{
		&e.ID, &e.Title, &e.Description, &e.Location, &e.StartTime, &e.EndTime,
		&e.OrganizerID, &e.VerificationStatus, &verifiedBy, &verifiedAt, &reason,
		&e.CreatedAt, &e.UpdatedAt, &org.ID, &org.Name,
	}
	if withEmail {
		dest = append(dest, &org.Email)
	}
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}

	if verifiedBy.Valid {
		e.VerifiedBy = &verifiedBy.Int64
	}
	if verifiedAt.Valid {
		e.VerifiedAt = &verifiedAt.Time
	}
	if reason.Valid {
		e.RejectionReason = &reason.String
	}
	e.Organizer = &org
	return &e, nil
}

func collectEventsWithOrganizer(rows *sql.Rows, withEmail bool) ([]model.Event, error) {
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEventWithOrganizer(rows, withEmail)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}
