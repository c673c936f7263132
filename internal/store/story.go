package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/youthunite/youthunite/internal/model"
)

type StoryStore struct {
	db *sql.DB
}

func NewStoryStore(db *sql.DB) *StoryStore {
	return &StoryStore{db: db}
}

const storyCols = `id, title, content, author_name, author_email, author_age, category, tags,
	verification_status, verified_by, verified_at, rejection_reason,
	is_published, published_at, created_at, updated_at`

func scanStory(scanner interface{ Scan(...any) error }) (*model.Story, error) {
	var st model.Story
	var age sql.NullInt64
	var category, tags, reason sql.NullString
	var verifiedBy sql.NullInt64
	var verifiedAt, publishedAt sql.NullTime
	var publishedInt int

	err := scanner.Scan(
		&st.ID, &st.Title, &st.Content, &st.AuthorName, &st.AuthorEmail,
		&age, &category, &tags, &st.VerificationStatus, &verifiedBy, &verifiedAt,
		&reason, &publishedInt, &publishedAt, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if age.Valid {
		a := int(age.Int64)
		st.AuthorAge = &a
	}
	if category.Valid {
		st.Category = &category.String
	}
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &st.Tags); err != nil {
			return nil, fmt.Errorf("decode story tags: %w", err)
		}
	}
	if st.Tags == nil {
		st.Tags = []string{}
	}
	if verifiedBy.Valid {
		st.VerifiedBy = &verifiedBy.Int64
	}
	if verifiedAt.Valid {
		st.VerifiedAt = &verifiedAt.Time
	}
	if reason.Valid {
		st.RejectionReason = &reason.String
	}
	st.IsPublished = publishedInt != 0
	if publishedAt.Valid {
		st.PublishedAt = &publishedAt.Time
	}
	return &st, nil
}

// Create inserts a new story submission in the pending state. A second
// story with the same author email and identical title is ErrConflict.
func (s *StoryStore) Create(title, content, authorName, authorEmail string, authorAge *int, category *string, tags []string) (*model.Story, error) {
	var age sql.NullInt64
	if authorAge != nil {
		age = sql.NullInt64{Int64: int64(*authorAge), Valid: true}
	}
	var cat sql.NullString
	if category != nil && *category != "" {
		cat = sql.NullString{String: *category, Valid: true}
	}
	var tagsVal sql.NullString
	if len(tags) > 0 {
		encoded, err := json.Marshal(tags)
		if err != nil {
			return nil, fmt.Errorf("encode story tags: %w", err)
		}
		tagsVal = sql.NullString{String: string(encoded), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO stories (title, content, author_name, author_email, author_age, category, tags)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		title, content, authorName, authorEmail, age, cat, tagsVal,
	)
	if isUniqueViolation(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("insert story: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *StoryStore) GetByID(id int64) (*model.Story, error) {
	row := s.db.QueryRow(`SELECT `+storyCols+` FROM stories WHERE id = ?`, id)
	st, err := scanStory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get story: %w", err)
	}
	return st, nil
}

// GetPublished returns the story only if it is approved and published.
func (s *StoryStore) GetPublished(id int64) (*model.Story, error) {
	row := s.db.QueryRow(
		`SELECT `+storyCols+` FROM stories
		 WHERE id = ? AND verification_status = ? AND is_published = 1`,
		id, model.StatusApproved,
	)
	st, err := scanStory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get published story: %w", err)
	}
	return st, nil
}

// ListPublished returns approved, published stories, newest publish first.
func (s *StoryStore) ListPublished() ([]model.Story, error) {
	rows, err := s.db.Query(
		`SELECT `+storyCols+` FROM stories
		 WHERE verification_status = ? AND is_published = 1
		 ORDER BY published_at DESC`,
		model.StatusApproved,
	)
	if err != nil {
		return nil, fmt.Errorf("list published stories: %w", err)
	}
	return collectStories(rows)
}

func (s *StoryStore) ListPublishedByCategory(category string) ([]model.Story, error) {
	rows, err := s.db.Query(
		`SELECT `+storyCols+` FROM stories
		 WHERE category = ? AND verification_status = ? AND is_published = 1
		 ORDER BY published_at DESC`,
		category, model.StatusApproved,
	)
	if err != nil {
		return nil, fmt.Errorf("list stories by category: %w", err)
	}
	return collectStories(rows)
}

// ListPending returns stories awaiting adjudication, newest first.
func (s *StoryStore) ListPending() ([]model.Story, error) {
	rows, err := s.db.Query(
		`SELECT `+storyCols+` FROM stories WHERE verification_status = ? ORDER BY created_at DESC`,
		model.StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending stories: %w", err)
	}
	return collectStories(rows)
}

// Verify records an adjudication, overwriting any previous decision. When
// approving, publish=true additionally marks the story published in the
// same statement, so approval and publication land atomically.
func (s *StoryStore) Verify(id int64, status string, verifiedBy int64, reason *string, publish bool) (*model.Story, error) {
	if !model.ValidStatus(status) {
		return nil, fmt.Errorf("verify story: invalid status %q", status)
	}

	var reasonVal sql.NullString
	if status == model.StatusRejected {
		r := model.DefaultRejectionReason
		if reason != nil && *reason != "" {
			r = *reason
		}
		reasonVal = sql.NullString{String: r, Valid: true}
	}

	var err error
	if status == model.StatusApproved && publish {
		_, err = s.db.Exec(
			`UPDATE stories
			 SET verification_status = ?, verified_by = ?, verified_at = datetime('now'),
			     rejection_reason = NULL, is_published = 1, published_at = datetime('now'),
			     updated_at = datetime('now')
			 WHERE id = ?`,
			status, verifiedBy, id,
		)
	} else {
		_, err = s.db.Exec(
			`UPDATE stories
			 SET verification_status = ?, verified_by = ?, verified_at = datetime('now'),
			     rejection_reason = ?, updated_at = datetime('now')
			 WHERE id = ?`,
			status, verifiedBy, reasonVal, id,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("verify story: %w", err)
	}
	return s.GetByID(id)
}

// SetPublished flips the publication flag. Publication is independent of
// verification status here; public listings still require both.
func (s *StoryStore) SetPublished(id int64, publish bool) (*model.Story, error) {
	var err error
	if publish {
		_, err = s.db.Exec(
			`UPDATE stories SET is_published = 1, published_at = datetime('now'), updated_at = datetime('now') WHERE id = ?`,
			id,
		)
	} else {
		_, err = s.db.Exec(
			`UPDATE stories SET is_published = 0, published_at = NULL, updated_at = datetime('now') WHERE id = ?`,
			id,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("set story published: %w", err)
	}
	return s.GetByID(id)
}

func (s *StoryStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM stories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete story: %w", err)
	}
	return nil
}

func collectStories(rows *sql.Rows) ([]model.Story, error) {
	defer rows.Close()

	var stories []model.Story
	for rows.Next() {
		st, err := scanStory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan story: %w", err)
		}
		stories = append(stories, *st)
	}
	return stories, rows.Err()
}
