package store

import (
	"testing"

	"github.com/youthunite/youthunite/internal/model"
)

func newTestStory(t *testing.T, ss *StoryStore, title, email string) *model.Story {
	t.Helper()
	st, err := ss.Create(title, "some content", "Alice", email, nil, nil, nil)
	if err != nil {
		t.Fatalf("create test story: %v", err)
	}
	return st
}

func TestStoryCreateStartsPendingUnpublished(t *testing.T) {
	db := setupTestDB(t)
	ss := NewStoryStore(db)

	age := 17
	category := "volunteering"
	st, err := ss.Create("My Summer", "content", "Alice", "alice@example.com", &age, &category, []string{"beach", "cleanup"})
	if err != nil {
		t.Fatalf("create story: %v", err)
	}
	if st.VerificationStatus != model.StatusPending {
		t.Errorf("status = %q, want %q", st.VerificationStatus, model.StatusPending)
	}
	if st.IsPublished {
		t.Error("new story should be unpublished")
	}
	if st.AuthorAge == nil || *st.AuthorAge != 17 {
		t.Errorf("author_age = %v, want 17", st.AuthorAge)
	}
	if len(st.Tags) != 2 || st.Tags[0] != "beach" {
		t.Errorf("tags = %v, want [beach cleanup]", st.Tags)
	}
}

func TestStoryCreateDuplicateTitleSameAuthor(t *testing.T) {
	db := setupTestDB(t)
	ss := NewStoryStore(db)

	newTestStory(t, ss, "My Summer", "alice@example.com")
	_, err := ss.Create("My Summer", "different content", "Alice", "alice@example.com", nil, nil, nil)
	if err != ErrConflict {
		t.Errorf("duplicate story err = %v, want ErrConflict", err)
	}

	// Same title from a different author is fine.
	if _, err := ss.Create("My Summer", "content", "Bob", "bob@example.com", nil, nil, nil); err != nil {
		t.Errorf("different author same title: %v", err)
	}
}

func TestStoryVerifyApproveAndPublish(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	ss := NewStoryStore(db)

	admin := newTestUser(t, us, "admin", "admin@example.com")
	st := newTestStory(t, ss, "My Summer", "alice@example.com")

	got, err := ss.Verify(st.ID, model.StatusApproved, admin.ID, nil, true)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.VerificationStatus != model.StatusApproved {
		t.Errorf("status = %q, want %q", got.VerificationStatus, model.StatusApproved)
	}
	if !got.IsPublished {
		t.Error("approve with publish should mark story published")
	}
	if got.PublishedAt == nil {
		t.Error("expected published_at to be set")
	}
}

func TestStoryVerifyApproveWithoutPublish(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	ss := NewStoryStore(db)

	admin := newTestUser(t, us, "admin", "admin@example.com")
	st := newTestStory(t, ss, "My Summer", "alice@example.com")

	got, err := ss.Verify(st.ID, model.StatusApproved, admin.ID, nil, false)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.IsPublished {
		t.Error("approval alone should not publish")
	}
	if got.PublishedAt != nil {
		t.Errorf("published_at = %v, want nil", got.PublishedAt)
	}
}

func TestStoryVerifyRejectDefaultsReason(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	ss := NewStoryStore(db)

	admin := newTestUser(t, us, "admin", "admin@example.com")
	st := newTestStory(t, ss, "My Summer", "alice@example.com")

	got, err := ss.Verify(st.ID, model.StatusRejected, admin.ID, nil, false)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.RejectionReason == nil || *got.RejectionReason != model.DefaultRejectionReason {
		t.Errorf("rejection_reason = %v, want %q", got.RejectionReason, model.DefaultRejectionReason)
	}
}

func TestStoryPublicVisibilityRequiresApprovalAndPublish(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	ss := NewStoryStore(db)

	admin := newTestUser(t, us, "admin", "admin@example.com")

	pending := newTestStory(t, ss, "Pending", "alice@example.com")
	approvedOnly := newTestStory(t, ss, "Approved Only", "alice@example.com")
	publishedOnly := newTestStory(t, ss, "Published Only", "alice@example.com")
	visible := newTestStory(t, ss, "Visible", "alice@example.com")

	ss.Verify(approvedOnly.ID, model.StatusApproved, admin.ID, nil, false)
	ss.SetPublished(publishedOnly.ID, true) // published but never approved
	ss.Verify(visible.ID, model.StatusApproved, admin.ID, nil, true)

	stories, err := ss.ListPublished()
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if len(stories) != 1 || stories[0].Title != "Visible" {
		t.Errorf("published listing = %v, want only Visible", stories)
	}

	for _, st := range []*model.Story{pending, approvedOnly, publishedOnly} {
		got, err := ss.GetPublished(st.ID)
		if err != nil {
			t.Fatalf("get published %q: %v", st.Title, err)
		}
		if got != nil {
			t.Errorf("%q should not be publicly visible", st.Title)
		}
	}
}

func TestStorySetPublishedToggle(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	ss := NewStoryStore(db)

	admin := newTestUser(t, us, "admin", "admin@example.com")
	st := newTestStory(t, ss, "My Summer", "alice@example.com")
	ss.Verify(st.ID, model.StatusApproved, admin.ID, nil, true)

	got, err := ss.SetPublished(st.ID, false)
	if err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	if got.IsPublished {
		t.Error("expected story unpublished")
	}
	if got.PublishedAt != nil {
		t.Error("unpublish should clear published_at")
	}

	vis, _ := ss.GetPublished(st.ID)
	if vis != nil {
		t.Error("unpublished story should not be publicly visible")
	}
}

func TestStoryListPublishedByCategory(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	ss := NewStoryStore(db)

	admin := newTestUser(t, us, "admin", "admin@example.com")

	cat := "volunteering"
	a, _ := ss.Create("Volunteering Story", "content", "Alice", "alice@example.com", nil, &cat, nil)
	other := "sports"
	b, _ := ss.Create("Sports Story", "content", "Alice", "alice2@example.com", nil, &other, nil)
	ss.Verify(a.ID, model.StatusApproved, admin.ID, nil, true)
	ss.Verify(b.ID, model.StatusApproved, admin.ID, nil, true)

	stories, err := ss.ListPublishedByCategory("volunteering")
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(stories) != 1 || stories[0].Title != "Volunteering Story" {
		t.Errorf("stories = %v, want only the volunteering one", stories)
	}
}

func TestStoryVerifyRejectsUnknownStatus(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	ss := NewStoryStore(db)

	admin := newTestUser(t, us, "admin", "admin@example.com")
	st := newTestStory(t, ss, "My Summer", "alice@example.com")

	if _, err := ss.Verify(st.ID, "live", admin.ID, nil, false); err == nil {
		t.Error("expected error for unknown status")
	}

	got, err := ss.GetByID(st.ID)
	if err != nil {
		t.Fatalf("get story: %v", err)
	}
	if got.VerificationStatus != model.StatusPending {
		t.Errorf("status = %q, want still %q", got.VerificationStatus, model.StatusPending)
	}
}
