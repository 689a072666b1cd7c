package store

import (
	"encoding/json"
	"time"
)

// Story lifecycle statuses. Anything other than StatusPublished is visible
// only to the story's author.
const (
	StatusProcessing    = "processing"
	StatusPendingReview = "pending_review"
	StatusPublished     = "published"
)

// Collection names carried on change notifications. They match the payloads
// emitted by pg_notify on every write.
const (
	CollectionStories  = "stories"
	CollectionComments = "comments"
	CollectionLikes    = "likes"
	CollectionReports  = "reports"
	CollectionEmpathy  = "empathyRatings"
	CollectionProfiles = "users"
)

// ChangeChannel is the pg_notify channel all collection writes publish to.
const ChangeChannel = "library_changes"

type User struct {
	ID           string
	DisplayName  string
	Email        string
	PasswordHash string
	AvatarURL    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the public projection of a user exposed through the mirror.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
	AvatarURL   string `json:"imageUrl"`
}

// CategoryList tolerates the legacy single-label form on input: both
// "Culture" and ["Migration","Culture"] decode to a list.
type CategoryList []string

func (c *CategoryList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*c = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	if single == "" {
		*c = CategoryList{}
		return nil
	}
	*c = CategoryList{single}
	return nil
}

func (c CategoryList) Contains(label string) bool {
	for _, item := range c {
		if item == label {
			return true
		}
	}
	return false
}

type Story struct {
	ID               string
	Title            string
	Categories       CategoryList
	ShortDescription string
	Content          string
	Summary          string
	ImageURL         string
	AuthorID         string
	AuthorName       string
	AuthorImageURL   string
	FileName         string
	Status           string
	Tags             []string
	CreatedAt        time.Time
}

// VisibleTo applies the lifecycle invariant: unpublished stories are
// returned only to their author.
func (s Story) VisibleTo(viewerID string) bool {
	if s.Status == StatusPublished {
		return true
	}
	return s.AuthorID != "" && s.AuthorID == viewerID
}

// StoryUpdate is a partial field merge; nil fields are left unchanged.
type StoryUpdate struct {
	Title            *string
	Categories       *CategoryList
	ShortDescription *string
	Content          *string
	Summary          *string
	ImageURL         *string
	FileName         *string
	Status           *string
	Tags             *[]string
}

type Comment struct {
	ID             string
	ResourceID     string
	AuthorID       string
	AuthorName     string
	AuthorImageURL string
	Text           string
	CreatedAt      time.Time
}

type Report struct {
	ResourceID    string
	ReporterID    string
	ResourceTitle string
	CreatedAt     time.Time
}

type EmpathyRating struct {
	UserID string `json:"userId"`
	Rating int    `json:"rating"`
}

// CommitInfo describes one entry of a story's revision history.
type CommitInfo struct {
	Hash      string
	Message   string
	Author    string
	CreatedAt time.Time
}
