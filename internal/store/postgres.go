package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// notify publishes a collection name on the change channel so the mirror
// can reload that collection. Failures are surfaced to the caller: a write
// that cannot announce itself would leave the mirror stale.
func (s *PostgresStore) notify(ctx context.Context, collection string) error {
	if _, err := s.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, ChangeChannel, collection); err != nil {
		return fmt.Errorf("notify %s: %w", collection, err)
	}
	return nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, display_name, email, password_hash, avatar_url)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.DisplayName, user.Email, user.PasswordHash, user.AvatarURL)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return s.notify(ctx, CollectionProfiles)
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, password_hash, avatar_url, created_at, updated_at
		FROM users
		WHERE LOWER(email)=LOWER($1)
	`, email).Scan(&user.ID, &user.DisplayName, &user.Email, &user.PasswordHash, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, userID string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, password_hash, avatar_url, created_at, updated_at
		FROM users
		WHERE id=$1
	`, userID).Scan(&user.ID, &user.DisplayName, &user.Email, &user.PasswordHash, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, userID, displayName, avatarURL string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET display_name=$2, avatar_url=$3, updated_at=NOW()
		WHERE id=$1
	`, userID, displayName, avatarURL)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return s.notify(ctx, CollectionProfiles)
}

func (s *PostgresStore) DeleteUser(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	// Dependent rows cascade, so every mirrored collection may have changed.
	for _, collection := range []string{
		CollectionProfiles, CollectionStories, CollectionComments,
		CollectionLikes, CollectionReports, CollectionEmpathy,
	} {
		if err := s.notify(ctx, collection); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) ListProfiles(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, display_name, avatar_url
		FROM users
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	items := make([]Profile, 0)
	for rows.Next() {
		var item Profile
		if err := rows.Scan(&item.ID, &item.DisplayName, &item.AvatarURL); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) InsertStory(ctx context.Context, story Story) error {
	categories := story.Categories
	if categories == nil {
		categories = CategoryList{}
	}
	encodedCategories, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("marshal categories: %w", err)
	}
	tags := story.Tags
	if tags == nil {
		tags = []string{}
	}
	encodedTags, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO stories (id, title, categories, short_description, content, summary, image_url, author_id, author_name, author_image_url, file_name, status, tags)
		VALUES ($1, $2, $3::jsonb, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13::jsonb)
	`, story.ID, story.Title, string(encodedCategories), story.ShortDescription, story.Content, story.Summary,
		story.ImageURL, story.AuthorID, story.AuthorName, story.AuthorImageURL, story.FileName, story.Status, string(encodedTags))
	if err != nil {
		return fmt.Errorf("insert story: %w", err)
	}
	return s.notify(ctx, CollectionStories)
}

func (s *PostgresStore) GetStory(ctx context.Context, storyID string) (Story, error) {
	var item Story
	var categoriesRaw, tagsRaw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, categories, short_description, content, summary, image_url, author_id, author_name, author_image_url, file_name, status, tags, created_at
		FROM stories
		WHERE id=$1
	`, storyID).Scan(
		&item.ID,
		&item.Title,
		&categoriesRaw,
		&item.ShortDescription,
		&item.Content,
		&item.Summary,
		&item.ImageURL,
		&item.AuthorID,
		&item.AuthorName,
		&item.AuthorImageURL,
		&item.FileName,
		&item.Status,
		&tagsRaw,
		&item.CreatedAt,
	)
	if err != nil {
		return Story{}, err
	}
	if err := decodeStoryLists(&item, categoriesRaw, tagsRaw); err != nil {
		return Story{}, err
	}
	return item, nil
}

// decodeStoryLists unpacks the JSONB categories and tags columns. The
// columns are NOT NULL with a '[]' default, so a decode failure means
// the row is corrupt and must not be silently served as empty lists.
func decodeStoryLists(item *Story, categoriesRaw, tagsRaw []byte) error {
	if err := json.Unmarshal(categoriesRaw, &item.Categories); err != nil {
		return fmt.Errorf("decode categories for story %s: %w", item.ID, err)
	}
	if err := json.Unmarshal(tagsRaw, &item.Tags); err != nil {
		return fmt.Errorf("decode tags for story %s: %w", item.ID, err)
	}
	return nil
}

func (s *PostgresStore) ListStories(ctx context.Context) ([]Story, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, categories, short_description, content, summary, image_url, author_id, author_name, author_image_url, file_name, status, tags, created_at
		FROM stories
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	defer rows.Close()

	items := make([]Story, 0)
	for rows.Next() {
		var item Story
		var categoriesRaw, tagsRaw []byte
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&categoriesRaw,
			&item.ShortDescription,
			&item.Content,
			&item.Summary,
			&item.ImageURL,
			&item.AuthorID,
			&item.AuthorName,
			&item.AuthorImageURL,
			&item.FileName,
			&item.Status,
			&tagsRaw,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan story: %w", err)
		}
		if err := decodeStoryLists(&item, categoriesRaw, tagsRaw); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stories: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpdateStory(ctx context.Context, storyID string, update StoryUpdate) error {
	current, err := s.GetStory(ctx, storyID)
	if err != nil {
		return err
	}
	if update.Title != nil {
		current.Title = *update.Title
	}
	if update.Categories != nil {
		current.Categories = *update.Categories
	}
	if update.ShortDescription != nil {
		current.ShortDescription = *update.ShortDescription
	}
	if update.Content != nil {
		current.Content = *update.Content
	}
	if update.Summary != nil {
		current.Summary = *update.Summary
	}
	if update.ImageURL != nil {
		current.ImageURL = *update.ImageURL
	}
	if update.FileName != nil {
		current.FileName = *update.FileName
	}
	if update.Status != nil {
		current.Status = *update.Status
	}
	if update.Tags != nil {
		current.Tags = *update.Tags
	}

	categories := current.Categories
	if categories == nil {
		categories = CategoryList{}
	}
	encodedCategories, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("marshal categories: %w", err)
	}
	tags := current.Tags
	if tags == nil {
		tags = []string{}
	}
	encodedTags, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE stories
		SET title=$2, categories=$3::jsonb, short_description=$4, content=$5, summary=$6, image_url=$7, file_name=$8, status=$9, tags=$10::jsonb
		WHERE id=$1
	`, storyID, current.Title, string(encodedCategories), current.ShortDescription, current.Content,
		current.Summary, current.ImageURL, current.FileName, current.Status, string(encodedTags))
	if err != nil {
		return fmt.Errorf("update story: %w", err)
	}
	return s.notify(ctx, CollectionStories)
}

func (s *PostgresStore) DeleteStory(ctx context.Context, storyID, authorID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM stories WHERE id=$1 AND author_id=$2`, storyID, authorID)
	if err != nil {
		return false, fmt.Errorf("delete story: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete story rows: %w", err)
	}
	if affected == 0 {
		return false, nil
	}
	for _, collection := range []string{
		CollectionStories, CollectionComments, CollectionLikes, CollectionEmpathy,
	} {
		if err := s.notify(ctx, collection); err != nil {
			return true, err
		}
	}
	return true, nil
}

func (s *PostgresStore) InsertComment(ctx context.Context, comment Comment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (id, resource_id, author_id, author_name, author_image_url, body)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, comment.ID, comment.ResourceID, comment.AuthorID, comment.AuthorName, comment.AuthorImageURL, comment.Text)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return s.notify(ctx, CollectionComments)
}

func (s *PostgresStore) DeleteComment(ctx context.Context, commentID, authorID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id=$1 AND author_id=$2`, commentID, authorID)
	if err != nil {
		return false, fmt.Errorf("delete comment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete comment rows: %w", err)
	}
	if affected == 0 {
		return false, nil
	}
	return true, s.notify(ctx, CollectionComments)
}

func (s *PostgresStore) ListComments(ctx context.Context) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, resource_id, author_id, author_name, author_image_url, body, created_at
		FROM comments
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	items := make([]Comment, 0)
	for rows.Next() {
		var item Comment
		if err := rows.Scan(&item.ID, &item.ResourceID, &item.AuthorID, &item.AuthorName, &item.AuthorImageURL, &item.Text, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return items, nil
}

// ToggleLike adds the user's like if absent and removes it if present.
// The insert-then-conditional-delete pair keeps concurrent toggles from
// double-applying.
func (s *PostgresStore) ToggleLike(ctx context.Context, resourceID, userID string) (liked bool, err error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO likes (resource_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (resource_id, user_id) DO NOTHING
	`, resourceID, userID)
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert like rows: %w", err)
	}
	if inserted == 0 {
		if _, err := s.db.ExecContext(ctx, `
			DELETE FROM likes WHERE resource_id=$1 AND user_id=$2
		`, resourceID, userID); err != nil {
			return false, fmt.Errorf("delete like: %w", err)
		}
	}
	return inserted > 0, s.notify(ctx, CollectionLikes)
}

func (s *PostgresStore) ListLikes(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT resource_id, user_id
		FROM likes
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	defer rows.Close()

	likes := make(map[string][]string)
	for rows.Next() {
		var resourceID, userID string
		if err := rows.Scan(&resourceID, &userID); err != nil {
			return nil, fmt.Errorf("scan like: %w", err)
		}
		likes[resourceID] = append(likes[resourceID], userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate likes: %w", err)
	}
	return likes, nil
}

func (s *PostgresStore) ToggleBookmark(ctx context.Context, userID, resourceID string) (bookmarked bool, err error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO bookmarks (user_id, resource_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, resource_id) DO NOTHING
	`, userID, resourceID)
	if err != nil {
		return false, fmt.Errorf("insert bookmark: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert bookmark rows: %w", err)
	}
	if inserted == 0 {
		if _, err := s.db.ExecContext(ctx, `
			DELETE FROM bookmarks WHERE user_id=$1 AND resource_id=$2
		`, userID, resourceID); err != nil {
			return false, fmt.Errorf("delete bookmark: %w", err)
		}
	}
	return inserted > 0, s.notify(ctx, CollectionProfiles)
}

func (s *PostgresStore) ListBookmarks(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT resource_id
		FROM bookmarks
		WHERE user_id=$1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	items := make([]string, 0)
	for rows.Next() {
		var resourceID string
		if err := rows.Scan(&resourceID); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		items = append(items, resourceID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookmarks: %w", err)
	}
	return items, nil
}

// InsertReport is idempotent per reporter and resource.
func (s *PostgresStore) InsertReport(ctx context.Context, report Report) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (resource_id, reporter_id, resource_title)
		VALUES ($1, $2, $3)
		ON CONFLICT (resource_id, reporter_id) DO NOTHING
	`, report.ResourceID, report.ReporterID, report.ResourceTitle)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return s.notify(ctx, CollectionReports)
}

func (s *PostgresStore) ListReports(ctx context.Context) ([]Report, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT resource_id, reporter_id, resource_title, created_at
		FROM reports
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	items := make([]Report, 0)
	for rows.Next() {
		var item Report
		if err := rows.Scan(&item.ResourceID, &item.ReporterID, &item.ResourceTitle, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return items, nil
}

// UpsertEmpathyRating records one rating per user per story; a repeat
// rating replaces the previous value.
func (s *PostgresStore) UpsertEmpathyRating(ctx context.Context, resourceID, userID string, rating int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO empathy_ratings (resource_id, user_id, rating)
		VALUES ($1, $2, $3)
		ON CONFLICT (resource_id, user_id)
		DO UPDATE SET rating=EXCLUDED.rating, updated_at=NOW()
	`, resourceID, userID, rating)
	if err != nil {
		return fmt.Errorf("upsert empathy rating: %w", err)
	}
	return s.notify(ctx, CollectionEmpathy)
}

func (s *PostgresStore) ListEmpathyRatings(ctx context.Context) (map[string][]EmpathyRating, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT resource_id, user_id, rating
		FROM empathy_ratings
		ORDER BY updated_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list empathy ratings: %w", err)
	}
	defer rows.Close()

	ratings := make(map[string][]EmpathyRating)
	for rows.Next() {
		var resourceID string
		var item EmpathyRating
		if err := rows.Scan(&resourceID, &item.UserID, &item.Rating); err != nil {
			return nil, fmt.Errorf("scan empathy rating: %w", err)
		}
		ratings[resourceID] = append(ratings[resourceID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate empathy ratings: %w", err)
	}
	return ratings, nil
}

func (s *PostgresStore) SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_sessions (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE SET user_id=EXCLUDED.user_id, expires_at=EXCLUDED.expires_at
	`, tokenHash, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("save refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM refresh_sessions WHERE token_hash=$1`, tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) LookupRefreshSession(ctx context.Context, tokenHash string) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id
		FROM refresh_sessions
		WHERE token_hash=$1 AND expires_at > NOW()
	`, tokenHash).Scan(&userID)
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (s *PostgresStore) RevokeAccessToken(ctx context.Context, jti string, exp time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO revoked_access_tokens (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`, jti, exp)
	if err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM revoked_access_tokens WHERE jti=$1)`, jti).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return revoked, nil
}

// SearchStories is the fallback text search used when no search index is
// configured.
func (s *PostgresStore) SearchStories(ctx context.Context, query string) ([]Story, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, categories, short_description, content, summary, image_url, author_id, author_name, author_image_url, file_name, status, tags, created_at
		FROM stories
		WHERE title ILIKE '%' || $1 || '%'
		   OR short_description ILIKE '%' || $1 || '%'
		   OR content ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC, id DESC
	`, query)
	if err != nil {
		return nil, fmt.Errorf("search stories: %w", err)
	}
	defer rows.Close()

	items := make([]Story, 0)
	for rows.Next() {
		var item Story
		var categoriesRaw, tagsRaw []byte
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&categoriesRaw,
			&item.ShortDescription,
			&item.Content,
			&item.Summary,
			&item.ImageURL,
			&item.AuthorID,
			&item.AuthorName,
			&item.AuthorImageURL,
			&item.FileName,
			&item.Status,
			&tagsRaw,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan story: %w", err)
		}
		if err := decodeStoryLists(&item, categoriesRaw, tagsRaw); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stories: %w", err)
	}
	return items, nil
}

// Ping verifies the database connection is alive
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
