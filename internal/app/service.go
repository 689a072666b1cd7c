package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"livinglibrary/api/internal/auth"
	"livinglibrary/api/internal/authpw"
	"livinglibrary/api/internal/avatar"
	"livinglibrary/api/internal/config"
	"livinglibrary/api/internal/genai"
	"livinglibrary/api/internal/mirror"
	"livinglibrary/api/internal/moderation"
	"livinglibrary/api/internal/search"
	"livinglibrary/api/internal/store"
	"livinglibrary/api/internal/util"
)

type Session struct {
	Token        string
	RefreshToken string
	UserID       string
	UserName     string
	Email        string
	AvatarURL    string
	JTI          string
	ExpiresAt    time.Time
}

// Authenticated reports whether the session belongs to a signed-in user.
func (s Session) Authenticated() bool {
	return s.UserID != ""
}

type CreateStoryInput struct {
	Title            string             `json:"title"`
	Categories       store.CategoryList `json:"categories"`
	ShortDescription string             `json:"shortDescription"`
	Content          string             `json:"content"`
	Summary          string             `json:"summary"`
	ImageURL         string             `json:"imageUrl"`
	FileName         string             `json:"fileName"`
	Tags             []string           `json:"tags"`
	Status           string             `json:"status"`
}

type UpdateStoryInput struct {
	Title            *string             `json:"title"`
	Categories       *store.CategoryList `json:"categories"`
	ShortDescription *string             `json:"shortDescription"`
	Content          *string             `json:"content"`
	Summary          *string             `json:"summary"`
	ImageURL         *string             `json:"imageUrl"`
	FileName         *string             `json:"fileName"`
	Status           *string             `json:"status"`
	Tags             *[]string           `json:"tags"`
}

type UpdateProfileInput struct {
	Name         string `json:"name"`
	AvatarData   string `json:"avatarData"`
	AvatarType   string `json:"avatarType"`
	RemoveAvatar bool   `json:"removeAvatar"`
}

var allowedSubmitStatuses = map[string]struct{}{
	store.StatusPendingReview: {},
	store.StatusPublished:     {},
}

type dataStore interface {
	GetUserByID(context.Context, string) (store.User, error)
	UpdateProfile(context.Context, string, string, string) error
	DeleteUser(context.Context, string) error
	InsertStory(context.Context, store.Story) error
	GetStory(context.Context, string) (store.Story, error)
	UpdateStory(context.Context, string, store.StoryUpdate) error
	DeleteStory(context.Context, string, string) (bool, error)
	InsertComment(context.Context, store.Comment) error
	DeleteComment(context.Context, string, string) (bool, error)
	ToggleLike(context.Context, string, string) (bool, error)
	ToggleBookmark(context.Context, string, string) (bool, error)
	ListBookmarks(context.Context, string) ([]string, error)
	InsertReport(context.Context, store.Report) error
	UpsertEmpathyRating(context.Context, string, string, int) error
	RevokeAccessToken(context.Context, string, time.Time) error
	IsAccessTokenRevoked(context.Context, string) (bool, error)
	Ping(ctx context.Context) error
}

type sessionStore interface {
	SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (string, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
}

type revisionService interface {
	EnsureStoryRepo(storyID, content, author string) error
	CommitContent(storyID, content, author, message string) (store.CommitInfo, error)
	GetContentByHash(storyID, hash string) (string, error)
	History(storyID string, limit int) ([]store.CommitInfo, error)
	Delete(storyID string) error
}

type aiClient interface {
	ProcessFile(ctx context.Context, data, mimeType string) (genai.ProcessedFile, error)
	Summarize(ctx context.Context, text string) (string, error)
	Chat(ctx context.Context, history []genai.Message, message string) (string, error)
}

type Service struct {
	cfg       config.Config
	store     dataStore
	sessions  sessionStore
	mirror    *mirror.Mirror
	hub       *mirror.Hub
	authpw    *authpw.Service
	search    *search.Service
	revisions revisionService
	avatars   avatar.Store
	ai        aiClient
}

type Deps struct {
	Store     dataStore
	Sessions  sessionStore
	Mirror    *mirror.Mirror
	Hub       *mirror.Hub
	AuthPW    *authpw.Service
	Search    *search.Service
	Revisions revisionService
	Avatars   avatar.Store
	AI        aiClient
}

func New(cfg config.Config, deps Deps) *Service {
	return &Service{
		cfg:       cfg,
		store:     deps.Store,
		sessions:  deps.Sessions,
		mirror:    deps.Mirror,
		hub:       deps.Hub,
		authpw:    deps.AuthPW,
		search:    deps.Search,
		revisions: deps.Revisions,
		avatars:   deps.Avatars,
		ai:        deps.AI,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) Hub() *mirror.Hub {
	return s.hub
}

func (s *Service) AI() aiClient {
	return s.ai
}

// --- Sessions ---

func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (Session, error) {
	user, err := s.authpw.SignUp(ctx, authpw.SignUpRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
	})
	if err != nil {
		switch err {
		case authpw.ErrEmailTaken:
			return Session{}, domainError(http.StatusConflict, "EMAIL_EXISTS", "Email already registered", nil)
		case authpw.ErrInvalidInput, authpw.ErrPasswordTooShort:
			return Session{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil)
		}
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	user, err := s.authpw.SignIn(ctx, authpw.SignInRequest{Email: email, Password: password})
	if err != nil {
		return Session{}, domainError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil)
	}
	return s.issueSession(ctx, user)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	userID, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, auth.ErrInvalidToken
	}
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return Session{}, auth.ErrInvalidToken
	}
	return s.issueSession(ctx, user)
}

func (s *Service) issueSession(ctx context.Context, user store.User) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.JWTSecret), auth.Claims{
		Sub:   user.ID,
		Name:  user.DisplayName,
		Email: user.Email,
		JTI:   jti,
		Exp:   expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), user.ID, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		UserName:     user.DisplayName,
		Email:        user.Email,
		AvatarURL:    user.AvatarURL,
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return Session{}, err
	}
	revoked, err := s.store.IsAccessTokenRevoked(ctx, claims.JTI)
	if err != nil {
		return Session{}, err
	}
	if revoked {
		return Session{}, auth.ErrInvalidToken
	}

	user, err := s.store.GetUserByID(ctx, claims.Sub)
	if err != nil {
		return Session{}, auth.ErrInvalidToken
	}

	return Session{
		Token:     token,
		UserID:    user.ID,
		UserName:  user.DisplayName,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
		JTI:       claims.JTI,
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) Logout(ctx context.Context, session Session, refreshToken string) error {
	if session.JTI != "" {
		_ = s.store.RevokeAccessToken(ctx, session.JTI, session.ExpiresAt)
	}
	if refreshToken != "" {
		_ = s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
	}
	return nil
}

// --- Collection reads ---

// StoriesFor returns the story snapshot scoped to the viewer: published
// stories plus the viewer's own unpublished ones.
func (s *Service) StoriesFor(viewerID string) []map[string]any {
	stories := s.mirror.Stories()
	items := make([]map[string]any, 0, len(stories))
	for _, story := range stories {
		if !story.VisibleTo(viewerID) {
			continue
		}
		items = append(items, storyPayload(story))
	}
	return items
}

func (s *Service) StoryFor(viewerID, storyID string) (map[string]any, error) {
	for _, story := range s.mirror.Stories() {
		if story.ID != storyID {
			continue
		}
		if !story.VisibleTo(viewerID) {
			break
		}
		return storyPayload(story), nil
	}
	return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Story not found", nil)
}

func (s *Service) Comments() []map[string]any {
	comments := s.mirror.Comments()
	items := make([]map[string]any, 0, len(comments))
	for _, comment := range comments {
		items = append(items, commentPayload(comment))
	}
	return items
}

func (s *Service) Likes() map[string][]string {
	return s.mirror.Likes()
}

func (s *Service) Reports() []map[string]any {
	reports := s.mirror.Reports()
	items := make([]map[string]any, 0, len(reports))
	for _, report := range reports {
		items = append(items, map[string]any{
			"resourceId":    report.ResourceID,
			"reporterId":    report.ReporterID,
			"resourceTitle": report.ResourceTitle,
			"createdAt":     report.CreatedAt,
		})
	}
	return items
}

func (s *Service) EmpathyRatings() map[string][]store.EmpathyRating {
	return s.mirror.EmpathyRatings()
}

func (s *Service) Profiles() []store.Profile {
	return s.mirror.Profiles()
}

// CollectionRevision reports the collection's snapshot revision.
func (s *Service) CollectionRevision(collection string) uint64 {
	return s.mirror.Revision(collection)
}

// CollectionPayload renders one mirrored collection for the stream,
// scoped to the viewer where the collection requires it.
func (s *Service) CollectionPayload(collection, viewerID string) any {
	switch collection {
	case store.CollectionStories:
		return s.StoriesFor(viewerID)
	case store.CollectionComments:
		return s.Comments()
	case store.CollectionLikes:
		return s.Likes()
	case store.CollectionReports:
		return s.Reports()
	case store.CollectionEmpathy:
		return s.EmpathyRatings()
	case store.CollectionProfiles:
		return s.Profiles()
	}
	return nil
}

// --- Stories ---

func (s *Service) CreateStory(ctx context.Context, session Session, input CreateStoryInput) (map[string]any, error) {
	if !session.Authenticated() {
		return nil, domainError(http.StatusUnauthorized, "UNAUTHORIZED", "Sign in to share a story", nil)
	}
	if input.Title == "" || input.Content == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title and content are required", nil)
	}
	if moderation.Contains(input.Title) || moderation.Contains(input.ShortDescription) || moderation.Contains(input.Content) {
		return nil, domainError(http.StatusUnprocessableEntity, "PROFANITY", moderation.ErrorMessage(), nil)
	}

	status := input.Status
	if status == "" {
		status = store.StatusPendingReview
	}
	if _, ok := allowedSubmitStatuses[status]; !ok {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "status must be pending_review or published", nil)
	}

	storyID := util.NewID("st")
	imageURL := input.ImageURL
	if imageURL == "" {
		imageURL = fmt.Sprintf("https://picsum.photos/seed/%s/400/300", storyID)
	}

	story := store.Story{
		ID:               storyID,
		Title:            input.Title,
		Categories:       input.Categories,
		ShortDescription: input.ShortDescription,
		Content:          input.Content,
		Summary:          input.Summary,
		ImageURL:         imageURL,
		AuthorID:         session.UserID,
		AuthorName:       session.UserName,
		AuthorImageURL:   session.AvatarURL,
		FileName:         input.FileName,
		Status:           status,
		Tags:             input.Tags,
		CreatedAt:        time.Now(),
	}

	if err := s.store.InsertStory(ctx, story); err != nil {
		return nil, err
	}

	if s.revisions != nil {
		if err := s.revisions.EnsureStoryRepo(story.ID, story.Content, session.UserName); err != nil {
			log.Printf("revisions: init story %s: %v", story.ID, err)
		}
	}
	if s.search != nil {
		s.search.IndexStory(story)
	}

	return storyPayload(story), nil
}

func (s *Service) UpdateStory(ctx context.Context, session Session, storyID string, input UpdateStoryInput) (map[string]any, error) {
	if !session.Authenticated() {
		return nil, domainError(http.StatusUnauthorized, "UNAUTHORIZED", "Sign in to edit stories", nil)
	}

	if _, err := s.store.GetStory(ctx, storyID); err != nil {
		if store.IsNotFound(err) {
			return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Story not found", nil)
		}
		return nil, err
	}

	for _, text := range []*string{input.Title, input.ShortDescription, input.Content} {
		if text != nil && moderation.Contains(*text) {
			return nil, domainError(http.StatusUnprocessableEntity, "PROFANITY", moderation.ErrorMessage(), nil)
		}
	}
	if input.Status != nil {
		if _, ok := allowedSubmitStatuses[*input.Status]; !ok {
			return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "status must be pending_review or published", nil)
		}
	}

	update := store.StoryUpdate{
		Title:            input.Title,
		Categories:       input.Categories,
		ShortDescription: input.ShortDescription,
		Content:          input.Content,
		Summary:          input.Summary,
		ImageURL:         input.ImageURL,
		FileName:         input.FileName,
		Status:           input.Status,
		Tags:             input.Tags,
	}
	if err := s.store.UpdateStory(ctx, storyID, update); err != nil {
		return nil, err
	}

	updated, err := s.store.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}

	if s.revisions != nil && input.Content != nil {
		if err := s.revisions.EnsureStoryRepo(storyID, *input.Content, session.UserName); err == nil {
			if _, err := s.revisions.CommitContent(storyID, *input.Content, session.UserName, "Edit story"); err != nil {
				log.Printf("revisions: commit story %s: %v", storyID, err)
			}
		}
	}
	if s.search != nil {
		s.search.IndexStory(updated)
	}

	return storyPayload(updated), nil
}

// DeleteStory removes the story if the caller owns it. Unauthenticated
// callers and non-owners are silent no-ops.
func (s *Service) DeleteStory(ctx context.Context, session Session, storyID string) error {
	if !session.Authenticated() {
		return nil
	}
	deleted, err := s.store.DeleteStory(ctx, storyID, session.UserID)
	if err != nil {
		return err
	}
	if !deleted {
		return nil
	}
	if s.revisions != nil {
		if err := s.revisions.Delete(storyID); err != nil {
			log.Printf("revisions: delete story %s: %v", storyID, err)
		}
	}
	if s.search != nil {
		s.search.DeleteStory(storyID)
	}
	return nil
}

func (s *Service) StoryHistory(ctx context.Context, session Session, storyID string) ([]map[string]any, error) {
	story, err := s.store.GetStory(ctx, storyID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Story not found", nil)
		}
		return nil, err
	}
	if !story.VisibleTo(session.UserID) {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Story not found", nil)
	}
	if s.revisions == nil {
		return []map[string]any{}, nil
	}

	commits, err := s.revisions.History(storyID, 0)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(commits))
	for _, commit := range commits {
		items = append(items, map[string]any{
			"hash":      commit.Hash,
			"message":   commit.Message,
			"author":    commit.Author,
			"createdAt": commit.CreatedAt,
		})
	}
	return items, nil
}

// StoryRevision returns the story content at a specific commit, subject
// to the same visibility rule as the story itself.
func (s *Service) StoryRevision(ctx context.Context, session Session, storyID, hash string) (map[string]any, error) {
	story, err := s.store.GetStory(ctx, storyID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Story not found", nil)
		}
		return nil, err
	}
	if !story.VisibleTo(session.UserID) {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Story not found", nil)
	}
	if s.revisions == nil {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Revision not found", nil)
	}
	content, err := s.revisions.GetContentByHash(storyID, hash)
	if err != nil {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Revision not found", nil)
	}
	return map[string]any{
		"storyId": storyID,
		"hash":    hash,
		"content": content,
	}, nil
}

// --- Comments ---

func (s *Service) AddComment(ctx context.Context, session Session, storyID, text string) (map[string]any, error) {
	if !session.Authenticated() {
		return nil, domainError(http.StatusUnauthorized, "UNAUTHORIZED", "Sign in to comment", nil)
	}
	if text == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "comment text is required", nil)
	}
	if moderation.Contains(text) {
		return nil, domainError(http.StatusUnprocessableEntity, "PROFANITY", moderation.ErrorMessage(), nil)
	}

	story, err := s.store.GetStory(ctx, storyID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Story not found", nil)
		}
		return nil, err
	}
	if !story.VisibleTo(session.UserID) {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Story not found", nil)
	}

	comment := store.Comment{
		ID:             util.NewID("c"),
		ResourceID:     storyID,
		AuthorID:       session.UserID,
		AuthorName:     session.UserName,
		AuthorImageURL: session.AvatarURL,
		Text:           text,
		CreatedAt:      time.Now(),
	}
	if err := s.store.InsertComment(ctx, comment); err != nil {
		return nil, err
	}
	return commentPayload(comment), nil
}

// DeleteComment removes the comment if the caller authored it; anything
// else is a silent no-op.
func (s *Service) DeleteComment(ctx context.Context, session Session, commentID string) error {
	if !session.Authenticated() {
		return nil
	}
	_, err := s.store.DeleteComment(ctx, commentID, session.UserID)
	return err
}

// --- Reactions ---

// ToggleLike flips the caller's like. Unauthenticated callers are a
// silent no-op.
func (s *Service) ToggleLike(ctx context.Context, session Session, storyID string) (bool, error) {
	if !session.Authenticated() {
		return false, nil
	}
	return s.store.ToggleLike(ctx, storyID, session.UserID)
}

func (s *Service) ToggleBookmark(ctx context.Context, session Session, storyID string) (bool, error) {
	if !session.Authenticated() {
		return false, nil
	}
	return s.store.ToggleBookmark(ctx, session.UserID, storyID)
}

func (s *Service) Bookmarks(ctx context.Context, session Session) ([]string, error) {
	if !session.Authenticated() {
		return nil, domainError(http.StatusUnauthorized, "UNAUTHORIZED", "Sign in to view bookmarks", nil)
	}
	return s.store.ListBookmarks(ctx, session.UserID)
}

// Report records a content report once per reporter. Unauthenticated
// callers are a silent no-op.
func (s *Service) Report(ctx context.Context, session Session, storyID string) error {
	if !session.Authenticated() {
		return nil
	}
	title := ""
	if story, err := s.store.GetStory(ctx, storyID); err == nil {
		title = story.Title
	}
	return s.store.InsertReport(ctx, store.Report{
		ResourceID:    storyID,
		ReporterID:    session.UserID,
		ResourceTitle: title,
		CreatedAt:     time.Now(),
	})
}

// RateEmpathy stores the caller's 0-100 rating, replacing any previous
// one. Unauthenticated callers are a silent no-op after validation.
func (s *Service) RateEmpathy(ctx context.Context, session Session, storyID string, rating int) error {
	if rating < 0 || rating > 100 {
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "rating must be between 0 and 100", nil)
	}
	if !session.Authenticated() {
		return nil
	}
	return s.store.UpsertEmpathyRating(ctx, storyID, session.UserID, rating)
}

// --- Profiles ---

func (s *Service) UpdateProfile(ctx context.Context, session Session, input UpdateProfileInput) (map[string]any, error) {
	if !session.Authenticated() {
		return nil, domainError(http.StatusUnauthorized, "UNAUTHORIZED", "Sign in to update your profile", nil)
	}
	name := input.Name
	if name == "" {
		name = session.UserName
	}
	if moderation.Contains(name) {
		return nil, domainError(http.StatusUnprocessableEntity, "PROFANITY", moderation.ErrorMessage(), nil)
	}

	avatarURL := session.AvatarURL
	switch {
	case input.RemoveAvatar:
		if s.avatars != nil {
			if err := s.avatars.Delete(ctx, avatarKey(session.UserID)); err != nil {
				log.Printf("avatar: delete for %s: %v", session.UserID, err)
			}
		}
		avatarURL = fmt.Sprintf("https://picsum.photos/seed/%s/200/200", session.UserID)
	case input.AvatarData != "":
		if s.avatars == nil {
			return nil, domainError(http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Avatar storage not configured", nil)
		}
		data, err := decodeBase64(input.AvatarData)
		if err != nil {
			return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "avatarData must be base64", nil)
		}
		contentType := input.AvatarType
		if contentType == "" {
			contentType = "image/png"
		}
		url, err := s.avatars.Put(ctx, avatarKey(session.UserID), data, contentType)
		if err != nil {
			return nil, err
		}
		avatarURL = url
	}

	if err := s.store.UpdateProfile(ctx, session.UserID, name, avatarURL); err != nil {
		return nil, err
	}
	return map[string]any{
		"id":       session.UserID,
		"name":     name,
		"imageUrl": avatarURL,
	}, nil
}

func (s *Service) DeleteAccount(ctx context.Context, session Session) error {
	if !session.Authenticated() {
		return domainError(http.StatusUnauthorized, "UNAUTHORIZED", "Sign in to delete your account", nil)
	}
	if s.avatars != nil {
		if err := s.avatars.Delete(ctx, avatarKey(session.UserID)); err != nil {
			log.Printf("avatar: delete for %s: %v", session.UserID, err)
		}
	}
	return s.store.DeleteUser(ctx, session.UserID)
}

// --- Search ---

func (s *Service) Search(ctx context.Context, session Session, text, category string, limit, offset int) search.Response {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: text}
	}
	return s.search.Search(ctx, search.Query{
		Text:     text,
		Category: category,
		ViewerID: session.UserID,
		Limit:    limit,
		Offset:   offset,
	})
}

// --- Payload helpers ---

func storyPayload(story store.Story) map[string]any {
	categories := story.Categories
	if categories == nil {
		categories = store.CategoryList{}
	}
	tags := story.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"id":               story.ID,
		"title":            story.Title,
		"categories":       categories,
		"shortDescription": story.ShortDescription,
		"content":          story.Content,
		"summary":          story.Summary,
		"imageUrl":         story.ImageURL,
		"authorId":         story.AuthorID,
		"authorName":       story.AuthorName,
		"authorImageUrl":   story.AuthorImageURL,
		"fileName":         story.FileName,
		"status":           story.Status,
		"tags":             tags,
		"createdAt":        story.CreatedAt,
	}
}

func commentPayload(comment store.Comment) map[string]any {
	return map[string]any{
		"id":             comment.ID,
		"resourceId":     comment.ResourceID,
		"authorId":       comment.AuthorID,
		"authorName":     comment.AuthorName,
		"authorImageUrl": comment.AuthorImageURL,
		"text":           comment.Text,
		"createdAt":      comment.CreatedAt,
	}
}

func avatarKey(userID string) string {
	return "avatars/" + userID
}

// decodeBase64 accepts raw base64 or a data URL.
func decodeBase64(value string) ([]byte, error) {
	if idx := strings.Index(value, ","); idx >= 0 && strings.HasPrefix(value, "data:") {
		value = value[idx+1:]
	}
	return base64.StdEncoding.DecodeString(value)
}
