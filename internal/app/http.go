package app

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"livinglibrary/api/internal/auth"
	"livinglibrary/api/internal/store"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"database": map[string]any{"status": "ok"},
		}

		if err := s.service.Ping(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["database"] = map[string]any{
				"status": "error",
				"error":  err.Error(),
			}
		}

		writeJSON(w, statusCode, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	// Auth routes (no session required)
	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/signup" {
		var body struct {
			Email       string `json:"email"`
			Password    string `json:"password"`
			DisplayName string `json:"displayName"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		session, err := s.service.SignUp(r.Context(), body.Email, body.Password, body.DisplayName)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusCreated, sessionPayload(session))
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/signin" {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		session, err := s.service.SignIn(r.Context(), body.Email, body.Password)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, sessionPayload(session))
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/session" {
		token := bearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusOK, map[string]any{"authenticated": false, "userName": nil})
			return
		}
		session, err := s.service.SessionFromToken(r.Context(), token)
		if err != nil {
			writeJSON(w, http.StatusOK, map[string]any{"authenticated": false, "userName": nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"authenticated": true,
			"userId":        session.UserID,
			"userName":      session.UserName,
			"email":         session.Email,
			"imageUrl":      session.AvatarURL,
		})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/session/refresh" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if body.RefreshToken == "" {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", "refreshToken is required", nil)
			return
		}
		session, err := s.service.Refresh(r.Context(), body.RefreshToken)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, sessionPayload(session))
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/session/logout" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = decodeBody(r, &body)
		session := s.optionalSession(r)
		if err := s.service.Logout(r.Context(), session, body.RefreshToken); err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/stream" {
		s.handleStream(w, r)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/search" {
		session := s.optionalSession(r)
		query := r.URL.Query()
		limit, _ := strconv.Atoi(query.Get("limit"))
		offset, _ := strconv.Atoi(query.Get("offset"))
		response := s.service.Search(r.Context(), session, query.Get("q"), query.Get("category"), limit, offset)
		writeJSON(w, http.StatusOK, response)
		return
	}

	// Collection reads served from the mirror
	if r.Method == http.MethodGet && r.URL.Path == "/api/stories" {
		session := s.optionalSession(r)
		writeJSON(w, http.StatusOK, s.service.StoriesFor(session.UserID))
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/comments" {
		writeJSON(w, http.StatusOK, s.service.Comments())
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/likes" {
		writeJSON(w, http.StatusOK, s.service.Likes())
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/reports" {
		writeJSON(w, http.StatusOK, s.service.Reports())
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/empathy" {
		writeJSON(w, http.StatusOK, s.service.EmpathyRatings())
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/users" {
		writeJSON(w, http.StatusOK, s.service.Profiles())
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/bookmarks" {
		session, ok := s.requireSession(w, r)
		if !ok {
			return
		}
		bookmarks, err := s.service.Bookmarks(r.Context(), session)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		if bookmarks == nil {
			bookmarks = []string{}
		}
		writeJSON(w, http.StatusOK, bookmarks)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/stories" {
		session, ok := s.requireSession(w, r)
		if !ok {
			return
		}
		var body CreateStoryInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		payload, err := s.service.CreateStory(r.Context(), session, body)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusCreated, payload)
		return
	}

	parts := splitPath(r.URL.Path)

	// /api/stories/{id}[/...]
	if len(parts) >= 3 && parts[0] == "api" && parts[1] == "stories" {
		storyID := parts[2]

		if len(parts) == 3 {
			switch r.Method {
			case http.MethodGet:
				session := s.optionalSession(r)
				payload, err := s.service.StoryFor(session.UserID, storyID)
				if err != nil {
					status, code, message, details := mapError(err)
					writeError(w, status, code, message, details)
					return
				}
				writeJSON(w, http.StatusOK, payload)
				return
			case http.MethodPut:
				session, ok := s.requireSession(w, r)
				if !ok {
					return
				}
				var body UpdateStoryInput
				if err := decodeBody(r, &body); err != nil {
					writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
					return
				}
				payload, err := s.service.UpdateStory(r.Context(), session, storyID, body)
				if err != nil {
					status, code, message, details := mapError(err)
					writeError(w, status, code, message, details)
					return
				}
				writeJSON(w, http.StatusOK, payload)
				return
			case http.MethodDelete:
				session := s.optionalSession(r)
				if err := s.service.DeleteStory(r.Context(), session, storyID); err != nil {
					status, code, message, details := mapError(err)
					writeError(w, status, code, message, details)
					return
				}
				writeJSON(w, http.StatusOK, map[string]any{"ok": true})
				return
			}
		}

		if len(parts) == 4 && r.Method == http.MethodGet && parts[3] == "history" {
			session := s.optionalSession(r)
			history, err := s.service.StoryHistory(r.Context(), session, storyID)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, history)
			return
		}

		if len(parts) == 5 && r.Method == http.MethodGet && parts[3] == "history" {
			session := s.optionalSession(r)
			payload, err := s.service.StoryRevision(r.Context(), session, storyID, parts[4])
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, payload)
			return
		}

		if len(parts) == 4 && r.Method == http.MethodPost && parts[3] == "comments" {
			session, ok := s.requireSession(w, r)
			if !ok {
				return
			}
			var body struct {
				Text string `json:"text"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			payload, err := s.service.AddComment(r.Context(), session, storyID, body.Text)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusCreated, payload)
			return
		}

		if len(parts) == 4 && r.Method == http.MethodPost && parts[3] == "like" {
			session := s.optionalSession(r)
			liked, err := s.service.ToggleLike(r.Context(), session, storyID)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"liked": liked})
			return
		}

		if len(parts) == 4 && r.Method == http.MethodPost && parts[3] == "bookmark" {
			session := s.optionalSession(r)
			bookmarked, err := s.service.ToggleBookmark(r.Context(), session, storyID)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"bookmarked": bookmarked})
			return
		}

		if len(parts) == 4 && r.Method == http.MethodPost && parts[3] == "report" {
			session := s.optionalSession(r)
			if err := s.service.Report(r.Context(), session, storyID); err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			return
		}

		if len(parts) == 4 && r.Method == http.MethodPost && parts[3] == "empathy" {
			session := s.optionalSession(r)
			var body struct {
				Rating int `json:"rating"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			if err := s.service.RateEmpathy(r.Context(), session, storyID, body.Rating); err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			return
		}
	}

	// /api/comments/{id}
	if len(parts) == 3 && parts[0] == "api" && parts[1] == "comments" && r.Method == http.MethodDelete {
		session := s.optionalSession(r)
		if err := s.service.DeleteComment(r.Context(), session, parts[2]); err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if r.Method == http.MethodPut && r.URL.Path == "/api/profile" {
		session, ok := s.requireSession(w, r)
		if !ok {
			return
		}
		var body UpdateProfileInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		payload, err := s.service.UpdateProfile(r.Context(), session, body)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	if r.Method == http.MethodDelete && r.URL.Path == "/api/account" {
		session, ok := s.requireSession(w, r)
		if !ok {
			return
		}
		if err := s.service.DeleteAccount(r.Context(), session); err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	// AI proxy routes
	if r.Method == http.MethodPost && r.URL.Path == "/api/process-file" {
		s.handleProcessFile(w, r)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/summarize" {
		s.handleSummarize(w, r)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/chat" {
		s.handleChat(w, r)
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

// handleStream serves the realtime collection stream over SSE. The client
// first receives one snapshot event per collection, then a change event
// each time a collection's snapshot is replaced.
func (s *HTTPServer) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "STREAM_UNSUPPORTED", "Streaming not supported", nil)
		return
	}

	session := s.optionalSession(r)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	events, _ := s.service.Hub().Subscribe(r.Context())

	for _, collection := range []string{
		store.CollectionStories, store.CollectionComments, store.CollectionLikes,
		store.CollectionReports, store.CollectionEmpathy, store.CollectionProfiles,
	} {
		writeStreamEvent(w, "snapshot", collection, s.service.CollectionRevision(collection), s.service.CollectionPayload(collection, session.UserID))
	}
	flusher.Flush()

	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		case event, open := <-events:
			if !open {
				return
			}
			writeStreamEvent(w, "change", event.Collection, event.Revision, s.service.CollectionPayload(event.Collection, session.UserID))
			flusher.Flush()
		}
	}
}

func writeStreamEvent(w http.ResponseWriter, eventType, collection string, revision uint64, data any) {
	payload, err := json.Marshal(map[string]any{
		"collection": collection,
		"revision":   revision,
		"data":       data,
	})
	if err != nil {
		log.Printf("stream: marshal %s event: %v", collection, err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, payload)
}

func (s *HTTPServer) requireSession(w http.ResponseWriter, r *http.Request) (Session, bool) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return Session{}, false
	}
	session, err := s.service.SessionFromToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) || errors.Is(err, auth.ErrInvalidToken) {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
			return Session{}, false
		}
		writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Session lookup failed", nil)
		return Session{}, false
	}
	return session, true
}

// optionalSession resolves the bearer token if one is present. A missing
// or invalid token yields an anonymous session rather than an error.
func (s *HTTPServer) optionalSession(r *http.Request) Session {
	token := bearerToken(r)
	if token == "" {
		return Session{}
	}
	session, err := s.service.SessionFromToken(r.Context(), token)
	if err != nil {
		return Session{}
	}
	return session
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush passes SSE flushes through the status recorder.
func (r *statusRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func sessionPayload(session Session) map[string]any {
	return map[string]any{
		"token":        session.Token,
		"refreshToken": session.RefreshToken,
		"userId":       session.UserID,
		"userName":     session.UserName,
		"email":        session.Email,
		"imageUrl":     session.AvatarURL,
		"expiresAt":    session.ExpiresAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	if errors.Is(err, sql.ErrNoRows) {
		return http.StatusNotFound, "NOT_FOUND", "Not found", nil
	}
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) {
		return http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}
