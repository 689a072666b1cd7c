package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"livinglibrary/api/internal/store"
)

func newTestServer(t *testing.T) (http.Handler, *Service, *fakeStore) {
	t.Helper()
	svc, fs, _ := newTestService(t)
	return NewHTTPServer(svc, "*").Handler(), svc, fs
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeJSON(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response %q: %v", recorder.Body.String(), err)
	}
	return payload
}

func TestHealthAndUnknownRoute(t *testing.T) {
	handler, _, _ := newTestServer(t)

	if rec := doJSON(t, handler, http.MethodGet, "/api/health", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	if rec := doJSON(t, handler, http.MethodGet, "/api/nope", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown route status = %d", rec.Code)
	}
}

func TestSignUpAndSessionOverHTTP(t *testing.T) {
	handler, _, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"email":    "asha@example.com",
		"password": "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d body = %s", rec.Code, rec.Body.String())
	}
	payload := decodeJSON(t, rec)
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("signup response missing token")
	}
	if payload["userName"] != "asha" {
		t.Fatalf("userName = %v", payload["userName"])
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/session", token, nil)
	session := decodeJSON(t, rec)
	if session["authenticated"] != true {
		t.Fatalf("session payload = %v", session)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/session", "", nil)
	session = decodeJSON(t, rec)
	if session["authenticated"] != false {
		t.Fatalf("anonymous session payload = %v", session)
	}
}

func TestSignInFailureOverHTTP(t *testing.T) {
	handler, _, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/auth/signin", "", map[string]any{
		"email":    "missing@example.com",
		"password": "password123",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("signin status = %d", rec.Code)
	}
	if payload := decodeJSON(t, rec); payload["code"] != "INVALID_CREDENTIALS" {
		t.Fatalf("code = %v", payload["code"])
	}
}

func TestStoriesVisibilityOverHTTP(t *testing.T) {
	handler, svc, fs := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"email":    "author@example.com",
		"password": "password123",
	})
	payload := decodeJSON(t, rec)
	token := payload["token"].(string)
	authorID := payload["userId"].(string)

	fs.stories = append(fs.stories,
		store.Story{ID: "st_pub", AuthorID: authorID, Status: store.StatusPublished},
		store.Story{ID: "st_pending", AuthorID: authorID, Status: store.StatusPendingReview},
	)
	if err := svc.mirror.Load(context.Background()); err != nil {
		t.Fatalf("mirror load: %v", err)
	}

	var anonymous []map[string]any
	rec = doJSON(t, handler, http.MethodGet, "/api/stories", "", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &anonymous); err != nil {
		t.Fatalf("decode stories: %v", err)
	}
	if len(anonymous) != 1 || anonymous[0]["id"] != "st_pub" {
		t.Fatalf("anonymous stories = %v", anonymous)
	}

	var own []map[string]any
	rec = doJSON(t, handler, http.MethodGet, "/api/stories", token, nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &own); err != nil {
		t.Fatalf("decode stories: %v", err)
	}
	if len(own) != 2 {
		t.Fatalf("author stories = %d, want 2", len(own))
	}

	// The single-story route hides unpublished stories the same way.
	if rec := doJSON(t, handler, http.MethodGet, "/api/stories/st_pending", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("anonymous pending story status = %d", rec.Code)
	}
	if rec := doJSON(t, handler, http.MethodGet, "/api/stories/st_pending", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("author pending story status = %d", rec.Code)
	}
}

func TestAnonymousLikeIsSilentNoOp(t *testing.T) {
	handler, _, fs := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/stories/st_1/like", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("like status = %d", rec.Code)
	}
	if payload := decodeJSON(t, rec); payload["liked"] != false {
		t.Fatalf("liked = %v", payload["liked"])
	}
	if fs.likeCalls != 0 {
		t.Fatal("store mutated by anonymous like")
	}
}

func TestCreateStoryRequiresTokenOverHTTP(t *testing.T) {
	handler, _, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/stories", "", map[string]any{
		"title":   "T",
		"content": "C",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("create story status = %d", rec.Code)
	}
}

func TestProfaneCommentOverHTTP(t *testing.T) {
	handler, _, fs := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"email":    "asha@example.com",
		"password": "password123",
	})
	token := decodeJSON(t, rec)["token"].(string)

	fs.stories = append(fs.stories, store.Story{ID: "st_1", Status: store.StatusPublished})

	rec = doJSON(t, handler, http.MethodPost, "/api/stories/st_1/comments", token, map[string]any{
		"text": "what the hell",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("comment status = %d body = %s", rec.Code, rec.Body.String())
	}
	payload := decodeJSON(t, rec)
	if payload["error"] != "Your comment contains inappropriate language. Please remove any profanities and try again." {
		t.Fatalf("error = %v", payload["error"])
	}
}

func TestEmpathyValidationOverHTTP(t *testing.T) {
	handler, _, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/stories/st_1/empathy", "", map[string]any{
		"rating": 150,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empathy status = %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/stories/st_1/empathy", "", map[string]any{
		"rating": 50,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("anonymous empathy status = %d", rec.Code)
	}
}

func TestProcessFileAuth(t *testing.T) {
	handler, _, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/process-file", "", map[string]any{
		"fileData": "aGVsbG8=",
		"mimeType": "text/plain",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no-token status = %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/process-file", "not-a-token", map[string]any{
		"fileData": "aGVsbG8=",
		"mimeType": "text/plain",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("bad-token status = %d", rec.Code)
	}
}

func TestRefreshFlowOverHTTP(t *testing.T) {
	handler, _, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"email":    "asha@example.com",
		"password": "password123",
	})
	refreshToken := decodeJSON(t, rec)["refreshToken"].(string)

	rec = doJSON(t, handler, http.MethodPost, "/api/session/refresh", "", map[string]any{
		"refreshToken": refreshToken,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/session/refresh", "", map[string]any{
		"refreshToken": refreshToken,
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("reused refresh status = %d", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	handler, _, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/health", "", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("X-Request-ID header not set")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	echo := httptest.NewRecorder()
	handler.ServeHTTP(echo, req)
	if got := echo.Header().Get("X-Request-ID"); got != "req-123" {
		t.Fatalf("X-Request-ID = %q, want propagated value", got)
	}
}

func TestBookmarksRequireSession(t *testing.T) {
	handler, _, _ := newTestServer(t)

	if rec := doJSON(t, handler, http.MethodGet, "/api/bookmarks", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bookmarks status = %d", rec.Code)
	}
}

func TestToggleRoutesWithSession(t *testing.T) {
	handler, _, fs := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"email":    "asha@example.com",
		"password": "password123",
	})
	token := decodeJSON(t, rec)["token"].(string)

	for _, path := range []string{"/api/stories/st_1/like", "/api/stories/st_1/bookmark"} {
		rec := doJSON(t, handler, http.MethodPost, path, token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rec.Code)
		}
	}
	if fs.likeCalls != 1 || fs.bookmarkCalls != 1 {
		t.Fatalf("likeCalls = %d, bookmarkCalls = %d", fs.likeCalls, fs.bookmarkCalls)
	}
}

func TestStreamSendsInitialSnapshots(t *testing.T) {
	handler, svc, fs := newTestServer(t)

	fs.stories = append(fs.stories, store.Story{ID: "st_pub", Status: store.StatusPublished})
	if err := svc.mirror.Load(context.Background()); err != nil {
		t.Fatalf("mirror load: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/stream", nil).WithContext(ctx)
	recorder := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		handler.ServeHTTP(recorder, req)
		close(done)
	}()

	// Snapshot events are written before the handler blocks on its event
	// loop, so a short grace period then cancel is enough.
	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream handler did not stop on cancel")
	}

	body := recorder.Body.String()
	if got := strings.Count(body, "event: snapshot"); got != 6 {
		t.Fatalf("snapshot events = %d, want 6\n%s", got, body)
	}
	if recorder.Header().Get("Content-Type") != "text/event-stream" {
		t.Fatalf("content type = %q", recorder.Header().Get("Content-Type"))
	}
}
