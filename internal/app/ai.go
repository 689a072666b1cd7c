package app

import (
	"log"
	"net/http"

	"livinglibrary/api/internal/genai"
)

// handleProcessFile proxies an uploaded file to the AI provider for text
// extraction and enrichment. Unlike the other AI routes this one requires
// a valid session: uploads are tied to a signed-in user.
func (s *HTTPServer) handleProcessFile(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized: No token provided.", nil)
		return
	}
	session, err := s.service.SessionFromToken(r.Context(), token)
	if err != nil {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Forbidden: Invalid token.", nil)
		return
	}

	if s.service.AI() == nil {
		writeError(w, http.StatusServiceUnavailable, "AI_UNAVAILABLE", "AI provider not configured", nil)
		return
	}

	var body struct {
		FileData string `json:"fileData"`
		MimeType string `json:"mimeType"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	if body.FileData == "" || body.MimeType == "" {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Missing fileData or mimeType", nil)
		return
	}

	log.Printf("ai: processing file for user %s (%s)", session.UserID, body.MimeType)

	processed, err := s.service.AI().ProcessFile(r.Context(), body.FileData, body.MimeType)
	if err != nil {
		log.Printf("ai: process file: %v", err)
		writeError(w, http.StatusInternalServerError, "AI_ERROR", "Failed to process file on the server.", nil)
		return
	}
	writeJSON(w, http.StatusOK, processed)
}

func (s *HTTPServer) handleSummarize(w http.ResponseWriter, r *http.Request) {
	if s.service.AI() == nil {
		writeError(w, http.StatusServiceUnavailable, "AI_UNAVAILABLE", "AI provider not configured", nil)
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	if body.Text == "" {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Missing text to summarize", nil)
		return
	}

	summary, err := s.service.AI().Summarize(r.Context(), body.Text)
	if err != nil {
		log.Printf("ai: summarize: %v", err)
		writeError(w, http.StatusInternalServerError, "AI_ERROR", "Failed to summarize text on the server.", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summary": summary})
}

func (s *HTTPServer) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.service.AI() == nil {
		writeError(w, http.StatusServiceUnavailable, "AI_UNAVAILABLE", "AI provider not configured", nil)
		return
	}

	var body struct {
		History []genai.Message `json:"history"`
		Message string          `json:"message"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	if body.History == nil || body.Message == "" {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Missing history or message for chat", nil)
		return
	}

	text, err := s.service.AI().Chat(r.Context(), body.History, body.Message)
	if err != nil {
		log.Printf("ai: chat: %v", err)
		writeError(w, http.StatusInternalServerError, "AI_ERROR", "Failed to get chat response from the server.", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"text": text})
}
