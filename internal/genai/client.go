// Package genai is a client for the Gemini generateContent API. It backs
// the file ingestion pipeline, story summaries, and the library guide chat.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.5-flash"
)

const extractPrompt = "CRITICAL INSTRUCTION: Extract the EXACT full text content from this file, preserving EVERY detail exactly as it appears, including: (1) ALL spacing between stanzas/paragraphs - if there are blank lines, keep them exactly; (2) ALL line breaks and paragraph breaks; (3) ALL indentation and whitespace; (4) ALL punctuation marks even if missing or incorrect; (5) ALL special characters and symbols; (6) Exact spacing within lines (single, double, or multiple spaces). Do NOT add, remove, compress, expand, fix, correct, edit, rephrase, or modify anything. Extract character-for-character exactly as the original. If it's audio, transcribe word-for-word. If it's a document, extract all text with exact formatting and spacing preserved. Then: generate a concise summary, generate 5-7 keywords/tags, suggest 1-3 categories. Return JSON with: 'content' (extracted exactly preserving all spacing and paragraph breaks), 'summary', 'tags', 'categories'."

const guidePrompt = `You are a friendly and empathetic guide for the "Living Library 2.0," a collection of personal stories about diverse human experiences. Your name is 'Leo'. Your purpose is to help users explore these stories and connect with their themes. Be warm, encouraging, and curious. Ask thoughtful follow-up questions. When appropriate, gently guide users toward the library's themes of caste, gender, migration, and identity. Do not sound like a generic AI. Sound like a friend who loves stories and believes in the power of listening.`

type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Message is one turn of chat history.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ProcessedFile is the structured result of file ingestion.
type ProcessedFile struct {
	Content    string   `json:"content"`
	Summary    string   `json:"summary"`
	Tags       []string `json:"tags"`
	Categories []string `json:"categories"`
}

type part struct {
	Text       string `json:"text,omitempty"`
	InlineData *blob  `json:"inlineData,omitempty"`
}

type blob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type schema struct {
	Type       string            `json:"type"`
	Properties map[string]schema `json:"properties,omitempty"`
	Items      *schema           `json:"items,omitempty"`
}

type generationConfig struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	ResponseMimeType string   `json:"responseMimeType,omitempty"`
	ResponseSchema   *schema  `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ProcessFile extracts the exact text of a base64-encoded file and returns
// it with a generated summary, tags, and category suggestions.
func (c *Client) ProcessFile(ctx context.Context, data, mimeType string) (ProcessedFile, error) {
	temperature := 0.2
	stringSchema := schema{Type: "STRING"}
	req := generateRequest{
		Contents: []content{{
			Parts: []part{
				{InlineData: &blob{MimeType: mimeType, Data: data}},
				{Text: extractPrompt},
			},
		}},
		GenerationConfig: &generationConfig{
			Temperature:      &temperature,
			ResponseMimeType: "application/json",
			ResponseSchema: &schema{
				Type: "OBJECT",
				Properties: map[string]schema{
					"content":    stringSchema,
					"summary":    stringSchema,
					"tags":       {Type: "ARRAY", Items: &stringSchema},
					"categories": {Type: "ARRAY", Items: &stringSchema},
				},
			},
		},
	}

	text, err := c.generate(ctx, req)
	if err != nil {
		return ProcessedFile{}, err
	}

	var processed ProcessedFile
	if err := json.Unmarshal([]byte(text), &processed); err != nil {
		return ProcessedFile{}, fmt.Errorf("decode processed file: %w", err)
	}
	return processed, nil
}

// Summarize returns a concise summary of the given text.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	req := generateRequest{
		Contents: []content{{
			Parts: []part{{Text: "Please provide a concise, easy-to-read summary of the following text:\n\n---\n\n" + text}},
		}},
	}
	return c.generate(ctx, req)
}

// Chat sends a message with prior history to the library guide persona.
func (c *Client) Chat(ctx context.Context, history []Message, message string) (string, error) {
	contents := make([]content, 0, len(history)+1)
	for _, turn := range history {
		contents = append(contents, content{Role: turn.Role, Parts: []part{{Text: turn.Text}}})
	}
	contents = append(contents, content{Role: "user", Parts: []part{{Text: message}}})

	req := generateRequest{
		Contents:          contents,
		SystemInstruction: &content{Parts: []part{{Text: guidePrompt}}},
	}
	return c.generate(ctx, req)
}

func (c *Client) generate(ctx context.Context, req generateRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var decoded generateResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if decoded.Error != nil {
			return "", fmt.Errorf("model error: %s", decoded.Error.Message)
		}
		return "", fmt.Errorf("model error: status %d", resp.StatusCode)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty model response")
	}

	var text string
	for _, p := range decoded.Candidates[0].Content.Parts {
		text += p.Text
	}
	return text, nil
}
