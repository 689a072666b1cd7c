// Package search provides full-text search over stories, backed by
// Meilisearch with a Postgres fallback.
package search

// StoryRecord is the data we index for a story.
type StoryRecord struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	ShortDescription string   `json:"shortDescription"`
	Content          string   `json:"content"`
	Tags             []string `json:"tags"`
	Categories       []string `json:"categories"`
	AuthorID         string   `json:"authorId"`
	Status           string   `json:"status"`
}

// Query describes a search request. ViewerID scopes unpublished stories
// to their author; empty means an anonymous viewer.
type Query struct {
	Text     string
	Category string
	ViewerID string
	Limit    int
	Offset   int
}

// Result is a single search hit returned to the caller.
type Result struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
	AuthorID string `json:"authorId"`
	Status   string `json:"status"`
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// Indexer can push stories into a search index.
type Indexer interface {
	IndexStory(record StoryRecord) error
	DeleteStory(id string) error
}
