package search

import (
	"context"
	"log"
	"strings"

	"livinglibrary/api/internal/store"
)

// StoryLister loads stories for the database fallback and for reindexing.
type StoryLister interface {
	SearchStories(ctx context.Context, query string) ([]store.Story, error)
	ListStories(ctx context.Context) ([]store.Story, error)
}

// Service is the facade that tries Meilisearch first and falls back to a
// database scan.
type Service struct {
	meili  *Meili
	lister StoryLister
}

// NewService creates a search service. meili may be nil if Meilisearch is
// not configured.
func NewService(meili *Meili, lister StoryLister) *Service {
	return &Service{meili: meili, lister: lister}
}

// Search tries Meilisearch if healthy, otherwise scans the database. Both
// paths hide unpublished stories from everyone but their author.
func (s *Service) Search(ctx context.Context, q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		log.Printf("search: meilisearch error, falling back to database: %v", err)
	}

	stories, err := s.lister.SearchStories(ctx, q.Text)
	if err != nil {
		log.Printf("search: database fallback error: %v", err)
		return Response{Results: []Result{}, Total: 0, Query: q.Text}
	}

	results := make([]Result, 0, len(stories))
	for _, story := range stories {
		if !story.VisibleTo(q.ViewerID) {
			continue
		}
		if q.Category != "" && !story.Categories.Contains(q.Category) {
			continue
		}
		results = append(results, Result{
			ID:       story.ID,
			Title:    story.Title,
			Snippet:  story.ShortDescription,
			AuthorID: story.AuthorID,
			Status:   story.Status,
		})
	}
	total := len(results)
	results = page(results, q.Offset, q.Limit)
	return Response{Results: results, Total: total, Query: strings.TrimSpace(q.Text)}
}

// IndexStory indexes a story (fire-and-forget to Meilisearch).
func (s *Service) IndexStory(story store.Story) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexStory(toRecord(story)); err != nil {
			log.Printf("search: index story %s: %v", story.ID, err)
		}
	}()
}

// DeleteStory removes a story from the search index (fire-and-forget).
func (s *Service) DeleteStory(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteStory(id); err != nil {
			log.Printf("search: delete story %s: %v", id, err)
		}
	}()
}

// ReindexAll pushes every story from the database into Meilisearch.
func (s *Service) ReindexAll(ctx context.Context) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	stories, err := s.lister.ListStories(ctx)
	if err != nil {
		log.Printf("search: reindex load failed: %v", err)
		return
	}
	records := make([]StoryRecord, 0, len(stories))
	for _, story := range stories {
		records = append(records, toRecord(story))
	}
	if err := s.meili.IndexStories(records); err != nil {
		log.Printf("search: reindex stories: %v", err)
	}
}

func toRecord(story store.Story) StoryRecord {
	return StoryRecord{
		ID:               story.ID,
		Title:            story.Title,
		ShortDescription: story.ShortDescription,
		Content:          story.Content,
		Tags:             story.Tags,
		Categories:       story.Categories,
		AuthorID:         story.AuthorID,
		Status:           story.Status,
	}
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}

func page(results []Result, offset, limit int) []Result {
	if limit <= 0 {
		limit = 20
	}
	if offset >= len(results) {
		return []Result{}
	}
	end := offset + limit
	if end > len(results) {
		end = len(results)
	}
	return results[offset:end]
}
