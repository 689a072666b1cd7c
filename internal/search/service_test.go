package search

import (
	"context"
	"strings"
	"testing"

	"livinglibrary/api/internal/store"
)

type fakeLister struct {
	stories []store.Story
}

func (f *fakeLister) SearchStories(_ context.Context, query string) ([]store.Story, error) {
	matched := make([]store.Story, 0)
	for _, story := range f.stories {
		if strings.Contains(strings.ToLower(story.Title), strings.ToLower(query)) ||
			strings.Contains(strings.ToLower(story.Content), strings.ToLower(query)) {
			matched = append(matched, story)
		}
	}
	return matched, nil
}

func (f *fakeLister) ListStories(_ context.Context) ([]store.Story, error) {
	return f.stories, nil
}

func TestFallbackSearchHidesUnpublished(t *testing.T) {
	lister := &fakeLister{stories: []store.Story{
		{ID: "st_1", Title: "Crossing Borders", AuthorID: "u_1", Status: store.StatusPublished},
		{ID: "st_2", Title: "Crossing Rivers", AuthorID: "u_2", Status: store.StatusPendingReview},
	}}
	svc := NewService(nil, lister)

	resp := svc.Search(context.Background(), Query{Text: "crossing"})
	if len(resp.Results) != 1 || resp.Results[0].ID != "st_1" {
		t.Fatalf("anonymous viewer should only see published stories, got %+v", resp.Results)
	}

	resp = svc.Search(context.Background(), Query{Text: "crossing", ViewerID: "u_2"})
	if len(resp.Results) != 2 {
		t.Fatalf("author should see their own pending story, got %+v", resp.Results)
	}
}

func TestFallbackSearchFiltersCategory(t *testing.T) {
	lister := &fakeLister{stories: []store.Story{
		{ID: "st_1", Title: "Home", Categories: store.CategoryList{"Migration"}, Status: store.StatusPublished},
		{ID: "st_2", Title: "Homeland", Categories: store.CategoryList{"Identity"}, Status: store.StatusPublished},
	}}
	svc := NewService(nil, lister)

	resp := svc.Search(context.Background(), Query{Text: "home", Category: "Identity"})
	if len(resp.Results) != 1 || resp.Results[0].ID != "st_2" {
		t.Fatalf("expected only Identity stories, got %+v", resp.Results)
	}
}

func TestFallbackSearchPaging(t *testing.T) {
	stories := make([]store.Story, 0, 5)
	for _, id := range []string{"st_1", "st_2", "st_3", "st_4", "st_5"} {
		stories = append(stories, store.Story{ID: id, Title: "story " + id, Status: store.StatusPublished})
	}
	svc := NewService(nil, &fakeLister{stories: stories})

	resp := svc.Search(context.Background(), Query{Text: "story", Limit: 2, Offset: 2})
	if resp.Total != 5 {
		t.Errorf("Total = %d, want 5", resp.Total)
	}
	if len(resp.Results) != 2 || resp.Results[0].ID != "st_3" {
		t.Fatalf("unexpected page: %+v", resp.Results)
	}

	resp = svc.Search(context.Background(), Query{Text: "story", Limit: 2, Offset: 10})
	if len(resp.Results) != 0 {
		t.Fatalf("expected empty page past the end, got %+v", resp.Results)
	}
}
