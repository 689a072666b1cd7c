// Package mirror keeps an in-memory snapshot of every mirrored collection
// and refreshes each one when the database announces a change.
package mirror

import (
	"context"
	"log"
	"sync"

	"livinglibrary/api/internal/store"
)

// Loader reads full collection snapshots from storage.
type Loader interface {
	ListStories(ctx context.Context) ([]store.Story, error)
	ListComments(ctx context.Context) ([]store.Comment, error)
	ListLikes(ctx context.Context) (map[string][]string, error)
	ListReports(ctx context.Context) ([]store.Report, error)
	ListEmpathyRatings(ctx context.Context) (map[string][]store.EmpathyRating, error)
	ListProfiles(ctx context.Context) ([]store.Profile, error)
}

// Mirror holds the live snapshots. Reads return copies so callers can
// never observe a snapshot mid-replace.
type Mirror struct {
	loader Loader
	hub    *Hub

	mu       sync.RWMutex
	snapshot snapshots
	revs     map[string]uint64
}

type snapshots struct {
	stories  []store.Story
	comments []store.Comment
	likes    map[string][]string
	reports  []store.Report
	empathy  map[string][]store.EmpathyRating
	profiles []store.Profile
}

func New(loader Loader, hub *Hub) *Mirror {
	return &Mirror{loader: loader, hub: hub, revs: make(map[string]uint64)}
}

// Load performs the initial full load of every collection.
func (m *Mirror) Load(ctx context.Context) error {
	for _, collection := range []string{
		store.CollectionStories, store.CollectionComments, store.CollectionLikes,
		store.CollectionReports, store.CollectionEmpathy, store.CollectionProfiles,
	} {
		if err := m.reload(ctx, collection); err != nil {
			return err
		}
	}
	return nil
}

// Run consumes change notifications until ctx is cancelled. Each named
// collection is reloaded in full and the replacement is broadcast.
func (m *Mirror) Run(ctx context.Context, changes <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case collection, ok := <-changes:
			if !ok {
				return
			}
			if err := m.reload(ctx, collection); err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("mirror: reload %s: %v", collection, err)
				continue
			}
			if m.hub != nil {
				m.hub.Broadcast(Event{Collection: collection, Revision: m.Revision(collection)})
			}
		}
	}
}

func (m *Mirror) reload(ctx context.Context, collection string) error {
	switch collection {
	case store.CollectionStories:
		stories, err := m.loader.ListStories(ctx)
		if err != nil {
			return err
		}
		m.mu.Lock()
		m.snapshot.stories = stories
		m.mu.Unlock()
	case store.CollectionComments:
		comments, err := m.loader.ListComments(ctx)
		if err != nil {
			return err
		}
		m.mu.Lock()
		m.snapshot.comments = comments
		m.mu.Unlock()
	case store.CollectionLikes:
		likes, err := m.loader.ListLikes(ctx)
		if err != nil {
			return err
		}
		m.mu.Lock()
		m.snapshot.likes = likes
		m.mu.Unlock()
	case store.CollectionReports:
		reports, err := m.loader.ListReports(ctx)
		if err != nil {
			return err
		}
		m.mu.Lock()
		m.snapshot.reports = reports
		m.mu.Unlock()
	case store.CollectionEmpathy:
		empathy, err := m.loader.ListEmpathyRatings(ctx)
		if err != nil {
			return err
		}
		m.mu.Lock()
		m.snapshot.empathy = empathy
		m.mu.Unlock()
	case store.CollectionProfiles:
		profiles, err := m.loader.ListProfiles(ctx)
		if err != nil {
			return err
		}
		m.mu.Lock()
		m.snapshot.profiles = profiles
		m.mu.Unlock()
	default:
		log.Printf("mirror: unknown collection %q", collection)
		return nil
	}
	m.mu.Lock()
	m.revs[collection]++
	m.mu.Unlock()
	return nil
}

// Revision reports how many times the collection's snapshot has been
// replaced since startup.
func (m *Mirror) Revision(collection string) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.revs[collection]
}

// Stories returns a copy of the story snapshot.
func (m *Mirror) Stories() []store.Story {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]store.Story, len(m.snapshot.stories))
	copy(items, m.snapshot.stories)
	return items
}

// Comments returns a copy of the comment snapshot.
func (m *Mirror) Comments() []store.Comment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]store.Comment, len(m.snapshot.comments))
	copy(items, m.snapshot.comments)
	return items
}

// Likes returns a copy of the per-story like sets.
func (m *Mirror) Likes() map[string][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	likes := make(map[string][]string, len(m.snapshot.likes))
	for resourceID, userIDs := range m.snapshot.likes {
		copied := make([]string, len(userIDs))
		copy(copied, userIDs)
		likes[resourceID] = copied
	}
	return likes
}

// Reports returns a copy of the report snapshot.
func (m *Mirror) Reports() []store.Report {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]store.Report, len(m.snapshot.reports))
	copy(items, m.snapshot.reports)
	return items
}

// EmpathyRatings returns a copy of the per-story rating sets.
func (m *Mirror) EmpathyRatings() map[string][]store.EmpathyRating {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ratings := make(map[string][]store.EmpathyRating, len(m.snapshot.empathy))
	for resourceID, items := range m.snapshot.empathy {
		copied := make([]store.EmpathyRating, len(items))
		copy(copied, items)
		ratings[resourceID] = copied
	}
	return ratings
}

// Profiles returns a copy of the profile snapshot.
func (m *Mirror) Profiles() []store.Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]store.Profile, len(m.snapshot.profiles))
	copy(items, m.snapshot.profiles)
	return items
}
