// Package revisions keeps a git repository per story so every accepted
// edit of the narrative text is recoverable.
package revisions

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"livinglibrary/api/internal/store"
)

const contentFile = "story.md"

type Service struct {
	baseDir string
	lockMu  sync.Mutex
	locks   map[string]*sync.Mutex
}

func New(baseDir string) *Service {
	return &Service{
		baseDir: baseDir,
		locks:   make(map[string]*sync.Mutex),
	}
}

// EnsureStoryRepo initializes a repository for the story with its first
// content as the baseline commit. Existing repos are left untouched.
func (s *Service) EnsureStoryRepo(storyID, content, author string) error {
	lock := s.storyLock(storyID)
	lock.Lock()
	defer lock.Unlock()

	path := s.repoPath(storyID)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat repo path: %w", err)
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create repo dir: %w", err)
	}

	repo, err := git.PlainInit(path, false)
	if err != nil {
		return fmt.Errorf("init repo: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	if err := os.WriteFile(filepath.Join(path, contentFile), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write initial content: %w", err)
	}
	if _, err := worktree.Add(contentFile); err != nil {
		return fmt.Errorf("git add initial content: %w", err)
	}
	hash, err := worktree.Commit("Import story", &git.CommitOptions{
		Author: signature(author),
	})
	if err != nil {
		return fmt.Errorf("commit initial content: %w", err)
	}
	if err := repo.Storer.SetReference(plumbing.NewHashReference(plumbing.NewBranchReferenceName("main"), hash)); err != nil {
		return fmt.Errorf("set main branch ref: %w", err)
	}
	if err := repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("main"))); err != nil {
		return fmt.Errorf("set HEAD to main: %w", err)
	}
	return nil
}

// CommitContent records a new version of the story text.
func (s *Service) CommitContent(storyID, content, author, message string) (store.CommitInfo, error) {
	lock := s.storyLock(storyID)
	lock.Lock()
	defer lock.Unlock()

	repo, err := git.PlainOpen(s.repoPath(storyID))
	if err != nil {
		return store.CommitInfo{}, fmt.Errorf("open repo: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return store.CommitInfo{}, fmt.Errorf("open worktree: %w", err)
	}

	repoRoot := worktree.Filesystem.Root()
	if err := os.WriteFile(filepath.Join(repoRoot, contentFile), []byte(content), 0o644); err != nil {
		return store.CommitInfo{}, fmt.Errorf("write content: %w", err)
	}
	if _, err := worktree.Add(contentFile); err != nil {
		return store.CommitInfo{}, fmt.Errorf("git add content: %w", err)
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: signature(author),
	})
	if err != nil {
		return store.CommitInfo{}, fmt.Errorf("commit content: %w", err)
	}

	commitObj, err := repo.CommitObject(hash)
	if err != nil {
		return store.CommitInfo{}, fmt.Errorf("read commit object: %w", err)
	}
	return toCommitInfo(commitObj), nil
}

// GetHeadContent returns the latest committed text and its commit.
func (s *Service) GetHeadContent(storyID string) (string, store.CommitInfo, error) {
	lock := s.storyLock(storyID)
	lock.Lock()
	defer lock.Unlock()

	repo, err := git.PlainOpen(s.repoPath(storyID))
	if err != nil {
		return "", store.CommitInfo{}, fmt.Errorf("open repo: %w", err)
	}

	ref, err := repo.Reference(plumbing.NewBranchReferenceName("main"), true)
	if err != nil {
		return "", store.CommitInfo{}, fmt.Errorf("resolve main: %w", err)
	}
	commitObj, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return "", store.CommitInfo{}, fmt.Errorf("load commit object: %w", err)
	}

	content, err := readContentFromCommit(commitObj)
	if err != nil {
		return "", store.CommitInfo{}, err
	}
	return content, toCommitInfo(commitObj), nil
}

// GetContentByHash returns the story text as of a specific commit.
func (s *Service) GetContentByHash(storyID, hash string) (string, error) {
	lock := s.storyLock(storyID)
	lock.Lock()
	defer lock.Unlock()

	repo, err := git.PlainOpen(s.repoPath(storyID))
	if err != nil {
		return "", fmt.Errorf("open repo: %w", err)
	}
	resolvedHash, err := resolveHash(repo, hash)
	if err != nil {
		return "", err
	}
	commitObj, err := repo.CommitObject(resolvedHash)
	if err != nil {
		return "", fmt.Errorf("read commit %s: %w", hash, err)
	}
	return readContentFromCommit(commitObj)
}

// History lists commits newest first, up to limit (0 means all).
func (s *Service) History(storyID string, limit int) ([]store.CommitInfo, error) {
	lock := s.storyLock(storyID)
	lock.Lock()
	defer lock.Unlock()

	repo, err := git.PlainOpen(s.repoPath(storyID))
	if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}

	ref, err := repo.Reference(plumbing.NewBranchReferenceName("main"), true)
	if err != nil {
		return nil, fmt.Errorf("resolve main: %w", err)
	}

	iter, err := repo.Log(&git.LogOptions{From: ref.Hash()})
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer iter.Close()

	items := make([]store.CommitInfo, 0, limit)
	count := 0
	err = iter.ForEach(func(commitObj *object.Commit) error {
		items = append(items, toCommitInfo(commitObj))
		count++
		if limit > 0 && count >= limit {
			return io.EOF
		}
		return nil
	})
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("iterate log: %w", err)
	}
	return items, nil
}

// Delete removes the story's repository entirely.
func (s *Service) Delete(storyID string) error {
	lock := s.storyLock(storyID)
	lock.Lock()
	defer lock.Unlock()

	if err := os.RemoveAll(s.repoPath(storyID)); err != nil {
		return fmt.Errorf("remove repo: %w", err)
	}
	return nil
}

func (s *Service) repoPath(storyID string) string {
	return filepath.Join(s.baseDir, storyID)
}

func (s *Service) storyLock(storyID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.locks[storyID]
	if ok {
		return lock
	}
	lock = &sync.Mutex{}
	s.locks[storyID] = lock
	return lock
}

func signature(author string) *object.Signature {
	return &object.Signature{
		Name:  author,
		Email: fmt.Sprintf("%s@library.local", sanitizeEmail(author)),
		When:  time.Now(),
	}
}

func readContentFromCommit(commitObj *object.Commit) (string, error) {
	file, err := commitObj.File(contentFile)
	if err != nil {
		return "", fmt.Errorf("load %s from commit: %w", contentFile, err)
	}
	content, err := file.Contents()
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return content, nil
}

func toCommitInfo(commitObj *object.Commit) store.CommitInfo {
	return store.CommitInfo{
		Hash:      commitObj.Hash.String()[:7],
		Message:   commitObj.Message,
		Author:    commitObj.Author.Name,
		CreatedAt: commitObj.Author.When,
	}
}

func sanitizeEmail(input string) string {
	runes := make([]rune, 0, len(input))
	for _, r := range input {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			runes = append(runes, r)
			continue
		}
		if r == ' ' || r == '-' || r == '_' {
			runes = append(runes, '.')
		}
	}
	if len(runes) == 0 {
		return "user"
	}
	return string(runes)
}

func resolveHash(repo *git.Repository, hash string) (plumbing.Hash, error) {
	if len(hash) == 40 {
		return plumbing.NewHash(hash), nil
	}
	resolved, err := repo.ResolveRevision(plumbing.Revision(hash))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolve hash %s: %w", hash, err)
	}
	return *resolved, nil
}
