package revisions

import (
	"strings"
	"testing"
)

func TestEnsureStoryRepoAndHead(t *testing.T) {
	svc := New(t.TempDir())

	if err := svc.EnsureStoryRepo("st_1", "First draft.", "Asha"); err != nil {
		t.Fatalf("EnsureStoryRepo() error = %v", err)
	}
	// Second call is a no-op.
	if err := svc.EnsureStoryRepo("st_1", "Different text.", "Asha"); err != nil {
		t.Fatalf("second EnsureStoryRepo() error = %v", err)
	}

	content, head, err := svc.GetHeadContent("st_1")
	if err != nil {
		t.Fatalf("GetHeadContent() error = %v", err)
	}
	if content != "First draft." {
		t.Errorf("head content = %q, want first draft", content)
	}
	if head.Author != "Asha" {
		t.Errorf("head author = %q", head.Author)
	}
}

func TestCommitContentAndHistory(t *testing.T) {
	svc := New(t.TempDir())

	if err := svc.EnsureStoryRepo("st_1", "Version one.", "Asha"); err != nil {
		t.Fatalf("EnsureStoryRepo() error = %v", err)
	}
	commit, err := svc.CommitContent("st_1", "Version two.", "Asha", "Edit story")
	if err != nil {
		t.Fatalf("CommitContent() error = %v", err)
	}
	if commit.Hash == "" || !strings.Contains(commit.Message, "Edit story") {
		t.Fatalf("unexpected commit info: %+v", commit)
	}

	content, _, err := svc.GetHeadContent("st_1")
	if err != nil {
		t.Fatalf("GetHeadContent() error = %v", err)
	}
	if content != "Version two." {
		t.Errorf("head content = %q, want version two", content)
	}

	history, err := svc.History("st_1", 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(history))
	}
	if !strings.Contains(history[0].Message, "Edit story") {
		t.Errorf("newest commit first expected, got %+v", history)
	}

	old, err := svc.GetContentByHash("st_1", history[1].Hash)
	if err != nil {
		t.Fatalf("GetContentByHash() error = %v", err)
	}
	if old != "Version one." {
		t.Errorf("old content = %q, want version one", old)
	}
}

func TestHistoryLimit(t *testing.T) {
	svc := New(t.TempDir())

	if err := svc.EnsureStoryRepo("st_1", "v1", "Asha"); err != nil {
		t.Fatalf("EnsureStoryRepo() error = %v", err)
	}
	for _, version := range []string{"v2", "v3", "v4"} {
		if _, err := svc.CommitContent("st_1", version, "Asha", "Edit "+version); err != nil {
			t.Fatalf("CommitContent(%s) error = %v", version, err)
		}
	}

	history, err := svc.History("st_1", 2)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 commits with limit, got %d", len(history))
	}
}

func TestDelete(t *testing.T) {
	svc := New(t.TempDir())

	if err := svc.EnsureStoryRepo("st_1", "text", "Asha"); err != nil {
		t.Fatalf("EnsureStoryRepo() error = %v", err)
	}
	if err := svc.Delete("st_1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, _, err := svc.GetHeadContent("st_1"); err == nil {
		t.Fatal("expected error reading deleted repo")
	}
}
