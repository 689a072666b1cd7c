package store

import (
	"testing"
	"testing/fstest"
)

func TestMigrationFilesOrderAndFilter(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_add_bookmarks.up.sql":   {Data: []byte("CREATE TABLE bookmarks ()")},
		"0001_init.up.sql":            {Data: []byte("CREATE TABLE stories ()")},
		"0001_init.down.sql":          {Data: []byte("DROP TABLE stories")},
		"0010_empathy.up.sql":         {Data: []byte("CREATE TABLE empathy_ratings ()")},
		"notes.txt":                   {Data: []byte("not a migration")},
		"0002_add_bookmarks.down.sql": {Data: []byte("DROP TABLE bookmarks")},
	}

	names, err := migrationFiles(fsys)
	if err != nil {
		t.Fatalf("migrationFiles() error = %v", err)
	}

	want := []string{"0001_init.up.sql", "0002_add_bookmarks.up.sql", "0010_empathy.up.sql"}
	if len(names) != len(want) {
		t.Fatalf("migrationFiles() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("migrationFiles()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestMigrationFilesEmptyDir(t *testing.T) {
	names, err := migrationFiles(fstest.MapFS{})
	if err != nil {
		t.Fatalf("migrationFiles() error = %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("migrationFiles() = %v, want none", names)
	}
}
