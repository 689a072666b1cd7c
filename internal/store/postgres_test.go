package store

import (
	"strings"
	"testing"
)

func TestDecodeStoryLists(t *testing.T) {
	var item Story
	item.ID = "st_1"
	if err := decodeStoryLists(&item, []byte(`["Migration","Culture"]`), []byte(`["river"]`)); err != nil {
		t.Fatalf("decodeStoryLists() error = %v", err)
	}
	if len(item.Categories) != 2 || len(item.Tags) != 1 {
		t.Fatalf("decoded lists = %v / %v", item.Categories, item.Tags)
	}
}

func TestDecodeStoryListsCorruptRow(t *testing.T) {
	var item Story
	item.ID = "st_bad"

	err := decodeStoryLists(&item, []byte(`{not json`), []byte(`[]`))
	if err == nil {
		t.Fatal("corrupt categories column did not error")
	}
	if !strings.Contains(err.Error(), "st_bad") {
		t.Fatalf("error %q does not name the story", err)
	}

	err = decodeStoryLists(&item, []byte(`[]`), []byte(`42`))
	if err == nil {
		t.Fatal("corrupt tags column did not error")
	}
}
