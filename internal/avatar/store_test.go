package avatar

import (
	"bytes"
	"context"
	"testing"
)

func TestMemoryStorePutGetDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	url, err := store.Put(ctx, "avatars/u_1.png", []byte{1, 2, 3}, "image/png")
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if url != "memory://avatars/u_1.png" {
		t.Errorf("unexpected url %q", url)
	}

	data, ok := store.Get("avatars/u_1.png")
	if !ok || !bytes.Equal(data, []byte{1, 2, 3}) {
		t.Fatalf("Get() = %v, %v", data, ok)
	}

	if err := store.Delete(ctx, "avatars/u_1.png"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := store.Get("avatars/u_1.png"); ok {
		t.Fatal("object still present after Delete")
	}
}

func TestMemoryStoreCopiesData(t *testing.T) {
	store := NewMemoryStore()
	payload := []byte("original")
	if _, err := store.Put(context.Background(), "k", payload, "text/plain"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	payload[0] = 'X'

	data, _ := store.Get("k")
	if string(data) != "original" {
		t.Fatalf("stored data aliased caller slice: %q", data)
	}
}
