package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"podcast_studio/database"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "studio.db"))
	if err != nil {
		t.Fatalf("database.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	store, err := NewLocal(context.Background(), db, "http://studio.test/")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	return store
}

func TestLocalUploadResolveOpen(t *testing.T) {
	store := newTestLocal(t)
	ctx := context.Background()

	h, err := store.Upload(ctx, Payload{Name: "podcast-1.mp3", MIMEType: "audio/mpeg", Data: []byte("mp3")})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if h == "" {
		t.Fatal("expected a handle")
	}

	url, err := store.ResolveURL(ctx, h)
	if err != nil {
		t.Fatalf("ResolveURL: %v", err)
	}
	if want := "http://studio.test/blobs/" + string(h); url != want {
		t.Fatalf("url = %q, want %q", url, want)
	}

	obj, err := store.Open(ctx, h)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if string(obj.Data) != "mp3" || obj.MIMEType != "audio/mpeg" || obj.Size != 3 || obj.Name != "podcast-1.mp3" {
		t.Fatalf("unexpected object %#v", obj)
	}
}

func TestLocalUnknownHandle(t *testing.T) {
	store := newTestLocal(t)
	ctx := context.Background()

	url, err := store.ResolveURL(ctx, "missing")
	if err != nil || url != "" {
		t.Fatalf("expected empty url for unknown handle, got %q, %v", url, err)
	}
	if _, err := store.Open(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLocalDelete(t *testing.T) {
	store := newTestLocal(t)
	ctx := context.Background()
	h, err := store.Upload(ctx, Payload{Name: "t.png", MIMEType: "image/png", Data: []byte("png")})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := store.Delete(ctx, h); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if url, _ := store.ResolveURL(ctx, h); url != "" {
		t.Fatalf("expected deleted handle to be unresolvable, got %q", url)
	}
}

func TestLocalRejectsEmptyPayload(t *testing.T) {
	store := newTestLocal(t)
	if _, err := store.Upload(context.Background(), Payload{Name: "x", MIMEType: "audio/mpeg"}); err == nil {
		t.Fatal("expected error for empty payload")
	}
}
