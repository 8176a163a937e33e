package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestDiskStore(t *testing.T) (*DiskStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewDiskStore(dir, "http://localhost:8080/uploads/")
	if err != nil {
		t.Fatalf("NewDiskStore() error = %v", err)
	}
	return store, dir
}

func TestDiskStorePut(t *testing.T) {
	store, dir := newTestDiskStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "owner/a.png", strings.NewReader("png"), 3, "image/png"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "owner", "a.png"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "png" {
		t.Errorf("file content = %q, want %q", data, "png")
	}

	err = store.Put(ctx, "owner/a.png", strings.NewReader("other"), 5, "image/png")
	if !errors.Is(err, ErrExists) {
		t.Errorf("Put() existing key error = %v, want %v", err, ErrExists)
	}

	data, _ = os.ReadFile(filepath.Join(dir, "owner", "a.png"))
	if string(data) != "png" {
		t.Errorf("existing file overwritten with %q", data)
	}
}

func TestDiskStoreDelete(t *testing.T) {
	store, _ := newTestDiskStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "owner/a.png", strings.NewReader("png"), 3, "image/png"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Delete(ctx, "owner/a.png"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, "owner/a.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() missing key error = %v, want %v", err, ErrNotFound)
	}
}

func TestDiskStoreRejectsInvalidKeys(t *testing.T) {
	store, _ := newTestDiskStore(t)
	ctx := context.Background()

	for _, key := range []string{"", "/abs.png", "../escape.png", "owner/../../escape.png", "owner//a.png", "owner/."} {
		if err := store.Put(ctx, key, strings.NewReader("x"), 1, "image/png"); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Put(%q) error = %v, want %v", key, err, ErrInvalidKey)
		}
		if err := store.Delete(ctx, key); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Delete(%q) error = %v, want %v", key, err, ErrInvalidKey)
		}
	}
}

func TestDiskStoreURL(t *testing.T) {
	store, _ := newTestDiskStore(t)

	got := store.URL("owner/a.png")
	want := "http://localhost:8080/uploads/owner/a.png"
	if got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
}
