package local

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func setupStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store
}

func TestStore_SaveLoad(t *testing.T) {
	store := setupStore(t)

	want := record{Name: "alpha", Count: 3}
	if err := store.Save("drafts", "task-1", want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var got record
	if err := store.Load("drafts", "task-1", &got); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestStore_LoadMissing(t *testing.T) {
	store := setupStore(t)

	var got record
	err := store.Load("drafts", "nope", &got)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestStore_SaveReplacesExisting(t *testing.T) {
	store := setupStore(t)

	if err := store.Save("drafts", "task-1", record{Name: "first"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save("drafts", "task-1", record{Name: "second"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var got record
	if err := store.Load("drafts", "task-1", &got); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Name != "second" {
		t.Errorf("Name = %q, want %q", got.Name, "second")
	}
}

func TestStore_Delete(t *testing.T) {
	store := setupStore(t)

	store.Save("drafts", "task-1", record{})
	if err := store.Delete("drafts", "task-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if store.Exists("drafts", "task-1") {
		t.Error("record should be gone after Delete()")
	}
	if err := store.Delete("drafts", "task-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestStore_List(t *testing.T) {
	store := setupStore(t)

	store.Save("drafts", "a", record{})
	store.Save("drafts", "b", record{})

	ids, err := store.List("drafts")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("List() returned %d ids, want 2", len(ids))
	}

	empty, err := store.List("missing")
	if err != nil {
		t.Fatalf("List() on missing collection error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("List() on missing collection = %v, want empty", empty)
	}
}

func TestStore_FileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits not meaningful on windows")
	}

	dir := t.TempDir()
	store, err := NewStore(dir, WithFileMode(0600))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	if err := store.Save("credentials", "default", record{Name: "secret"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "credentials", "default.json"))
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("file mode = %o, want 0600", info.Mode().Perm())
	}
}
