package config

import (
	"path/filepath"
	"testing"
)

func TestDataDirWithExplicitOverride(t *testing.T) {
	tmp := t.TempDir()
	got := DataDir(tmp)
	if got != tmp {
		t.Fatalf("expected %q, got %q", tmp, got)
	}
}

func TestDataDirFallsBackToHome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	got := DataDir("")
	want := filepath.Join(tmp, ".threadbox", "data")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestDatabasePath(t *testing.T) {
	tmp := t.TempDir()
	got := DatabasePath(tmp)
	want := filepath.Join(tmp, "index.db")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
