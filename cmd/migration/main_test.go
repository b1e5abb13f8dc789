package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMigrationsDir_PrefersExplicit(t *testing.T) {
	dir := t.TempDir()
	got, err := migrationsDir(dir)
	if err != nil {
		t.Fatalf("migrations dir: %v", err)
	}
	want, _ := filepath.Abs(dir)
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestMigrationsDir_NotFound(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	wd, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	if _, err := migrationsDir(missing); err == nil {
		t.Fatalf("expected error when no candidate exists")
	}
}
