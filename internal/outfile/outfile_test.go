package outfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := f.WriteString("data"); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if _, err := os.Stat(path + ".bak"); !os.IsNotExist(err) {
		t.Fatalf("no backup expected for a fresh file")
	}
}

func TestOpen_BacksUpExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	if err := os.WriteFile(path, []byte("old content"), 0o644); err != nil {
		t.Fatalf("prepare existing file: %v", err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := f.WriteString("new content"); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	backup, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("backup not created: %v", err)
	}
	if string(backup) != "old content" {
		t.Fatalf("backup content mangled: %q", backup)
	}

	current, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read new file: %v", err)
	}
	if string(current) != "new content" {
		t.Fatalf("unexpected new content: %q", current)
	}
}
