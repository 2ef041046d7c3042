package seeds

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDecodesAndOrders(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "b.raw"), []byte("QUIT\r\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.raw"), []byte{0x00, 0x41}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("loaded %d seeds, want 2", len(got))
	}
	if got[0] != " 0x00 A" {
		t.Fatalf("seed a: %q", got[0])
	}
	if got[1] != "QUIT\r\n" {
		t.Fatalf("seed b: %q", got[1])
	}
}

func TestLoadSkipsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "one.raw"), []byte("USER anonymous"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("loaded %d seeds, want 1", len(got))
	}
}

func TestLoadMissingDir(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
