package local

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := New(dir)

	n, err := store.SaveWithKey(ctx, "staging/abc/cv.pdf", "application/pdf", strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("SaveWithKey: %v", err)
	}
	if n != int64(len("payload")) {
		t.Fatalf("expected %d bytes, got %d", len("payload"), n)
	}

	rc, err := store.Open(ctx, "staging/abc/cv.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(got) != "payload" {
		t.Fatalf("unexpected content %q", got)
	}

	if err := store.Delete(ctx, "staging/abc/cv.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "staging", "abc", "cv.pdf")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected file removed, stat err=%v", err)
	}
	if err := store.Delete(ctx, "staging/abc/cv.pdf"); err != nil {
		t.Fatalf("second Delete should be a no-op, got %v", err)
	}
}

func TestRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Open(context.Background(), "../etc/passwd"); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
	if err := store.Delete(context.Background(), "/abs/path"); err == nil {
		t.Fatalf("expected absolute key to be rejected")
	}
}
