package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resume-extractor/internal/extract/extracttest"
)

func TestExtractCommandWritesCSV(t *testing.T) {
	dir := t.TempDir()
	docx := filepath.Join(dir, "CVJohnSmith.docx")
	if err := os.WriteFile(docx, extracttest.DOCX("john@example.com", "Call +1 650 253 0000", "Graphic Designer"), 0o644); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txt, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write txt: %v", err)
	}
	out := filepath.Join(dir, "out.csv")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"extract", docx, txt, "--out", out, "--strict-phone", "--region", "PK"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header and one row, got %v", rows)
	}
	want := []string{"John Smith", "john@example.com", "", "CVJohnSmith.docx", "Graphic Designer"}
	if strings.Join(rows[1], "|") != strings.Join(want, "|") {
		t.Fatalf("expected %v, got %v", want, rows[1])
	}

	logged := stderr.String()
	for _, line := range []string{
		"Processed 1 out of 2 files (50%)",
		"Processed 2 out of 2 files (100%)",
		"skipped notes.txt: unsupported file type: .txt",
	} {
		if !strings.Contains(logged, line) {
			t.Fatalf("expected %q in stderr, got %s", line, logged)
		}
	}
}

func TestExtractCommandRejectsUnknownFormat(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"extract", "a.pdf", "--format", "json"})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestExtractCommandStdoutXLSX(t *testing.T) {
	dir := t.TempDir()
	docx := filepath.Join(dir, "Jane Doe.docx")
	if err := os.WriteFile(docx, extracttest.DOCX("jane@example.com"), 0o644); err != nil {
		t.Fatalf("write docx: %v", err)
	}

	var stdout bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"extract", docx, "--format", "xlsx", "--out", "-"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !bytes.HasPrefix(stdout.Bytes(), []byte("PK")) {
		t.Fatalf("expected xlsx zip on stdout")
	}
}
