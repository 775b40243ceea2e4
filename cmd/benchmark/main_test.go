package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestHumanBytes(t *testing.T) {
	tests := map[int64]string{
		512:             "512 B",
		2048:            "2.00 KB",
		3 * 1024 * 1024: "3.00 MB",
		5 << 30:         "5.00 GB",
	}
	for in, want := range tests {
		if got := humanBytes(in); got != want {
			t.Errorf("humanBytes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderMarkdown(t *testing.T) {
	results := []BenchResult{
		{File: "a.png", Format: "png", Duration: 100 * time.Millisecond, Size: 1024},
		{File: "b.png", Format: "png", Duration: 300 * time.Millisecond, Size: 3072},
		{File: "c.jpg", Format: "jpg", Duration: 200 * time.Millisecond, Size: 100},
		{File: "d.jpg", Format: "jpg", Err: errors.New("bad status 500")},
	}

	out := renderMarkdown(results)
	for _, want := range []string{
		"| jpg | 1 | 200ms | 200ms | 100 B |",
		"| png | 2 | 200ms | 400ms | 2.00 KB |",
		"| **ALL** | 3 | 200ms | 600ms | 1.37 KB |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "| jpg") > strings.Index(out, "| png") {
		t.Errorf("formats not sorted:\n%s", out)
	}
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.png"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	paths, err := listImages(dir)
	if err != nil {
		t.Fatalf("listImages() error = %v", err)
	}
	if len(paths) != 1 || paths[0] != filepath.Join(dir, "a.png") {
		t.Errorf("paths = %v", paths)
	}

	paths, err = listImages(filepath.Join(dir, "missing"))
	if err != nil || len(paths) != 0 {
		t.Errorf("listImages(missing) = %v, %v; want empty, nil", paths, err)
	}

	if _, err := listImages(filepath.Join(dir, "a.png")); err == nil {
		t.Error("listImages(file) error = nil, want error")
	}
}
