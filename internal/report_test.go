package internal

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestBuildReport(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "2021", "Jun")
	os.MkdirAll(sub, 0755)

	os.WriteFile(filepath.Join(sub, "2021-06-01_10'00'00.jpg"), []byte("aaaa"), 0644)
	os.WriteFile(filepath.Join(sub, "2021-06-01_10'00'00.json"), []byte("{}"), 0644)
	os.WriteFile(filepath.Join(root, "2019-01-05_08'30'00.mp4"), []byte("bbbbbbbb"), 0644)
	os.WriteFile(filepath.Join(root, "stray.txt"), []byte("ignored"), 0644)

	report, err := BuildReport(root, testConfig(), nil)
	if err != nil {
		t.Fatalf("BuildReport failed: %v", err)
	}

	if report.TotalFiles != 3 {
		t.Errorf("Expected 3 files, got %d", report.TotalFiles)
	}
	if report.ByExt[".jpg"].Count != 1 || report.ByExt[".mp4"].Count != 1 {
		t.Errorf("Unexpected per-extension counts: %+v", report.ByExt)
	}
	if _, ok := report.ByExt[".txt"]; ok {
		t.Error("Expected non-media files excluded")
	}

	wantOldest := time.Date(2019, 1, 5, 8, 30, 0, 0, time.Local)
	wantNewest := time.Date(2021, 6, 1, 10, 0, 0, 0, time.Local)
	if !report.Oldest.Equal(wantOldest) || !report.Newest.Equal(wantNewest) {
		t.Errorf("Expected span %v - %v, got %v - %v",
			wantOldest, wantNewest, report.Oldest, report.Newest)
	}
}

func TestBuildReport_Duplicates(t *testing.T) {
	root := t.TempDir()
	store := openTestStore(t)

	store.Insert(filepath.Join(root, "a.jpg"), "hash-1")
	store.Insert(filepath.Join(root, "b.jpg"), "hash-1")
	store.Insert(filepath.Join(root, "c.jpg"), "hash-2")

	report, err := BuildReport(root, testConfig(), store)
	if err != nil {
		t.Fatalf("BuildReport failed: %v", err)
	}
	if len(report.DuplicateSets) != 1 {
		t.Fatalf("Expected 1 duplicate set, got %d", len(report.DuplicateSets))
	}
	if len(report.DuplicateSets[0]) != 2 {
		t.Errorf("Expected 2 paths in the set, got %v", report.DuplicateSets[0])
	}
}

func TestLibraryReport_WriteTo(t *testing.T) {
	root := t.TempDir()
	os.WriteFile(filepath.Join(root, "2021-06-01_10'00'00.jpg"), []byte("aaaa"), 0644)

	report, err := BuildReport(root, testConfig(), nil)
	if err != nil {
		t.Fatalf("BuildReport failed: %v", err)
	}

	var buf bytes.Buffer
	report.WriteTo(&buf)
	out := buf.String()
	if !strings.Contains(out, ".jpg") {
		t.Errorf("Expected extension breakdown in output, got:\n%s", out)
	}
	if !strings.Contains(out, "2021-06-01") {
		t.Errorf("Expected date span in output, got:\n%s", out)
	}
}
