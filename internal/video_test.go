package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVideo_ConvertToPreferred(t *testing.T) {
	tools, _ := testTools(t)
	dir := t.TempDir()

	src := filepath.Join(dir, "clip.mov")
	os.WriteFile(src, []byte("quicktime clip bytes"), 0644)

	a, err := NewVideo(src, tools)
	if err != nil {
		t.Fatalf("NewVideo failed: %v", err)
	}
	if !a.Valid() {
		t.Fatalf("Expected valid asset, got %v", a.Err())
	}

	converted := filepath.Join(dir, "clip.mp4")
	if a.Path() != converted {
		t.Errorf("Expected converted path %s, got %s", converted, a.Path())
	}
	if a.SourceBeforeConversion() != src {
		t.Errorf("Expected original path %s, got %s", src, a.SourceBeforeConversion())
	}

	comment, _ := tools.Probe.Comment(converted)
	if !strings.Contains(comment, "Converted") {
		t.Errorf("Expected conversion comment stamped, got %q", comment)
	}
}

func TestVideo_PreferredFormatUntouched(t *testing.T) {
	tools, _ := testTools(t)
	dir := t.TempDir()

	src := filepath.Join(dir, "clip.mp4")
	os.WriteFile(src, []byte("mp4 clip bytes"), 0644)

	a, err := NewVideo(src, tools)
	if err != nil {
		t.Fatalf("NewVideo failed: %v", err)
	}
	if a.Path() != src {
		t.Errorf("Expected path unchanged, got %s", a.Path())
	}
	if a.SourceBeforeConversion() != "" {
		t.Errorf("Expected no conversion, got original %s", a.SourceBeforeConversion())
	}
}

func TestVideo_CompanionImageInvalid(t *testing.T) {
	tools, _ := testTools(t)
	dir := t.TempDir()

	photo := filepath.Join(dir, "live.jpg")
	motion := filepath.Join(dir, "live.mov")
	writeTestJPEG(t, photo, 1)
	os.WriteFile(motion, []byte("motion clip"), 0644)

	a, err := NewVideo(motion, tools)
	if err != nil {
		t.Fatalf("NewVideo failed: %v", err)
	}
	if a.Valid() {
		t.Fatal("Expected companion video to be invalid as a standalone asset")
	}
	if a.Err().Category != ErrorCategoryInvalid {
		t.Errorf("Expected invalid category, got %s", a.Err().Category)
	}
}

func TestVideo_HashStableAcrossNames(t *testing.T) {
	tools, _ := testTools(t)
	dir := t.TempDir()

	one := filepath.Join(dir, "first.mp4")
	two := filepath.Join(dir, "second.mp4")
	os.WriteFile(one, []byte("identical video bytes"), 0644)
	os.WriteFile(two, []byte("identical video bytes"), 0644)

	a, _ := NewVideo(one, tools)
	b, _ := NewVideo(two, tools)

	hashA, err := a.ContentHash()
	if err != nil {
		t.Fatalf("ContentHash failed: %v", err)
	}
	hashB, err := b.ContentHash()
	if err != nil {
		t.Fatalf("ContentHash failed: %v", err)
	}
	if hashA != hashB {
		t.Error("Expected identical content to hash identically")
	}

	three := filepath.Join(dir, "third.mp4")
	os.WriteFile(three, []byte("different video bytes"), 0644)
	c, _ := NewVideo(three, tools)
	hashC, err := c.ContentHash()
	if err != nil {
		t.Fatalf("ContentHash failed: %v", err)
	}
	if hashA == hashC {
		t.Error("Expected different content to hash differently")
	}
}

func TestVideo_EmptyFileInvalid(t *testing.T) {
	tools, _ := testTools(t)
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.mp4")
	os.WriteFile(empty, nil, 0644)

	a, err := NewVideo(empty, tools)
	if err != nil {
		t.Fatalf("NewVideo failed: %v", err)
	}
	if a.Valid() {
		t.Fatal("Expected empty file to be invalid")
	}
}
