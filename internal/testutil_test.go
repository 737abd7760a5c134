package internal

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeMeta implements MetadataPort over in-memory tag maps keyed by path.
type fakeMeta struct {
	tags     map[string]map[string]string
	writeErr error
}

func newFakeMeta() *fakeMeta {
	return &fakeMeta{tags: make(map[string]map[string]string)}
}

func (m *fakeMeta) setTags(path string, tags map[string]string) {
	m.tags[path] = tags
}

func (m *fakeMeta) ReadTags(path string) (map[string]string, error) {
	out := make(map[string]string)
	for k, v := range m.tags[path] {
		out[k] = v
	}
	return out, nil
}

func (m *fakeMeta) WriteTags(path string, tags map[string]string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	cur, ok := m.tags[path]
	if !ok {
		cur = make(map[string]string)
		m.tags[path] = cur
	}
	for k, v := range tags {
		cur[k] = v
	}
	return nil
}

// fakeTrans implements TranscodePort by copying bytes and remembering the
// comment stamped on each destination.
type fakeTrans struct {
	comments map[string]string
}

func (t *fakeTrans) Transcode(src, dst string, opts TranscodeOpts) error {
	if fileExists(dst) {
		return fmt.Errorf("transcode target already exists: %s", dst)
	}
	if err := copyFileAtomic(src, dst); err != nil {
		return err
	}
	t.comments[dst] = opts.Comment
	return nil
}

// fakeProbe serves the comments recorded by fakeTrans.
type fakeProbe struct {
	comments map[string]string
}

func (p fakeProbe) Comment(path string) (string, error) {
	return p.comments[path], nil
}

// fakeSniff trusts extensions, so tests control the detected type by naming.
// Zero-byte files still sniff as empty.
type fakeSniff struct{}

func (fakeSniff) DetectMime(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.Size() == 0 {
		return MimeEmpty, nil
	}
	if m := mimeImpliedBy(strings.ToLower(filepath.Ext(path))); m != "" {
		return m, nil
	}
	return "application/octet-stream", nil
}

func (fakeSniff) ExtensionFor(mime string) string {
	return MimeSniffer{}.ExtensionFor(mime)
}

func testConfig() *Config {
	return &Config{
		ImageExt:       []string{".jpg", ".jpeg", ".png", ".heic"},
		VideoExt:       []string{".mp4", ".mpg", ".mov", ".m4v", ".mts", ".mkv"},
		ImagePreferred: ".jpg",
		VideoPreferred: ".mp4",
	}
}

func testTools(t *testing.T) (*Tools, *fakeMeta) {
	t.Helper()
	meta := newFakeMeta()
	comments := make(map[string]string)
	tools := &Tools{
		Meta:  meta,
		Trans: &fakeTrans{comments: comments},
		Sniff: fakeSniff{},
		Probe: fakeProbe{comments: comments},
		Log:   NewTestLogger(),
		Cfg:   testConfig(),
	}
	return tools, meta
}

// writeTestJPEG writes a real JPEG whose pixel pattern is derived from seed,
// so different seeds produce different content hashes.
func writeTestJPEG(t *testing.T, path string, seed int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x*4 + seed) % 255),
				G: uint8((y*5 + seed*3) % 255),
				B: uint8((x + y + seed*7) % 255),
				A: 255,
			})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
}
