package internal

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// VideoAsset is the video variant. A video that shares its base name with an
// image is that image's motion companion and is not processed on its own.
type VideoAsset struct {
	baseAsset
}

func NewVideo(path string, tools *Tools) (*VideoAsset, error) {
	a := &VideoAsset{baseAsset{tools: tools, kind: KindVideo, valid: true}}
	a.hooks = a

	if err := a.setPath(path); err != nil {
		return nil, err
	}
	if !allowlisted(strings.ToLower(a.ext), tools.Cfg.VideoExt) {
		a.markInvalid(ErrorCategoryInvalid, fmt.Errorf("unsupported video extension %s", a.ext))
		return a, nil
	}
	if img := a.companionImage(); img != "" {
		a.markInvalid(ErrorCategoryInvalid,
			fmt.Errorf("%s is an animation companion of %s, not a standalone video", a.path, img))
		return a, nil
	}

	a.discoverSidecar()

	if err := a.reconcileMime(""); err != nil {
		a.markInvalid(ErrorCategoryInvalid, err)
		return a, nil
	}
	if !a.valid {
		return a, nil
	}

	if err := a.injectSidecar(); err != nil {
		a.markInvalid(ErrorCategoryTagWrite, err)
		return a, nil
	}

	if !strings.EqualFold(a.ext, a.preferredExt()) {
		if err := a.convert(); err != nil {
			a.markInvalid(ErrorCategoryInvalid, err)
		}
	}
	return a, nil
}

// companionImage returns the path of an image sharing this video's base
// name, if one exists.
func (a *VideoAsset) companionImage() string {
	stem := strings.TrimSuffix(a.path, a.ext)
	for _, ext := range a.tools.Cfg.ImageExt {
		if fileExists(stem + ext) {
			return stem + ext
		}
		if fileExists(stem + strings.ToUpper(ext)) {
			return stem + strings.ToUpper(ext)
		}
	}
	return ""
}

func (a *VideoAsset) preferredExt() string {
	return a.tools.Cfg.VideoPreferred
}

func (a *VideoAsset) dateFields() []string {
	return videoDateFields
}

// regenerate is an image-only repair; corrupt videos are not salvageable
// here.
func (a *VideoAsset) regenerate() bool {
	return false
}

// computeHash transcodes to the canonical codec/container in a scratch
// directory and hashes the resulting byte stream, so re-encodes of the same
// source collide once canonicalized. Expensive; the base caches the result.
func (a *VideoAsset) computeHash() (string, error) {
	tempDir, err := os.MkdirTemp("", "silmaril_hash")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tempDir)

	a.tools.Log.Debug("hashing video %s", a.path)
	canonical := filepath.Join(tempDir, "canonical"+a.preferredExt())
	err = a.tools.Trans.Transcode(a.path, canonical, TranscodeOpts{
		AudioCodec: "aac",
		VideoCodec: "h264",
	})
	if err != nil {
		return "", fmt.Errorf("error canonicalizing video %s: %w", a.path, err)
	}

	f, err := os.Open(canonical)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// convert transcodes to the preferred codec/container, stamping the comment
// tag so a later run can recognize the destination as a prior conversion.
func (a *VideoAsset) convert() error {
	dest := strings.TrimSuffix(a.path, a.ext) + a.preferredExt()
	if fileExists(dest) {
		a.tools.Log.Info("skipping conversion of %s: %s already exists", a.path, dest)
		return a.recordConversion(dest)
	}

	a.tools.Log.Info("converting %s -> %s", a.path, dest)
	err := a.tools.Trans.Transcode(a.path, dest, TranscodeOpts{
		AudioCodec: "aac",
		VideoCodec: "h264",
		Comment:    fmt.Sprintf("Converted %s to %s", a.path, dest),
	})
	if err != nil {
		return err
	}
	return a.recordConversion(dest)
}
