package internal

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// ImageAsset is the image variant. Construction runs the full reconciliation
// chain: extension allowlist, mime sniff + repair, sidecar injection,
// companion animation discovery, conversion to the preferred raster format.
type ImageAsset struct {
	baseAsset
}

func NewImage(path string, tools *Tools) (*ImageAsset, error) {
	a := &ImageAsset{baseAsset{tools: tools, kind: KindImage, valid: true}}
	a.hooks = a

	if err := a.setPath(path); err != nil {
		return nil, err
	}
	if !allowlisted(strings.ToLower(a.ext), tools.Cfg.ImageExt) {
		a.markInvalid(ErrorCategoryInvalid, fmt.Errorf("unsupported image extension %s", a.ext))
		return a, nil
	}

	a.discoverSidecar()

	if err := a.reconcileMime("image/"); err != nil {
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

	a.findAnimation()

	if !strings.EqualFold(a.ext, a.preferredExt()) {
		if err := a.convert(); err != nil {
			a.markInvalid(ErrorCategoryInvalid, err)
		}
	}
	return a, nil
}

func (a *ImageAsset) preferredExt() string {
	return a.tools.Cfg.ImagePreferred
}

func (a *ImageAsset) dateFields() []string {
	return exifDateFields
}

// computeHash decodes the image and hashes the raw pixel buffer, so
// re-exports differing only in tag payload collide.
func (a *ImageAsset) computeHash() (string, error) {
	img, err := imaging.Open(a.path)
	if err != nil {
		return "", fmt.Errorf("error opening image %s: %w", a.path, err)
	}
	pixels := imaging.Clone(img)
	return fmt.Sprintf("%x", sha256.Sum256(pixels.Pix)), nil
}

// regenerate re-encodes the image in place through a decode/encode round
// trip, then writes salvageable tags back. Used to repair files whose bytes
// no longer decode as their claimed type.
func (a *ImageAsset) regenerate() bool {
	a.tools.Log.Warn("regenerating image: %s", a.path)
	snapshot := a.preservedTagValues()

	img, err := imaging.Open(a.path)
	if err != nil {
		a.tools.Log.Error("failed to regenerate image %s: %v", a.path, err)
		return false
	}
	if err := imaging.Save(img, a.path); err != nil {
		a.tools.Log.Error("failed to regenerate image %s: %v", a.path, err)
		return false
	}
	a.regenerated = true
	a.invalidateContent()

	if len(snapshot) > 0 {
		if err := a.tools.Meta.WriteTags(a.path, snapshot); err != nil {
			a.tools.Log.Warn("could not rewrite tags after regenerating %s: %v", a.path, err)
		}
		a.invalidateMetadata()
	}
	a.tools.Log.Info("successfully regenerated image: %s", a.path)
	return true
}

// convert re-encodes the image to the preferred raster format. Re-encoding
// drops embedded tags, so the descriptive subset is snapshotted first and
// re-applied (plus sidecar data) to the converted file.
func (a *ImageAsset) convert() error {
	dest := strings.TrimSuffix(a.path, a.ext) + a.preferredExt()
	a.tools.Log.Debug("converting image %s -> %s", a.path, dest)

	snapshot := a.preservedTagValues()

	if fileExists(dest) {
		a.tools.Log.Info("skipping conversion of %s: %s already exists", a.path, dest)
	} else if strings.EqualFold(a.ext, ".heic") {
		// imaging has no HEIC decoder; route through the transcoder
		if err := a.tools.Trans.Transcode(a.path, dest, TranscodeOpts{}); err != nil {
			return err
		}
	} else {
		img, err := imaging.Open(a.path)
		if err != nil {
			return fmt.Errorf("failed to convert %s: %w", a.path, err)
		}
		if err := imaging.Save(img, dest); err != nil {
			return fmt.Errorf("failed to convert %s: %w", a.path, err)
		}
	}

	if err := a.recordConversion(dest); err != nil {
		return err
	}
	if len(snapshot) > 0 {
		if err := a.updateTags(snapshot); err != nil {
			a.tools.Log.Warn("could not rewrite tags after converting %s: %v", a.path, err)
		}
	}
	if err := a.injectSidecar(); err != nil {
		return err
	}
	a.tools.Log.Info("successfully converted %s -> %s", a.origPath, a.path)
	return nil
}

// findAnimation looks for a paired short video sharing the image's base name
// (the motion-photo pattern) and normalizes it to the preferred video
// container.
func (a *ImageAsset) findAnimation() {
	stem := strings.TrimSuffix(a.path, a.ext)
	for _, ext := range a.tools.Cfg.VideoExt {
		candidate := stem + ext
		upper := stem + strings.ToUpper(ext)
		if fileExists(candidate) {
			a.animationPath = candidate
		} else if fileExists(upper) {
			if err := os.Rename(upper, candidate); err == nil {
				a.animationPath = candidate
			}
		}
	}
	if a.animationPath == "" {
		return
	}

	animExt := filepath.Ext(a.animationPath)
	preferred := a.tools.Cfg.VideoPreferred
	if strings.EqualFold(animExt, preferred) {
		return
	}

	converted := strings.TrimSuffix(a.animationPath, animExt) + preferred
	if fileExists(converted) {
		a.tools.Log.Info("skipping conversion of %s: %s already exists", a.animationPath, converted)
		a.animationPath = converted
		return
	}
	err := a.tools.Trans.Transcode(a.animationPath, converted, TranscodeOpts{
		AudioCodec: "aac",
		VideoCodec: "h264",
		Comment:    fmt.Sprintf("Converted %s to %s", a.animationPath, converted),
	})
	if err != nil {
		a.tools.Log.Error("failed to convert animation %s: %v", a.animationPath, err)
		return
	}
	a.animationPath = converted
}
