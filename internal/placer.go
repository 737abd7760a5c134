package internal

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// maxCollisionRetries bounds the one-second probing loop. Bursts of
// same-second captures chain a handful of retries; anything near the cap
// means something else is wrong.
const maxCollisionRetries = 10000

// Placement is a secured destination for an asset's file set. When
// Duplicate is set the content already lives at PrimaryDest and nothing
// should be copied.
type Placement struct {
	Dir         string
	Filename    string
	PrimaryDest string
	Duplicate   bool
}

// Placer computes date-partitioned destinations and resolves filename
// collisions by perturbing the capture date one second at a time.
type Placer struct {
	tools    *Tools
	destRoot string
	subDirs  bool
}

func NewPlacer(destRoot string, subDirs bool, tools *Tools) *Placer {
	return &Placer{tools: tools, destRoot: destRoot, subDirs: subDirs}
}

// Place secures a destination for the asset. A collision with identical
// content is reported as a duplicate-in-place; a collision with different
// content advances the capture date by exactly one second and tries again.
// Advancing goes through SetCaptureDate so the file's date tags keep
// matching its eventual filename.
func (p *Placer) Place(a Asset) (*Placement, error) {
	date, err := a.CaptureDate()
	if err != nil {
		return nil, err
	}

	for i := 0; i < maxCollisionRetries; i++ {
		dir := p.destRoot
		if p.subDirs {
			dir = filepath.Join(dir, date.Format("2006"), date.Format("Jan"))
		}
		filename := date.Format(dateLayoutFilename)
		dest := filepath.Join(dir, filename+a.PreferredExt())

		if !fileExists(dest) {
			return &Placement{Dir: dir, Filename: filename, PrimaryDest: dest}, nil
		}

		p.tools.Log.Debug("destination file already exists: %s", dest)
		if p.sameContent(a, dest) {
			p.tools.Log.Debug("[DUPLICATE] destination file matches source: %s", dest)
			return &Placement{Dir: dir, Filename: filename, PrimaryDest: dest, Duplicate: true}, nil
		}

		date = date.Add(time.Second)
		if err := a.SetCaptureDate(date); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("exhausted %d collision retries for %s", maxCollisionRetries, a.Path())
}

// sameContent decides whether the file already at dest is this asset's
// content: equal canonical hashes, or, for videos, a destination stamped as
// a prior conversion of the source.
func (p *Placer) sameContent(a Asset, dest string) bool {
	existing, err := NewAsset(dest, p.tools)
	if err == nil && existing.Valid() {
		srcHash, srcErr := a.ContentHash()
		destHash, destErr := existing.ContentHash()
		if srcErr == nil && destErr == nil && srcHash == destHash {
			return true
		}
	}

	if a.Kind() == KindVideo {
		comment, err := p.tools.Probe.Comment(dest)
		if err == nil && strings.Contains(comment, "Converted") {
			p.tools.Log.Info("video file already converted: %s", dest)
			return true
		}
	}
	return false
}
