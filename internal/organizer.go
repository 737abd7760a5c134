package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// maxBasenameLen rejects machine-generated names (hash dumps, export blobs)
// that carry no human intent and routinely collide.
const maxBasenameLen = 46

// Results tallies one organizer run. Every discovered file lands in exactly
// one counter except Deleted, which counts cleanup removals on top.
type Results struct {
	Moved      int
	Duplicate  int
	Failed     int
	Manual     int
	Invalid    int
	Unresolved int
	Deleted    int
	BytesMoved uint64
}

func (r *Results) String() string {
	return fmt.Sprintf(
		"moved: %d (%s), duplicate: %d, failed: %d, manual: %d, invalid: %d, unresolved: %d, deleted: %d",
		r.Moved, humanize.Bytes(r.BytesMoved),
		r.Duplicate, r.Failed, r.Manual, r.Invalid, r.Unresolved, r.Deleted)
}

// Organizer drives a full run: scan, pre-filter, per-asset processing,
// cleanup. Re-running over the same trees is safe; already-placed content is
// recognized by hash and already-correct tags are skipped on write.
type Organizer struct {
	Tools *Tools
	Store *HashStore

	SourceDir  string
	DestDir    string
	Extensions []string
	DryRun     bool
	Cleanup    bool
	SubDirs    bool
	Offset     Offset
	Minus      bool

	placer     *Placer
	results    *Results
	cleanupSet map[string]bool
}

// Run executes the pipeline and returns the tally. Only setup failures
// (missing source tree, unscannable directory) are returned as errors;
// per-asset failures are counted and logged instead.
func (o *Organizer) Run() (*Results, error) {
	if _, err := os.Stat(o.SourceDir); err != nil {
		return nil, fmt.Errorf("source directory %s: %w", o.SourceDir, err)
	}
	o.placer = NewPlacer(o.DestDir, o.SubDirs, o.Tools)
	o.results = &Results{}
	o.cleanupSet = make(map[string]bool)

	files, err := ScanMediaFiles(o.SourceDir, o.Extensions)
	if err != nil {
		return nil, err
	}
	o.Tools.Log.Info("found %d media file(s) in %s", len(files), o.SourceDir)

	for _, path := range o.prefilter(files) {
		o.processPath(path)
	}

	o.runCleanup()
	return o.results, nil
}

// ProcessOne runs a single file through the pipeline, including its cleanup
// phase. Used by the watch loop, where files arrive one at a time.
func (o *Organizer) ProcessOne(path string) *Results {
	if o.placer == nil {
		o.placer = NewPlacer(o.DestDir, o.SubDirs, o.Tools)
	}
	o.results = &Results{}
	o.cleanupSet = make(map[string]bool)

	base := filepath.Base(path)
	if strings.ContainsAny(base, "()") || len(base) >= maxBasenameLen {
		o.Tools.Log.Warn("manual intervention required for %s", path)
		o.results.Manual++
		return o.results
	}
	o.processPath(path)
	o.runCleanup()
	return o.results
}

// prefilter drops files whose names make automated placement unsafe:
// parenthesized copy suffixes, machine-generated names past the length
// limit, and base-name collisions within a kind (ambiguous sidecar and
// companion pairing). Dropped files count as manual and are left in place.
func (o *Organizer) prefilter(files []string) []string {
	type slot struct {
		paths []string
	}
	stems := make(map[string]*slot)
	var order []string

	for _, path := range files {
		base := filepath.Base(path)
		if strings.ContainsAny(base, "()") {
			o.Tools.Log.Warn("manual intervention required for %s: parenthesized name", path)
			o.results.Manual++
			continue
		}
		if len(base) >= maxBasenameLen {
			o.Tools.Log.Warn("manual intervention required for %s: name too long", path)
			o.results.Manual++
			continue
		}

		ext := strings.ToLower(filepath.Ext(base))
		kind, _ := o.Tools.Cfg.KindOf(ext)
		// an image and a video may legitimately share a stem (motion
		// photos), so collisions are scoped per kind
		key := string(kind) + "/" + strings.TrimSuffix(base, filepath.Ext(base))
		s, ok := stems[key]
		if !ok {
			s = &slot{}
			stems[key] = s
			order = append(order, key)
		}
		s.paths = append(s.paths, path)
	}

	var kept []string
	for _, key := range order {
		s := stems[key]
		if len(s.paths) > 1 {
			for _, path := range s.paths {
				o.Tools.Log.Error("manual intervention required for %s: duplicate base name", path)
				o.results.Manual++
			}
			continue
		}
		kept = append(kept, s.paths[0])
	}
	sort.Strings(kept)
	return kept
}

// processPath runs one file through the pipeline, routing it to exactly one
// counter.
func (o *Organizer) processPath(path string) {
	a, err := NewAsset(path, o.Tools)
	if err != nil {
		o.Tools.Log.Error("%v", CategorizeError(path, err))
		o.results.Failed++
		return
	}
	o.processAsset(a)
}

func (o *Organizer) processAsset(a Asset) {
	if !a.Valid() {
		o.results.Invalid++
		return
	}

	hash, err := a.ContentHash()
	if err != nil {
		o.Tools.Log.Error("%v", CategorizeError(a.Path(), err))
		o.results.Failed++
		return
	}

	existing, err := o.Store.FindByHash(hash)
	if err != nil {
		o.Tools.Log.Error("hash lookup failed for %s: %v", a.Path(), err)
		o.results.Failed++
		return
	}
	if len(existing) > 0 {
		o.Tools.Log.Info("[DUPLICATE] %s matches %s", a.Path(), existing[0])
		o.results.Duplicate++
		o.queueCleanup(a.Files())
		return
	}

	date, err := a.CaptureDate()
	if err != nil {
		o.Tools.Log.Error("%v", NewProcessError(a.Path(), ErrorCategoryDate, err))
		o.results.Unresolved++
		return
	}
	if !o.Offset.IsZero() {
		date = o.Offset.Apply(date, o.Minus)
		if err := a.SetCaptureDate(date); err != nil {
			o.results.Failed++
			return
		}
	}

	placement, err := o.placer.Place(a)
	if err != nil {
		o.Tools.Log.Error("%v", CategorizeError(a.Path(), err))
		o.results.Failed++
		return
	}

	if placement.Duplicate {
		o.results.Duplicate++
		if !o.DryRun {
			if err := o.Store.Insert(placement.PrimaryDest, hash); err != nil {
				o.Tools.Log.Warn("failed to record hash for %s: %v", placement.PrimaryDest, err)
			}
		}
		o.queueCleanup(a.Files())
		return
	}

	if o.DryRun {
		o.Tools.Log.Info("[DRY RUN] would copy %s -> %s", a.Path(), placement.PrimaryDest)
		o.results.Moved++
		if a.SidecarPath() != "" {
			o.results.Moved++
		}
		if a.AnimationPath() != "" {
			o.results.Moved++
		}
		return
	}

	copied, err := a.CopyTo(placement.Dir, placement.Filename)
	if err != nil {
		o.Tools.Log.Error("%v", NewProcessError(a.Path(), ErrorCategoryCopy, err))
		o.results.Failed++
		return
	}
	o.results.Moved += len(copied)
	for _, dest := range copied {
		if info, err := os.Stat(dest); err == nil {
			o.results.BytesMoved += uint64(info.Size())
		}
	}

	if err := o.Store.Insert(placement.PrimaryDest, hash); err != nil {
		o.Tools.Log.Warn("failed to record hash for %s: %v", placement.PrimaryDest, err)
	}
	o.queueCleanup(a.Files())
}

func (o *Organizer) queueCleanup(files []string) {
	if o.DryRun || !o.Cleanup {
		return
	}
	for _, f := range files {
		if f != "" {
			o.cleanupSet[f] = true
		}
	}
}

// runCleanup removes the source-side artifacts of everything successfully
// placed or recognized as a duplicate. Already-gone files are tolerated.
func (o *Organizer) runCleanup() {
	if len(o.cleanupSet) == 0 {
		return
	}
	files := make([]string, 0, len(o.cleanupSet))
	for f := range o.cleanupSet {
		files = append(files, f)
	}
	sort.Strings(files)

	for _, f := range files {
		err := os.Remove(f)
		if err != nil {
			if !os.IsNotExist(err) {
				o.Tools.Log.Warn("failed to remove %s: %v", f, err)
			}
			continue
		}
		o.Tools.Log.Info("removed %s", f)
		o.results.Deleted++
	}
}
