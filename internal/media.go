package internal

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// exifDateFields are the image date tags, in resolution priority order.
// They are also the fields rewritten whenever a capture date is set.
var exifDateFields = []string{"DateTimeOriginal", "CreateDate"}

// videoDateFields are the container creation-date tags, in the vendor order
// they are trusted.
var videoDateFields = []string{"CreateDate", "TrackCreateDate", "MediaCreateDate", "CreationTime"}

// magicMemoriesTag holds an embedded XML fragment whose creation attribute is
// the only usable date on one legacy PNG source.
const magicMemoriesTag = "XMLcommagicmemoriesm4"

// preservedTags is the descriptive tag subset carried across regeneration and
// format conversion, both of which drop embedded metadata.
var preservedTags = []string{
	"DateTimeOriginal", "CreateDate", "ModifyDate",
	"Make", "Model", "Orientation", "UserComment",
	"GPSLatitude", "GPSLatitudeRef", "GPSLongitude", "GPSLongitudeRef",
	"GPSAltitude", "GPSAltitudeRef",
}

// ErrNoCaptureDate is returned when the whole resolution chain comes up
// empty. Assets without a date are left unplaced, never defaulted.
var ErrNoCaptureDate = errors.New("unable to determine date taken")

// Asset is one media file on disk plus its derived state. The two variants
// are ImageAsset and VideoAsset; everything else is shared.
type Asset interface {
	Path() string
	Kind() MediaKind
	Valid() bool
	Err() *ProcessError
	PreferredExt() string
	CaptureDate() (time.Time, error)
	SetCaptureDate(time.Time) error
	ContentHash() (string, error)
	SidecarPath() string
	AnimationPath() string
	SourceBeforeConversion() string
	WasRegenerated() bool
	// Files returns every filesystem artifact belonging to the asset:
	// primary file, sidecar, companion animation, pre-conversion source.
	Files() []string
	// CopyTo copies the asset's file set into destDir under filename
	// (extension-less) and returns the source -> destination map of
	// everything actually copied.
	CopyTo(destDir, filename string) (map[string]string, error)
}

// NewAsset constructs the variant matching the file's extension.
func NewAsset(path string, tools *Tools) (Asset, error) {
	kind, ok := tools.Cfg.KindOf(strings.ToLower(filepath.Ext(path)))
	if !ok {
		// construction still succeeds; the allowlist check marks it invalid
		kind = KindImage
	}
	if kind == KindVideo {
		return NewVideo(path, tools)
	}
	return NewImage(path, tools)
}

// kindHooks is the small fixed set of behaviors that differ between the two
// variants.
type kindHooks interface {
	preferredExt() string
	dateFields() []string
	computeHash() (string, error)
	// regenerate rewrites the file bytes in place to repair a corrupt
	// file, returning false when the kind cannot or the repair failed.
	regenerate() bool
}

// baseAsset carries the shared path/sidecar/date/tag/hash bookkeeping.
//
// Cached fields and what invalidates them:
//
//	tags  - cleared by updateTags, regeneration and conversion
//	date  - set once by CaptureDate or SetCaptureDate, never cleared
//	hash  - cleared by regeneration and conversion
type baseAsset struct {
	tools *Tools
	hooks kindHooks
	kind  MediaKind

	path     string
	origPath string
	ext      string

	sidecarPath   string
	sidecar       *Sidecar
	sidecarTried  bool
	animationPath string

	tags map[string]string

	date         time.Time
	dateResolved bool
	dateErr      error

	hash string

	valid       bool
	procErr     *ProcessError
	regenerated bool
}

func (a *baseAsset) Path() string                   { return a.path }
func (a *baseAsset) Kind() MediaKind                { return a.kind }
func (a *baseAsset) Valid() bool                    { return a.valid }
func (a *baseAsset) Err() *ProcessError             { return a.procErr }
func (a *baseAsset) SidecarPath() string            { return a.sidecarPath }
func (a *baseAsset) AnimationPath() string          { return a.animationPath }
func (a *baseAsset) SourceBeforeConversion() string { return a.origPath }
func (a *baseAsset) WasRegenerated() bool           { return a.regenerated }
func (a *baseAsset) PreferredExt() string           { return a.hooks.preferredExt() }

// setPath enforces the construction invariant: the primary path always
// references an existing regular file.
func (a *baseAsset) setPath(path string) error {
	if !fileExists(path) {
		return fmt.Errorf("media not found: %s", path)
	}
	a.path = path
	a.ext = filepath.Ext(path)
	return nil
}

func (a *baseAsset) markInvalid(cat ErrorCategory, err error) {
	a.valid = false
	a.procErr = NewProcessError(a.path, cat, err)
	a.tools.Log.Error("%v", a.procErr)
}

func (a *baseAsset) Files() []string {
	files := []string{a.path}
	if a.sidecarPath != "" {
		files = append(files, a.sidecarPath)
	}
	if a.animationPath != "" {
		files = append(files, a.animationPath)
	}
	if a.origPath != "" {
		files = append(files, a.origPath)
	}
	return files
}

// metadata returns the cached tag map, fetching it on first use.
func (a *baseAsset) metadata() (map[string]string, error) {
	if a.tags == nil {
		tags, err := a.tools.Meta.ReadTags(a.path)
		if err != nil {
			return nil, err
		}
		a.tags = tags
	}
	return a.tags, nil
}

func (a *baseAsset) invalidateMetadata() {
	a.tags = nil
}

// updateTags writes tags to the primary file, skipping fields whose current
// value already matches so re-runs stay idempotent. A failed write triggers
// one regeneration-and-retry; the second failure is returned to the caller.
func (a *baseAsset) updateTags(tags map[string]string) error {
	current, err := a.metadata()
	if err != nil {
		a.tools.Log.Debug("no current tags for %s: %v", a.path, err)
		current = map[string]string{}
	}

	pending := make(map[string]string, len(tags))
	for field, value := range tags {
		if current[field] != value {
			pending[field] = value
		}
	}
	if len(pending) == 0 {
		a.tools.Log.Debug("tags already up to date for %s", a.path)
		return nil
	}

	a.tools.Log.Debug("updating %d tag(s) for %s", len(pending), a.path)
	if err := a.tools.Meta.WriteTags(a.path, pending); err != nil {
		if !a.hooks.regenerate() {
			return err
		}
		if err := a.tools.Meta.WriteTags(a.path, pending); err != nil {
			return err
		}
	}
	a.invalidateMetadata()
	return nil
}

// preservedTagValues snapshots the descriptive tags worth re-applying after
// an operation that rewrites the file bytes.
func (a *baseAsset) preservedTagValues() map[string]string {
	snapshot := make(map[string]string)
	current, err := a.metadata()
	if err != nil {
		return snapshot
	}
	for _, field := range preservedTags {
		if v, ok := current[field]; ok {
			snapshot[field] = v
		}
	}
	return snapshot
}

// discoverSidecar locates and parses the companion JSON, once.
func (a *baseAsset) discoverSidecar() *Sidecar {
	if !a.sidecarTried {
		a.sidecarTried = true
		if a.sidecarPath == "" {
			a.sidecarPath = FindSidecar(a.path)
		}
		if a.sidecarPath != "" {
			sc, err := LoadSidecar(a.sidecarPath)
			if err != nil {
				a.tools.Log.Warn("unreadable sidecar %s: %v", a.sidecarPath, err)
			} else {
				a.sidecar = sc
			}
		}
	}
	return a.sidecar
}

// injectSidecar writes the sidecar-derived tags (date, GPS, people) into the
// file. Idempotent: unchanged fields are skipped by updateTags.
func (a *baseAsset) injectSidecar() error {
	sc := a.discoverSidecar()
	if sc == nil {
		return nil
	}
	current, err := a.metadata()
	if err != nil {
		current = map[string]string{}
	}
	tags := sidecarTags(sc, current)
	if len(tags) == 0 {
		return nil
	}
	return a.updateTags(tags)
}

// reconcileMime compares the sniffed content type against what the extension
// implies. Empty content invalidates; a family mismatch on images triggers a
// regeneration attempt; a plain extension lie is silently fixed by renaming
// the file (and its sidecar).
func (a *baseAsset) reconcileMime(family string) error {
	actual, err := a.tools.Sniff.DetectMime(a.path)
	if err != nil {
		return err
	}
	if actual == MimeEmpty {
		a.markInvalid(ErrorCategoryInvalid, fmt.Errorf("empty file"))
		return nil
	}

	if family != "" && !strings.HasPrefix(actual, family) {
		if a.hooks.regenerate() {
			if actual, err = a.tools.Sniff.DetectMime(a.path); err != nil {
				return err
			}
		}
		if !strings.HasPrefix(actual, family) {
			a.markInvalid(ErrorCategoryInvalid,
				fmt.Errorf("content type %s is not %s*", actual, family))
			return nil
		}
	}

	implied := mimeImpliedBy(strings.ToLower(a.ext))
	if implied == actual {
		return nil
	}
	newExt := a.tools.Sniff.ExtensionFor(actual)
	if newExt == "" || strings.EqualFold(newExt, a.ext) {
		return nil
	}

	a.tools.Log.Warn("mimetype does not match filetype for %s: %s != %s", a.path, implied, actual)
	newPath := strings.TrimSuffix(a.path, a.ext) + newExt
	if err := os.Rename(a.path, newPath); err != nil {
		return err
	}
	if a.sidecarPath != "" {
		newSidecar := newPath + ".json"
		if err := os.Rename(a.sidecarPath, newSidecar); err != nil {
			a.tools.Log.Warn("failed to rename sidecar %s: %v", a.sidecarPath, err)
		} else {
			a.sidecarPath = newSidecar
		}
	}
	a.tools.Log.Info("renamed %s to %s", a.path, newPath)
	return a.setPath(newPath)
}

// CaptureDate resolves the asset's date taken. Priority: sidecar timestamp,
// then the kind's metadata date fields against the known layouts, then the
// magic-memories XML attribute. No mtime fallback: an asset the chain cannot
// date is reported, not guessed.
func (a *baseAsset) CaptureDate() (time.Time, error) {
	if a.dateResolved {
		return a.date, a.dateErr
	}
	a.dateResolved = true

	if sc := a.discoverSidecar(); sc != nil {
		if taken, ok := sc.TakenTime(); ok {
			a.tools.Log.Debug("using sidecar timestamp for %s", a.path)
			a.date = taken
			return a.date, nil
		}
	}

	tags, err := a.metadata()
	if err != nil {
		a.tools.Log.Error("unable to get metadata for %s: %v", a.path, err)
		tags = map[string]string{}
	}

	for _, field := range a.hooks.dateFields() {
		value, ok := tags[field]
		if !ok {
			continue
		}
		a.tools.Log.Debug("using date field %s for %s", field, a.path)
		if t, ok := parseMediaDate(value); ok {
			a.date = t
			return a.date, nil
		}
		a.tools.Log.Error("unable to parse date field %s value %q", field, value)
	}

	if fragment, ok := tags[magicMemoriesTag]; ok {
		if t, ok := parseMagicMemoriesDate(fragment); ok {
			a.tools.Log.Debug("using magic-memories creation date for %s", a.path)
			a.date = t
			return a.date, nil
		}
	}

	a.dateErr = fmt.Errorf("%w for %s", ErrNoCaptureDate, a.path)
	return time.Time{}, a.dateErr
}

// SetCaptureDate overrides the resolved date and rewrites the date tag set
// as a side effect so downstream copies carry the corrected value.
func (a *baseAsset) SetCaptureDate(t time.Time) error {
	a.date = t
	a.dateResolved = true
	a.dateErr = nil

	date := t.Format(dateLayoutDefault)
	tags := make(map[string]string, len(exifDateFields))
	for _, field := range exifDateFields {
		tags[field] = date
	}
	if err := a.updateTags(tags); err != nil {
		a.markInvalid(ErrorCategoryTagWrite, err)
		return a.procErr
	}
	return nil
}

// ContentHash computes the canonicalized content hash once and caches it.
// The hash procedure is kind-specific but always strips metadata first, so
// files differing only in tag payload hash identically.
func (a *baseAsset) ContentHash() (string, error) {
	if a.hash != "" {
		return a.hash, nil
	}
	hash, err := a.hooks.computeHash()
	if err != nil {
		return "", err
	}
	a.hash = hash
	return hash, nil
}

func (a *baseAsset) invalidateContent() {
	a.invalidateMetadata()
	a.hash = ""
}

// recordConversion swaps the primary file to the converted one, keeping the
// pre-conversion path for copy-and-cleanup bookkeeping.
func (a *baseAsset) recordConversion(newPath string) error {
	a.origPath = a.path
	if err := a.setPath(newPath); err != nil {
		return err
	}
	a.invalidateContent()
	return nil
}

func (a *baseAsset) CopyTo(destDir, filename string) (map[string]string, error) {
	copies := make(map[string]string)

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", destDir, err)
	}

	primary := filepath.Join(destDir, filename+a.hooks.preferredExt())
	if fileExists(primary) {
		a.tools.Log.Warn("destination file already exists: %s", primary)
		return copies, nil
	}
	copies[a.path] = primary

	if a.sidecarPath != "" {
		dest := filepath.Join(destDir, filename+".json")
		if fileExists(dest) {
			a.tools.Log.Warn("destination json file already exists: %s", dest)
		} else {
			copies[a.sidecarPath] = dest
		}
	}

	if a.animationPath != "" {
		dest := filepath.Join(destDir, filename+a.tools.Cfg.VideoPreferred)
		if fileExists(dest) {
			a.tools.Log.Warn("destination animation file already exists: %s", dest)
		} else {
			copies[a.animationPath] = dest
		}
	}

	for src, dest := range copies {
		a.tools.Log.Info("copying %s -> %s", src, dest)
		if err := copyFileAtomic(src, dest); err != nil {
			return nil, err
		}
	}
	return copies, nil
}

// parseMagicMemoriesDate pulls the creation attribute out of the embedded
// XML fragment one legacy PNG source carries.
func parseMagicMemoriesDate(fragment string) (time.Time, bool) {
	var tree struct {
		Creation string `xml:"creation,attr"`
	}
	if err := xml.Unmarshal([]byte(fragment), &tree); err != nil || tree.Creation == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(dateLayoutM4, tree.Creation, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// copyFileAtomic copies a file atomically (copy temp, then rename).
func copyFileAtomic(src, dest string) error {
	tmp := dest + ".tmp"
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, dest)
}

// allowlisted reports whether ext (lowercased) is in the recognized set.
func allowlisted(ext string, allowed []string) bool {
	for _, e := range allowed {
		if ext == e {
			return true
		}
	}
	return false
}
