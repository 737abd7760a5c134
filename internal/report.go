package internal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// ExtStat aggregates the files of one extension.
type ExtStat struct {
	Count int
	Bytes uint64
}

// LibraryReport summarizes an organized destination tree: volume per
// extension, the capture-date span recovered from the filenames, and any
// hash collisions the index knows about.
type LibraryReport struct {
	Root          string
	TotalFiles    int
	TotalBytes    uint64
	ByExt         map[string]*ExtStat
	Oldest        time.Time
	Newest        time.Time
	DuplicateSets [][]string
}

// BuildReport walks the destination tree and cross-references the hash
// index. A nil store skips duplicate detection.
func BuildReport(root string, cfg *Config, store *HashStore) (*LibraryReport, error) {
	r := &LibraryReport{Root: root, ByExt: make(map[string]*ExtStat)}

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(info.Name()))
		if !allowlisted(ext, cfg.Extensions("")) && ext != ".json" {
			return nil
		}

		stat, ok := r.ByExt[ext]
		if !ok {
			stat = &ExtStat{}
			r.ByExt[ext] = stat
		}
		stat.Count++
		stat.Bytes += uint64(info.Size())
		r.TotalFiles++
		r.TotalBytes += uint64(info.Size())

		stem := strings.TrimSuffix(info.Name(), filepath.Ext(info.Name()))
		if t, err := time.ParseInLocation(dateLayoutFilename, stem, time.Local); err == nil {
			if r.Oldest.IsZero() || t.Before(r.Oldest) {
				r.Oldest = t
			}
			if t.After(r.Newest) {
				r.Newest = t
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning library: %w", err)
	}

	if store != nil {
		recs, err := store.All()
		if err != nil {
			return nil, err
		}
		byHash := make(map[string][]string)
		for _, rec := range recs {
			byHash[rec.Hash] = append(byHash[rec.Hash], rec.Path)
		}
		var hashes []string
		for h, paths := range byHash {
			if len(paths) > 1 {
				hashes = append(hashes, h)
			}
		}
		sort.Strings(hashes)
		for _, h := range hashes {
			r.DuplicateSets = append(r.DuplicateSets, byHash[h])
		}
	}
	return r, nil
}

// WriteTo renders the report in a terminal-friendly layout.
func (r *LibraryReport) WriteTo(w io.Writer) {
	fmt.Fprintf(w, "Library: %s\n", r.Root)
	fmt.Fprintf(w, "Files:   %s (%s)\n",
		humanize.Comma(int64(r.TotalFiles)), humanize.Bytes(r.TotalBytes))
	if !r.Oldest.IsZero() {
		fmt.Fprintf(w, "Span:    %s - %s (%s)\n",
			r.Oldest.Format("2006-01-02"), r.Newest.Format("2006-01-02"),
			humanize.RelTime(r.Oldest, r.Newest, "", ""))
	}

	exts := make([]string, 0, len(r.ByExt))
	for ext := range r.ByExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	fmt.Fprintln(w)
	for _, ext := range exts {
		stat := r.ByExt[ext]
		fmt.Fprintf(w, "  %-8s %8s  %10s\n",
			ext, humanize.Comma(int64(stat.Count)), humanize.Bytes(stat.Bytes))
	}

	if len(r.DuplicateSets) > 0 {
		fmt.Fprintf(w, "\nDuplicate content (%d set(s)):\n", len(r.DuplicateSets))
		for _, set := range r.DuplicateSets {
			for _, p := range set {
				fmt.Fprintf(w, "  %s\n", p)
			}
			fmt.Fprintln(w)
		}
	}
}
