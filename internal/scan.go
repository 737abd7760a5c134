package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanMediaFiles walks the source tree and returns the absolute paths of
// files matching the extension allowlist, sorted for deterministic
// processing order.
func ScanMediaFiles(inputDir string, extensions []string) ([]string, error) {
	var files []string
	err := filepath.Walk(inputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !allowlisted(strings.ToLower(filepath.Ext(info.Name())), extensions) {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		files = append(files, abs)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}
