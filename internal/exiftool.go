package internal

import (
	"fmt"
	"strconv"
	"sync"

	exiftool "github.com/barasher/go-exiftool"
)

// ExifTool implements MetadataPort on top of a long-running exiftool process.
// A single instance is shared for the whole run; the mutex keeps the
// stay-open protocol sequential.
type ExifTool struct {
	et *exiftool.Exiftool
	mu sync.Mutex
}

func NewExifTool(binary string) (*ExifTool, error) {
	var opts []func(*exiftool.Exiftool) error
	if binary != "" {
		opts = append(opts, exiftool.SetExiftoolBinaryPath(binary))
	}
	et, err := exiftool.NewExiftool(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize exiftool: %w", err)
	}
	return &ExifTool{et: et}, nil
}

func (x *ExifTool) ReadTags(path string) (map[string]string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	infos := x.et.ExtractMetadata(path)
	if len(infos) == 0 {
		return nil, fmt.Errorf("no metadata extracted for %s", path)
	}
	fi := infos[0]
	if fi.Err != nil {
		return nil, fmt.Errorf("metadata extraction failed for %s: %w", path, fi.Err)
	}

	tags := make(map[string]string, len(fi.Fields))
	for name, value := range fi.Fields {
		tags[name] = stringifyTag(value)
	}
	return tags, nil
}

func (x *ExifTool) WriteTags(path string, tags map[string]string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	fm := exiftool.EmptyFileMetadata()
	fm.File = path
	for name, value := range tags {
		fm.SetString(name, value)
	}
	fms := []exiftool.FileMetadata{fm}
	x.et.WriteMetadata(fms)
	if err := fms[0].Err; err != nil {
		return fmt.Errorf("metadata write failed for %s: %w", path, err)
	}
	return nil
}

func (x *ExifTool) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.et.Close()
}

// stringifyTag flattens exiftool's JSON values into the string form the
// resolver and tag comparison work with. Floats keep their shortest
// representation so GPS comparisons stay stable across read-backs.
func stringifyTag(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
