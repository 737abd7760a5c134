package internal

import (
	"context"
	"time"

	ffprobe "gopkg.in/vansante/go-ffprobe.v2"
)

// FFprobe implements Prober using ffprobe's JSON output.
type FFprobe struct{}

func (FFprobe) Comment(path string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	data, err := ffprobe.ProbeURL(ctx, path)
	if err != nil {
		return "", err
	}
	if data.Format == nil {
		return "", nil
	}
	comment, err := data.Format.TagList.GetString("comment")
	if err != nil {
		// tag absent
		return "", nil
	}
	return comment, nil
}
