package internal

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
)

// FFmpeg implements TranscodePort by shelling out to ffmpeg.
type FFmpeg struct {
	Binary string
	Log    *Logger
}

func NewFFmpeg(binary string, log *Logger) *FFmpeg {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{Binary: binary, Log: log}
}

func (f *FFmpeg) Transcode(src, dst string, opts TranscodeOpts) error {
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("transcode target already exists: %s", dst)
	}

	args := []string{"-i", src, "-map_metadata", "0"}
	if opts.AudioCodec != "" {
		args = append(args, "-acodec", opts.AudioCodec)
	}
	if opts.VideoCodec != "" {
		args = append(args, "-vcodec", opts.VideoCodec)
	}
	if opts.Comment != "" {
		args = append(args, "-metadata", "comment="+opts.Comment)
	}
	args = append(args, "-loglevel", "quiet", dst)

	if _, err := runCmd(f.Binary, args...); err != nil {
		// ffmpeg leaves partial output behind on failure
		os.Remove(dst)
		return fmt.Errorf("transcode %s -> %s: %w", src, dst, err)
	}
	return nil
}

func runCmd(name string, arg ...string) ([]byte, error) {
	var cmdOut bytes.Buffer
	var cmdErr bytes.Buffer
	cmd := exec.Command(name, arg...)
	cmd.Stdout = &cmdOut
	cmd.Stderr = &cmdErr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%v: %s", err, cmdErr.String())
	}
	return cmdOut.Bytes(), nil
}
