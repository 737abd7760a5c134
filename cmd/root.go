package cmd

import (
	"github.com/spf13/cobra"

	"silmaril/internal"
)

// Version is overridden at startup from the embedded VERSION file.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "silmaril",
	Short: "Silmaril photo and video organizer",
	Long: `Silmaril reconciles, deduplicates and files photos and videos into a
date-partitioned library. Capture dates come from sidecar files and embedded
metadata; content hashes keep re-runs and re-imports from duplicating media.`,
	SilenceUsage: true,
}

func ApplyVersion() {
	rootCmd.Version = Version
}

func Execute() error {
	return rootCmd.Execute()
}

// newTools builds the external-collaborator bundle the pipeline commands
// share. The returned closer shuts down the exiftool process and the log.
func newTools(cfg *internal.Config, verbose bool) (*internal.Tools, func(), error) {
	logger, err := internal.NewLogger(cfg.LogFile, verbose)
	if err != nil {
		return nil, nil, err
	}
	meta, err := internal.NewExifTool(cfg.ExiftoolBin)
	if err != nil {
		logger.Close()
		return nil, nil, err
	}
	tools := &internal.Tools{
		Meta:  meta,
		Trans: internal.NewFFmpeg(cfg.FFmpegBin, logger),
		Sniff: internal.MimeSniffer{},
		Probe: internal.FFprobe{},
		Log:   logger,
		Cfg:   cfg,
	}
	closer := func() {
		meta.Close()
		logger.Close()
	}
	return tools, closer, nil
}
