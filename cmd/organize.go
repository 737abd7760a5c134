package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"silmaril/internal"
)

var (
	organizeDest    string
	organizeExts    string
	organizeType    string
	organizeDryRun  bool
	organizeCleanup bool
	organizeSubDirs bool
	organizeOffset  string
	organizeMinus   bool
	organizeVerbose bool
)

var organizeCmd = &cobra.Command{
	Use:   "organize [source]",
	Short: "Organize media files from a source folder into the library",
	Long: `Organize scans the source folder, reconciles each file's format and
metadata, resolves its capture date, and copies it into the destination
library under a date-based name. Files already in the library (by content)
are reported as duplicates. Re-running over the same folders is safe.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := args[0]

		cfg, err := internal.LoadConfig()
		if err != nil {
			return err
		}

		kind, err := mediaKindFlag(organizeType)
		if err != nil {
			return err
		}
		extensions := cfg.Extensions(kind)
		if organizeExts != "" {
			extensions = splitExtensions(organizeExts)
		}

		offset, err := internal.ParseOffset(organizeOffset)
		if err != nil {
			return err
		}

		tools, closeTools, err := newTools(cfg, organizeVerbose)
		if err != nil {
			return err
		}
		defer closeTools()

		store, err := internal.OpenHashStore(cfg.HashDB)
		if err != nil {
			return err
		}
		defer store.Close()

		if organizeDryRun {
			fmt.Println("Dry run mode: no files will be copied or removed")
		}

		org := &internal.Organizer{
			Tools:      tools,
			Store:      store,
			SourceDir:  source,
			DestDir:    organizeDest,
			Extensions: extensions,
			DryRun:     organizeDryRun,
			Cleanup:    organizeCleanup,
			SubDirs:    organizeSubDirs,
			Offset:     offset,
			Minus:      organizeMinus,
		}
		results, err := org.Run()
		if err != nil {
			return err
		}

		fmt.Println(results)
		return nil
	},
}

// mediaKindFlag maps the --type flag to a kind filter; empty means both.
func mediaKindFlag(value string) (internal.MediaKind, error) {
	switch value {
	case "", "all":
		return "", nil
	case "image":
		return internal.KindImage, nil
	case "video":
		return internal.KindVideo, nil
	}
	return "", fmt.Errorf("invalid --type %q (want image, video or all)", value)
}

// splitExtensions parses the comma-separated --extensions override,
// normalizing to lowercase dotted form.
func splitExtensions(value string) []string {
	var exts []string
	for _, e := range strings.Split(value, ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	return exts
}

func init() {
	organizeCmd.Flags().StringVar(&organizeDest, "dest", "", "Destination library folder")
	organizeCmd.Flags().StringVar(&organizeExts, "extensions", "", "Comma-separated extension allowlist override")
	organizeCmd.Flags().StringVar(&organizeType, "type", "all", "Media type filter: image, video or all")
	organizeCmd.Flags().BoolVar(&organizeDryRun, "dry-run", false, "Report placements without copying or removing")
	organizeCmd.Flags().BoolVar(&organizeCleanup, "cleanup", false, "Remove source files after successful placement")
	organizeCmd.Flags().BoolVar(&organizeSubDirs, "sub-dirs", false, "Partition the library into year/month subdirectories")
	organizeCmd.Flags().StringVar(&organizeOffset, "offset", "", "Capture-date correction, e.g. 1Y6M or 2h30m")
	organizeCmd.Flags().BoolVar(&organizeMinus, "minus", false, "Subtract the offset instead of adding it")
	organizeCmd.Flags().BoolVarP(&organizeVerbose, "verbose", "v", false, "Echo debug logging to stderr")
	organizeCmd.MarkFlagRequired("dest")

	rootCmd.AddCommand(organizeCmd)
}
