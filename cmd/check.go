package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/spf13/cobra"

	"silmaril/internal"
)

var checkAllTags bool

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Inspect a media file without modifying it",
	Long: `Check reports what the pipeline would see for one file: its sniffed
content type, the native EXIF capture date and GPS position, the companion
sidecar if one exists, and optionally the full metadata dump.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		fmt.Printf("File:     %s\n", path)
		fmt.Printf("Size:     %s\n", humanize.Bytes(uint64(info.Size())))

		sniff := internal.MimeSniffer{}
		mime, err := sniff.DetectMime(path)
		if err != nil {
			return err
		}
		fmt.Printf("Content:  %s\n", mime)

		printNativeExif(path)

		if sc := internal.FindSidecar(path); sc != "" {
			fmt.Printf("Sidecar:  %s\n", sc)
			if loaded, err := internal.LoadSidecar(sc); err == nil {
				if taken, ok := loaded.TakenTime(); ok {
					fmt.Printf("Taken:    %s (sidecar)\n", taken.Format("2006-01-02 15:04:05"))
				}
			}
		}

		if checkAllTags {
			return printAllTags(path)
		}
		return nil
	},
}

// printNativeExif decodes the EXIF block directly, without exiftool. Best
// effort: many containers have no EXIF at all.
func printNativeExif(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return
	}
	if t, err := x.DateTime(); err == nil {
		fmt.Printf("Taken:    %s (exif)\n", t.Format("2006-01-02 15:04:05"))
	}
	if lat, long, err := x.LatLong(); err == nil {
		fmt.Printf("Position: %f, %f\n", lat, long)
	}
}

// printAllTags dumps every tag exiftool can extract, sorted by name.
func printAllTags(path string) error {
	cfg, err := internal.LoadConfig()
	if err != nil {
		return err
	}
	meta, err := internal.NewExifTool(cfg.ExiftoolBin)
	if err != nil {
		return err
	}
	defer meta.Close()

	tags, err := meta.ReadTags(path)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println()
	for _, name := range names {
		fmt.Printf("  %-32s %s\n", name, tags[name])
	}
	return nil
}

func init() {
	checkCmd.Flags().BoolVar(&checkAllTags, "all", false, "Dump every metadata tag via exiftool")
	rootCmd.AddCommand(checkCmd)
}
