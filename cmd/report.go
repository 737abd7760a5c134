package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"silmaril/internal"
)

var reportCmd = &cobra.Command{
	Use:   "report [library]",
	Short: "Summarize an organized library",
	Long: `Report walks the library tree and prints file counts and sizes per
format, the capture-date span, and any duplicate content the hash index
knows about.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := args[0]

		cfg, err := internal.LoadConfig()
		if err != nil {
			return err
		}

		// the index is optional here; a missing db just skips duplicates
		var store *internal.HashStore
		if _, err := os.Stat(cfg.HashDB); err == nil {
			store, err = internal.OpenHashStore(cfg.HashDB)
			if err != nil {
				return err
			}
			defer store.Close()
		}

		report, err := internal.BuildReport(root, cfg, store)
		if err != nil {
			return err
		}
		report.WriteTo(os.Stdout)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
