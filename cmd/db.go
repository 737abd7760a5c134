package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"silmaril/internal"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect and maintain the content-hash index",
}

var dbReconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Drop index entries whose destination file no longer exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := internal.LoadConfig()
		if err != nil {
			return err
		}
		store, err := internal.OpenHashStore(cfg.HashDB)
		if err != nil {
			return err
		}
		defer store.Close()

		removed, err := store.Reconcile()
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d stale entr%s\n", removed, plural(removed, "y", "ies"))
		return nil
	},
}

var dbListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every indexed path and its content hash",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := internal.LoadConfig()
		if err != nil {
			return err
		}
		store, err := internal.OpenHashStore(cfg.HashDB)
		if err != nil {
			return err
		}
		defer store.Close()

		recs, err := store.All()
		if err != nil {
			return err
		}
		for _, r := range recs {
			fmt.Printf("%s  %s\n", r.Hash, r.Path)
		}
		fmt.Printf("%d entr%s\n", len(recs), plural(len(recs), "y", "ies"))
		return nil
	},
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func init() {
	dbCmd.AddCommand(dbReconcileCmd)
	dbCmd.AddCommand(dbListCmd)
	rootCmd.AddCommand(dbCmd)
}
