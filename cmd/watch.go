package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"silmaril/internal"
)

var (
	watchDest    string
	watchCleanup bool
	watchSubDirs bool
	watchVerbose bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [source]",
	Short: "Watch a folder and organize media files as they arrive",
	Long: `Watch processes the source folder once, then keeps running and
organizes each new media file after it finishes writing. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := args[0]

		cfg, err := internal.LoadConfig()
		if err != nil {
			return err
		}
		tools, closeTools, err := newTools(cfg, watchVerbose)
		if err != nil {
			return err
		}
		defer closeTools()

		store, err := internal.OpenHashStore(cfg.HashDB)
		if err != nil {
			return err
		}
		defer store.Close()

		org := &internal.Organizer{
			Tools:      tools,
			Store:      store,
			SourceDir:  source,
			DestDir:    watchDest,
			Extensions: cfg.Extensions(""),
			Cleanup:    watchCleanup,
			SubDirs:    watchSubDirs,
		}

		// drain the backlog before watching
		results, err := org.Run()
		if err != nil {
			return err
		}
		fmt.Println(results)

		watcher, err := internal.NewWatcher(source, cfg, tools.Log)
		if err != nil {
			return err
		}
		defer watcher.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Watching %s\n", source)
		for {
			select {
			case path := <-watcher.Events():
				tools.Log.Info("new media file: %s", path)
				fmt.Println(org.ProcessOne(path))
			case err := <-watcher.Errors():
				tools.Log.Error("watcher error: %v", err)
			case <-ctx.Done():
				fmt.Println("\nStopping")
				return nil
			}
		}
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchDest, "dest", "", "Destination library folder")
	watchCmd.Flags().BoolVar(&watchCleanup, "cleanup", false, "Remove source files after successful placement")
	watchCmd.Flags().BoolVar(&watchSubDirs, "sub-dirs", false, "Partition the library into year/month subdirectories")
	watchCmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false, "Echo debug logging to stderr")
	watchCmd.MarkFlagRequired("dest")

	rootCmd.AddCommand(watchCmd)
}
