package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/stage"
)

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "stage",
	Short: "Stage changes to file-backed collections and commit them together",
	Long: `Stage keeps pending adds, updates and removes in memory and writes
them to their collections only on commit. Collections are declared in stage.yaml.`,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute runs the command line. Usage errors are returned; failed
// operations exit through fatal.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to stage.yaml (default: search upwards from the working directory)")
}

// openSession opens the session described by --config or by the nearest
// stage.yaml above the working directory.
func openSession() (*stage.Session, error) {
	path := configPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		root, err := stage.FindRoot(wd)
		if err != nil {
			return nil, err
		}
		path = filepath.Join(root, stage.ConfigFile)
	}
	return stage.Open(stage.WithConfigFile(path), stage.WithLogger(slog.Default()))
}
