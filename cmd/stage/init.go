package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/stage"
)

var (
	initFormat      string
	initCollections []string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a stage.yaml in the current directory",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cwd, err := os.Getwd()
		if err != nil {
			fatal("Failed to get CWD", err)
		}

		path := filepath.Join(cwd, stage.ConfigFile)
		if _, err := os.Stat(path); err == nil {
			fatal("Failed to initialize", fmt.Errorf("%s already exists", path))
		}

		cfg := &stage.Config{Root: ".", Format: initFormat}
		for _, name := range initCollections {
			cfg.Collections = append(cfg.Collections, stage.CollectionConfig{Name: name})
		}
		if err := stage.WriteConfig(path, cfg); err != nil {
			fatal("Failed to write config", err)
		}

		fmt.Println("Initialized stage workspace in", cwd)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initFormat, "format", "yaml", "File format for stored items (yaml, json, md)")
	initCmd.Flags().StringSliceVar(&initCollections, "collection", nil, "Collection to declare (repeatable)")
}
