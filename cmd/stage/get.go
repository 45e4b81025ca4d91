package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	getJSON bool
)

var getCmd = &cobra.Command{
	Use:   "get [collection] [key]",
	Short: "Print an item",
	Long:  `Print the stored value of a key. Outputs YAML by default, or JSON with --json.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		s, err := openSession()
		if err != nil {
			fatal("Failed to open session", err)
		}

		col, err := s.Repository(args[0])
		if err != nil {
			fatal("Unknown collection", err)
		}

		data, err := col.Find(context.Background(), args[1])
		if err != nil {
			fatal("Failed to read item", err)
		}
		if data == nil {
			fatal("Failed to read item", fmt.Errorf("%s/%s not found", args[0], args[1]))
		}

		if getJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(data); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		encoder := yaml.NewEncoder(os.Stdout)
		defer encoder.Close()
		if err := encoder.Encode(map[string]any(data)); err != nil {
			fatal("Error encoding YAML", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().BoolVar(&getJSON, "json", false, "Output in JSON format")
}
