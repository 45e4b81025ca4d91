package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/stage"
)

var (
	applyOnly   string
	applyDryRun bool
)

var applyCmd = &cobra.Command{
	Use:   "apply [plan.yaml]",
	Short: "Stage the operations of a plan and commit them",
	Long: `Apply reads a YAML plan of add, update and remove operations, stages
them all and commits. If any operation fails to stage, nothing is written.
With --only, only keys matching the glob ("users/**") are flushed.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		f, err := os.Open(args[0])
		if err != nil {
			fatal("Failed to open plan", err)
		}
		plan, err := stage.ReadPlan(f)
		f.Close()
		if err != nil {
			fatal("Failed to read plan", err)
		}

		s, err := openSession()
		if err != nil {
			fatal("Failed to open session", err)
		}

		if err := stage.Apply(ctx, s, plan); err != nil {
			if _, rerr := s.Rollback(ctx); rerr != nil {
				slog.Warn("rollback failed", "error", rerr)
			}
			fatal("Failed to stage plan", err)
		}

		for _, name := range s.Names() {
			col, _ := s.Repository(name)
			for _, p := range col.Pending() {
				fmt.Printf("%-7s %s/%s\n", p.Action, name, p.Key)
			}
		}
		if applyDryRun {
			return
		}

		var results []stage.CollectionResult
		if applyOnly != "" {
			results, err = stage.FlushMatching(ctx, s, applyOnly)
		} else {
			results, err = s.Commit(ctx)
		}
		for _, cr := range results {
			for _, r := range cr.Results {
				if r.Err != nil {
					fmt.Fprintf(os.Stderr, "failed  %s/%s: %v\n", cr.Collection, r.Key, r.Err)
				}
			}
		}
		if err != nil {
			fatal("Commit failed", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().StringVar(&applyOnly, "only", "", "Flush only keys matching this glob (collection/key)")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Print the staged operations without writing")
}
