package main

import (
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Resolve work items and build the release report",
	Long: `Run the whole pipeline: pair the fetched changes with the work items they
reference, resolve every work item to its top-level ancestor, then
consolidate the report. The report is stored and printed to stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.pipeline.Run(cmd.Context())
		if err != nil {
			return err
		}

		printDone(cmd, fmt.Sprintf("report built: %d entries in %d projects", result.TotalEntries(), len(result.Projects)))

		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve referenced work items and store the records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		records, err := a.pipeline.Resolve(cmd.Context())
		if err != nil {
			return err
		}

		var failed int
		for _, r := range records {
			if !r.IsSuccess {
				failed++
			}
		}

		log.Info("resolution finished", slog.Int("records", len(records)), slog.Int("failed", failed))
		printDone(cmd, fmt.Sprintf("%d work item records stored (%d failed)", len(records), failed))

		return nil
	},
}

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Build the release report from stored records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.pipeline.Consolidate(cmd.Context())
		if err != nil {
			return err
		}

		printDone(cmd, fmt.Sprintf("report built: %d entries in %d projects", result.TotalEntries(), len(result.Projects)))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd, resolveCmd, consolidateCmd)
}

// printDone writes to stderr; stdout carries the report.
func printDone(cmd *cobra.Command, msg string) {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", green("✓"), msg)
}
