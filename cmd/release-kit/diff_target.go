package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/usira-okay/release-kit/internal/validation"
)

type diffTargetArgs struct {
	ProjectPath  string `validate:"required"`
	SourceBranch string `validate:"required,branch_name"`
	TargetBranch string `validate:"required,branch_name"`
}

var diffTargetCmd = &cobra.Command{
	Use:   "diff-target <project-path> <source-branch> <target-branch>",
	Short: "Print the branch a diff should be taken against",
	Long: `Print the target branch to diff the source branch against.

When the source is a release branch (release/yyyyMMdd) that is not the
latest one, the next newer release branch replaces the configured target.

Example:
  $ release-kit diff-target group/app release/20241201 main
  release/20241215`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := diffTargetArgs{ProjectPath: args[0], SourceBranch: args[1], TargetBranch: args[2]}
		if err := validation.ValidateStruct(in); err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		target := a.pipeline.DiffTarget(cmd.Context(), in.ProjectPath, in.SourceBranch, in.TargetBranch)

		if target != in.TargetBranch {
			yellow := color.New(color.FgYellow).SprintFunc()
			fmt.Fprintf(cmd.ErrOrStderr(), "%s target replaced: %s -> %s\n", yellow("!"), in.TargetBranch, target)
		}

		fmt.Fprintln(cmd.OutOrStdout(), target)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(diffTargetCmd)
}
