package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/usira-okay/release-kit/internal/config"
	"github.com/usira-okay/release-kit/internal/repository/postgres"
	"github.com/usira-okay/release-kit/internal/service"
	"github.com/usira-okay/release-kit/pkg/logger/sl"
	"github.com/usira-okay/release-kit/pkg/logger/slogpretty"
)

var (
	cfg *config.Config
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "release-kit",
	Short: "Resolve and consolidate release notes across Bitbucket, GitLab and Azure DevOps",
	Long: `release-kit reads the changes fetched from every source-control platform,
resolves each referenced work item to its top-level planning item and
builds the consolidated release report.

The configuration file is taken from --config or CONFIG_PATH.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			path = os.Getenv("CONFIG_PATH")
		}

		if path == "" {
			return fmt.Errorf("config path is not set: use --config or CONFIG_PATH")
		}

		loaded, err := config.LoadFile(path)
		if err != nil {
			return err
		}

		cfg = loaded
		log = slogpretty.SetupLogger(cfg.Env)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the YAML configuration file")
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is the wired pipeline together with the database it runs on.
type app struct {
	db       *postgres.Postgres
	pipeline *service.PipelineServiceImpl
}

func newApp() (*app, error) {
	db, err := postgres.NewDB(cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("failed to init db: %w", err)
	}

	store := postgres.NewHandoffRepository(db.DB(), log)
	workItems := postgres.NewWorkItemRepository(db.DB(), log)
	branches := postgres.NewBranchRepository(db.DB(), log)

	pipeline := service.NewPipelineService(
		log,
		store,
		service.NewHierarchyResolver(workItems, log, cfg.Resolver),
		service.NewConsolidationEngine(cfg.Teams),
		service.NewDiffTargetResolver(branches, log),
		cfg.Pipeline,
		os.Stdout,
	)

	return &app{db: db, pipeline: pipeline}, nil
}

func (a *app) Close() {
	if err := a.db.DB().Close(); err != nil {
		log.Error("db close failed", sl.Err(err))
	}
}
