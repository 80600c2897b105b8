package service

import (
	"context"

	"github.com/usira-okay/release-kit/internal/domain"
)

type PipelineService interface {
	// Run resolves every referenced work item and consolidates the report
	// in one pass.
	Run(ctx context.Context) (*domain.ConsolidatedResult, error)

	// Resolve pairs the fetched changes with work items, resolves each item
	// to its top-level ancestor and stores the records.
	Resolve(ctx context.Context) ([]domain.WorkItemOutput, error)

	// Consolidate builds the report from the stored changes and work item
	// records.
	Consolidate(ctx context.Context) (*domain.ConsolidatedResult, error)

	// Report returns the last stored report.
	Report(ctx context.Context) (*domain.ConsolidatedResult, error)

	DiffTarget(ctx context.Context, projectPath, source, target string) string
}

var _ PipelineService = (*PipelineServiceImpl)(nil)
