// package repository defines the persistence contracts used by the pipeline.
// The handoff store is shared with the fetch adapters and the spreadsheet
// sync task; the other repositories expose what the adapters already wrote.
package repository

import (
	"context"

	"github.com/usira-okay/release-kit/internal/domain"
)

// HandoffRepository is a key/value store of JSON documents.
type HandoffRepository interface {
	// Get loads the document stored under key into dst.
	// It returns apperrors.ErrNotFound if the key has never been written.
	Get(ctx context.Context, key string, dst any) error

	// Put serializes value and stores it under key, replacing any previous
	// value. Concurrent writers are not coordinated; the last one wins.
	Put(ctx context.Context, key string, value any) error
}

// WorkItemRepository reads issue-tracker work item snapshots.
type WorkItemRepository interface {
	// GetWorkItem returns the work item with the given id.
	// It returns apperrors.ErrNotFound if the tracker has no such item.
	GetWorkItem(ctx context.Context, id int) (*domain.PlanningItem, error)
}

// BranchRepository lists the branches known for a project.
type BranchRepository interface {
	// ListBranches returns branch names of projectPath starting with prefix
	// (case-insensitive). An empty prefix lists every branch.
	ListBranches(ctx context.Context, projectPath string, prefix string) ([]string, error)
}
