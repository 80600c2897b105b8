package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/usira-okay/release-kit/internal/apperrors"
	"github.com/usira-okay/release-kit/internal/config"
	"github.com/usira-okay/release-kit/internal/domain"
	"github.com/usira-okay/release-kit/internal/repository"
	"github.com/usira-okay/release-kit/pkg/logger/sl"
	"golang.org/x/sync/errgroup"
)

// ResolutionCache memoizes outcomes by requested work item id. It is owned
// by the caller and is not safe for concurrent writes.
type ResolutionCache struct {
	outcomes map[int]domain.ResolutionOutcome
}

func NewResolutionCache() *ResolutionCache {
	return &ResolutionCache{outcomes: make(map[int]domain.ResolutionOutcome)}
}

func (c *ResolutionCache) Get(id int) (domain.ResolutionOutcome, bool) {
	o, ok := c.outcomes[id]
	return o, ok
}

func (c *ResolutionCache) Put(id int, o domain.ResolutionOutcome) {
	c.outcomes[id] = o
}

func (c *ResolutionCache) Len() int {
	return len(c.outcomes)
}

// HierarchyResolver walks work item parent links up to the first item whose
// type is configured as top level.
type HierarchyResolver struct {
	repo        repository.WorkItemRepository
	log         *slog.Logger
	topLevel    map[string]struct{}
	maxDepth    int
	concurrency int
}

func NewHierarchyResolver(repo repository.WorkItemRepository, log *slog.Logger, cfg config.Resolver) *HierarchyResolver {
	topLevel := make(map[string]struct{}, len(cfg.TopLevelTypes))
	for _, t := range cfg.TopLevelTypes {
		topLevel[normalizeType(t)] = struct{}{}
	}

	maxDepth := cfg.MaxDepth
	if maxDepth < 1 {
		maxDepth = 1
	}

	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	return &HierarchyResolver{
		repo:        repo,
		log:         log,
		topLevel:    topLevel,
		maxDepth:    maxDepth,
		concurrency: concurrency,
	}
}

func normalizeType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

func (r *HierarchyResolver) IsTopLevel(itemType string) bool {
	_, ok := r.topLevel[normalizeType(itemType)]
	return ok
}

// Resolve classifies a single work item. Fetch failures never surface as
// errors; they are folded into the outcome.
func (r *HierarchyResolver) Resolve(ctx context.Context, id int) domain.ResolutionOutcome {
	const op = "internal.service.resolver.Resolve"
	log := r.log.With(slog.String("op", op), slog.Int("work_item_id", id))

	original, err := r.repo.GetWorkItem(ctx, id)
	if err != nil {
		fetchErr := &apperrors.WorkItemFetchError{WorkItemID: id, Err: err}
		log.Warn("original work item fetch failed", sl.Err(err))

		return domain.ResolutionOutcome{
			RequestedID:  id,
			Status:       domain.ResolutionOriginalFetchFailed,
			ErrorMessage: fetchErr.Error(),
		}
	}

	if r.IsTopLevel(original.Type) {
		return domain.ResolutionOutcome{
			RequestedID: id,
			Status:      domain.ResolutionAlreadyTopLevel,
			Original:    original,
			Resolved:    original,
		}
	}

	visited := map[int]struct{}{original.ID: {}}
	current := original

	for depth := 0; depth < r.maxDepth; depth++ {
		if current.ParentID == nil {
			break
		}

		parentID := *current.ParentID
		if _, seen := visited[parentID]; seen {
			log.Warn("cycle in work item hierarchy", slog.Int("parent_id", parentID))
			break
		}

		visited[parentID] = struct{}{}

		parent, err := r.repo.GetWorkItem(ctx, parentID)
		if err != nil {
			log.Warn("parent work item fetch failed", slog.Int("parent_id", parentID), sl.Err(err))
			break
		}

		if r.IsTopLevel(parent.Type) {
			log.Debug("top level ancestor found", slog.Int("resolved_id", parent.ID), slog.Int("depth", depth+1))

			return domain.ResolutionOutcome{
				RequestedID: id,
				Status:      domain.ResolutionFoundViaRecursion,
				Original:    original,
				Resolved:    parent,
			}
		}

		current = parent
	}

	return domain.ResolutionOutcome{
		RequestedID: id,
		Status:      domain.ResolutionNotFound,
		Original:    original,
	}
}

// ResolveAll resolves every id missing from cache, at most once per id.
// Distinct ids are fetched concurrently; outcomes are stored in cache only
// after every fetch has finished.
func (r *HierarchyResolver) ResolveAll(ctx context.Context, ids []int, cache *ResolutionCache) error {
	const op = "internal.service.resolver.ResolveAll"

	seen := make(map[int]struct{}, len(ids))
	pending := make([]int, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}

		if _, ok := cache.Get(id); !ok {
			pending = append(pending, id)
		}
	}

	outcomes := make([]domain.ResolutionOutcome, len(pending))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, id := range pending {
		i, id := i, id
		g.Go(func() error {
			outcomes[i] = r.Resolve(gctx, id)
			return nil
		})
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: resolution interrupted: %w", op, err)
	}

	for i, id := range pending {
		cache.Put(id, outcomes[i])
		resolutionOutcomes.WithLabelValues(string(outcomes[i].Status)).Inc()
	}

	r.log.Info("work items resolved",
		slog.String("op", op),
		slog.Int("requested", len(seen)),
		slog.Int("fetched", len(pending)),
	)

	return nil
}

// AttachTriggers fans cached outcomes out to every pair that referenced
// them, one record per pair.
func AttachTriggers(pairs []domain.WorkItemChangePair, cache *ResolutionCache) []domain.WorkItemOutput {
	outputs := make([]domain.WorkItemOutput, 0, len(pairs))

	for _, p := range pairs {
		outcome, ok := cache.Get(p.WorkItemID)
		if !ok {
			outcome = domain.ResolutionOutcome{
				RequestedID:  p.WorkItemID,
				Status:       domain.ResolutionOriginalFetchFailed,
				ErrorMessage: fmt.Sprintf("work item %d was not resolved", p.WorkItemID),
			}
		}

		outputs = append(outputs, outcome.WithTrigger(p.Change.PrID, p.ProjectPath).ToOutput())
	}

	return outputs
}
