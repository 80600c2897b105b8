package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/usira-okay/release-kit/internal/apperrors"
	"github.com/usira-okay/release-kit/internal/config"
	"github.com/usira-okay/release-kit/internal/domain"
	"github.com/usira-okay/release-kit/internal/repository"
	"github.com/usira-okay/release-kit/pkg/logger/sl"
)

const (
	stageRun         = "run"
	stageResolve     = "resolve"
	stageConsolidate = "consolidate"

	statusSuccess = "success"
	statusFailure = "failure"
)

type PipelineServiceImpl struct {
	log      *slog.Logger
	store    repository.HandoffRepository
	resolver *HierarchyResolver
	engine   *ConsolidationEngine
	diff     *DiffTargetResolver
	keys     config.Pipeline
	out      io.Writer

	// mu serializes runs; the store write is last writer wins.
	mu sync.Mutex
}

func NewPipelineService(
	log *slog.Logger,
	store repository.HandoffRepository,
	resolver *HierarchyResolver,
	engine *ConsolidationEngine,
	diff *DiffTargetResolver,
	keys config.Pipeline,
	out io.Writer,
) *PipelineServiceImpl {
	return &PipelineServiceImpl{
		log:      log,
		store:    store,
		resolver: resolver,
		engine:   engine,
		diff:     diff,
		keys:     keys,
		out:      out,
	}
}

// changeSet is everything the platform adapters left in the store.
type changeSet struct {
	results []domain.FetchResult
	changes int
}

func (c changeSet) missing() bool {
	return c.changes == 0
}

func (s *PipelineServiceImpl) Run(ctx context.Context) (*domain.ConsolidatedResult, error) {
	const op = "internal.service.pipeline.Run"
	log := s.log.With(slog.String("op", op), slog.String("run_id", uuid.NewString()))

	s.mu.Lock()
	defer s.mu.Unlock()

	log.Info("pipeline run started")

	changes, err := s.loadChanges(ctx)
	if err != nil {
		pipelineRuns.WithLabelValues(stageRun, statusFailure).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	records, err := s.resolve(ctx, changes)
	if err != nil {
		pipelineRuns.WithLabelValues(stageRun, statusFailure).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result, err := s.consolidate(ctx, changes, records)
	if err != nil {
		pipelineRuns.WithLabelValues(stageRun, statusFailure).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pipelineRuns.WithLabelValues(stageRun, statusSuccess).Inc()
	log.Info("pipeline run finished", slog.Int("entries", result.TotalEntries()))

	return result, nil
}

func (s *PipelineServiceImpl) Resolve(ctx context.Context) ([]domain.WorkItemOutput, error) {
	const op = "internal.service.pipeline.Resolve"

	s.mu.Lock()
	defer s.mu.Unlock()

	changes, err := s.loadChanges(ctx)
	if err != nil {
		pipelineRuns.WithLabelValues(stageResolve, statusFailure).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	records, err := s.resolve(ctx, changes)
	if err != nil {
		pipelineRuns.WithLabelValues(stageResolve, statusFailure).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pipelineRuns.WithLabelValues(stageResolve, statusSuccess).Inc()

	return records, nil
}

func (s *PipelineServiceImpl) Consolidate(ctx context.Context) (*domain.ConsolidatedResult, error) {
	const op = "internal.service.pipeline.Consolidate"

	s.mu.Lock()
	defer s.mu.Unlock()

	changes, err := s.loadChanges(ctx)
	if err != nil {
		pipelineRuns.WithLabelValues(stageConsolidate, statusFailure).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var records []domain.WorkItemOutput
	if err := s.store.Get(ctx, s.keys.WorkItemsKey, &records); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		pipelineRuns.WithLabelValues(stageConsolidate, statusFailure).Inc()
		return nil, fmt.Errorf("%s: failed to load work items: %w", op, err)
	}

	result, err := s.consolidate(ctx, changes, records)
	if err != nil {
		pipelineRuns.WithLabelValues(stageConsolidate, statusFailure).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pipelineRuns.WithLabelValues(stageConsolidate, statusSuccess).Inc()

	return result, nil
}

func (s *PipelineServiceImpl) Report(ctx context.Context) (*domain.ConsolidatedResult, error) {
	const op = "internal.service.pipeline.Report"

	var result domain.ConsolidatedResult
	if err := s.store.Get(ctx, s.keys.ResultKey, &result); err != nil {
		return nil, fmt.Errorf("%s: failed to load report: %w", op, err)
	}

	return &result, nil
}

func (s *PipelineServiceImpl) DiffTarget(ctx context.Context, projectPath, source, target string) string {
	return s.diff.ResolveDiffTarget(ctx, projectPath, source, target)
}

// loadChanges reads both platform keys. A key that was never written counts
// as a platform without changes.
func (s *PipelineServiceImpl) loadChanges(ctx context.Context) (changeSet, error) {
	const op = "internal.service.pipeline.loadChanges"
	log := s.log.With(slog.String("op", op))

	var set changeSet

	for _, key := range []string{s.keys.BitbucketKey, s.keys.GitLabKey} {
		var results []domain.FetchResult
		if err := s.store.Get(ctx, key, &results); err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				return changeSet{}, fmt.Errorf("failed to load fetch results of '%s': %w", key, err)
			}

			log.Warn("no fetch results stored", slog.String("key", key))
		}

		for _, res := range results {
			if res.Failed() {
				log.Warn("project fetch failed, keeping it without changes",
					slog.String("key", key),
					slog.String("project_path", res.ProjectPath),
					slog.String("platform", string(res.Platform)),
					slog.String("error", res.Error),
				)

				continue
			}

			set.changes += len(res.Changes)
		}

		set.results = append(set.results, results...)
	}

	return set, nil
}

func (s *PipelineServiceImpl) resolve(ctx context.Context, changes changeSet) ([]domain.WorkItemOutput, error) {
	if changes.missing() {
		return nil, &apperrors.MissingInputError{Sources: []string{s.keys.BitbucketKey, s.keys.GitLabKey}}
	}

	pairs := PairChanges(changes.results)

	ids := UniqueWorkItemIDs(pairs)
	if len(ids) == 0 {
		return nil, &apperrors.MissingInputError{Sources: []string{s.keys.WorkItemsKey}}
	}

	cache := NewResolutionCache()
	if err := s.resolver.ResolveAll(ctx, ids, cache); err != nil {
		return nil, err
	}

	records := AttachTriggers(pairs, cache)

	if err := s.store.Put(ctx, s.keys.WorkItemsKey, records); err != nil {
		return nil, fmt.Errorf("failed to store work items: %w", err)
	}

	s.log.Info("work item records stored",
		slog.String("key", s.keys.WorkItemsKey),
		slog.Int("pairs", len(pairs)),
		slog.Int("work_items", cache.Len()),
	)

	return records, nil
}

func (s *PipelineServiceImpl) consolidate(ctx context.Context, changes changeSet, records []domain.WorkItemOutput) (*domain.ConsolidatedResult, error) {
	var missing []string
	if changes.missing() {
		missing = append(missing, s.keys.BitbucketKey, s.keys.GitLabKey)
	}

	if len(records) == 0 {
		missing = append(missing, s.keys.WorkItemsKey)
	}

	if len(missing) > 0 {
		return nil, &apperrors.MissingInputError{Sources: missing}
	}

	lookup := GroupPairsByChange(PairChanges(changes.results))
	result := s.engine.Consolidate(records, lookup)

	if err := s.store.Put(ctx, s.keys.ResultKey, result); err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	reportEntries.Set(float64(result.TotalEntries()))

	s.log.Info("report stored",
		slog.String("key", s.keys.ResultKey),
		slog.Int("projects", len(result.Projects)),
		slog.Int("entries", result.TotalEntries()),
	)

	if err := s.render(result); err != nil {
		s.log.Error("failed to print report", sl.Err(err))
	}

	return &result, nil
}

func (s *PipelineServiceImpl) render(result domain.ConsolidatedResult) error {
	if s.out == nil {
		return nil
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(s.out, string(data))

	return err
}
