package service

import (
	"github.com/usira-okay/release-kit/internal/domain"
)

// PairChanges emits one pair per work item reference per change. Failed
// fetch results carry no changes and contribute nothing.
func PairChanges(results []domain.FetchResult) []domain.WorkItemChangePair {
	var pairs []domain.WorkItemChangePair

	for _, res := range results {
		for _, c := range res.Changes {
			for _, id := range changeWorkItemIDs(c) {
				pairs = append(pairs, domain.WorkItemChangePair{
					WorkItemID:  id,
					Change:      c,
					ProjectPath: res.ProjectPath,
				})
			}
		}
	}

	return pairs
}

// UniqueWorkItemIDs returns the distinct ids of pairs in first-seen order.
func UniqueWorkItemIDs(pairs []domain.WorkItemChangePair) []int {
	seen := make(map[int]struct{}, len(pairs))
	ids := make([]int, 0, len(pairs))

	for _, p := range pairs {
		if _, ok := seen[p.WorkItemID]; ok {
			continue
		}

		seen[p.WorkItemID] = struct{}{}
		ids = append(ids, p.WorkItemID)
	}

	return ids
}

// PairLookup indexes paired changes by the id of the change.
type PairLookup map[string][]domain.PairedChange

func GroupPairsByChange(pairs []domain.WorkItemChangePair) PairLookup {
	lookup := make(PairLookup, len(pairs))

	for _, p := range pairs {
		lookup[p.Change.PrID] = append(lookup[p.Change.PrID], domain.PairedChange{
			Change:      p.Change,
			ProjectPath: p.ProjectPath,
			WorkItemID:  p.WorkItemID,
		})
	}

	return lookup
}

// Match returns the paired changes that triggered rec. Records without a
// triggering change match nothing. Change ids are only unique per project,
// so the recorded project narrows the match when present, and the original
// work item narrows it further to the reference that caused the lookup.
func (l PairLookup) Match(rec domain.WorkItemOutput) []domain.PairedChange {
	if rec.PrID == nil {
		return nil
	}

	candidates := l[*rec.PrID]
	matched := make([]domain.PairedChange, 0, len(candidates))

	for _, pc := range candidates {
		if rec.ProjectName != "" && pc.ProjectPath != rec.ProjectName {
			continue
		}

		if id, ok := referencedID(rec); ok && pc.WorkItemID != id {
			continue
		}

		matched = append(matched, pc)
	}

	return matched
}

// referencedID is the work item id the triggering change actually
// mentioned, when the record still knows it.
func referencedID(rec domain.WorkItemOutput) (int, bool) {
	if rec.OriginalWorkItem != nil {
		return rec.OriginalWorkItem.ID, true
	}

	switch rec.ResolutionStatus {
	case domain.ResolutionNotFound, domain.ResolutionOriginalFetchFailed:
		return rec.WorkItemID, true
	}

	return 0, false
}
