package service

import (
	"sort"
	"strings"

	"github.com/usira-okay/release-kit/internal/domain"
)

// ConsolidationEngine joins resolution records with the changes that
// triggered them and builds the release report.
type ConsolidationEngine struct {
	teams []domain.TeamMapping
}

func NewConsolidationEngine(teams []domain.TeamMapping) *ConsolidationEngine {
	return &ConsolidationEngine{teams: append([]domain.TeamMapping(nil), teams...)}
}

// MapTeamName returns the display name of the first rule whose original
// name is contained in teamPath, ignoring case. Blank paths map to "".
func (e *ConsolidationEngine) MapTeamName(teamPath string) string {
	if strings.TrimSpace(teamPath) == "" {
		return ""
	}

	lowered := strings.ToLower(teamPath)

	for _, rule := range e.teams {
		if rule.OriginalTeamName == "" {
			continue
		}

		if strings.Contains(lowered, strings.ToLower(rule.OriginalTeamName)) {
			return rule.DisplayName
		}
	}

	return teamPath
}

type workItemGroup struct {
	record  domain.WorkItemOutput
	changes []domain.PairedChange
}

// Consolidate never drops a record: items without changes land in the
// "unknown" project.
func (e *ConsolidationEngine) Consolidate(records []domain.WorkItemOutput, lookup PairLookup) domain.ConsolidatedResult {
	groups := make(map[int]*workItemGroup, len(records))
	order := make([]int, 0, len(records))

	for _, rec := range records {
		g, ok := groups[rec.WorkItemID]
		if !ok {
			g = &workItemGroup{record: rec}
			groups[rec.WorkItemID] = g
			order = append(order, rec.WorkItemID)
		}

		g.changes = append(g.changes, lookup.Match(rec)...)
	}

	byProject := make(map[string][]domain.ConsolidatedEntry)

	for _, id := range order {
		project, entry := e.buildEntry(groups[id])
		byProject[project] = append(byProject[project], entry)
	}

	projects := make([]domain.ProjectGroup, 0, len(byProject))
	for name, entries := range byProject {
		sortEntries(entries)
		projects = append(projects, domain.ProjectGroup{ProjectName: name, Entries: entries})
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].ProjectName < projects[j].ProjectName
	})

	return domain.ConsolidatedResult{Projects: projects}
}

func (e *ConsolidationEngine) buildEntry(g *workItemGroup) (string, domain.ConsolidatedEntry) {
	changes := dedupeByURL(g.changes)

	project := domain.UnknownProject
	if len(changes) > 0 {
		if name := domain.ProjectName(changes[0].ProjectPath); name != "" {
			project = name
		}
	}

	prs := make([]domain.Change, len(changes))
	urls := make([]string, 0, len(changes))
	authors := make([]string, 0, len(changes))
	seenAuthors := make(map[string]struct{}, len(changes))

	for i, pc := range changes {
		prs[i] = pc.Change

		if pc.Change.PrURL != "" {
			urls = append(urls, pc.Change.PrURL)
		}

		author := pc.Change.AuthorName
		if strings.TrimSpace(author) == "" {
			continue
		}

		if _, ok := seenAuthors[author]; !ok {
			seenAuthors[author] = struct{}{}
			authors = append(authors, author)
		}
	}

	var title string
	if len(changes) > 0 {
		title = changes[0].Change.Title
	}

	return project, domain.ConsolidatedEntry{
		PrTitle:         title,
		WorkItemID:      g.record.WorkItemID,
		TeamDisplayName: e.MapTeamName(g.record.OriginalTeamName),
		Authors:         authors,
		PullRequestURLs: urls,
		OriginalData: domain.OriginalData{
			WorkItem:     g.record,
			PullRequests: prs,
		},
	}
}

// dedupeByURL keeps the first change per URL. Changes without a URL cannot
// be compared and are kept, keyed by project and change id instead.
func dedupeByURL(changes []domain.PairedChange) []domain.PairedChange {
	seen := make(map[string]struct{}, len(changes))
	out := make([]domain.PairedChange, 0, len(changes))

	for _, pc := range changes {
		key := "url:" + pc.Change.PrURL
		if pc.Change.PrURL == "" {
			key = "id:" + pc.ProjectPath + "#" + pc.Change.PrID
		}

		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		out = append(out, pc)
	}

	return out
}

func sortEntries(entries []domain.ConsolidatedEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TeamDisplayName != entries[j].TeamDisplayName {
			return entries[i].TeamDisplayName < entries[j].TeamDisplayName
		}

		return entries[i].WorkItemID < entries[j].WorkItemID
	})
}
