package domain

import (
	"encoding/json"
	"sort"
)

const UnknownProject = "unknown"

// TeamMapping maps a team path fragment to a display name.
type TeamMapping struct {
	OriginalTeamName string `json:"originalTeamName" yaml:"original_team_name" validate:"required"`
	DisplayName      string `json:"displayName" yaml:"display_name" validate:"required"`
}

type OriginalData struct {
	WorkItem     WorkItemOutput `json:"workItem"`
	PullRequests []Change       `json:"pullRequests"`
}

// ConsolidatedEntry is one row of the release report.
type ConsolidatedEntry struct {
	PrTitle         string       `json:"prTitle"`
	WorkItemID      int          `json:"workItemId"`
	TeamDisplayName string       `json:"teamDisplayName"`
	Authors         []string     `json:"authors"`
	PullRequestURLs []string     `json:"pullRequestUrls"`
	OriginalData    OriginalData `json:"originalData"`
}

type ProjectGroup struct {
	ProjectName string
	Entries     []ConsolidatedEntry
}

// ConsolidatedResult holds every project group ordered by project name.
// It serializes as {"projects": {"<name>": [...]}}.
type ConsolidatedResult struct {
	Projects []ProjectGroup
}

type consolidatedResultJSON struct {
	Projects map[string][]ConsolidatedEntry `json:"projects"`
}

func (r ConsolidatedResult) MarshalJSON() ([]byte, error) {
	out := consolidatedResultJSON{Projects: make(map[string][]ConsolidatedEntry, len(r.Projects))}
	for _, g := range r.Projects {
		out.Projects[g.ProjectName] = g.Entries
	}

	return json.Marshal(out)
}

func (r *ConsolidatedResult) UnmarshalJSON(data []byte) error {
	var in consolidatedResultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	groups := make([]ProjectGroup, 0, len(in.Projects))
	for name, entries := range in.Projects {
		groups = append(groups, ProjectGroup{ProjectName: name, Entries: entries})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].ProjectName < groups[j].ProjectName
	})

	r.Projects = groups

	return nil
}

// Project returns the group with the given name.
func (r ConsolidatedResult) Project(name string) (ProjectGroup, bool) {
	for _, g := range r.Projects {
		if g.ProjectName == name {
			return g, true
		}
	}

	return ProjectGroup{}, false
}

func (r ConsolidatedResult) TotalEntries() int {
	var n int
	for _, g := range r.Projects {
		n += len(g.Entries)
	}

	return n
}
