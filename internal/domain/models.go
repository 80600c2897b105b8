package domain

import (
	"strings"
	"time"
)

type Platform string

const (
	PlatformBitbucket Platform = "Bitbucket"
	PlatformGitLab    Platform = "GitLab"
)

// Change is a merged pull/merge request normalized across platforms.
type Change struct {
	PrID         string     `json:"prId"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	SourceBranch string     `json:"sourceBranch"`
	TargetBranch string     `json:"targetBranch"`
	CreatedAt    time.Time  `json:"createdAt"`
	MergedAt     *time.Time `json:"mergedAt,omitempty"`
	AuthorUserID string     `json:"authorUserId"`
	AuthorName   string     `json:"authorName"`
	PrURL        string     `json:"prUrl"`
	State        string     `json:"state"`
	WorkItemID   *int       `json:"workItemId,omitempty"`
}

// FetchResult is what a platform adapter produced for a single project.
// A non-empty Error means the fetch failed and Changes is empty.
type FetchResult struct {
	ProjectPath string   `json:"projectPath"`
	Platform    Platform `json:"platform"`
	Changes     []Change `json:"changes"`
	Error       string   `json:"error,omitempty"`
}

func (r FetchResult) Failed() bool {
	return strings.TrimSpace(r.Error) != ""
}

// PlanningItem is an issue-tracker work item snapshot.
type PlanningItem struct {
	ID           int    `json:"workItemId" db:"id"`
	Title        string `json:"title" db:"title"`
	Type         string `json:"type" db:"type"`
	State        string `json:"state" db:"state"`
	URL          string `json:"url" db:"url"`
	TeamPath     string `json:"originalTeamName" db:"area_path"`
	ParentID     *int   `json:"parentWorkItemId,omitempty" db:"parent_id"`
	IsSuccess    bool   `json:"isSuccess"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// WorkItemChangePair links an extracted work item id to the change that
// referenced it. Pairs are never deduplicated.
type WorkItemChangePair struct {
	WorkItemID  int
	Change      Change
	ProjectPath string
}

// PairedChange is a change together with the project it was fetched from.
type PairedChange struct {
	Change      Change
	ProjectPath string
	WorkItemID  int
}

// ProjectName returns the last segment of a slash-delimited project path.
func ProjectName(projectPath string) string {
	trimmed := strings.Trim(strings.TrimSpace(projectPath), "/")
	if trimmed == "" {
		return ""
	}

	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}

	return trimmed
}
