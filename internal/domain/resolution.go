package domain

type ResolutionStatus string

const (
	ResolutionAlreadyTopLevel     ResolutionStatus = "AlreadyTopLevelOrAbove"
	ResolutionFoundViaRecursion   ResolutionStatus = "FoundViaRecursion"
	ResolutionNotFound            ResolutionStatus = "NotFound"
	ResolutionOriginalFetchFailed ResolutionStatus = "OriginalFetchFailed"
)

// Resolved reports whether the status carries a top-level item.
func (s ResolutionStatus) Resolved() bool {
	return s == ResolutionAlreadyTopLevel || s == ResolutionFoundViaRecursion
}

// ResolutionOutcome is the classified result of walking a work item's
// parent chain. TriggerChangeID and TriggerProject are empty until the
// outcome is attached to the change that referenced the item.
type ResolutionOutcome struct {
	RequestedID     int
	Status          ResolutionStatus
	Original        *PlanningItem
	Resolved        *PlanningItem
	ErrorMessage    string
	TriggerChangeID string
	TriggerProject  string
}

// WithTrigger returns a copy of the outcome attributed to a change.
func (o ResolutionOutcome) WithTrigger(changeID, projectPath string) ResolutionOutcome {
	o.TriggerChangeID = changeID
	o.TriggerProject = projectPath

	return o
}

// WorkItemOutput is the persisted form of a resolution, one per triggering
// change. ProjectName carries the triggering change's project path.
type WorkItemOutput struct {
	WorkItemID       int              `json:"workItemId"`
	PrID             *string          `json:"prId,omitempty"`
	ProjectName      string           `json:"projectName,omitempty"`
	Title            string           `json:"title,omitempty"`
	Type             string           `json:"type,omitempty"`
	State            string           `json:"state,omitempty"`
	URL              string           `json:"url,omitempty"`
	OriginalTeamName string           `json:"originalTeamName,omitempty"`
	IsSuccess        bool             `json:"isSuccess"`
	ErrorMessage     string           `json:"errorMessage,omitempty"`
	ResolutionStatus ResolutionStatus `json:"resolutionStatus"`
	OriginalWorkItem *PlanningItem    `json:"originalWorkItem,omitempty"`
}

// ToOutput flattens an outcome into its persisted record.
func (o ResolutionOutcome) ToOutput() WorkItemOutput {
	out := WorkItemOutput{
		WorkItemID:       o.RequestedID,
		ProjectName:      o.TriggerProject,
		ResolutionStatus: o.Status,
		OriginalWorkItem: o.Original,
	}

	if o.TriggerChangeID != "" {
		prID := o.TriggerChangeID
		out.PrID = &prID
	}

	describe := o.Original
	if o.Status.Resolved() && o.Resolved != nil {
		describe = o.Resolved
	}

	if describe == nil {
		out.IsSuccess = false
		out.ErrorMessage = o.ErrorMessage

		return out
	}

	out.WorkItemID = describe.ID
	out.Title = describe.Title
	out.Type = describe.Type
	out.State = describe.State
	out.URL = describe.URL
	out.OriginalTeamName = describe.TeamPath
	out.IsSuccess = true
	out.ErrorMessage = o.ErrorMessage

	return out
}
