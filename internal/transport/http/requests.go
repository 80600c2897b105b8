package http

import "github.com/usira-okay/release-kit/internal/domain"

type diffTargetRequest struct {
	ProjectPath  string `json:"projectPath" validate:"required,min=1,max=255"`
	SourceBranch string `json:"sourceBranch" validate:"required,branch_name,max=255"`
	TargetBranch string `json:"targetBranch" validate:"required,branch_name,max=255"`
}

type diffTargetResponse struct {
	ProjectPath  string `json:"projectPath"`
	SourceBranch string `json:"sourceBranch"`
	TargetBranch string `json:"targetBranch"`
	Adjusted     bool   `json:"adjusted"`
}

type resolveResponse struct {
	WorkItems []domain.WorkItemOutput `json:"workItems"`
}
