package runner

import (
	v1 "github.com/infracollect/whichworkspace/apis/v1"
	"github.com/infracollect/whichworkspace/internal/tfe"
)

// FilteredResult is the document written at the end of a run.
type FilteredResult struct {
	Query  v1.Query `json:"query"`
	Result Result   `json:"result"`
}

type Result struct {
	Workspaces []tfe.Workspace `json:"workspaces"`
}

func NewFilteredResult(query v1.Query, workspaces []tfe.Workspace) FilteredResult {
	if workspaces == nil {
		workspaces = []tfe.Workspace{}
	}
	return FilteredResult{
		Query:  query,
		Result: Result{Workspaces: workspaces},
	}
}
