package tfe

import (
	"context"
	"net/url"

	"github.com/samber/lo"
)

// Workspace is the subset of a workspace kept for a run.
type Workspace struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type workspaceAttributes struct {
	Name string `json:"name"`
}

type ListWorkspacesOptions struct {
	// Search is matched against workspace names by the API. Empty lists every workspace.
	Search string

	PageOptions
}

// ListWorkspaces lists the workspaces of an organization.
func ListWorkspaces(ctx context.Context, c *Client, org string, opts ListWorkspacesOptions) ([]Workspace, error) {
	params := url.Values{}
	if opts.Search != "" {
		params.Set("search[name]", opts.Search)
	}

	resources, err := FetchAll[Resource[workspaceAttributes]](ctx, c, []string{"organizations", org, "workspaces"}, params, opts.PageOptions)
	if err != nil {
		return nil, err
	}

	return lo.Map(resources, func(r Resource[workspaceAttributes], _ int) Workspace {
		return Workspace{ID: r.ID, Name: r.Attributes.Name}
	}), nil
}
