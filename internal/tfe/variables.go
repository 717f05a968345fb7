package tfe

import (
	"context"

	"github.com/samber/lo"
)

// Variable is a workspace variable. Value is nil for sensitive variables and for variables
// that have no value set.
type Variable struct {
	ID        string  `json:"id"`
	Key       string  `json:"key"`
	Value     *string `json:"value,omitempty"`
	Category  string  `json:"category,omitempty"`
	Sensitive bool    `json:"sensitive,omitempty"`
}

type variableAttributes struct {
	Key       string  `json:"key"`
	Value     *string `json:"value"`
	Category  string  `json:"category"`
	Sensitive bool    `json:"sensitive"`
}

// ListVariables lists every variable of a workspace. Variables are always fetched completely
// since a partial list could change the outcome of a filter.
func ListVariables(ctx context.Context, c *Client, workspaceID string, pageSize int) ([]Variable, error) {
	resources, err := FetchAll[Resource[variableAttributes]](ctx, c, []string{"workspaces", workspaceID, "vars"}, nil, PageOptions{
		StartPage: 1,
		PageSize:  pageSize,
	})
	if err != nil {
		return nil, err
	}

	return lo.Map(resources, func(r Resource[variableAttributes], _ int) Variable {
		return Variable{
			ID:        r.ID,
			Key:       r.Attributes.Key,
			Value:     r.Attributes.Value,
			Category:  r.Attributes.Category,
			Sensitive: r.Attributes.Sensitive,
		}
	}), nil
}
