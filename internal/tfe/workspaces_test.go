package tfe

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListWorkspaces(t *testing.T) {
	var paths []string
	var searches []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		searches = append(searches, r.URL.Query().Get("search[name]"))

		switch r.URL.Query().Get("page[number]") {
		case "1":
			_, _ = w.Write([]byte(`{
				"data": [
					{"id": "ws-1", "type": "workspaces", "attributes": {"name": "app-prod", "locked": false}},
					{"id": "ws-2", "type": "workspaces", "attributes": {"name": "app-staging"}}
				],
				"meta": {"pagination": {"current-page": 1, "page-size": 2, "prev-page": null, "next-page": 2, "total-pages": 2, "total-count": 3}}
			}`))
		case "2":
			_, _ = w.Write([]byte(`{
				"data": [
					{"id": "ws-3", "type": "workspaces", "attributes": {"name": "app-dev"}}
				],
				"meta": {"pagination": {"current-page": 2, "page-size": 2, "prev-page": 1, "next-page": null, "total-pages": 2, "total-count": 3}}
			}`))
		default:
			http.Error(w, "unexpected page", http.StatusBadRequest)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL+"/api/v2")

	workspaces, err := ListWorkspaces(t.Context(), client, "acme", ListWorkspacesOptions{
		Search:      "app",
		PageOptions: PageOptions{StartPage: 1, PageSize: 2, MaxDepth: 0},
	})
	require.NoError(t, err)

	assert.Equal(t, []Workspace{
		{ID: "ws-1", Name: "app-prod"},
		{ID: "ws-2", Name: "app-staging"},
		{ID: "ws-3", Name: "app-dev"},
	}, workspaces)
	assert.Equal(t, []string{"/api/v2/organizations/acme/workspaces/", "/api/v2/organizations/acme/workspaces/"}, paths)
	assert.Equal(t, []string{"app", "app"}, searches)
}

func TestListWorkspaces_NoSearch(t *testing.T) {
	var hasSearch bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasSearch = r.URL.Query().Has("search[name]")
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	workspaces, err := ListWorkspaces(t.Context(), newTestClient(t, server.URL), "acme", ListWorkspacesOptions{
		PageOptions: PageOptions{StartPage: 1, PageSize: 20, MaxDepth: 1},
	})
	require.NoError(t, err)
	assert.Empty(t, workspaces)
	assert.False(t, hasSearch)
}

func TestListVariables(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{
			"data": [
				{"id": "var-1", "type": "vars", "attributes": {"key": "env", "value": "prod", "category": "terraform", "sensitive": false}},
				{"id": "var-2", "type": "vars", "attributes": {"key": "secret", "value": null, "category": "env", "sensitive": true}}
			]
		}`))
	}))
	defer server.Close()

	variables, err := ListVariables(t.Context(), newTestClient(t, server.URL+"/api/v2"), "ws-1", 20)
	require.NoError(t, err)

	assert.Equal(t, "/api/v2/workspaces/ws-1/vars/", path)
	assert.Equal(t, []Variable{
		{ID: "var-1", Key: "env", Value: lo.ToPtr("prod"), Category: "terraform"},
		{ID: "var-2", Key: "secret", Value: nil, Category: "env", Sensitive: true},
	}, variables)
}

func TestListVariables_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	_, err := ListVariables(t.Context(), newTestClient(t, server.URL), "ws-1", 20)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusForbidden, transportErr.StatusCode)
}
