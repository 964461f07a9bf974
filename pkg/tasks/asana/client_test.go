package asana

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *AsanaClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewAsanaClient("token")
	client.BaseURL = srv.URL
	return client
}

func TestFetchTasksSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/tasks") {
			assert.Equal(t, "now", r.URL.Query().Get("completed_since"))
			w.Write([]byte(`{"data": [
				{"name": "Pour foundation", "completed": false, "due_on": "2026-09-15", "assignee": {"name": "Dana"}},
				{"name": "Order rebar", "completed": false, "due_on": "", "assignee": null}
			]}`))
			return
		}
		w.Write([]byte(`{"data": {"name": "Site Prep"}}`))
	})

	result, err := client.FetchTasks(context.Background(), "1201", false)
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Equal(t, "Site Prep", result.ProjectName)
	require.Len(t, result.Tasks, 2)
	assert.Equal(t, "Pour foundation", result.Tasks[0].Name)
	assert.Equal(t, "2026-09-15", result.Tasks[0].DueDate)
	assert.Equal(t, "Dana", result.Tasks[0].Assignee)
	assert.Empty(t, result.Tasks[1].Assignee)
}

func TestFetchTasksAPIErrorIsUnsuccessfulNotError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errors": [{"message": "project not found"}]}`))
	})

	result, err := client.FetchTasks(context.Background(), "9999", true)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "project not found", result.FailureReason)
}

func TestFetchTasksTransportErrorPropagates(t *testing.T) {
	client := NewAsanaClient("token")
	client.BaseURL = "http://127.0.0.1:1"

	_, err := client.FetchTasks(context.Background(), "1201", true)
	require.Error(t, err)
}
