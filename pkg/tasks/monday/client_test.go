package monday

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boardBody = `{"data": {"boards": [{
	"name": "Build Phase 2",
	"items_page": {"items": [
		{"name": "Frame walls", "column_values": [
			{"id": "status", "type": "status", "text": "Working on it"},
			{"id": "date4", "type": "date", "text": "2026-09-20"},
			{"id": "person", "type": "people", "text": "Alex"}
		]},
		{"name": "Demo old deck", "column_values": [
			{"id": "status", "type": "status", "text": "Done"}
		]}
	]}
}]}}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *MondayClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewMondayClient("token")
	client.BaseURL = srv.URL
	return client
}

func TestFetchTasksMapsColumnsByType(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token", r.Header.Get("Authorization"))
		w.Write([]byte(boardBody))
	})

	result, err := client.FetchTasks(context.Background(), "445566", true)
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Equal(t, "Build Phase 2", result.ProjectName)
	require.Len(t, result.Tasks, 2)

	assert.Equal(t, "Frame walls", result.Tasks[0].Name)
	assert.False(t, result.Tasks[0].Completed)
	assert.Equal(t, "2026-09-20", result.Tasks[0].DueDate)
	assert.Equal(t, "Alex", result.Tasks[0].Assignee)

	assert.True(t, result.Tasks[1].Completed)
}

func TestFetchTasksExcludesCompletedWhenAsked(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(boardBody))
	})

	result, err := client.FetchTasks(context.Background(), "445566", false)
	require.NoError(t, err)
	require.Len(t, result.Tasks, 1)
	assert.Equal(t, "Frame walls", result.Tasks[0].Name)
}

func TestFetchTasksGraphQLErrorIsUnsuccessful(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors": [{"message": "invalid board id"}]}`))
	})

	result, err := client.FetchTasks(context.Background(), "bad", true)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "invalid board id", result.FailureReason)
}

func TestFetchTasksMissingBoardIsUnsuccessful(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"boards": []}}`))
	})

	result, err := client.FetchTasks(context.Background(), "445566", true)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "board not found", result.FailureReason)
}
