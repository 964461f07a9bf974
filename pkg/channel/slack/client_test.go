package slack

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *SlackClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewSlackClient("xoxb-test")
	client.BaseURL = srv.URL
	return client
}

func TestFetchHistoryReversesToChronological(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer xoxb-test", r.Header.Get("Authorization"))
		assert.Equal(t, "C123", r.URL.Query().Get("channel"))

		w.Write([]byte(`{
			"ok": true,
			"messages": [
				{"user": "U2", "ts": "1726012900.000100", "text": "second"},
				{"user": "U1", "ts": "1726012800.000200", "text": "first"}
			]
		}`))
	})

	messages, err := client.FetchHistory(context.Background(), "C123")
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, "first", messages[0].Text)
	assert.Equal(t, "U1", messages[0].Speaker)
	assert.Equal(t, int64(1726012800), messages[0].Timestamp)
	assert.Equal(t, "second", messages[1].Text)
}

func TestFetchHistoryAccessErrorsYieldEmptyList(t *testing.T) {
	for _, apiErr := range []string{"not_in_channel", "channel_not_found", "missing_scope", "is_archived"} {
		t.Run(apiErr, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"ok": false, "error": "` + apiErr + `"}`))
			})

			messages, err := client.FetchHistory(context.Background(), "C123")
			require.NoError(t, err)
			assert.Empty(t, messages)
		})
	}
}

func TestFetchHistoryOtherErrorsPropagate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok": false, "error": "ratelimited"}`))
	})

	_, err := client.FetchHistory(context.Background(), "C123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ratelimited")
}

func TestParseSlackTS(t *testing.T) {
	assert.Equal(t, int64(1726012800), parseSlackTS("1726012800.000200"))
	assert.Equal(t, int64(0), parseSlackTS("garbage"))
}
