package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"construction-assist-be/pkg/channel"
)

const defaultHistoryLimit = 100

// Errors the Slack API reports when the token simply cannot see the
// channel. These map to "no messages", not to a failure.
var accessErrors = map[string]bool{
	"not_in_channel":    true,
	"channel_not_found": true,
	"missing_scope":     true,
	"is_archived":       true,
}

type SlackClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// Ensure SlackClient implements HistoryProvider
var _ channel.HistoryProvider = &SlackClient{}

func NewSlackClient(token string) *SlackClient {
	return &SlackClient{
		BaseURL: "https://slack.com/api",
		Token:   token,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Response structs (Internal to this package) ---

type historyResponse struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error"`
	Messages []struct {
		User string `json:"user"`
		TS   string `json:"ts"`
		Text string `json:"text"`
	} `json:"messages"`
}

// FetchHistory returns the channel's recent messages, oldest first.
func (s *SlackClient) FetchHistory(ctx context.Context, channelID string) ([]channel.Message, error) {
	params := url.Values{}
	params.Set("channel", channelID)
	params.Set("limit", strconv.Itoa(defaultHistoryLimit))

	endpoint := s.BaseURL + "/conversations.history?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.Token)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("slack request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var history historyResponse
	if err := json.Unmarshal(bodyBytes, &history); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if !history.OK {
		if accessErrors[history.Error] {
			return []channel.Message{}, nil
		}
		return nil, fmt.Errorf("slack error: %s", history.Error)
	}

	// Slack returns newest first; the assembler wants chronological order.
	messages := make([]channel.Message, 0, len(history.Messages))
	for i := len(history.Messages) - 1; i >= 0; i-- {
		m := history.Messages[i]
		speaker := m.User
		if speaker == "" {
			speaker = "unknown"
		}
		messages = append(messages, channel.Message{
			Speaker:   speaker,
			Timestamp: parseSlackTS(m.TS),
			Text:      m.Text,
		})
	}
	return messages, nil
}

// parseSlackTS converts Slack's "1726012345.000200" timestamps to unix
// seconds. Malformed values become zero rather than failing the fetch.
func parseSlackTS(ts string) int64 {
	whole, _, _ := strings.Cut(ts, ".")
	seconds, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0
	}
	return seconds
}
