package monday

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"construction-assist-be/pkg/tasks"
)

type MondayClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// Ensure MondayClient implements Provider
var _ tasks.Provider = &MondayClient{}

func NewMondayClient(token string) *MondayClient {
	return &MondayClient{
		BaseURL: "https://api.monday.com/v2",
		Token:   token,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (m *MondayClient) Name() string {
	return "Monday"
}

// --- Request/Response structs (Internal to this package) ---

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type boardResponse struct {
	Data struct {
		Boards []struct {
			Name      string `json:"name"`
			ItemsPage struct {
				Items []struct {
					Name         string `json:"name"`
					ColumnValues []struct {
						ID   string `json:"id"`
						Type string `json:"type"`
						Text string `json:"text"`
					} `json:"column_values"`
				} `json:"items"`
			} `json:"items_page"`
		} `json:"boards"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

const boardQuery = `query ($boardId: [ID!]) {
  boards(ids: $boardId) {
    name
    items_page(limit: 100) {
      items {
        name
        column_values {
          id
          type
          text
        }
      }
    }
  }
}`

// FetchTasks returns the board's items as tasks. Completion, due date
// and assignee are read off the board's status, date and people columns
// by column type, since monday boards carry no fixed schema.
func (m *MondayClient) FetchTasks(ctx context.Context, projectID string, includeCompleted bool) (tasks.Result, error) {
	payload := graphqlRequest{
		Query:     boardQuery,
		Variables: map[string]any{"boardId": []string{projectID}},
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return tasks.Result{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", m.BaseURL, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return tasks.Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", m.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.Client.Do(req)
	if err != nil {
		return tasks.Result{}, fmt.Errorf("monday request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return tasks.Result{}, fmt.Errorf("read response: %w", err)
	}

	var board boardResponse
	if err := json.Unmarshal(bodyBytes, &board); err != nil {
		return tasks.Result{}, fmt.Errorf("unmarshal response: %w", err)
	}

	if len(board.Errors) > 0 {
		return tasks.Result{Success: false, FailureReason: board.Errors[0].Message}, nil
	}
	if len(board.Data.Boards) == 0 {
		return tasks.Result{Success: false, FailureReason: "board not found"}, nil
	}

	b := board.Data.Boards[0]
	result := tasks.Result{
		Success:     true,
		ProjectName: b.Name,
	}
	for _, item := range b.ItemsPage.Items {
		task := tasks.Task{Name: item.Name}
		for _, col := range item.ColumnValues {
			switch col.Type {
			case "status":
				task.Completed = col.Text == "Done"
			case "date":
				task.DueDate = col.Text
			case "people":
				task.Assignee = col.Text
			}
		}
		if task.Completed && !includeCompleted {
			continue
		}
		result.Tasks = append(result.Tasks, task)
	}
	return result, nil
}
