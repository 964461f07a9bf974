package asana

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"construction-assist-be/pkg/tasks"
)

type AsanaClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// Ensure AsanaClient implements Provider
var _ tasks.Provider = &AsanaClient{}

func NewAsanaClient(token string) *AsanaClient {
	return &AsanaClient{
		BaseURL: "https://app.asana.com/api/1.0",
		Token:   token,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (a *AsanaClient) Name() string {
	return "Asana"
}

// --- Response structs (Internal to this package) ---

type projectResponse struct {
	Data struct {
		Name string `json:"name"`
	} `json:"data"`
}

type taskListResponse struct {
	Data []struct {
		Name      string `json:"name"`
		Completed bool   `json:"completed"`
		DueOn     string `json:"due_on"`
		Assignee  *struct {
			Name string `json:"name"`
		} `json:"assignee"`
	} `json:"data"`
}

type errorResponse struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// FetchTasks returns the project's tasks. API-level rejections (bad
// token, unknown project) come back as an unsuccessful Result; only
// transport failures are returned as errors.
func (a *AsanaClient) FetchTasks(ctx context.Context, projectID string, includeCompleted bool) (tasks.Result, error) {
	projectName, apiErr, err := a.fetchProjectName(ctx, projectID)
	if err != nil {
		return tasks.Result{}, err
	}
	if apiErr != "" {
		return tasks.Result{Success: false, FailureReason: apiErr}, nil
	}

	params := url.Values{}
	params.Set("opt_fields", "name,completed,due_on,assignee.name")
	if !includeCompleted {
		params.Set("completed_since", "now")
	}

	endpoint := fmt.Sprintf("%s/projects/%s/tasks?%s", a.BaseURL, projectID, params.Encode())
	body, apiErr, err := a.get(ctx, endpoint)
	if err != nil {
		return tasks.Result{}, err
	}
	if apiErr != "" {
		return tasks.Result{Success: false, FailureReason: apiErr}, nil
	}

	var list taskListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return tasks.Result{}, fmt.Errorf("unmarshal response: %w", err)
	}

	result := tasks.Result{
		Success:     true,
		ProjectName: projectName,
		Tasks:       make([]tasks.Task, 0, len(list.Data)),
	}
	for _, t := range list.Data {
		task := tasks.Task{
			Name:      t.Name,
			Completed: t.Completed,
			DueDate:   t.DueOn,
		}
		if t.Assignee != nil {
			task.Assignee = t.Assignee.Name
		}
		result.Tasks = append(result.Tasks, task)
	}
	return result, nil
}

func (a *AsanaClient) fetchProjectName(ctx context.Context, projectID string) (string, string, error) {
	body, apiErr, err := a.get(ctx, fmt.Sprintf("%s/projects/%s", a.BaseURL, projectID))
	if err != nil || apiErr != "" {
		return "", apiErr, err
	}

	var project projectResponse
	if err := json.Unmarshal(body, &project); err != nil {
		return "", "", fmt.Errorf("unmarshal response: %w", err)
	}
	return project.Data.Name, "", nil
}

// get performs an authenticated GET. The second return value carries the
// API's own error message for non-2xx statuses.
func (a *AsanaClient) get(ctx context.Context, endpoint string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("asana request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && len(apiErr.Errors) > 0 {
			return nil, apiErr.Errors[0].Message, nil
		}
		return nil, fmt.Sprintf("asana status %d", resp.StatusCode), nil
	}
	return body, "", nil
}
