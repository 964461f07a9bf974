package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"construction-assist-be/pkg/llm"
)

const generateURL = "https://generativelanguage.googleapis.com/v1/models/%s:generateContent"

type GeminiProvider struct {
	APIKey    string
	ModelName string
	Client    *http.Client
}

var _ llm.LLMProvider = &GeminiProvider{}

func NewGeminiProvider(apiKey, modelName string) *GeminiProvider {
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiProvider{
		APIKey:    apiKey,
		ModelName: modelName,
		Client:    &http.Client{},
	}
}

// --- Request/Response structs ---

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

func (g *GeminiProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := &llm.Options{}
	for _, opt := range opts {
		opt(options)
	}
	model := g.ModelName
	if options.Model != "" {
		model = options.Model
	}

	contents := make([]geminiContent, 0, len(history))
	for _, msg := range history {
		role := "user"
		if msg.Role == "assistant" || msg.Role == "model" {
			role = "model"
		}
		contents = append(contents, geminiContent{
			Parts: []geminiPart{{Text: msg.Content}},
			Role:  role,
		})
	}

	payloadJson, err := json.Marshal(geminiRequest{Contents: contents})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		fmt.Sprintf(generateURL, model), bytes.NewBuffer(payloadJson))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-goog-api-key", g.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := g.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	answer, err := extractAnswer(resBody)
	if err != nil {
		return "", fmt.Errorf("gemini response (status %d): %w", res.StatusCode, err)
	}
	return answer, nil
}

// ChatStream satisfies the streaming contract with a single completed
// increment; the transport treats blocking and incremental generation as
// interchangeable.
func (g *GeminiProvider) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (<-chan llm.Delta, error) {
	answer, err := g.Chat(ctx, history, opts...)
	if err != nil {
		return nil, err
	}

	deltas := make(chan llm.Delta, 2)
	deltas <- llm.Delta{Content: answer}
	deltas <- llm.Delta{Done: true}
	close(deltas)
	return deltas, nil
}

// --- Response envelope extraction ---

// The generation API answers with one of several envelope shapes. Each
// known shape gets its own extraction path; anything else is reported as
// an unrecognized shape instead of being stringified best-effort.

type candidateEnvelope struct {
	Candidates []struct {
		Content *geminiContent `json:"content"`
	} `json:"candidates"`
}

type errorEnvelope struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

type blockedEnvelope struct {
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func extractAnswer(body []byte) (string, error) {
	var errEnv errorEnvelope
	if err := json.Unmarshal(body, &errEnv); err == nil && errEnv.Error != nil {
		return "", fmt.Errorf("api error %s: %s", errEnv.Error.Status, errEnv.Error.Message)
	}

	var candEnv candidateEnvelope
	if err := json.Unmarshal(body, &candEnv); err == nil && len(candEnv.Candidates) > 0 {
		content := candEnv.Candidates[0].Content
		if content != nil && len(content.Parts) > 0 {
			return content.Parts[0].Text, nil
		}
		return "", fmt.Errorf("candidate carries no content parts")
	}

	var blockEnv blockedEnvelope
	if err := json.Unmarshal(body, &blockEnv); err == nil && blockEnv.PromptFeedback != nil {
		return "", fmt.Errorf("prompt blocked: %s", blockEnv.PromptFeedback.BlockReason)
	}

	return "", fmt.Errorf("unrecognized response shape: %s", truncate(string(body), 200))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
