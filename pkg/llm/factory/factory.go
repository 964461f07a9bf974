package factory

import (
	"fmt"

	"construction-assist-be/pkg/llm"
	"construction-assist-be/pkg/llm/gemini"
	"construction-assist-be/pkg/llm/ollama"
)

// NewLLMProvider builds the configured generation backend.
func NewLLMProvider(provider, model, ollamaBaseURL, geminiAPIKey string) (llm.LLMProvider, error) {
	switch provider {
	case "ollama":
		return ollama.NewOllamaProvider(ollamaBaseURL, model), nil
	case "gemini":
		if geminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return gemini.NewGeminiProvider(geminiAPIKey, model), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", provider)
	}
}
