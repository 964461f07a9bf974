package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Delta is one increment of a streamed generation. Exactly one of the
// three outcomes is set: Content carries a text increment, Done marks
// successful completion, Err marks failure. After Done or Err no further
// deltas are sent and the channel is closed.
type Delta struct {
	Content string
	Done    bool
	Err     error
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(max int) Option {
	return func(o *Options) {
		o.MaxTokens = max
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the full response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// ChatStream sends a chat history and yields the response as a lazy,
	// in-order, finite sequence of deltas. An error return means the
	// generation never started; failures after that arrive as an Err
	// delta. Providers without native streaming satisfy this with a
	// single Content delta followed by Done.
	ChatStream(ctx context.Context, history []Message, options ...Option) (<-chan Delta, error)
}
