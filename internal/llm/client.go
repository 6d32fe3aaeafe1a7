// Package llm sends assembled conversations to a completion backend and
// returns the raw reply text. It speaks the OpenAI-compatible wire protocol
// (chat completions plus raw completions with an optional formal grammar) and
// maps failures to a small error taxonomy; retry policy belongs to callers.
package llm

import "context"

// Options tune a single completion call.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// Client is the completion backend contract.
type Client interface {
	// Complete sends an ordered message list and returns the reply text.
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)

	// CompleteWithGrammar sends a single prompt string with a formal
	// grammar constraining the output shape, for backends that support it.
	// An empty grammar falls back to an unconstrained completion.
	CompleteWithGrammar(ctx context.Context, prompt, grammar string, opts Options) (string, error)
}

// Message is one role/content entry of an outbound conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
