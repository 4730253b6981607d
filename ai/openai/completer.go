package openai

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/docquery/ai"
	"github.com/poiesic/docquery/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Completer implements ai.Completer using OpenAI-compatible chat APIs.
// Both prompt stages run with temperature 0 so answers stay grounded in
// the supplied contexts.
type Completer struct {
	client     llms.Model
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// newCompleter is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newCompleter(config *ai.Config) (*Completer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.CompletionHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.CompletionModel),
	)
	if err != nil {
		return nil, err
	}

	return &Completer{
		client:     client,
		timeout:    config.Timeout,
		maxRetries: config.MaxRetries,
		retryDelay: config.RetryDelay,
		logger:     slog.Default().With("component", "openai-completer"),
	}, nil
}

// NewCompleter creates a new completer using the provided configuration.
//
// Returns ai.Completer interface to enforce abstraction.
func NewCompleter(config *ai.Config) (ai.Completer, error) {
	return newCompleter(config)
}

// GroundedAnswer produces an answer constrained to the retrieval context.
func (c *Completer) GroundedAnswer(ctx context.Context, question, contextText string) (string, error) {
	prompt, err := groundedAnswerPrompt.Format(map[string]any{
		"context":  contextText,
		"question": question,
	})
	if err != nil {
		return "", &core.CompletionError{Stage: "initial-answer", Err: err}
	}

	answer, err := c.generate(ctx, prompt)
	if err != nil {
		c.logger.Error("grounded answer generation failed", "err", err)
		return "", &core.CompletionError{Stage: "initial-answer", Err: err}
	}
	return answer, nil
}

// FuseContexts produces a final answer combining both retrieval contexts
// with the previous answer.
func (c *Completer) FuseContexts(ctx context.Context, input ai.FusionInput) (string, error) {
	prompt, err := fuseContextsPrompt.Format(map[string]any{
		"vectorContext":  input.VectorContext,
		"graphContext":   input.GraphContext,
		"question":       input.Question,
		"previousAnswer": input.PreviousAnswer,
	})
	if err != nil {
		return "", &core.CompletionError{Stage: "final-answer", Err: err}
	}

	answer, err := c.generate(ctx, prompt)
	if err != nil {
		c.logger.Error("context fusion failed", "err", err)
		return "", &core.CompletionError{Stage: "final-answer", Err: err}
	}
	return answer, nil
}

func (c *Completer) generate(ctx context.Context, prompt string) (string, error) {
	var answer string
	err := retryWithBackoff(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		var err error
		answer, err = llms.GenerateFromSinglePrompt(callCtx, c.client, prompt, llms.WithTemperature(0.0))
		return err
	}, c.maxRetries, c.retryDelay)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}
