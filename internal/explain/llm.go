// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package explain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"policy-guard/internal/observability"
	"policy-guard/internal/resilience"
)

const serviceName = "explainer"

// DefaultModel is served by a local Ollama install.
const DefaultModel = "llama3.1"

const systemPrompt = `You are a compliance assistant for business employees handling sensitive company and customer data. Your job is to explain, using only the provided policy context, whether sharing a specific piece of information is allowed, and why.

Rules:
1. Only answer about the specific data type or example in the question (e.g., PASSPORT). Do not mention other clauses or data types unless the policy explicitly links them.
2. Be clear, specific, and concise.
3. Do not output your thinking process, only output the answer which is "Clause [clause_number]: [reason/explanation]"
4. Format: "Clause [clause_number]: [reason/explanation]"

Context:
%s

Example of expected output:
Question: "Why is PASSPORT like 'K98765432' sensitive?"
Answer: "Clause 5.1: Passport numbers are considered personal data and require consent for disclosure."`

// LLMOptions configures an LLMExplainer.
type LLMOptions struct {
	BaseURL         string // OpenAI-compatible endpoint, e.g. http://localhost:11434/v1
	APIKey          string
	Model           string
	PolicyText      string // cleaned policy document used as context
	MaxContextChars int
	Timeout         time.Duration
	Policy          resilience.Policy
	HTTPClient      *http.Client
}

// LLMExplainer asks a chat-completion model to justify a verdict against the
// policy document. It is safe for concurrent use.
type LLMExplainer struct {
	client   *openai.Client
	model    string
	system   string
	policy   resilience.Policy
	observer *observability.StandardObserver
}

// NewLLMExplainer builds an LLMExplainer. The policy context is fixed at
// construction.
func NewLLMExplainer(opts LLMOptions) *LLMExplainer {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	} else {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel
	}

	return &LLMExplainer{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		system: fmt.Sprintf(systemPrompt, truncateRunes(opts.PolicyText, opts.MaxContextChars)),
		policy: opts.Policy,
	}
}

// SetObserver attaches an observer for request timing.
func (e *LLMExplainer) SetObserver(observer *observability.StandardObserver) {
	e.observer = observer
}

// Explain returns the model's answer to question.
func (e *LLMExplainer) Explain(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", errors.New("explain: empty question")
	}

	finish := e.observer.StartTiming(serviceName, "explain", "")

	var answer string
	err := e.policy.Do(ctx, func(ctx context.Context) error {
		var callErr error
		answer, callErr = e.complete(ctx, question)
		return callErr
	})
	if err != nil {
		finish(false, map[string]interface{}{
			"error":        err.Error(),
			"circuit_open": resilience.IsCircuitBreakerError(err),
		})
		return "", err
	}

	finish(true, map[string]interface{}{"answer_chars": len(answer)})
	return answer, nil
}

func (e *LLMExplainer) complete(ctx context.Context, question string) (string, error) {
	resp, err := e.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: e.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: e.system,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: question,
				},
			},
			// A literal 0 is dropped by omitempty and the server default applies.
			Temperature: math.SmallestNonzeroFloat32,
		},
	)
	if err != nil {
		return "", asStatusError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", resilience.NewTransientError("explainer returned an empty answer", nil)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// asStatusError maps go-openai HTTP failures onto resilience.StatusError so
// retryability follows the status code.
func asStatusError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &resilience.StatusError{Service: serviceName, StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &resilience.StatusError{Service: serviceName, StatusCode: reqErr.HTTPStatusCode, Body: fmt.Sprint(reqErr.Err)}
	}
	return fmt.Errorf("explainer chat completion error: %w", err)
}
