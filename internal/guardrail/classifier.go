// Package guardrail classifies inbound requests before any tool can run.
package guardrail

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/readingroom/librarian/config"
	"github.com/readingroom/librarian/internal/adapter/llm"
	"github.com/readingroom/librarian/internal/domain"
)

// verdictSchema is the contract the classifier's structured output must meet.
// Output that does not validate is handled by the configured fail mode, never
// by best-effort field probing.
const verdictSchema = `{
	"type": "object",
	"properties": {
		"in_domain": {"type": "boolean"},
		"reason": {"type": "string"}
	},
	"required": ["in_domain"],
	"additionalProperties": false
}`

// Classifier decides whether a request is in-domain with a single structured
// completion call. It has no tool access.
type Classifier struct {
	client   llm.CompletionClient
	model    string
	scope    string
	failMode config.FailMode
	schema   *jsonschema.Schema
}

// NewClassifier creates a classifier for the given domain scope.
func NewClassifier(client llm.CompletionClient, model, scope string, failMode config.FailMode) (*Classifier, error) {
	var doc interface{}
	if err := json.Unmarshal([]byte(verdictSchema), &doc); err != nil {
		return nil, fmt.Errorf("parse verdict schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("verdict.json", doc); err != nil {
		return nil, fmt.Errorf("add verdict schema resource: %w", err)
	}
	schema, err := c.Compile("verdict.json")
	if err != nil {
		return nil, fmt.Errorf("compile verdict schema: %w", err)
	}

	return &Classifier{
		client:   client,
		model:    model,
		scope:    scope,
		failMode: failMode,
		schema:   schema,
	}, nil
}

// Classify issues exactly one classification call. The caller is passed
// through for logging only; it plays no part in the verdict. When the
// classifier itself fails, the configured fail mode decides: open returns an
// in-domain verdict, closed returns the error for the runner to reject on.
func (c *Classifier) Classify(ctx context.Context, request string, caller domain.Caller) (domain.GuardrailVerdict, error) {
	instruction := fmt.Sprintf(
		"Classify whether the user's message is about %s. "+
			"Respond with a JSON object with a boolean `in_domain` and an optional string `reason`.",
		c.scope)

	req := &llm.ChatCompletionRequest{
		Model: c.model,
		Messages: []llm.ChatMessage{
			{Role: "system", Content: instruction},
			{Role: "user", Content: request},
		},
		ResponseFormat: map[string]interface{}{"type": "json_object"},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return c.fallback(ctx, caller, fmt.Errorf("classification call failed: %w", err))
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil {
		return c.fallback(ctx, caller, fmt.Errorf("classification returned no choices"))
	}

	content := resp.Choices[0].Message.Content

	var doc interface{}
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return c.fallback(ctx, caller, fmt.Errorf("classifier output is not valid JSON: %w", err))
	}
	if err := c.schema.Validate(doc); err != nil {
		return c.fallback(ctx, caller, fmt.Errorf("classifier output does not match verdict schema: %w", err))
	}

	var verdict domain.GuardrailVerdict
	if err := json.Unmarshal([]byte(content), &verdict); err != nil {
		return c.fallback(ctx, caller, fmt.Errorf("decode verdict: %w", err))
	}
	return verdict, nil
}

// fallback applies the configured fail mode. Cancellation is never swallowed
// into a verdict.
func (c *Classifier) fallback(ctx context.Context, caller domain.Caller, cause error) (domain.GuardrailVerdict, error) {
	if ctx.Err() != nil {
		return domain.GuardrailVerdict{}, ctx.Err()
	}
	if c.failMode == config.FailOpen {
		log.Printf("WARN: guardrail failing open for caller %q: %v", caller.Name, cause)
		return domain.GuardrailVerdict{InDomain: true, Reason: "classifier unavailable"}, nil
	}
	return domain.GuardrailVerdict{}, cause
}
