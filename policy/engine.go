// Package policy evaluates tool access decisions with OPA.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Decision values produced by the access policy.
const (
	DecisionAllow = "allow"
	DecisionDeny  = "deny"
)

// Input carries the facts the access policy decides on.
type Input struct {
	ToolName     string `json:"tool_name"`
	RequiresAuth bool   `json:"requires_auth"`
	Member       bool   `json:"member"`
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.library_access.decision"),
		rego.Module("library_access.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate checks the access policy for one tool call.
func (e *Engine) Evaluate(ctx context.Context, input Input) (string, error) {
	// rego input wants plain maps, not structs.
	raw := map[string]interface{}{
		"tool_name":     input.ToolName,
		"requires_auth": input.RequiresAuth,
		"member":        input.Member,
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(raw))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		// The policy defines a default; an empty result means it was removed.
		return "", fmt.Errorf("policy produced no decision for tool %s", input.ToolName)
	}

	decision, ok := results[0].Expressions[0].Value.(string)
	if !ok {
		return "", fmt.Errorf("policy returned non-string decision for tool %s", input.ToolName)
	}
	return decision, nil
}

// DefaultPolicy is the default access policy content: tools that require
// authorization are denied to callers without a valid membership.
const DefaultPolicy = `
package library_access

import rego.v1

default decision := "allow"

decision := "deny" if {
	input.requires_auth
	not input.member
}
`
