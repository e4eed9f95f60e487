// Package tools implements the tool catalog and its authorization boundary.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/readingroom/librarian/internal/adapter/llm"
	"github.com/readingroom/librarian/internal/domain"
	"github.com/readingroom/librarian/internal/store"
	"github.com/readingroom/librarian/policy"
)

// ErrUnknownTool reports a tool name the catalog does not know. The runner
// treats it as a contract violation and aborts the run.
var ErrUnknownTool = errors.New("unknown tool")

// Handler executes one tool call on behalf of a caller.
type Handler func(ctx context.Context, caller domain.Caller, args json.RawMessage) (string, error)

// Definition describes a tool exposed to the completion service.
type Definition struct {
	Name         string
	Description  string
	Parameters   json.RawMessage // JSON schema for the arguments
	RequiresAuth bool
	DenialText   string // returned instead of executing when authorization is denied
	Handler      Handler
}

// Registry stores tool definitions keyed by name. It is built once at process
// start and read-only during runs. Authorization for RequiresAuth tools is
// enforced here, inside the handler boundary, so a model tricked into calling
// a restricted tool still cannot reach its handler.
type Registry struct {
	mu      sync.RWMutex
	defs    map[string]Definition
	order   []string
	schemas map[string]*jsonschema.Schema
	engine  *policy.Engine
	members store.Members
}

// NewRegistry creates an empty registry backed by the given access policy
// engine and member registry.
func NewRegistry(engine *policy.Engine, members store.Members) *Registry {
	return &Registry{
		defs:    make(map[string]Definition),
		schemas: make(map[string]*jsonschema.Schema),
		engine:  engine,
		members: members,
	}
}

// Register adds a tool definition. Names must be unique.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if def.Handler == nil {
		return fmt.Errorf("handler is required for %s", def.Name)
	}

	schema, err := compileSchema(def.Name, def.Parameters)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.Name]; exists {
		return fmt.Errorf("tool already registered for %s", def.Name)
	}
	r.defs[def.Name] = def
	r.order = append(r.order, def.Name)
	if schema != nil {
		r.schemas[def.Name] = schema
	}
	return nil
}

// MustRegister adds a tool definition or panics.
func (r *Registry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Has reports whether the catalog knows the tool name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.defs[name]
	return ok
}

// Descriptors renders the catalog as completion-service tool definitions,
// in registration order.
func (r *Registry) Descriptors() []llm.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptors := make([]llm.Tool, 0, len(r.order))
	for _, name := range r.order {
		def := r.defs[name]
		var params interface{}
		if len(def.Parameters) > 0 {
			params = json.RawMessage(def.Parameters)
		}
		descriptors = append(descriptors, llm.Tool{
			Type: "function",
			Function: llm.ToolFunction{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  params,
			},
		})
	}
	return descriptors
}

// Execute validates and runs one tool call.
//
// Unknown names return ErrUnknownTool. Invalid arguments and handler failures
// return an error the runner folds into a failed result. A denied
// authorization check returns the tool's denial text without invoking the
// handler; the run continues.
func (r *Registry) Execute(ctx context.Context, caller domain.Caller, name string, args json.RawMessage) (string, error) {
	r.mu.RLock()
	def, ok := r.defs[name]
	schema := r.schemas[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	if schema != nil {
		if err := validateArgs(schema, args); err != nil {
			return "", fmt.Errorf("invalid arguments for %s: %w", name, err)
		}
	}

	if def.RequiresAuth {
		denied, err := r.authorize(ctx, caller, def)
		if err != nil {
			return "", err
		}
		if denied {
			return def.DenialText, nil
		}
	}

	return def.Handler(ctx, caller, args)
}

// authorize consults the member registry and the access policy. Membership
// lookup failures count as "not a member" so an outage cannot widen access.
func (r *Registry) authorize(ctx context.Context, caller domain.Caller, def Definition) (denied bool, err error) {
	member := false
	if caller.MemberToken != "" {
		ok, err := r.members.IsValidToken(ctx, caller.MemberToken)
		if err != nil {
			return false, fmt.Errorf("check membership for %s: %w", def.Name, err)
		}
		member = ok
	}

	decision, err := r.engine.Evaluate(ctx, policy.Input{
		ToolName:     def.Name,
		RequiresAuth: def.RequiresAuth,
		Member:       member,
	})
	if err != nil {
		return false, err
	}
	return decision == policy.DecisionDeny, nil
}

func compileSchema(name string, raw json.RawMessage) (*jsonschema.Schema, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parameters schema for %s is not valid JSON: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	resource := name + ".json"
	if err := c.AddResource(resource, doc); err != nil {
		return nil, fmt.Errorf("add schema resource for %s: %w", name, err)
	}
	schema, err := c.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("compile schema for %s: %w", name, err)
	}
	return schema, nil
}

func validateArgs(schema *jsonschema.Schema, args json.RawMessage) error {
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	var doc interface{}
	if err := json.Unmarshal(args, &doc); err != nil {
		return fmt.Errorf("arguments are not valid JSON: %w", err)
	}
	return schema.Validate(doc)
}
