package tools

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/readingroom/librarian/internal/domain"
	"github.com/readingroom/librarian/policy"
)

type fakeMembers struct {
	valid map[string]bool
}

func (f fakeMembers) IsValidToken(ctx context.Context, token string) (bool, error) {
	return f.valid[token], nil
}

func (f fakeMembers) MemberName(ctx context.Context, token string) (string, error) {
	return "", nil
}

func newTestRegistry(t *testing.T, members fakeMembers) *Registry {
	t.Helper()
	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return NewRegistry(engine, members)
}

func countingHandler(counter *atomic.Int64, output string) Handler {
	return func(ctx context.Context, caller domain.Caller, args json.RawMessage) (string, error) {
		counter.Add(1)
		return output, nil
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := newTestRegistry(t, fakeMembers{})
	var count atomic.Int64

	def := Definition{Name: "echo", Handler: countingHandler(&count, "ok")}
	if err := r.Register(def); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(def); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	r := newTestRegistry(t, fakeMembers{})

	_, err := r.Execute(context.Background(), domain.Caller{}, "nope", nil)
	if !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
}

func TestExecuteValidatesArguments(t *testing.T) {
	r := newTestRegistry(t, fakeMembers{})
	var count atomic.Int64

	r.MustRegister(Definition{
		Name: "strict",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {"query": {"type": "string"}},
			"required": ["query"],
			"additionalProperties": false
		}`),
		Handler: countingHandler(&count, "ok"),
	})

	_, err := r.Execute(context.Background(), domain.Caller{}, "strict", json.RawMessage(`{}`))
	if err == nil {
		t.Fatalf("expected schema validation error")
	}
	if count.Load() != 0 {
		t.Fatalf("handler ran despite invalid arguments")
	}

	out, err := r.Execute(context.Background(), domain.Caller{}, "strict", json.RawMessage(`{"query":"x"}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out != "ok" || count.Load() != 1 {
		t.Fatalf("unexpected execution: out=%q count=%d", out, count.Load())
	}
}

func TestExecuteDeniesUnauthorizedCallers(t *testing.T) {
	r := newTestRegistry(t, fakeMembers{valid: map[string]bool{"M001": true}})
	var count atomic.Int64

	r.MustRegister(Definition{
		Name:         "restricted",
		RequiresAuth: true,
		DenialText:   "Access denied: availability check is for registered members only.",
		Handler:      countingHandler(&count, "secret"),
	})

	// No token: denied at the handler boundary, handler never runs.
	out, err := r.Execute(context.Background(), domain.Caller{Name: "Guest User"}, "restricted", nil)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out != "Access denied: availability check is for registered members only." {
		t.Fatalf("unexpected denial text: %q", out)
	}
	if count.Load() != 0 {
		t.Fatalf("handler ran for unauthorized caller")
	}

	// Invalid token: same outcome.
	out, err = r.Execute(context.Background(), domain.Caller{MemberToken: "bogus"}, "restricted", nil)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out != "Access denied: availability check is for registered members only." || count.Load() != 0 {
		t.Fatalf("expected denial for invalid token, got %q (count=%d)", out, count.Load())
	}

	// Registered member: handler executes.
	out, err = r.Execute(context.Background(), domain.Caller{MemberToken: "M001"}, "restricted", nil)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out != "secret" || count.Load() != 1 {
		t.Fatalf("expected handler to run for member, got %q (count=%d)", out, count.Load())
	}
}

func TestDescriptorsPreserveRegistrationOrder(t *testing.T) {
	r := newTestRegistry(t, fakeMembers{})
	var count atomic.Int64

	for _, name := range []string{"alpha", "beta", "gamma"} {
		r.MustRegister(Definition{Name: name, Handler: countingHandler(&count, name)})
	}

	descriptors := r.Descriptors()
	if len(descriptors) != 3 {
		t.Fatalf("expected 3 descriptors, got %d", len(descriptors))
	}
	for i, want := range []string{"alpha", "beta", "gamma"} {
		if descriptors[i].Function.Name != want {
			t.Fatalf("descriptor %d: expected %s, got %s", i, want, descriptors[i].Function.Name)
		}
		if descriptors[i].Type != "function" {
			t.Fatalf("descriptor %d: expected type function, got %s", i, descriptors[i].Type)
		}
	}
}
