package guardrail

import (
	"context"
	"errors"
	"testing"

	"github.com/readingroom/librarian/config"
	"github.com/readingroom/librarian/internal/adapter/llm"
	"github.com/readingroom/librarian/internal/domain"
)

type scriptedClient struct {
	content string
	err     error
	calls   int
	lastReq *llm.ChatCompletionRequest
}

func (s *scriptedClient) CreateChatCompletion(ctx context.Context, req *llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &llm.ChatCompletionResponse{
		Choices: []llm.Choice{
			{Message: &llm.ChatMessage{Role: "assistant", Content: s.content}},
		},
	}, nil
}

func newTestClassifier(t *testing.T, client llm.CompletionClient, mode config.FailMode) *Classifier {
	t.Helper()
	c, err := NewClassifier(client, "test-model", "library services", mode)
	if err != nil {
		t.Fatalf("NewClassifier failed: %v", err)
	}
	return c
}

func TestClassifyParsesVerdict(t *testing.T) {
	client := &scriptedClient{content: `{"in_domain": false, "reason": "asks about cooking"}`}
	c := newTestClassifier(t, client, config.FailClosed)

	verdict, err := c.Classify(context.Background(), "best pasta recipe?", domain.Caller{Name: "Visitor"})
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if verdict.InDomain {
		t.Fatalf("expected out-of-domain verdict")
	}
	if verdict.Reason != "asks about cooking" {
		t.Fatalf("unexpected reason: %q", verdict.Reason)
	}
	if client.calls != 1 {
		t.Fatalf("expected exactly one classification call, got %d", client.calls)
	}
	if client.lastReq.ResponseFormat == nil {
		t.Fatalf("classification call did not request structured output")
	}
}

func TestClassifyFailClosedOnClientError(t *testing.T) {
	client := &scriptedClient{err: errors.New("upstream down")}
	c := newTestClassifier(t, client, config.FailClosed)

	_, err := c.Classify(context.Background(), "any books on habits?", domain.Caller{})
	if err == nil {
		t.Fatalf("expected error in fail-closed mode")
	}
}

func TestClassifyFailOpenOnClientError(t *testing.T) {
	client := &scriptedClient{err: errors.New("upstream down")}
	c := newTestClassifier(t, client, config.FailOpen)

	verdict, err := c.Classify(context.Background(), "any books on habits?", domain.Caller{})
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if !verdict.InDomain {
		t.Fatalf("fail-open must let the request proceed")
	}
}

func TestClassifyRejectsMalformedOutput(t *testing.T) {
	for _, content := range []string{
		"definitely about the library",
		`{"reason": "missing the verdict field"}`,
		`{"in_domain": "yes"}`,
	} {
		client := &scriptedClient{content: content}
		c := newTestClassifier(t, client, config.FailClosed)

		_, err := c.Classify(context.Background(), "library hours?", domain.Caller{})
		if err == nil {
			t.Fatalf("expected error for output %q", content)
		}
	}
}

func TestClassifyFailOpenOnMalformedOutput(t *testing.T) {
	client := &scriptedClient{content: "not json"}
	c := newTestClassifier(t, client, config.FailOpen)

	verdict, err := c.Classify(context.Background(), "library hours?", domain.Caller{})
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if !verdict.InDomain {
		t.Fatalf("fail-open must let the request proceed")
	}
}

func TestClassifyNeverSwallowsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &scriptedClient{err: ctx.Err()}
	c := newTestClassifier(t, client, config.FailOpen)

	_, err := c.Classify(ctx, "library hours?", domain.Caller{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
