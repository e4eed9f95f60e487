// Package runner drives one request through the guardrail and the
// completion/tool-dispatch loop.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/readingroom/librarian/internal/adapter/llm"
	"github.com/readingroom/librarian/internal/domain"
	"github.com/readingroom/librarian/internal/guardrail"
	"github.com/readingroom/librarian/internal/instructions"
	"github.com/readingroom/librarian/internal/tools"
)

// User-visible texts for non-answer outcomes. Tests branch on Kind; these are
// only what a person reads.
const (
	rejectedText   = "Sorry, I can only help with library-related questions."
	classifierText = "Sorry, I could not process your request right now. Please try again."
	toolErrorText  = "Sorry, something went wrong while handling your request."
	turnLimitText  = "Sorry, I could not finish your request. Please try a simpler question."
	cancelledText  = "The request was cancelled."
)

// Runner executes the orchestration state machine:
// START -> GUARDRAIL_CHECK -> {REJECTED | DISPATCHING} -> DONE.
type Runner struct {
	client     llm.CompletionClient
	classifier *guardrail.Classifier
	composer   instructions.Composer
	registry   *tools.Registry
	model      string
	maxTurns   int
}

// New creates a runner. maxTurns bounds the completion/tool loop; the
// completion service controls when the loop ends otherwise, so the cap is the
// only termination guarantee.
func New(client llm.CompletionClient, classifier *guardrail.Classifier, composer instructions.Composer, registry *tools.Registry, model string, maxTurns int) *Runner {
	if maxTurns < 1 {
		maxTurns = 1
	}
	return &Runner{
		client:     client,
		classifier: classifier,
		composer:   composer,
		registry:   registry,
		model:      model,
		maxTurns:   maxTurns,
	}
}

// Run processes one request for one caller and blocks until a FinalAnswer is
// produced. The caller and all intermediate tool results are discarded after
// the answer; nothing is persisted across runs.
func (r *Runner) Run(ctx context.Context, request string, caller domain.Caller) domain.FinalAnswer {
	runID := "run_" + uuid.New().String()[:8]

	verdict, err := r.classifier.Classify(ctx, request, caller)
	if err != nil {
		if ctx.Err() != nil {
			return cancelledAnswer(ctx)
		}
		log.Printf("ERROR: [%s] guardrail classifier failed: %v", runID, err)
		return domain.FinalAnswer{
			Kind:   domain.AnswerKindClassifierError,
			Text:   classifierText,
			Detail: err.Error(),
		}
	}
	if !verdict.InDomain {
		// Tripwire: the run stops here, before instruction composition and
		// before any tool is reachable.
		log.Printf("INFO: [%s] guardrail rejected request: %s", runID, verdict.Reason)
		return domain.FinalAnswer{
			Kind:   domain.AnswerKindRejected,
			Text:   rejectedText,
			Detail: verdict.Reason,
		}
	}

	messages := []llm.ChatMessage{
		{Role: "system", Content: r.composer.Compose(caller)},
		{Role: "user", Content: request},
	}
	descriptors := r.registry.Descriptors()

	for turn := 0; turn < r.maxTurns; turn++ {
		if ctx.Err() != nil {
			return cancelledAnswer(ctx)
		}

		resp, err := r.client.CreateChatCompletion(ctx, &llm.ChatCompletionRequest{
			Model:    r.model,
			Messages: messages,
			Tools:    descriptors,
		})
		if err != nil {
			if ctx.Err() != nil {
				return cancelledAnswer(ctx)
			}
			log.Printf("ERROR: [%s] completion call failed: %v", runID, err)
			return toolErrorAnswer(fmt.Sprintf("completion call failed: %v", err))
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message == nil {
			return toolErrorAnswer("completion returned no choices")
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return domain.FinalAnswer{Kind: domain.AnswerKindAnswer, Text: msg.Content}
		}

		// Validate the whole batch against the catalog before executing any
		// of it: an unknown name is a contract violation, not a retry.
		calls := make([]domain.ToolCallRequest, len(msg.ToolCalls))
		for i, tc := range msg.ToolCalls {
			if !r.registry.Has(tc.Function.Name) {
				log.Printf("ERROR: [%s] completion requested unknown tool %q", runID, tc.Function.Name)
				return toolErrorAnswer(fmt.Sprintf("unknown tool: %s", tc.Function.Name))
			}
			calls[i] = domain.ToolCallRequest{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: json.RawMessage(tc.Function.Arguments),
			}
		}

		results := r.dispatch(ctx, runID, caller, calls)
		if ctx.Err() != nil {
			return cancelledAnswer(ctx)
		}

		messages = append(messages, *msg)
		for _, res := range results {
			messages = append(messages, llm.ChatMessage{
				Role:       "tool",
				Content:    res.Output,
				ToolCallID: res.ID,
			})
		}
	}

	log.Printf("ERROR: [%s] no final answer after %d turns", runID, r.maxTurns)
	return domain.FinalAnswer{
		Kind:   domain.AnswerKindIterationLimit,
		Text:   turnLimitText,
		Detail: fmt.Sprintf("no final answer after %d turns", r.maxTurns),
	}
}

func toolErrorAnswer(detail string) domain.FinalAnswer {
	return domain.FinalAnswer{
		Kind:   domain.AnswerKindToolError,
		Text:   toolErrorText,
		Detail: detail,
	}
}

func cancelledAnswer(ctx context.Context) domain.FinalAnswer {
	return domain.FinalAnswer{
		Kind:   domain.AnswerKindCancelled,
		Text:   cancelledText,
		Detail: ctx.Err().Error(),
	}
}
