package runner

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/readingroom/librarian/internal/domain"
)

// dispatch runs one turn's tool calls concurrently and reassembles the
// results by request index, so the order reported back to the completion
// service matches the order it asked in, regardless of completion order.
// Handler failures become failed results; they never abort the run.
func (r *Runner) dispatch(ctx context.Context, runID string, caller domain.Caller, calls []domain.ToolCallRequest) []domain.ToolCallResult {
	results := make([]domain.ToolCallResult, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call domain.ToolCallRequest) {
			defer wg.Done()
			output, err := r.registry.Execute(ctx, caller, call.Name, call.Arguments)
			if err != nil {
				log.Printf("WARN: [%s] tool %s failed: %v", runID, call.Name, err)
				results[i] = domain.ToolCallResult{
					ID:        call.ID,
					Name:      call.Name,
					Output:    errorOutput(err),
					Succeeded: false,
				}
				return
			}
			results[i] = domain.ToolCallResult{
				ID:        call.ID,
				Name:      call.Name,
				Output:    output,
				Succeeded: true,
			}
		}(i, call)
	}
	wg.Wait()

	return results
}

// errorOutput folds a handler error into the JSON the model sees.
func errorOutput(err error) string {
	b, marshalErr := json.Marshal(map[string]string{"error": err.Error()})
	if marshalErr != nil {
		return `{"error":"tool execution failed"}`
	}
	return string(b)
}
