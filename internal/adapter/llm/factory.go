package llm

import (
	"log"
	"os"
	"time"
)

const (
	// EnvLibrarianMode is the environment variable name for mode selection.
	EnvLibrarianMode = "LIBRARIAN_MODE"
	// ModeMock indicates mock mode should be used.
	ModeMock = "MOCK"
)

// NewCompletionClient creates a completion client based on the LIBRARIAN_MODE
// environment variable. If LIBRARIAN_MODE=MOCK, returns a MockClient;
// otherwise returns a real Client.
func NewCompletionClient(baseURL, apiKey string, timeout time.Duration, maxRetries int) CompletionClient {
	if os.Getenv(EnvLibrarianMode) == ModeMock {
		log.Println("LIBRARIAN_MODE=MOCK detected, using mock completion client")
		return NewMockClient()
	}
	return NewClient(baseURL, apiKey, timeout, maxRetries)
}
