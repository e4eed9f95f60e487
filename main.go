package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/readingroom/librarian/config"
	"github.com/readingroom/librarian/internal/adapter/llm"
	"github.com/readingroom/librarian/internal/domain"
	"github.com/readingroom/librarian/internal/guardrail"
	"github.com/readingroom/librarian/internal/instructions"
	"github.com/readingroom/librarian/internal/runner"
	"github.com/readingroom/librarian/internal/store"
	"github.com/readingroom/librarian/internal/tools"
	handler "github.com/readingroom/librarian/internal/transport/http"
	"github.com/readingroom/librarian/policy"
)

func main() {
	demo := flag.Bool("demo", false, "run the example queries and exit")
	flag.Parse()

	cfg := config.Load()

	log.Printf("Starting library assistant...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("Guardrail fail mode: %s", cfg.GuardrailFailMode)

	lib, err := config.LoadLibrary(cfg.LibraryFile)
	if err != nil {
		log.Fatalf("Failed to load library seed data: %v", err)
	}

	db, err := store.NewSQLiteStore(cfg.DatabaseURL, lib)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	client := llm.NewCompletionClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMTimeout, cfg.LLMMaxRetries)

	ctx := context.Background()
	engine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	registry := tools.NewRegistry(engine, db)
	if err := tools.RegisterLibraryTools(registry, db, lib.Hours); err != nil {
		log.Fatalf("Failed to register library tools: %v", err)
	}

	classifier, err := guardrail.NewClassifier(client, cfg.GuardrailModel, lib.DomainScope, cfg.GuardrailFailMode)
	if err != nil {
		log.Fatalf("Failed to initialize guardrail classifier: %v", err)
	}

	composer := instructions.Composer{Scope: lib.DomainScope}
	run := runner.New(client, classifier, composer, registry, cfg.Model, cfg.MaxTurns)

	if *demo {
		runDemo(ctx, run)
		return
	}

	h := handler.NewHandler(run, registry)
	server := handler.NewServer(h)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("API started on port %d", cfg.HTTPPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down library assistant...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Library assistant stopped")
}

// runDemo runs the example queries and prints the results.
func runDemo(ctx context.Context, run *runner.Runner) {
	queries := []struct {
		request string
		caller  domain.Caller
	}{
		{
			request: "Search for 'Clean Code' and tell me how many copies are available.",
			caller:  domain.Caller{Name: "Muhammad Annas", MemberToken: "M001"},
		},
		{
			request: "What's the weather in Karachi today?",
			caller:  domain.Caller{Name: "Visitor"},
		},
		{
			request: "Do you have 'The Pragmatic Programmer'? If yes, check copies.",
			caller:  domain.Caller{Name: "Guest User"},
		},
		{
			request: "What are the library timings?",
			caller:  domain.Caller{Name: "Student"},
		},
	}

	for _, q := range queries {
		fmt.Println("\n====")
		fmt.Println("Query:", q.request)
		answer := run.Run(ctx, q.request, q.caller)
		fmt.Printf("Result (%s): %s\n", answer.Kind, answer.Text)
		if answer.Detail != "" {
			fmt.Println("Detail:", answer.Detail)
		}
	}

	fmt.Println("\nFinished demo.")
}
