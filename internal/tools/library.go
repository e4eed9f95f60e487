package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/readingroom/librarian/internal/domain"
	"github.com/readingroom/librarian/internal/store"
)

// AvailabilityDenied is returned by check_availability when the caller is
// not a registered member. Callers can match it exactly.
const AvailabilityDenied = "Access denied: availability check is for registered members only."

const (
	searchBookSchema = `{
		"type": "object",
		"properties": {
			"query": {"type": "string", "description": "Partial book title to search for"}
		},
		"required": ["query"],
		"additionalProperties": false
	}`

	checkAvailabilitySchema = `{
		"type": "object",
		"properties": {
			"book_title": {"type": "string", "description": "Exact book title to check"}
		},
		"required": ["book_title"],
		"additionalProperties": false
	}`

	libraryHoursSchema = `{
		"type": "object",
		"properties": {},
		"additionalProperties": false
	}`
)

// RegisterLibraryTools adds the library tools to the registry: book search
// and hours are open reads, availability is members-only.
func RegisterLibraryTools(r *Registry, catalog store.Catalog, hours string) error {
	defs := []Definition{
		{
			Name:        "search_book",
			Description: "Search books by partial title match and return matching titles.",
			Parameters:  json.RawMessage(searchBookSchema),
			Handler:     searchBook(catalog),
		},
		{
			Name:         "check_availability",
			Description:  "Check how many copies of a book are available (registered members only).",
			Parameters:   json.RawMessage(checkAvailabilitySchema),
			RequiresAuth: true,
			DenialText:   AvailabilityDenied,
			Handler:      checkAvailability(catalog),
		},
		{
			Name:        "get_library_hours",
			Description: "Return the library opening hours.",
			Parameters:  json.RawMessage(libraryHoursSchema),
			Handler:     libraryHours(hours),
		},
	}

	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func searchBook(catalog store.Catalog) Handler {
	return func(ctx context.Context, caller domain.Caller, raw json.RawMessage) (string, error) {
		var args struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal(raw, &args); err != nil {
			return "", fmt.Errorf("parse search_book arguments: %w", err)
		}

		matches, err := catalog.Search(ctx, strings.TrimSpace(args.Query))
		if err != nil {
			return "", err
		}
		if len(matches) == 0 {
			return fmt.Sprintf("No books found matching '%s'.", args.Query), nil
		}
		return "Found: " + strings.Join(matches, ", "), nil
	}
}

func checkAvailability(catalog store.Catalog) Handler {
	return func(ctx context.Context, caller domain.Caller, raw json.RawMessage) (string, error) {
		var args struct {
			BookTitle string `json:"book_title"`
		}
		if err := json.Unmarshal(raw, &args); err != nil {
			return "", fmt.Errorf("parse check_availability arguments: %w", err)
		}

		copies, found, err := catalog.Lookup(ctx, args.BookTitle)
		if err != nil {
			return "", err
		}
		// "not in the catalog" and "no copies on the shelf" are different
		// answers and must stay distinguishable.
		if !found {
			return fmt.Sprintf("Book '%s' not found in catalog.", args.BookTitle), nil
		}
		if copies == 0 {
			return fmt.Sprintf("'%s' is currently not available (0 copies).", args.BookTitle), nil
		}
		return fmt.Sprintf("'%s' — %d copies available.", args.BookTitle, copies), nil
	}
}

func libraryHours(hours string) Handler {
	return func(ctx context.Context, caller domain.Caller, raw json.RawMessage) (string, error) {
		return hours, nil
	}
}
