// Package instructions builds the system prompt for the assistant.
package instructions

import (
	"fmt"

	"github.com/readingroom/librarian/internal/domain"
)

// Composer renders the system instruction text for a caller.
type Composer struct {
	// Scope is the domain description shown in the refusal policy.
	Scope string
}

// Compose returns the instruction text steering the main completion call.
// Pure: no I/O. Personalization is limited to the display name; the member
// token must never appear in the output.
func (c Composer) Compose(caller domain.Caller) string {
	name := caller.Name
	if name == "" {
		name = "Library user"
	}
	return fmt.Sprintf(
		"Hello %s. You are a helpful Library Assistant.\n"+
			"- Use search_book to find books by title.\n"+
			"- Use check_availability to report how many copies are on the shelf; it is restricted to registered members.\n"+
			"- Use get_library_hours for opening hours.\n"+
			"- Refuse politely if the request is not about %s.\n"+
			"You may call multiple tools in one turn.",
		name, c.Scope)
}
