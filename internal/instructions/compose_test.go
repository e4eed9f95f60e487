package instructions

import (
	"strings"
	"testing"

	"github.com/readingroom/librarian/internal/domain"
)

func TestComposeUsesDisplayName(t *testing.T) {
	c := Composer{Scope: "library services"}

	got := c.Compose(domain.Caller{Name: "Muhammad Annas"})
	if !strings.HasPrefix(got, "Hello Muhammad Annas.") {
		t.Fatalf("expected greeting with display name, got: %q", got)
	}
}

func TestComposeDefaultsAnonymousCallers(t *testing.T) {
	c := Composer{Scope: "library services"}

	got := c.Compose(domain.Caller{})
	if !strings.HasPrefix(got, "Hello Library user.") {
		t.Fatalf("expected default greeting, got: %q", got)
	}
}

func TestComposeNeverLeaksMemberToken(t *testing.T) {
	c := Composer{Scope: "library services"}

	got := c.Compose(domain.Caller{Name: "Ali Khan", MemberToken: "M002"})
	if strings.Contains(got, "M002") {
		t.Fatalf("member token leaked into instructions: %q", got)
	}
}

func TestComposeMentionsEveryTool(t *testing.T) {
	c := Composer{Scope: "library services"}

	got := c.Compose(domain.Caller{Name: "Student"})
	for _, tool := range []string{"search_book", "check_availability", "get_library_hours"} {
		if !strings.Contains(got, tool) {
			t.Fatalf("instructions do not mention %s: %q", tool, got)
		}
	}
}
