// Package store persists the book catalog and the member registry.
package store

import "context"

// Catalog is a read-only view of the book catalog.
type Catalog interface {
	// Lookup returns the number of copies for an exact title.
	// found is false when the title is not in the catalog at all;
	// a present title with zero copies reports (0, true, nil).
	Lookup(ctx context.Context, title string) (copies int, found bool, err error)

	// Search returns titles containing the query, case-insensitively.
	Search(ctx context.Context, query string) ([]string, error)
}

// Members answers membership questions for authorization.
type Members interface {
	IsValidToken(ctx context.Context, token string) (bool, error)
	MemberName(ctx context.Context, token string) (string, error)
}

// Store combines the catalog and member views over one backing database.
type Store interface {
	Catalog
	Members
	Close() error
}
