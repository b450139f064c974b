package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker reports whether a document index is searchable.
type IndexChecker interface {
	IndexExists(ctx context.Context, index string) (bool, error)
}

// SearchModuleChecker is implemented by databases that can lack full-text search.
type SearchModuleChecker interface {
	SupportsTextSearch(ctx context.Context) bool
}
