package db

import "github.com/kailas-cloud/docsearch/internal/domain/search/filter"

// TextQuery is the input for a full-text FT.SEARCH.
type TextQuery struct {
	IndexName string
	// Query is RediSearch query syntax; empty matches every document.
	Query        string
	Filters      filter.Composite
	Offset       int
	Limit        int
	SortBy       string
	SortAsc      bool
	ReturnFields []string
	WithScores   bool
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// AggregateQuery counts documents grouped by one field via FT.AGGREGATE.
type AggregateQuery struct {
	IndexName string
	Query     string
	Filters   filter.Composite
	GroupBy   string
	// Apply replaces the group key by an expression over GroupBy, e.g. a month truncation.
	Apply  string
	Offset int
	Limit  int
}

// AggregateResult holds count buckets ordered by descending count.
type AggregateResult struct {
	Total   int
	Buckets []AggregateBucket
}

// AggregateBucket is a group key with its document count.
type AggregateBucket struct {
	Key   string
	Count int
}
