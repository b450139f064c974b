package search

import (
	"context"

	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

// Backend executes searches against a document index.
type Backend interface {
	Search(ctx context.Context, req *request.Request) (result.Raw, error)
	SearchFilterAggregation(ctx context.Context, agg *request.Aggregation) (result.Raw, error)
}

// StarTagger stars and unstars documents of an index.
type StarTagger interface {
	StarDocuments(ctx context.Context, index string, ids []string) error
	UnstarDocuments(ctx context.Context, index string, ids []string) error
	StarredDocuments(ctx context.Context, index string) ([]string, error)
}

// DownloadPolicy tells whether documents of an index may be downloaded.
type DownloadPolicy interface {
	IsDownloadAllowed(ctx context.Context, index string) (bool, error)
}
