package search

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/domain/search/term"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

// QueryTerms lists the terms of the current query. An unparsable query has no terms.
func (s *Store) QueryTerms() []term.Term {
	q := s.State().Query
	terms, err := term.Parse(strings.ReplaceAll(q, `\@`, "@"))
	if err != nil {
		metrics.QueryParseFailuresTotal.Inc()
		s.logger.Debug("query has no terms", zap.String("query", q), zap.Error(err))
		return []term.Term{}
	}
	return terms
}

// ContentTerms lists the query terms that target document content.
func (s *Store) ContentTerms() []term.Term {
	return term.Content(s.QueryTerms())
}

// TermsInDocument counts the content terms in a document, most frequent first.
func (s *Store) TermsInDocument(doc *result.Document) []term.Occurrence {
	return term.InDocument(s.ContentTerms(), term.Fields{
		Content:  doc.Content,
		Metadata: doc.MetadataText(),
		Tags:     strings.Join(doc.Tags, " "),
	})
}

// DeleteQueryTerm removes every occurrence of a term from the query, then searches.
// An unparsable query is searched unchanged.
func (s *Store) DeleteQueryTerm(ctx context.Context, label string) (result.Set, error) {
	q := s.State().Query
	updated, err := term.DeleteFromText(q, label)
	if err != nil {
		metrics.QueryParseFailuresTotal.Inc()
		s.logger.Debug("cannot delete term from query",
			zap.String("query", q), zap.String("term", label), zap.Error(err))
		return s.Refresh(ctx)
	}
	return s.QueryText(ctx, updated)
}
