package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/docsearch/internal/domain/search/facet"
	"github.com/kailas-cloud/docsearch/internal/domain/search/highlight"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/domain/search/term"
	"github.com/kailas-cloud/docsearch/internal/usecase/search"
)

const snippetRunes = 240

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	summaryStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("32")).
			Margin(0, 0, 1, 0)

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	// termColors cycle over the query terms, in occurrence order.
	termColors = []lipgloss.Color{"226", "51", "213", "118", "208", "141"}
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search documents and print highlighted results",
	Long: `Searches an index with the query language:
  paris AND (london OR berlin) -draft path:report* content:"annual report"~2

Filters use the names of the filter panel, for instance:
  --filter contentType=application/pdf --filter tags=urgent --exclude tags`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.String("index", "", "index to search (default from config)")
	f.StringArray("filter", nil, "filter value as name=value, repeatable")
	f.StringArray("exclude", nil, "filter whose values are excluded, repeatable")
	f.Int("from", 0, "offset of the first result")
	f.Int("size", 0, "page size (default from config)")
	f.String("sort", "", "sort order: relevance, dateNewest, dateOldest, path...")
	f.String("field", "", "field set searched by terms without a field")
	f.String("buckets", "", "print the buckets of a filter instead of documents")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	params, err := searchParams(cmd, args)
	if err != nil {
		return err
	}
	bucketsOf, _ := cmd.Flags().GetString("buckets")

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	client, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	session := client.Session()
	session.UpdateFromRouteParams(params)
	if _, err := session.LoadStarredDocuments(ctx); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if bucketsOf != "" {
		set, err := session.QueryFilter(ctx, bucketsOf, search.FilterQuery{})
		if err != nil {
			return err
		}
		f, _ := session.State().Filters.Find(bucketsOf)
		renderBuckets(out, f, set.Aggregation(bucketsOf))
		return nil
	}

	set, err := session.Refresh(ctx)
	if err != nil {
		return err
	}
	renderResults(out, session, set)
	return nil
}

// searchParams encodes the command line as session route parameters.
func searchParams(cmd *cobra.Command, args []string) (url.Values, error) {
	params := url.Values{}
	if len(args) > 0 {
		params.Set(search.ParamQuery, args[0])
	}
	for flag, key := range map[string]string{
		"index": search.ParamIndex,
		"sort":  search.ParamSort,
		"field": search.ParamField,
	} {
		if v, _ := cmd.Flags().GetString(flag); v != "" {
			params.Set(key, v)
		}
	}
	if from, _ := cmd.Flags().GetInt("from"); from > 0 {
		params.Set(search.ParamFrom, strconv.Itoa(from))
	}
	if size, _ := cmd.Flags().GetInt("size"); size > 0 {
		params.Set(search.ParamSize, strconv.Itoa(size))
	}

	filters, _ := cmd.Flags().GetStringArray("filter")
	excludes, _ := cmd.Flags().GetStringArray("exclude")
	if err := filterParams(params, filters, excludes); err != nil {
		return nil, err
	}
	return params, nil
}

func filterParams(params url.Values, filters, excludes []string) error {
	excluded := map[string]bool{}
	for _, name := range excludes {
		excluded[name] = true
	}
	for _, f := range filters {
		name, value, ok := strings.Cut(f, "=")
		if !ok || name == "" || value == "" {
			return fmt.Errorf("invalid filter %q, expected name=value", f)
		}
		key := facet.RouteKey(name, excluded[name])
		params[key] = append(params[key], value)
	}
	return nil
}

func renderResults(out io.Writer, session *search.Store, set result.Set) {
	st := session.State()
	docs := set.Documents()
	if len(docs) == 0 {
		fmt.Fprintln(out, noDataStyle.Render("No documents found."))
		return
	}

	last := st.From + len(set.Hits())
	fmt.Fprintln(out, summaryStyle.Render(
		fmt.Sprintf("%d documents, showing %d-%d", set.Total(), st.From+1, last)))

	for _, doc := range docs {
		title := path.Base(doc.Path)
		if doc.Path == "" {
			title = doc.ID()
		}
		if st.IsStarred(doc.ID()) {
			title = "★ " + title
		}
		fmt.Fprintln(out, titleStyle.Render(title))
		fmt.Fprintln(out, metaStyle.Render(documentMeta(doc)))

		occurrences := session.TermsInDocument(doc)
		fmt.Fprintln(out, snippet(doc.Content, occurrences))
		if counts := termCounts(occurrences); counts != "" {
			fmt.Fprintln(out, metaStyle.Render(counts))
		}
		fmt.Fprintln(out)
	}
}

func documentMeta(doc *result.Document) string {
	parts := []string{doc.Path}
	if doc.ContentType != "" {
		label := doc.ContentType
		if l, ok := facet.ContentTypeLabels[doc.ContentType]; ok {
			label = l
		}
		parts = append(parts, label)
	}
	if doc.Language != "" {
		parts = append(parts, strings.ToLower(doc.Language))
	}
	if !doc.CreationDate.IsZero() {
		parts = append(parts, doc.CreationDate.Format("2006-01-02"))
	}
	return strings.Join(parts, " · ")
}

// snippet cuts the content around the first term occurrence and colors every term.
func snippet(content string, occurrences []term.Occurrence) string {
	text := strings.Join(strings.Fields(content), " ")
	marks := term.Marks(occurrences, text)
	runes := []rune(text)
	start := 0
	if len(marks) > 0 {
		start = max(marks[0].Index-snippetRunes/4, 0)
	}
	end := min(start+snippetRunes, len(runes))
	window := string(runes[start:end])
	if start > 0 {
		window = "…" + window
	}
	if end < len(runes) {
		window += "…"
	}
	return highlight.Highlight(window, term.Marks(occurrences, window),
		highlight.WithMarkFormatter(terminalMark))
}

func terminalMark(m highlight.Mark) string {
	i, _ := strconv.Atoi(strings.TrimPrefix(m.Category, "term-"))
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("0")).
		Background(termColors[i%len(termColors)]).
		Render(m.Content)
}

func termCounts(occurrences []term.Occurrence) string {
	var parts []string
	for _, o := range occurrences {
		if o.Negation {
			continue
		}
		s := fmt.Sprintf("%s: %d", o.Label, o.Content)
		if o.OutsideContentOnly() {
			s += " (metadata or tags only)"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

func renderBuckets(out io.Writer, f facet.Filter, buckets []result.Bucket) {
	if len(buckets) == 0 {
		fmt.Fprintln(out, noDataStyle.Render("No values."))
		return
	}
	fmt.Fprintln(out, summaryStyle.Render(f.Name()))
	for _, b := range buckets {
		fmt.Fprintf(out, "%6d  %s %s\n", b.Count, f.Label(b), metaStyle.Render(b.Key))
	}
}
