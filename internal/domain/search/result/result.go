// Package result holds search responses: ranked hits and aggregation buckets.
package result

import (
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
)

// HitType discriminates hit variants by the raw source "type" field.
type HitType string

// Hit types.
const (
	TypeDocument    HitType = "Document"
	TypeNamedEntity HitType = "NamedEntity"
)

// Raw source field names.
const (
	FieldType            = "type"
	FieldContent         = "content"
	FieldPath            = "path"
	FieldDirname         = "dirname"
	FieldContentType     = "content_type"
	FieldContentLength   = "content_length"
	FieldLanguage        = "language"
	FieldTags            = "tags"
	FieldCreationDate    = "creation_date"
	FieldExtractionDate  = "extraction_date"
	FieldExtractionLevel = "extraction_level"
	FieldMention         = "mention"
	FieldCategory        = "category"
	FieldDocument        = "document"
	FieldOffsets         = "offsets"

	// MetadataPrefix prefixes flattened metadata fields.
	MetadataPrefix = "metadata."
	// ListSeparator joins multi-valued fields.
	ListSeparator = ","
)

// Hit is a ranked search hit.
type Hit interface {
	ID() string
	Index() string
	Score() float64
	Type() HitType
}

// Document is an indexed document hit.
type Document struct {
	id    string
	index string
	score float64

	Content         string
	Path            string
	Dirname         string
	ContentType     string
	ContentLength   int64
	Language        string
	Tags            []string
	Metadata        map[string]string
	CreationDate    time.Time
	ExtractionDate  time.Time
	ExtractionLevel int
}

// NewDocument creates a document hit.
func NewDocument(id, index string, score float64) *Document {
	return &Document{id: id, index: index, score: score}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Index returns the index the document belongs to.
func (d *Document) Index() string { return d.index }

// Score returns the relevance score.
func (d *Document) Score() float64 { return d.score }

// Type returns TypeDocument.
func (d *Document) Type() HitType { return TypeDocument }

// MetadataText joins metadata values in key order.
func (d *Document) MetadataText() string {
	keys := slices.Sorted(maps.Keys(d.Metadata))
	values := make([]string, 0, len(keys))
	for _, k := range keys {
		if v := d.Metadata[k]; v != "" {
			values = append(values, v)
		}
	}
	return strings.Join(values, " ")
}

// NamedEntity is a mention of a person, organization or location in a document.
type NamedEntity struct {
	id    string
	index string
	score float64

	Mention    string
	Category   string
	DocumentID string
	Offsets    []int
}

// NewNamedEntity creates a named entity hit.
func NewNamedEntity(id, index string, score float64) *NamedEntity {
	return &NamedEntity{id: id, index: index, score: score}
}

// ID returns the entity identifier.
func (n *NamedEntity) ID() string { return n.id }

// Index returns the index the entity belongs to.
func (n *NamedEntity) Index() string { return n.index }

// Score returns the relevance score.
func (n *NamedEntity) Score() float64 { return n.score }

// Type returns TypeNamedEntity.
func (n *NamedEntity) Type() HitType { return TypeNamedEntity }

// Bucket is an aggregation bucket: a field value and its document count.
type Bucket struct {
	Key   string
	Count int
}

// RawHit is a hit as returned by a backend.
type RawHit struct {
	ID     string
	Index  string
	Score  float64
	Source map[string]string
}

// Raw is an untyped backend response.
type Raw struct {
	Total        int
	Hits         []RawHit
	Aggregations map[string][]Bucket
}

// Set is an immutable search response.
type Set struct {
	hits         []Hit
	total        int
	aggregations map[string][]Bucket
}

// None returns an empty response.
func None() Set { return Set{} }

// FromRaw types every raw hit by its source discriminator.
func FromRaw(raw Raw) Set {
	hits := make([]Hit, 0, len(raw.Hits))
	for _, h := range raw.Hits {
		hits = append(hits, hitFromRaw(h))
	}
	aggs := make(map[string][]Bucket, len(raw.Aggregations))
	for name, buckets := range raw.Aggregations {
		aggs[name] = slices.Clone(buckets)
	}
	return Set{hits: hits, total: raw.Total, aggregations: aggs}
}

func hitFromRaw(h RawHit) Hit {
	src := h.Source
	if HitType(src[FieldType]) == TypeNamedEntity {
		ne := NewNamedEntity(h.ID, h.Index, h.Score)
		ne.Mention = src[FieldMention]
		ne.Category = src[FieldCategory]
		ne.DocumentID = src[FieldDocument]
		for _, o := range splitList(src[FieldOffsets]) {
			if n, err := strconv.Atoi(o); err == nil {
				ne.Offsets = append(ne.Offsets, n)
			}
		}
		return ne
	}

	doc := NewDocument(h.ID, h.Index, h.Score)
	doc.Content = src[FieldContent]
	doc.Path = src[FieldPath]
	doc.Dirname = src[FieldDirname]
	doc.ContentType = src[FieldContentType]
	doc.ContentLength, _ = strconv.ParseInt(src[FieldContentLength], 10, 64)
	doc.Language = src[FieldLanguage]
	doc.Tags = splitList(src[FieldTags])
	doc.CreationDate = parseMillis(src[FieldCreationDate])
	doc.ExtractionDate = parseMillis(src[FieldExtractionDate])
	doc.ExtractionLevel, _ = strconv.Atoi(src[FieldExtractionLevel])
	for k, v := range src {
		if name, ok := strings.CutPrefix(k, MetadataPrefix); ok {
			if doc.Metadata == nil {
				doc.Metadata = make(map[string]string)
			}
			doc.Metadata[name] = v
		}
	}
	return doc
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ListSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseMillis(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// Hits returns the ranked hits.
func (s Set) Hits() []Hit { return s.hits }

// Total returns the number of matching hits across all pages.
func (s Set) Total() int { return s.total }

// Documents returns the document hits only.
func (s Set) Documents() []*Document {
	var docs []*Document
	for _, h := range s.hits {
		if d, ok := h.(*Document); ok {
			docs = append(docs, d)
		}
	}
	return docs
}

// Aggregation returns the buckets of a named aggregation.
func (s Set) Aggregation(name string) []Bucket { return s.aggregations[name] }

// AppendAggregation returns a copy of s with buckets added to the named
// aggregation. Keys already present are skipped.
func (s Set) AppendAggregation(name string, buckets ...Bucket) Set {
	aggs := maps.Clone(s.aggregations)
	if aggs == nil {
		aggs = make(map[string][]Bucket, 1)
	}
	merged := slices.Clone(aggs[name])
	for _, b := range buckets {
		if !slices.ContainsFunc(merged, func(e Bucket) bool { return e.Key == b.Key }) {
			merged = append(merged, b)
		}
	}
	aggs[name] = merged
	s.aggregations = aggs
	return s
}
