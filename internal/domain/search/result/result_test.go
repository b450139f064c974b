package result

import (
	"testing"
	"time"
)

func TestFromRaw_DiscriminatesHits(t *testing.T) {
	raw := Raw{
		Total: 2,
		Hits: []RawHit{
			{ID: "d1", Index: "local", Score: 1.5, Source: map[string]string{
				FieldContent:       "hello",
				FieldTags:          "finance, leak,",
				FieldCreationDate:  "1577836800000",
				FieldContentLength: "42",
				"metadata.author":  "Ann",
			}},
			{ID: "n1", Index: "local", Source: map[string]string{
				FieldType:     "NamedEntity",
				FieldMention:  "paris",
				FieldCategory: "LOCATION",
				FieldDocument: "d1",
				FieldOffsets:  "3,17,x",
			}},
		},
	}
	set := FromRaw(raw)

	if set.Total() != 2 || len(set.Hits()) != 2 {
		t.Fatalf("unexpected set: total=%d hits=%d", set.Total(), len(set.Hits()))
	}
	doc, ok := set.Hits()[0].(*Document)
	if !ok {
		t.Fatalf("hit 0 is %T", set.Hits()[0])
	}
	if doc.Type() != TypeDocument || doc.ID() != "d1" || doc.Score() != 1.5 {
		t.Errorf("doc = %+v", doc)
	}
	if len(doc.Tags) != 2 || doc.Tags[1] != "leak" {
		t.Errorf("Tags = %v", doc.Tags)
	}
	if !doc.CreationDate.Equal(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("CreationDate = %v", doc.CreationDate)
	}
	if doc.ContentLength != 42 || doc.Metadata["author"] != "Ann" {
		t.Errorf("doc = %+v", doc)
	}

	ne, ok := set.Hits()[1].(*NamedEntity)
	if !ok {
		t.Fatalf("hit 1 is %T", set.Hits()[1])
	}
	if ne.Type() != TypeNamedEntity || ne.Mention != "paris" || ne.DocumentID != "d1" {
		t.Errorf("ne = %+v", ne)
	}
	if len(ne.Offsets) != 2 || ne.Offsets[1] != 17 {
		t.Errorf("Offsets = %v", ne.Offsets)
	}
	if docs := set.Documents(); len(docs) != 1 {
		t.Errorf("Documents() len = %d", len(docs))
	}
}

func TestNone(t *testing.T) {
	s := None()
	if s.Total() != 0 || len(s.Hits()) != 0 || s.Aggregation("x") != nil {
		t.Errorf("None() = %+v", s)
	}
}

func TestAppendAggregation(t *testing.T) {
	base := FromRaw(Raw{Aggregations: map[string][]Bucket{"tags": {{Key: "a", Count: 3}}}})

	next := base.AppendAggregation("tags", Bucket{Key: "a", Count: 9}, Bucket{Key: "b", Count: 1})
	got := next.Aggregation("tags")
	if len(got) != 2 || got[0].Count != 3 || got[1].Key != "b" {
		t.Errorf("Aggregation(tags) = %v", got)
	}
	if len(base.Aggregation("tags")) != 1 {
		t.Error("AppendAggregation mutated the receiver")
	}

	fresh := None().AppendAggregation("language", Bucket{Key: "en", Count: 2})
	if len(fresh.Aggregation("language")) != 1 {
		t.Errorf("Aggregation(language) = %v", fresh.Aggregation("language"))
	}
}

func TestMetadataText(t *testing.T) {
	d := &Document{Metadata: map[string]string{"b": "second", "a": "first", "c": ""}}
	if got := d.MetadataText(); got != "first second" {
		t.Errorf("MetadataText() = %q", got)
	}
}
