package document

import (
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

// Document is an indexed document with the named entities found in it.
type Document struct {
	*result.Document
	Entities []*result.NamedEntity
}

// buildHashFields flattens a document into HSET fields.
func buildHashFields(d Document) map[string]string {
	doc := d.Document
	m := map[string]string{
		result.FieldType:            string(result.TypeDocument),
		FieldID:                     doc.ID(),
		result.FieldContent:         doc.Content,
		result.FieldPath:            doc.Path,
		result.FieldDirname:         dirname(doc),
		result.FieldContentType:     doc.ContentType,
		result.FieldContentLength:   strconv.FormatInt(doc.ContentLength, 10),
		result.FieldLanguage:        doc.Language,
		result.FieldTags:            strings.Join(doc.Tags, result.ListSeparator),
		result.FieldExtractionLevel: strconv.Itoa(doc.ExtractionLevel),
		FieldMetadata:               doc.MetadataText(),
	}
	if ms, ok := millis(doc.CreationDate); ok {
		m[result.FieldCreationDate] = ms
	}
	if ms, ok := millis(doc.ExtractionDate); ok {
		m[result.FieldExtractionDate] = ms
	}
	for k, v := range doc.Metadata {
		m[result.MetadataPrefix+k] = v
	}

	mentions := map[string][]string{}
	for _, ne := range d.Entities {
		field := EntityField(ne.Category)
		if !slices.Contains(mentions[field], ne.Mention) {
			mentions[field] = append(mentions[field], ne.Mention)
		}
	}
	for _, field := range slices.Sorted(maps.Keys(mentions)) {
		m[field] = strings.Join(mentions[field], result.ListSeparator)
	}
	return m
}

// buildEntityFields flattens a named entity into HSET fields.
func buildEntityFields(ne *result.NamedEntity) map[string]string {
	offsets := make([]string, len(ne.Offsets))
	for i, o := range ne.Offsets {
		offsets[i] = strconv.Itoa(o)
	}
	return map[string]string{
		result.FieldType:     string(result.TypeNamedEntity),
		FieldID:              ne.ID(),
		result.FieldMention:  ne.Mention,
		result.FieldCategory: strings.ToUpper(ne.Category),
		result.FieldDocument: ne.DocumentID,
		result.FieldOffsets:  strings.Join(offsets, result.ListSeparator),
	}
}

func dirname(doc *result.Document) string {
	if doc.Dirname != "" {
		return doc.Dirname
	}
	if i := strings.LastIndexByte(doc.Path, '/'); i > 0 {
		return doc.Path[:i]
	}
	return ""
}

func millis(t time.Time) (string, bool) {
	if t.IsZero() {
		return "", false
	}
	return strconv.FormatInt(t.UnixMilli(), 10), true
}

func lower(s string) string { return strings.ToLower(s) }
