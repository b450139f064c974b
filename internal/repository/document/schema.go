package document

import (
	"fmt"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

// Indexed field names that are not part of a search hit.
const (
	FieldID       = "id"
	FieldMetadata = "metadata"
)

// NamedEntityCategories lists the categories with a per-document mention field.
var NamedEntityCategories = []string{"PERSON", "ORGANIZATION", "LOCATION"}

// EntityField returns the document field listing mentions of a category.
func EntityField(category string) string {
	return "ne_" + lower(category)
}

func schema(name string) *db.IndexBuilder {
	b := db.NewIndex(name).OnHash().
		Tag(result.FieldType).
		Tag(FieldID).
		TextWeighted(result.FieldContent, 1).
		TextWeighted(result.FieldPath, 2).Sortable().
		Tag(result.FieldDirname).
		Tag(result.FieldContentType).
		Numeric(result.FieldContentLength).Sortable().
		Tag(result.FieldLanguage).
		TagWithOpts(result.FieldTags, result.ListSeparator, false).
		Numeric(result.FieldCreationDate).Sortable().
		Numeric(result.FieldExtractionDate).Sortable().
		Tag(result.FieldExtractionLevel).
		Text(FieldMetadata).
		Text(result.FieldMention).
		Tag(result.FieldCategory).
		Tag(result.FieldDocument)
	for _, c := range NamedEntityCategories {
		b = b.TagWithOpts(EntityField(c), result.ListSeparator, false)
	}
	return b
}

// IndexDefinition returns the FT schema of a document index.
func IndexDefinition(prefix, index string) (*db.IndexDefinition, error) {
	def, err := schema(domain.IndexName(prefix, index)).
		Prefix(domain.DocumentKeyPrefix(prefix, index)).
		Build()
	if err != nil {
		return nil, fmt.Errorf("index %s schema: %w", index, err)
	}
	return def, nil
}

// FieldTypes maps every indexed field to its FT type.
func FieldTypes() map[string]db.IndexFieldType {
	def := schema("schema").MustBuild()
	types := make(map[string]db.IndexFieldType, len(def.Fields))
	for _, f := range def.Fields {
		types[f.Name] = f.Type
	}
	return types
}
