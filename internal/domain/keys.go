package domain

// DefaultKeyPrefix namespaces every key written by docsearch.
const DefaultKeyPrefix = "docsearch:"

// IndexName returns the FT index name of a document index.
func IndexName(prefix, index string) string {
	return prefix + index + ":idx"
}

// DocumentKeyPrefix returns the key prefix of the hashes covered by an index.
func DocumentKeyPrefix(prefix, index string) string {
	return prefix + index + ":doc:"
}

// DocumentKey returns the hash key of a document or named entity.
func DocumentKey(prefix, index, id string) string {
	return DocumentKeyPrefix(prefix, index) + id
}

// StarredKey returns the set holding the starred documents of an index.
func StarredKey(prefix, index string) string {
	return prefix + "starred:" + index
}
