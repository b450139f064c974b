// Package facet implements search filters: typed facets over one document
// attribute with selectable values, exclusion and URL round-tripping.
package facet

import "fmt"

// Kind selects the coercion, clause and label strategy of a filter.
type Kind int

// Filter kinds.
const (
	KindText Kind = iota
	KindYesNo
	KindDate
	KindDateRange
	KindPath
	KindNamedEntity
	KindStarred
)

var kindNames = [...]string{
	KindText:        "text",
	KindYesNo:       "yes-no",
	KindDate:        "date",
	KindDateRange:   "date-range",
	KindPath:        "path",
	KindNamedEntity: "named-entity",
	KindStarred:     "starred",
}

func (k Kind) String() string {
	if !k.IsValid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	return k >= KindText && int(k) < len(kindNames)
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown filter kind %q", s)
}
