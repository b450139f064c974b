// Package ordering holds the named sort orders a search can be ranked by.
package ordering

import "slices"

// Relevance ranks hits by full-text score.
const Relevance = "relevance"

// Order is a named sort order. An empty Field ranks by score.
type Order struct {
	Name  string
	Field string
	Desc  bool
}

// ByScore reports whether the order ranks by relevance score.
func (o Order) ByScore() bool { return o.Field == "" }

// Catalog is an ordered set of sort orders with a default.
type Catalog struct {
	orders []Order
	def    string
}

// NewCatalog builds a catalog. The default falls back to the first order
// when def names nothing in orders.
func NewCatalog(def string, orders ...Order) Catalog {
	c := Catalog{orders: slices.Clone(orders), def: def}
	if _, ok := c.Find(def); !ok && len(orders) > 0 {
		c.def = orders[0].Name
	}
	return c
}

// DefaultCatalog returns the sort orders exposed by the document index.
func DefaultCatalog() Catalog {
	return NewCatalog(Relevance,
		Order{Name: Relevance},
		Order{Name: "dateNewest", Field: "extraction_date", Desc: true},
		Order{Name: "dateOldest", Field: "extraction_date"},
		Order{Name: "creationDateNewest", Field: "creation_date", Desc: true},
		Order{Name: "creationDateOldest", Field: "creation_date"},
		Order{Name: "sizeLargest", Field: "content_length", Desc: true},
		Order{Name: "sizeSmallest", Field: "content_length"},
		Order{Name: "path", Field: "path"},
		Order{Name: "pathReverse", Field: "path", Desc: true},
	)
}

// Find looks an order up by name.
func (c Catalog) Find(name string) (Order, bool) {
	i := slices.IndexFunc(c.orders, func(o Order) bool { return o.Name == name })
	if i < 0 {
		return Order{}, false
	}
	return c.orders[i], true
}

// Resolve returns the named order, or the default one.
func (c Catalog) Resolve(name string) Order {
	if o, ok := c.Find(name); ok {
		return o
	}
	o, _ := c.Find(c.def)
	return o
}

// Default returns the name of the default order.
func (c Catalog) Default() string { return c.def }

// Names lists order names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, len(c.orders))
	for i, o := range c.orders {
		names[i] = o.Name
	}
	return names
}
