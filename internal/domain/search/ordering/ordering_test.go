package ordering

import "testing"

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	if c.Default() != Relevance {
		t.Errorf("Default() = %q", c.Default())
	}
	o, ok := c.Find("dateNewest")
	if !ok {
		t.Fatal("dateNewest not found")
	}
	if o.Field != "extraction_date" || !o.Desc {
		t.Errorf("dateNewest = %+v", o)
	}
	if rel, _ := c.Find(Relevance); !rel.ByScore() {
		t.Error("relevance should rank by score")
	}
}

func TestResolve_FallsBackToDefault(t *testing.T) {
	c := DefaultCatalog()
	if got := c.Resolve("unknown"); got.Name != Relevance {
		t.Errorf("Resolve() = %+v", got)
	}
	if got := c.Resolve("path"); got.Field != "path" || got.Desc {
		t.Errorf("Resolve(path) = %+v", got)
	}
}

func TestNewCatalog_InvalidDefault(t *testing.T) {
	c := NewCatalog("missing", Order{Name: "a", Field: "x"}, Order{Name: "b"})
	if c.Default() != "a" {
		t.Errorf("Default() = %q, want a", c.Default())
	}
	if names := c.Names(); len(names) != 2 || names[1] != "b" {
		t.Errorf("Names() = %v", names)
	}
}

func TestEmptyCatalog(t *testing.T) {
	var c Catalog
	if _, ok := c.Find(Relevance); ok {
		t.Error("empty catalog should find nothing")
	}
	if got := c.Resolve("x"); got != (Order{}) {
		t.Errorf("Resolve() = %+v", got)
	}
}
