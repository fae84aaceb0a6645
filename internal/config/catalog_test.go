package config

import "testing"

func TestDefaultCatalogLookup(t *testing.T) {
	c := DefaultCatalog()

	p, ok := c.Get("bio")
	if !ok {
		t.Fatalf("bio should exist")
	}
	if p.Price != 349 || p.Link == "" {
		t.Fatalf("unexpected product: %+v", p)
	}

	if _, ok := c.Get("nope"); ok {
		t.Fatalf("unknown slug must not resolve")
	}

	if got := len(c.List()); got != 8 {
		t.Fatalf("expected 8 products, got %d", got)
	}
}
