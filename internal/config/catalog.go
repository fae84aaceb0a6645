package config

import "github.com/DemosCVV/Oge/internal/models"

// Catalog is the static product table. Immutable at runtime; the
// fulfillment link is only ever sent after an approved review.
type Catalog struct {
	products map[string]models.Product
	order    []string
}

func NewCatalog(products []models.Product) *Catalog {
	c := &Catalog{products: make(map[string]models.Product, len(products))}
	for _, p := range products {
		c.products[p.Slug] = p
		c.order = append(c.order, p.Slug)
	}
	return c
}

// DefaultCatalog returns the built-in subject catalog.
func DefaultCatalog() *Catalog {
	return NewCatalog([]models.Product{
		{Slug: "math", Name: "Математика", Price: 499, Link: "https://t.me/your_private_channel_math"},
		{Slug: "rus", Name: "Русский язык", Price: 499, Link: "https://t.me/your_private_channel_rus"},
		{Slug: "bio", Name: "Биология", Price: 349, Link: "https://t.me/your_private_channel_bio"},
		{Slug: "info", Name: "Информатика", Price: 349, Link: "https://t.me/your_private_channel_info"},
		{Slug: "hist", Name: "История", Price: 349, Link: "https://t.me/your_private_channel_hist"},
		{Slug: "soc", Name: "Обществознание", Price: 349, Link: "https://t.me/your_private_channel_soc"},
		{Slug: "chem", Name: "Химия", Price: 349, Link: "https://t.me/your_private_channel_chem"},
		{Slug: "phys", Name: "Физика", Price: 349, Link: "https://t.me/your_private_channel_phys"},
	})
}

// Get looks up a product by slug.
func (c *Catalog) Get(slug string) (models.Product, bool) {
	p, ok := c.products[slug]
	return p, ok
}

// List returns products in their configured order.
func (c *Catalog) List() []models.Product {
	out := make([]models.Product, 0, len(c.order))
	for _, slug := range c.order {
		out = append(out, c.products[slug])
	}
	return out
}
