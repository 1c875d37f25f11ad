package commerce

import (
	"context"
	"fmt"
	"net/url"

	"github.com/hammamikhairi/voxcart/internal/domain"
)

// Compile-time interface check.
var _ domain.Catalog = (*CatalogClient)(nil)

const searchLimit = 20

// CatalogClient serves products from the commercetools product
// projections endpoint.
type CatalogClient struct {
	client *Client
}

// NewCatalogClient wraps an API client as a Catalog.
func NewCatalogClient(client *Client) *CatalogClient {
	return &CatalogClient{client: client}
}

// localized is a commercetools locale -> value map.
type localized map[string]string

func (l localized) in(locale string) string {
	if v, ok := l[locale]; ok {
		return v
	}
	// Any value beats an empty string when the locale is missing.
	for _, v := range l {
		return v
	}
	return ""
}

type centAmount struct {
	CentAmount   int64  `json:"centAmount"`
	CurrencyCode string `json:"currencyCode"`
}

type productProjection struct {
	ID            string    `json:"id"`
	Name          localized `json:"name"`
	Slug          localized `json:"slug"`
	Description   localized `json:"description"`
	MasterVariant struct {
		SKU    string `json:"sku"`
		Prices []struct {
			Value centAmount `json:"value"`
		} `json:"prices"`
	} `json:"masterVariant"`
}

type projectionPage struct {
	Results []productProjection `json:"results"`
	Total   int                 `json:"total"`
}

func (c *CatalogClient) toProduct(p productProjection) domain.Product {
	out := domain.Product{
		ID:          p.ID,
		Name:        p.Name.in(c.client.locale),
		Slug:        p.Slug.in(c.client.locale),
		SKU:         p.MasterVariant.SKU,
		Description: p.Description.in(c.client.locale),
	}
	if len(p.MasterVariant.Prices) > 0 {
		v := p.MasterVariant.Prices[0].Value
		out.Price = domain.Price{CentAmount: v.CentAmount, CurrencyCode: v.CurrencyCode}
	}
	return out
}

// List returns the first page of published products.
func (c *CatalogClient) List(ctx context.Context) ([]domain.Product, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprint(searchLimit))
	q.Set("staged", "false")

	var page projectionPage
	if err := c.client.do(ctx, "GET", "/product-projections/search?"+q.Encode(), nil, &page); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	return c.collect(page), nil
}

// Search runs a fuzzy full-text search. Fuzziness is on so spoken,
// slightly mangled queries still land.
func (c *CatalogClient) Search(ctx context.Context, query string) ([]domain.Product, error) {
	q := url.Values{}
	q.Set("text."+c.client.locale, query)
	q.Set("fuzzy", "true")
	q.Set("markMatchingVariants", "true")
	q.Set("limit", fmt.Sprint(searchLimit))
	q.Set("staged", "false")

	var page projectionPage
	if err := c.client.do(ctx, "GET", "/product-projections/search?"+q.Encode(), nil, &page); err != nil {
		return nil, fmt.Errorf("searching products: %w", err)
	}

	return c.collect(page), nil
}

func (c *CatalogClient) collect(page projectionPage) []domain.Product {
	out := make([]domain.Product, 0, len(page.Results))
	for _, p := range page.Results {
		out = append(out, c.toProduct(p))
	}
	return out
}

type categoryPage struct {
	Results []struct {
		ID   string    `json:"id"`
		Name localized `json:"name"`
		Slug localized `json:"slug"`
	} `json:"results"`
}

// Categories returns the project's categories.
func (c *CatalogClient) Categories(ctx context.Context) ([]domain.Category, error) {
	var page categoryPage
	if err := c.client.do(ctx, "GET", "/categories", nil, &page); err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	out := make([]domain.Category, 0, len(page.Results))
	for _, cat := range page.Results {
		out = append(out, domain.Category{
			ID:   cat.ID,
			Name: cat.Name.in(c.client.locale),
			Slug: cat.Slug.in(c.client.locale),
		})
	}
	return out, nil
}
