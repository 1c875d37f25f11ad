package commerce

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hammamikhairi/voxcart/internal/domain"
	"github.com/hammamikhairi/voxcart/internal/logger"
)

// Compile-time interface checks.
var _ domain.Catalog = (*MemoryCatalog)(nil)
var _ domain.CartService = (*MemoryCart)(nil)

// MemoryCatalog holds products in memory. Safe for concurrent reads.
// Used in demo mode when no commercetools project is configured.
type MemoryCatalog struct {
	mu       sync.RWMutex
	products []domain.Product
	log      *logger.Logger
}

// NewMemoryCatalog creates a catalog preloaded with the demo products.
func NewMemoryCatalog(log *logger.Logger) *MemoryCatalog {
	c := &MemoryCatalog{log: log}
	c.seed()
	return c
}

func (c *MemoryCatalog) seed() {
	type item struct {
		name  string
		cents int64
	}
	items := []item{
		{"shoes", 7999},
		{"laptop", 129900},
		{"headphones", 19999},
		{"watch", 24999},
		{"phone", 89900},
		{"tablet", 49900},
		{"camera", 64900},
		{"keyboard", 8999},
	}

	for i, it := range items {
		c.products = append(c.products, domain.Product{
			ID:          fmt.Sprintf("demo-%03d", i+1),
			Name:        it.name,
			Slug:        it.name,
			SKU:         fmt.Sprintf("SKU-%s", strings.ToUpper(it.name)),
			Description: fmt.Sprintf("Demo catalog %s.", it.name),
			Price:       domain.Price{CentAmount: it.cents, CurrencyCode: defaultCurrency},
		})
	}
}

// List returns all products.
func (c *MemoryCatalog) List(ctx context.Context) ([]domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out, nil
}

// Search matches products whose name or description contains the query.
func (c *MemoryCatalog) Search(ctx context.Context, query string) ([]domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	var out []domain.Product
	for _, p := range c.products {
		if strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.Description), query) {
			out = append(out, p)
		}
	}
	c.log.Debug("memory catalog: %d results for %q", len(out), query)
	return out, nil
}

// Categories returns a single catch-all category; the demo catalog is
// flat.
func (c *MemoryCatalog) Categories(ctx context.Context) ([]domain.Category, error) {
	return []domain.Category{{ID: "demo-cat-001", Name: "All products", Slug: "all"}}, nil
}

// MemoryCart keeps the cart in memory. Mutation semantics mirror the
// hosted cart: adding an existing product bumps its quantity, versions
// increment on every change.
type MemoryCart struct {
	mu      sync.Mutex
	catalog domain.Catalog
	cart    domain.Cart
	nextID  int
	log     *logger.Logger
}

// NewMemoryCart creates an empty in-memory cart backed by the given
// catalog for product lookups.
func NewMemoryCart(catalog domain.Catalog, log *logger.Logger) *MemoryCart {
	return &MemoryCart{
		catalog: catalog,
		cart: domain.Cart{
			ID:         "demo-cart",
			Version:    1,
			TotalPrice: domain.Price{CurrencyCode: defaultCurrency},
		},
		nextID: 1,
		log:    log,
	}
}

// Get returns a snapshot of the cart.
func (m *MemoryCart) Get(ctx context.Context) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot(), nil
}

// AddLineItem adds quantity units of a product.
func (m *MemoryCart) AddLineItem(ctx context.Context, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		quantity = 1
	}

	product, err := m.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.cart.LineItems {
		if m.cart.LineItems[i].ProductID == productID {
			m.cart.LineItems[i].Quantity += quantity
			m.bump()
			return m.snapshot(), nil
		}
	}

	m.cart.LineItems = append(m.cart.LineItems, domain.LineItem{
		ID:        fmt.Sprintf("line-%03d", m.nextID),
		ProductID: product.ID,
		Name:      product.Name,
		SKU:       product.SKU,
		Quantity:  quantity,
		Price:     product.Price,
	})
	m.nextID++
	m.bump()
	return m.snapshot(), nil
}

// RemoveLineItem removes an entire line item.
func (m *MemoryCart) RemoveLineItem(ctx context.Context, lineItemID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, li := range m.cart.LineItems {
		if li.ID == lineItemID {
			m.cart.LineItems = append(m.cart.LineItems[:i], m.cart.LineItems[i+1:]...)
			m.bump()
			return m.snapshot(), nil
		}
	}
	return nil, domain.ErrNotFound
}

// Clear removes every line item.
func (m *MemoryCart) Clear(ctx context.Context) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cart.LineItems = nil
	m.bump()
	return m.snapshot(), nil
}

func (m *MemoryCart) findProduct(ctx context.Context, productID string) (*domain.Product, error) {
	products, err := m.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if p.ID == productID {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

// bump increments the version and recomputes the total. Caller holds
// m.mu.
func (m *MemoryCart) bump() {
	m.cart.Version++
	var total int64
	for _, li := range m.cart.LineItems {
		total += li.Price.CentAmount * int64(li.Quantity)
	}
	m.cart.TotalPrice.CentAmount = total
}

func (m *MemoryCart) snapshot() *domain.Cart {
	out := m.cart
	out.LineItems = make([]domain.LineItem, len(m.cart.LineItems))
	copy(out.LineItems, m.cart.LineItems)
	return &out
}
