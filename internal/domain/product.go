package domain

// Product is one sellable item from the catalog.
type Product struct {
	ID          string
	Name        string
	Slug        string
	SKU         string
	Description string
	Price       Price
}

// Price is a money amount in minor units (cents).
type Price struct {
	CentAmount   int64
	CurrencyCode string
}

// Category groups products for browsing.
type Category struct {
	ID   string
	Name string
	Slug string
}

// Cart is the shopper's current cart snapshot as returned by the commerce
// backend. Version is the backend's optimistic-concurrency counter and must
// be echoed back on every mutation.
type Cart struct {
	ID         string
	Version    int64
	LineItems  []LineItem
	TotalPrice Price
}

// LineItem is one product-and-quantity entry within a cart.
type LineItem struct {
	ID        string
	ProductID string
	Name      string
	SKU       string
	Quantity  int
	Price     Price
}

// ItemCount returns the total number of units across all line items.
func (c *Cart) ItemCount() int {
	n := 0
	for _, li := range c.LineItems {
		n += li.Quantity
	}
	return n
}

// ItemNames returns the line-item names in cart order. Used as the
// candidate list for fuzzy removal matching.
func (c *Cart) ItemNames() []string {
	names := make([]string, len(c.LineItems))
	for i, li := range c.LineItems {
		names[i] = li.Name
	}
	return names
}

// FindLineItem returns the first line item whose name matches (exact,
// case-sensitive — callers resolve fuzziness before lookup).
func (c *Cart) FindLineItem(name string) (LineItem, bool) {
	for _, li := range c.LineItems {
		if li.Name == name {
			return li, true
		}
	}
	return LineItem{}, false
}
