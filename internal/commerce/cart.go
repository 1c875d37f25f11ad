package commerce

import (
	"context"
	"fmt"
	"sync"

	"github.com/hammamikhairi/voxcart/internal/domain"
)

// Compile-time interface check.
var _ domain.CartService = (*CartClient)(nil)

const (
	defaultCurrency = "EUR"
	defaultCountry  = "DE"
	// Master variant; the demo catalog has no variant dimensions.
	masterVariantID = 1
)

// CartClient manages a single cart on commercetools. The cart is
// created lazily on first use; every mutation carries the cart version
// for optimistic concurrency, and a version conflict is replayed once
// against the fresh version.
type CartClient struct {
	client *Client

	mu      sync.Mutex
	cartID  string
	version int64
}

// NewCartClient wraps an API client as a CartService.
func NewCartClient(client *Client) *CartClient {
	return &CartClient{client: client}
}

type wireCart struct {
	ID        string `json:"id"`
	Version   int64  `json:"version"`
	LineItems []struct {
		ID        string    `json:"id"`
		ProductID string    `json:"productId"`
		Name      localized `json:"name"`
		Quantity  int       `json:"quantity"`
		Variant   struct {
			SKU string `json:"sku"`
		} `json:"variant"`
		Price struct {
			Value centAmount `json:"value"`
		} `json:"price"`
	} `json:"lineItems"`
	TotalPrice centAmount `json:"totalPrice"`
}

type cartAction struct {
	Action     string `json:"action"`
	ProductID  string `json:"productId,omitempty"`
	VariantID  int    `json:"variantId,omitempty"`
	LineItemID string `json:"lineItemId,omitempty"`
	Quantity   int    `json:"quantity,omitempty"`
}

type cartUpdate struct {
	Version int64        `json:"version"`
	Actions []cartAction `json:"actions"`
}

func (c *CartClient) toCart(w *wireCart) *domain.Cart {
	cart := &domain.Cart{
		ID:         w.ID,
		Version:    w.Version,
		TotalPrice: domain.Price{CentAmount: w.TotalPrice.CentAmount, CurrencyCode: w.TotalPrice.CurrencyCode},
	}
	for _, li := range w.LineItems {
		cart.LineItems = append(cart.LineItems, domain.LineItem{
			ID:        li.ID,
			ProductID: li.ProductID,
			Name:      li.Name.in(c.client.locale),
			SKU:       li.Variant.SKU,
			Quantity:  li.Quantity,
			Price:     domain.Price{CentAmount: li.Price.Value.CentAmount, CurrencyCode: li.Price.Value.CurrencyCode},
		})
	}
	return cart
}

// ensureCart creates the cart if it doesn't exist yet and returns its
// id. Caller must hold c.mu.
func (c *CartClient) ensureCart(ctx context.Context) (string, error) {
	if c.cartID != "" {
		return c.cartID, nil
	}

	body := map[string]string{
		"currency": defaultCurrency,
		"country":  defaultCountry,
	}
	var w wireCart
	if err := c.client.do(ctx, "POST", "/carts", body, &w); err != nil {
		return "", fmt.Errorf("creating cart: %w", err)
	}

	c.cartID = w.ID
	c.version = w.Version
	c.client.log.Info("commerce: created cart %s", w.ID)
	return c.cartID, nil
}

// Get returns the current cart snapshot, creating the cart on first use.
func (c *CartClient) Get(ctx context.Context) (*domain.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, err := c.ensureCart(ctx)
	if err != nil {
		return nil, err
	}

	w, err := c.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	c.version = w.Version
	return c.toCart(w), nil
}

func (c *CartClient) fetch(ctx context.Context, id string) (*wireCart, error) {
	var w wireCart
	if err := c.client.do(ctx, "GET", "/carts/"+id, nil, &w); err != nil {
		return nil, fmt.Errorf("fetching cart: %w", err)
	}
	return &w, nil
}

// AddLineItem adds quantity units of a product to the cart.
func (c *CartClient) AddLineItem(ctx context.Context, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		quantity = 1
	}
	return c.update(ctx, []cartAction{{
		Action:    "addLineItem",
		ProductID: productID,
		VariantID: masterVariantID,
		Quantity:  quantity,
	}})
}

// RemoveLineItem removes an entire line item from the cart.
func (c *CartClient) RemoveLineItem(ctx context.Context, lineItemID string) (*domain.Cart, error) {
	return c.update(ctx, []cartAction{{
		Action:     "removeLineItem",
		LineItemID: lineItemID,
	}})
}

// Clear removes every line item in one update.
func (c *CartClient) Clear(ctx context.Context) (*domain.Cart, error) {
	cart, err := c.Get(ctx)
	if err != nil {
		return nil, err
	}
	if len(cart.LineItems) == 0 {
		return cart, nil
	}

	actions := make([]cartAction, 0, len(cart.LineItems))
	for _, li := range cart.LineItems {
		actions = append(actions, cartAction{Action: "removeLineItem", LineItemID: li.ID})
	}
	return c.update(ctx, actions)
}

// update posts cart actions, replaying once on a version conflict.
func (c *CartClient) update(ctx context.Context, actions []cartAction) (*domain.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, err := c.ensureCart(ctx)
	if err != nil {
		return nil, err
	}

	w, err := c.post(ctx, id, actions)
	if IsConflict(err) {
		c.client.log.Warn("commerce: cart version conflict, refreshing and replaying")
		fresh, ferr := c.fetch(ctx, id)
		if ferr != nil {
			return nil, ferr
		}
		c.version = fresh.Version
		w, err = c.post(ctx, id, actions)
	}
	if err != nil {
		return nil, err
	}

	c.version = w.Version
	return c.toCart(w), nil
}

func (c *CartClient) post(ctx context.Context, id string, actions []cartAction) (*wireCart, error) {
	var w wireCart
	body := cartUpdate{Version: c.version, Actions: actions}
	if err := c.client.do(ctx, "POST", "/carts/"+id, body, &w); err != nil {
		return nil, fmt.Errorf("updating cart: %w", err)
	}
	return &w, nil
}
