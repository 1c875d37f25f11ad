package commerce

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/hammamikhairi/voxcart/internal/domain"
	"github.com/hammamikhairi/voxcart/internal/logger"
)

func testLog() *logger.Logger {
	return logger.New(logger.LevelOff, io.Discard)
}

func TestMemoryCatalogList(t *testing.T) {
	c := NewMemoryCatalog(testLog())

	products, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(products) != 8 {
		t.Fatalf("List() returned %d products, want 8", len(products))
	}

	names := make(map[string]bool)
	for _, p := range products {
		names[p.Name] = true
		if p.ID == "" || p.SKU == "" || p.Price.CentAmount == 0 {
			t.Errorf("product %q has incomplete fields: %+v", p.Name, p)
		}
	}
	for _, want := range []string{"shoes", "laptop", "headphones", "watch", "phone", "tablet", "camera", "keyboard"} {
		if !names[want] {
			t.Errorf("List() missing product %q", want)
		}
	}
}

func TestMemoryCatalogSearch(t *testing.T) {
	c := NewMemoryCatalog(testLog())

	tests := []struct {
		query string
		want  int
	}{
		{"laptop", 1},
		{"phone", 2}, // phone and headphones
		{"LAPTOP", 1},
		{"nothing-like-this", 0},
	}

	for _, tt := range tests {
		got, err := c.Search(context.Background(), tt.query)
		if err != nil {
			t.Fatalf("Search(%q) error: %v", tt.query, err)
		}
		if len(got) != tt.want {
			t.Errorf("Search(%q) returned %d products, want %d", tt.query, len(got), tt.want)
		}
	}
}

func TestMemoryCatalogCategories(t *testing.T) {
	c := NewMemoryCatalog(testLog())

	cats, err := c.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories() error: %v", err)
	}
	if len(cats) != 1 {
		t.Fatalf("got %d categories, want 1", len(cats))
	}
	if cats[0].Name != "All products" {
		t.Errorf("category name = %q, want %q", cats[0].Name, "All products")
	}
}

func TestMemoryCartAddAndGet(t *testing.T) {
	ctx := context.Background()
	catalog := NewMemoryCatalog(testLog())
	cart := NewMemoryCart(catalog, testLog())

	got, err := cart.AddLineItem(ctx, "demo-002", 2) // laptop
	if err != nil {
		t.Fatalf("AddLineItem() error: %v", err)
	}
	if got.ItemCount() != 2 {
		t.Errorf("ItemCount() = %d, want 2", got.ItemCount())
	}
	if len(got.LineItems) != 1 || got.LineItems[0].Name != "laptop" {
		t.Fatalf("unexpected line items: %+v", got.LineItems)
	}
	if got.TotalPrice.CentAmount != 2*129900 {
		t.Errorf("total = %d, want %d", got.TotalPrice.CentAmount, 2*129900)
	}

	// Adding the same product again merges into the existing line.
	got, err = cart.AddLineItem(ctx, "demo-002", 1)
	if err != nil {
		t.Fatalf("AddLineItem() error: %v", err)
	}
	if len(got.LineItems) != 1 || got.LineItems[0].Quantity != 3 {
		t.Errorf("line items after merge: %+v", got.LineItems)
	}
}

func TestMemoryCartAddUnknownProduct(t *testing.T) {
	cart := NewMemoryCart(NewMemoryCatalog(testLog()), testLog())

	if _, err := cart.AddLineItem(context.Background(), "no-such-id", 1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("AddLineItem(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryCartRemove(t *testing.T) {
	ctx := context.Background()
	cart := NewMemoryCart(NewMemoryCatalog(testLog()), testLog())

	snap, err := cart.AddLineItem(ctx, "demo-001", 1)
	if err != nil {
		t.Fatal(err)
	}
	lineID := snap.LineItems[0].ID

	snap, err = cart.RemoveLineItem(ctx, lineID)
	if err != nil {
		t.Fatalf("RemoveLineItem() error: %v", err)
	}
	if len(snap.LineItems) != 0 {
		t.Errorf("line items after remove: %+v", snap.LineItems)
	}

	if _, err := cart.RemoveLineItem(ctx, lineID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("RemoveLineItem(gone) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryCartClear(t *testing.T) {
	ctx := context.Background()
	cart := NewMemoryCart(NewMemoryCatalog(testLog()), testLog())

	cart.AddLineItem(ctx, "demo-001", 1)
	cart.AddLineItem(ctx, "demo-003", 2)

	snap, err := cart.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if len(snap.LineItems) != 0 || snap.TotalPrice.CentAmount != 0 {
		t.Errorf("cart after Clear: %+v", snap)
	}
}

func TestMemoryCartVersionIncrements(t *testing.T) {
	ctx := context.Background()
	cart := NewMemoryCart(NewMemoryCatalog(testLog()), testLog())

	before, _ := cart.Get(ctx)
	after, _ := cart.AddLineItem(ctx, "demo-001", 1)
	if after.Version <= before.Version {
		t.Errorf("version did not increase: before=%d after=%d", before.Version, after.Version)
	}
}

func TestMemoryCartSnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	cart := NewMemoryCart(NewMemoryCatalog(testLog()), testLog())

	snap1, _ := cart.AddLineItem(ctx, "demo-001", 1)
	snap1.LineItems[0].Quantity = 99

	snap2, _ := cart.Get(ctx)
	if snap2.LineItems[0].Quantity != 1 {
		t.Error("mutating a snapshot must not affect the cart")
	}
}
