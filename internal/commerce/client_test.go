package commerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// newTestClient points a client at the test server, bypassing OAuth.
func newTestClient(srv *httptest.Server) *Client {
	return NewClient(Credentials{
		ProjectKey: "test-project",
		APIURL:     srv.URL,
		AuthURL:    srv.URL,
	}, testLog(), WithHTTPClient(srv.Client()))
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("encoding response: %v", err)
	}
}

func TestCatalogClientSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/test-project/product-projections/search") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("text.en") != "laptop" {
			t.Errorf("text.en = %q, want %q", q.Get("text.en"), "laptop")
		}
		if q.Get("fuzzy") != "true" {
			t.Error("fuzzy should be enabled")
		}
		if q.Get("limit") != "20" {
			t.Errorf("limit = %q, want 20", q.Get("limit"))
		}

		writeJSON(t, w, map[string]any{
			"total": 1,
			"results": []map[string]any{{
				"id":          "prod-1",
				"name":        map[string]string{"en": "Gaming Laptop"},
				"slug":        map[string]string{"en": "gaming-laptop"},
				"description": map[string]string{"en": "Fast."},
				"masterVariant": map[string]any{
					"sku": "SKU-LAPTOP",
					"prices": []map[string]any{{
						"value": map[string]any{"centAmount": 129900, "currencyCode": "EUR"},
					}},
				},
			}},
		})
	}))
	defer srv.Close()

	catalog := NewCatalogClient(newTestClient(srv))
	products, err := catalog.Search(context.Background(), "laptop")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("Search() returned %d products, want 1", len(products))
	}

	p := products[0]
	if p.ID != "prod-1" || p.Name != "Gaming Laptop" || p.SKU != "SKU-LAPTOP" {
		t.Errorf("unexpected product: %+v", p)
	}
	if p.Price.CentAmount != 129900 || p.Price.CurrencyCode != "EUR" {
		t.Errorf("unexpected price: %+v", p.Price)
	}
}

func TestCatalogClientCategories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/test-project/categories" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeJSON(t, w, map[string]any{
			"results": []map[string]any{
				{
					"id":   "cat-1",
					"name": map[string]string{"en": "Electronics"},
					"slug": map[string]string{"en": "electronics"},
				},
				{
					"id":   "cat-2",
					"name": map[string]string{"en": "Footwear"},
					"slug": map[string]string{"en": "footwear"},
				},
			},
		})
	}))
	defer srv.Close()

	catalog := NewCatalogClient(newTestClient(srv))

	cats, err := catalog.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories() error: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("got %d categories, want 2", len(cats))
	}
	if cats[0].Name != "Electronics" || cats[0].Slug != "electronics" {
		t.Errorf("first category = %+v, want Electronics/electronics", cats[0])
	}
	if cats[1].ID != "cat-2" {
		t.Errorf("second category ID = %q, want cat-2", cats[1].ID)
	}
}

func TestCartClientLazyCreate(t *testing.T) {
	var creates atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /test-project/carts", func(w http.ResponseWriter, r *http.Request) {
		creates.Add(1)

		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["currency"] != "EUR" || body["country"] != "DE" {
			t.Errorf("create body = %v, want EUR/DE", body)
		}

		writeJSON(t, w, map[string]any{"id": "cart-1", "version": 1})
	})
	mux.HandleFunc("GET /test-project/carts/cart-1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"id": "cart-1", "version": 1})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	cart := NewCartClient(newTestClient(srv))
	ctx := context.Background()

	if _, err := cart.Get(ctx); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if _, err := cart.Get(ctx); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got := creates.Load(); got != 1 {
		t.Errorf("cart created %d times, want 1", got)
	}
}

func TestCartClientAddLineItem(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /test-project/carts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"id": "cart-1", "version": 1})
	})
	mux.HandleFunc("POST /test-project/carts/cart-1", func(w http.ResponseWriter, r *http.Request) {
		var body cartUpdate
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.Version != 1 {
			t.Errorf("update version = %d, want 1", body.Version)
		}
		if len(body.Actions) != 1 {
			t.Fatalf("actions = %+v, want one", body.Actions)
		}
		a := body.Actions[0]
		if a.Action != "addLineItem" || a.ProductID != "prod-1" || a.Quantity != 2 || a.VariantID != 1 {
			t.Errorf("unexpected action: %+v", a)
		}

		writeJSON(t, w, map[string]any{
			"id": "cart-1", "version": 2,
			"lineItems": []map[string]any{{
				"id":        "line-1",
				"productId": "prod-1",
				"name":      map[string]string{"en": "laptop"},
				"quantity":  2,
				"variant":   map[string]string{"sku": "SKU-LAPTOP"},
				"price":     map[string]any{"value": map[string]any{"centAmount": 129900, "currencyCode": "EUR"}},
			}},
			"totalPrice": map[string]any{"centAmount": 259800, "currencyCode": "EUR"},
		})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	cart := NewCartClient(newTestClient(srv))
	got, err := cart.AddLineItem(context.Background(), "prod-1", 2)
	if err != nil {
		t.Fatalf("AddLineItem() error: %v", err)
	}
	if got.Version != 2 || got.ItemCount() != 2 {
		t.Errorf("cart = %+v", got)
	}
	if got.TotalPrice.CentAmount != 259800 {
		t.Errorf("total = %d, want 259800", got.TotalPrice.CentAmount)
	}
}

func TestCartClientReplaysOnConflict(t *testing.T) {
	var updates atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /test-project/carts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"id": "cart-1", "version": 1})
	})
	mux.HandleFunc("GET /test-project/carts/cart-1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"id": "cart-1", "version": 5})
	})
	mux.HandleFunc("POST /test-project/carts/cart-1", func(w http.ResponseWriter, r *http.Request) {
		var body cartUpdate
		json.NewDecoder(r.Body).Decode(&body)

		if updates.Add(1) == 1 {
			// Stale version: reject.
			w.WriteHeader(http.StatusConflict)
			writeJSON(t, w, map[string]any{"message": "version mismatch"})
			return
		}
		if body.Version != 5 {
			t.Errorf("replay version = %d, want 5", body.Version)
		}
		writeJSON(t, w, map[string]any{"id": "cart-1", "version": 6})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	cart := NewCartClient(newTestClient(srv))
	got, err := cart.AddLineItem(context.Background(), "prod-1", 1)
	if err != nil {
		t.Fatalf("AddLineItem() should recover from conflict: %v", err)
	}
	if got.Version != 6 {
		t.Errorf("version = %d, want 6", got.Version)
	}
	if updates.Load() != 2 {
		t.Errorf("update posted %d times, want 2", updates.Load())
	}
}

func TestClientAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"nope"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	catalog := NewCatalogClient(newTestClient(srv))
	_, err := catalog.List(context.Background())
	if err == nil {
		t.Fatal("List() should fail on 404")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false, want true", err)
	}
	if IsConflict(err) {
		t.Errorf("IsConflict(%v) = true, want false", err)
	}
}
