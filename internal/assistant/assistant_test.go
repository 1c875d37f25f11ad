package assistant

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/hammamikhairi/voxcart/internal/commerce"
	"github.com/hammamikhairi/voxcart/internal/conversation"
	"github.com/hammamikhairi/voxcart/internal/domain"
	"github.com/hammamikhairi/voxcart/internal/logger"
	"github.com/hammamikhairi/voxcart/internal/storage"
)

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	urgent   []string
}

func (f *fakeNotifier) Notify(ctx context.Context, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeNotifier) NotifyUrgent(ctx context.Context, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urgent = append(f.urgent, message)
	return nil
}

func (f *fakeNotifier) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return ""
	}
	return f.messages[len(f.messages)-1]
}

type fakeNavigator struct {
	routes []domain.Route
}

func (f *fakeNavigator) Navigate(ctx context.Context, route domain.Route) error {
	f.routes = append(f.routes, route)
	return nil
}

func (f *fakeNavigator) lastRoute() domain.Route {
	if len(f.routes) == 0 {
		return ""
	}
	return f.routes[len(f.routes)-1]
}

type fixture struct {
	assistant *Assistant
	notifier  *fakeNotifier
	nav       *fakeNavigator
	cart      domain.CartService
	ctx       context.Context
}

func setup(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	log := logger.New(logger.LevelOff, io.Discard)
	catalog := commerce.NewMemoryCatalog(log)
	cart := commerce.NewMemoryCart(catalog, log)
	store := storage.NewMemoryStore(log)
	notifier := &fakeNotifier{}
	nav := &fakeNavigator{}

	a := New(
		conversation.NewPatternClassifier(log),
		catalog,
		cart,
		store,
		nav,
		notifier,
		log,
		opts...,
	)

	ctx := context.Background()
	if err := a.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	return &fixture{assistant: a, notifier: notifier, nav: nav, cart: cart, ctx: ctx}
}

func (f *fixture) handle(t *testing.T, utterance string) bool {
	t.Helper()
	done, err := f.assistant.Handle(f.ctx, utterance)
	if err != nil {
		t.Fatalf("Handle(%q) error: %v", utterance, err)
	}
	return done
}

func TestAddToCartFlow(t *testing.T) {
	f := setup(t)

	f.handle(t, "add the laptop to my cart")

	cart, _ := f.cart.Get(f.ctx)
	if cart.ItemCount() != 1 {
		t.Fatalf("cart item count = %d, want 1", cart.ItemCount())
	}
	if cart.LineItems[0].Name != "laptop" {
		t.Errorf("added %q, want laptop", cart.LineItems[0].Name)
	}
	if got := f.notifier.last(); !strings.Contains(got, "laptop") {
		t.Errorf("confirmation %q should mention laptop", got)
	}
}

func TestAddWithQuantity(t *testing.T) {
	f := setup(t)

	f.handle(t, "add two keyboards to my cart")

	cart, _ := f.cart.Get(f.ctx)
	if cart.ItemCount() != 2 {
		t.Fatalf("cart item count = %d, want 2", cart.ItemCount())
	}
	if cart.LineItems[0].Name != "keyboard" {
		t.Errorf("added %q, want keyboard", cart.LineItems[0].Name)
	}
}

func TestAddFuzzyMatch(t *testing.T) {
	f := setup(t)

	// "camra" is a recognition slip for "camera".
	f.handle(t, "add the camra to my cart")

	cart, _ := f.cart.Get(f.ctx)
	if cart.ItemCount() != 1 || cart.LineItems[0].Name != "camera" {
		t.Fatalf("cart = %+v, want one camera", cart.LineItems)
	}
	// The confirmation reads back both what was heard and what matched.
	got := f.notifier.last()
	if !strings.Contains(got, "camra") || !strings.Contains(got, "camera") {
		t.Errorf("confirmation %q should read back heard and matched names", got)
	}
}

func TestAddNoMatch(t *testing.T) {
	f := setup(t)

	f.handle(t, "add the flux capacitor to my cart")

	cart, _ := f.cart.Get(f.ctx)
	if cart.ItemCount() != 0 {
		t.Fatalf("nothing should be added, cart = %+v", cart.LineItems)
	}
	got := f.notifier.last()
	if !strings.Contains(got, "couldn't find") {
		t.Errorf("response %q should apologize for the missing match", got)
	}
	if !strings.Contains(got, "laptop") {
		t.Errorf("response %q should list available products", got)
	}
}

func TestAddWithoutProduct(t *testing.T) {
	f := setup(t)

	f.handle(t, "add it to my cart")

	cart, _ := f.cart.Get(f.ctx)
	if cart.ItemCount() != 0 {
		t.Fatalf("nothing should be added, cart = %+v", cart.LineItems)
	}
	if got := f.notifier.last(); !strings.Contains(got, "Which product") {
		t.Errorf("response %q should ask which product", got)
	}
}

func TestRemoveFromCart(t *testing.T) {
	f := setup(t)

	f.handle(t, "add the watch to my cart")
	f.handle(t, "remove the watch from my cart")

	cart, _ := f.cart.Get(f.ctx)
	if cart.ItemCount() != 0 {
		t.Fatalf("cart should be empty, got %+v", cart.LineItems)
	}
}

func TestRemoveNotInCart(t *testing.T) {
	f := setup(t)

	f.handle(t, "remove the tablet from my cart")

	if got := f.notifier.last(); !strings.Contains(got, "couldn't find it in your cart") {
		t.Errorf("response %q should say the item isn't in the cart", got)
	}
}

func TestClearCart(t *testing.T) {
	f := setup(t)

	f.handle(t, "add the phone to my cart")
	f.handle(t, "add the tablet to my cart")
	f.handle(t, "clear my cart")

	cart, _ := f.cart.Get(f.ctx)
	if cart.ItemCount() != 0 {
		t.Fatalf("cart should be empty, got %+v", cart.LineItems)
	}
}

func TestNavigation(t *testing.T) {
	tests := []struct {
		utterance string
		want      domain.Route
	}{
		{"take me home", domain.RouteHome},
		{"show me the products", domain.RouteProducts},
		{"show me my cart", domain.RouteCart},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			f := setup(t)
			f.handle(t, tt.utterance)
			if got := f.nav.lastRoute(); got != tt.want {
				t.Errorf("Handle(%q) navigated to %q, want %q", tt.utterance, got, tt.want)
			}
		})
	}
}

func TestBrowseProductsSpeaksCategories(t *testing.T) {
	f := setup(t)

	f.handle(t, "show me the products")

	if got := f.nav.lastRoute(); got != domain.RouteProducts {
		t.Errorf("navigated to %q, want products", got)
	}
	if got := f.notifier.last(); !strings.Contains(got, "All products") {
		t.Errorf("response %q should read out the catalog categories", got)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := setup(t)

	f.handle(t, "i want to checkout")

	if len(f.nav.routes) != 0 {
		t.Errorf("empty cart should not navigate, got %v", f.nav.routes)
	}
	if got := f.notifier.last(); !strings.Contains(got, "empty") {
		t.Errorf("response %q should mention the empty cart", got)
	}
}

func TestCheckoutWithItems(t *testing.T) {
	f := setup(t)

	f.handle(t, "add the shoes to my cart")
	f.handle(t, "i want to checkout")

	if got := f.nav.lastRoute(); got != domain.RouteCheckout {
		t.Errorf("navigated to %q, want checkout", got)
	}
}

func TestSearch(t *testing.T) {
	f := setup(t)

	f.handle(t, "i'm looking for a phone")

	if got := f.nav.lastRoute(); got != domain.RouteSearch {
		t.Errorf("navigated to %q, want search", got)
	}
	if got := f.notifier.last(); !strings.Contains(got, "found") {
		t.Errorf("response %q should report result count", got)
	}
}

func TestRepeat(t *testing.T) {
	f := setup(t)

	f.handle(t, "help")
	helpLine := f.notifier.last()

	f.handle(t, "say that again")
	if got := f.notifier.last(); got != helpLine {
		t.Errorf("repeat said %q, want %q", got, helpLine)
	}

	// Repeating twice repeats the same line again.
	f.handle(t, "repeat that")
	if got := f.notifier.last(); got != helpLine {
		t.Errorf("second repeat said %q, want %q", got, helpLine)
	}
}

// With playback history, responses reach the history only when the
// speech pipeline reports completed playback. A line the user never
// heard must not be replayable via "repeat".
func TestPlaybackHistoryDeferred(t *testing.T) {
	f := setup(t, WithPlaybackHistory())

	f.handle(t, "help")
	helpLine := f.notifier.last()

	// The help line was notified but playback has not completed, so
	// nothing is recorded yet and there is nothing to repeat.
	if _, ok := f.assistant.History().LastAssistant(); ok {
		t.Fatal("history recorded a line before playback completed")
	}
	f.handle(t, "say that again")
	if got := f.notifier.last(); !strings.Contains(got, "said anything") {
		t.Errorf("repeat before playback said %q, want a nothing-to-repeat line", got)
	}

	// Playback completion records the line, as the speech queue's
	// after-speak hook does in production.
	f.assistant.History().AddAssistant(helpLine)

	f.handle(t, "say that again")
	if got := f.notifier.last(); got != helpLine {
		t.Errorf("repeat after playback said %q, want %q", got, helpLine)
	}
}

func TestStopEndsSession(t *testing.T) {
	f := setup(t)

	done := f.handle(t, "goodbye")
	if !done {
		t.Fatal("Handle(goodbye) should report done")
	}
	if f.assistant.Session().Status != domain.SessionStopped {
		t.Errorf("session status = %s, want stopped", f.assistant.Session().Status)
	}
}

func TestUnknownUtterance(t *testing.T) {
	f := setup(t)

	f.handle(t, "the weather is nice")

	if got := f.notifier.last(); !strings.Contains(got, "not sure") {
		t.Errorf("response %q should be the fallback line", got)
	}
}
