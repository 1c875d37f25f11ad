// Package assistant implements the core command loop: classify an
// utterance, resolve entities, execute the command, and respond.
package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/hammamikhairi/voxcart/internal/conversation"
	"github.com/hammamikhairi/voxcart/internal/domain"
	"github.com/hammamikhairi/voxcart/internal/logger"
	"github.com/hammamikhairi/voxcart/internal/match"
	"github.com/hammamikhairi/voxcart/internal/speech"
)

// Option configures the assistant.
type Option func(*Assistant)

// WithThreshold sets the minimum similarity for product resolution.
func WithThreshold(t float64) Option {
	return func(a *Assistant) {
		a.threshold = t
	}
}

// WithHistoryLimit caps the conversation history length.
func WithHistoryLimit(n int) Option {
	return func(a *Assistant) {
		a.history = conversation.NewHistory(n)
	}
}

// WithPlaybackHistory defers recording of assistant lines: responses
// enter the history only when the playback queue's after-speak hook
// calls History().AddAssistant, so interrupted or never-played lines
// are not recorded. Without this option lines are recorded at notify
// time, which is right for text-only mode.
func WithPlaybackHistory() Option {
	return func(a *Assistant) {
		a.deferHistory = true
	}
}

// Assistant routes classified voice commands to the catalog, cart, and
// navigator. It depends only on interfaces and is fully testable with
// fakes.
type Assistant struct {
	classifier domain.Classifier
	catalog    domain.Catalog
	cart       domain.CartService
	store      domain.SessionStore
	nav        domain.Navigator
	notifier   domain.Notifier
	history    *conversation.History
	log        *logger.Logger
	threshold  float64

	// deferHistory hands assistant-line recording to the playback
	// pipeline. See WithPlaybackHistory.
	deferHistory bool

	session *domain.Session
}

// New creates an assistant with the given collaborators and options.
func New(
	classifier domain.Classifier,
	catalog domain.Catalog,
	cart domain.CartService,
	store domain.SessionStore,
	nav domain.Navigator,
	notifier domain.Notifier,
	log *logger.Logger,
	opts ...Option,
) *Assistant {
	a := &Assistant{
		classifier: classifier,
		catalog:    catalog,
		cart:       cart,
		store:      store,
		nav:        nav,
		notifier:   notifier,
		history:    conversation.NewHistory(conversation.DefaultHistoryLimit),
		log:        log,
		threshold:  match.DefaultThreshold,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start opens a session and greets the user.
func (a *Assistant) Start(ctx context.Context) error {
	a.session = &domain.Session{
		ID:        generateID(),
		Status:    domain.SessionActive,
		StartedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := a.store.Save(ctx, a.session); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	a.log.Info("assistant: session %s started", a.session.ID)
	a.respond(ctx, speech.LineWelcome())
	return nil
}

// Session returns the current session, nil before Start.
func (a *Assistant) Session() *domain.Session { return a.session }

// History returns the conversation history.
func (a *Assistant) History() *conversation.History { return a.history }

// Handle processes one utterance end to end. The returned bool is true
// when the user asked to stop the assistant.
func (a *Assistant) Handle(ctx context.Context, utterance string) (bool, error) {
	a.history.AddUser(utterance)
	cmd := a.classifier.Classify(utterance)
	a.log.Info("assistant: intent=%s product=%q quantity=%d", cmd.Intent, cmd.Product, cmd.Quantity)

	var err error
	done := false

	switch cmd.Intent {
	case domain.IntentAddToCart:
		err = a.addToCart(ctx, cmd)
	case domain.IntentRemoveFromCart:
		err = a.removeFromCart(ctx, cmd)
	case domain.IntentClearCart:
		err = a.clearCart(ctx)
	case domain.IntentCheckout:
		err = a.checkout(ctx)
	case domain.IntentViewCart:
		err = a.viewCart(ctx)
	case domain.IntentNavigateHome:
		err = a.goTo(ctx, domain.RouteHome, speech.LineGoingHome())
	case domain.IntentNavigateProducts:
		err = a.browseProducts(ctx)
	case domain.IntentSearchProducts:
		err = a.search(ctx, cmd)
	case domain.IntentHelp:
		a.respond(ctx, speech.LineHelp())
	case domain.IntentRepeat:
		a.repeat(ctx)
	case domain.IntentCancel:
		done = true
		err = a.stop(ctx)
	default:
		a.respond(ctx, speech.LineUnknown())
	}

	if err != nil {
		a.log.Error("assistant: %s failed: %v", cmd.Intent, err)
		a.respondUrgent(ctx, speech.LineApology())
		return done, err
	}

	a.touch(ctx)
	return done, nil
}

// Stop marks the session stopped without a spoken goodbye. Used on
// shutdown signals.
func (a *Assistant) Stop(ctx context.Context) error {
	if a.session == nil {
		return nil
	}
	a.session.Status = domain.SessionStopped
	a.session.UpdatedAt = time.Now()
	return a.store.Save(ctx, a.session)
}

// ── Intent handlers ──────────────────────────────────────────────

func (a *Assistant) addToCart(ctx context.Context, cmd domain.Command) error {
	if cmd.Product == "" {
		a.respond(ctx, speech.LineWhichToAdd())
		return nil
	}

	products, err := a.catalog.List(ctx)
	if err != nil {
		return fmt.Errorf("listing products: %w", err)
	}

	names := make([]string, len(products))
	for i, p := range products {
		names[i] = p.Name
	}

	m, ok := match.Resolve(cmd.Product, names, a.threshold)
	if !ok {
		a.log.Debug("assistant: no product match for %q", cmd.Product)
		a.respond(ctx, speech.LineNoMatch(cmd.Product, names))
		return nil
	}

	var product domain.Product
	for _, p := range products {
		if p.Name == m.Name {
			product = p
			break
		}
	}

	a.log.Info("assistant: resolved %q -> %q (score=%.2f)", cmd.Product, m.Name, m.Score)
	if _, err := a.cart.AddLineItem(ctx, product.ID, cmd.Quantity); err != nil {
		return fmt.Errorf("adding %s: %w", product.Name, err)
	}

	a.respond(ctx, speech.LineAdded(cmd.Product, m.Name, cmd.Quantity))
	return nil
}

func (a *Assistant) removeFromCart(ctx context.Context, cmd domain.Command) error {
	if cmd.Product == "" {
		a.respond(ctx, speech.LineWhichToRemove())
		return nil
	}

	cart, err := a.cart.Get(ctx)
	if err != nil {
		return fmt.Errorf("fetching cart: %w", err)
	}

	m, ok := match.Resolve(cmd.Product, cart.ItemNames(), a.threshold)
	if !ok {
		a.respond(ctx, speech.LineNotInCart(cmd.Product))
		return nil
	}

	item, found := cart.FindLineItem(m.Name)
	if !found {
		a.respond(ctx, speech.LineNotInCart(cmd.Product))
		return nil
	}

	if _, err := a.cart.RemoveLineItem(ctx, item.ID); err != nil {
		return fmt.Errorf("removing %s: %w", item.Name, err)
	}

	a.respond(ctx, speech.LineRemoved(cmd.Product, item.Name))
	return nil
}

func (a *Assistant) clearCart(ctx context.Context) error {
	if _, err := a.cart.Clear(ctx); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	a.respond(ctx, speech.LineCartCleared())
	return nil
}

func (a *Assistant) checkout(ctx context.Context) error {
	cart, err := a.cart.Get(ctx)
	if err != nil {
		return fmt.Errorf("fetching cart: %w", err)
	}
	if len(cart.LineItems) == 0 {
		a.respond(ctx, speech.LineCartEmpty())
		return nil
	}
	if err := a.nav.Navigate(ctx, domain.RouteCheckout); err != nil {
		return fmt.Errorf("navigating to checkout: %w", err)
	}
	a.respond(ctx, speech.LineCheckout())
	return nil
}

func (a *Assistant) viewCart(ctx context.Context) error {
	cart, err := a.cart.Get(ctx)
	if err != nil {
		return fmt.Errorf("fetching cart: %w", err)
	}
	if err := a.nav.Navigate(ctx, domain.RouteCart); err != nil {
		return fmt.Errorf("navigating to cart: %w", err)
	}

	a.respond(ctx, speech.LineCartSummary(cart.ItemNames(), formatPrice(cart.TotalPrice)))
	return nil
}

// browseProducts opens the product listing and reads out the catalog's
// categories when it has any.
func (a *Assistant) browseProducts(ctx context.Context) error {
	if err := a.nav.Navigate(ctx, domain.RouteProducts); err != nil {
		return fmt.Errorf("navigating to products: %w", err)
	}

	categories, err := a.catalog.Categories(ctx)
	if err != nil {
		// The listing is already open; missing categories only cost
		// the spoken browse hint.
		a.log.Warn("assistant: listing categories: %v", err)
		categories = nil
	}
	names := make([]string, len(categories))
	for i, cat := range categories {
		names[i] = cat.Name
	}

	a.respond(ctx, speech.LineShowingProducts(names))
	return nil
}

func (a *Assistant) goTo(ctx context.Context, route domain.Route, line string) error {
	if err := a.nav.Navigate(ctx, route); err != nil {
		return fmt.Errorf("navigating to %s: %w", route, err)
	}
	a.respond(ctx, line)
	return nil
}

func (a *Assistant) search(ctx context.Context, cmd domain.Command) error {
	if cmd.Product == "" {
		a.respond(ctx, speech.LineWhatToSearch())
		return nil
	}

	results, err := a.catalog.Search(ctx, cmd.Product)
	if err != nil {
		return fmt.Errorf("searching %q: %w", cmd.Product, err)
	}
	if err := a.nav.Navigate(ctx, domain.RouteSearch); err != nil {
		return fmt.Errorf("navigating to search: %w", err)
	}

	a.respond(ctx, speech.LineSearchResults(cmd.Product, len(results)))
	return nil
}

func (a *Assistant) repeat(ctx context.Context) {
	last, ok := a.history.LastAssistant()
	if !ok {
		a.respond(ctx, speech.LineNothingToRepeat())
		return
	}
	// Re-speak without recording here, so repeating twice repeats the
	// same line. (With playback history the replay re-records the same
	// text on completion, which keeps LastAssistant unchanged.)
	if err := a.notifier.Notify(ctx, last); err != nil {
		a.log.Error("assistant: repeat notify failed: %v", err)
	}
}

func (a *Assistant) stop(ctx context.Context) error {
	a.respond(ctx, speech.LineBye())
	return a.Stop(ctx)
}

// ── Helpers ──────────────────────────────────────────────────────

// respond sends a line to the user. In text-only mode it is recorded
// in the history immediately; with playback history the record lands
// via the after-speak hook once the line has actually been spoken.
func (a *Assistant) respond(ctx context.Context, text string) {
	if err := a.notifier.Notify(ctx, text); err != nil {
		a.log.Error("assistant: notify failed: %v", err)
	}
	if !a.deferHistory {
		a.history.AddAssistant(text)
	}
}

func (a *Assistant) respondUrgent(ctx context.Context, text string) {
	if err := a.notifier.NotifyUrgent(ctx, text); err != nil {
		a.log.Error("assistant: urgent notify failed: %v", err)
	}
	if !a.deferHistory {
		a.history.AddAssistant(text)
	}
}

// touch bumps the session's UpdatedAt.
func (a *Assistant) touch(ctx context.Context) {
	if a.session == nil {
		return
	}
	a.session.UpdatedAt = time.Now()
	if err := a.store.Save(ctx, a.session); err != nil {
		a.log.Error("assistant: saving session: %v", err)
	}
}

// formatPrice renders a price for speech, e.g. "129 euros 90".
func formatPrice(p domain.Price) string {
	if p.CentAmount == 0 {
		return ""
	}
	unit := "euros"
	if p.CurrencyCode != "" && p.CurrencyCode != "EUR" {
		unit = p.CurrencyCode
	}
	whole := p.CentAmount / 100
	cents := p.CentAmount % 100
	if cents == 0 {
		return fmt.Sprintf("%d %s", whole, unit)
	}
	return fmt.Sprintf("%d %s %02d", whole, unit, cents)
}
