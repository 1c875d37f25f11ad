package domain

import "context"

// Catalog provides products. Implementations can be in-memory (demo),
// or backed by a hosted commerce API.
type Catalog interface {
	List(ctx context.Context) ([]Product, error)
	Search(ctx context.Context, query string) ([]Product, error)
	Categories(ctx context.Context) ([]Category, error)
}

// CartService executes cart mutations and returns the updated snapshot.
// Implementations own cart creation; callers never see a nil cart from a
// successful call.
type CartService interface {
	Get(ctx context.Context) (*Cart, error)
	AddLineItem(ctx context.Context, productID string, quantity int) (*Cart, error)
	RemoveLineItem(ctx context.Context, lineItemID string) (*Cart, error)
	Clear(ctx context.Context) (*Cart, error)
}

// SessionStore persists assistant sessions. Implementations can be
// in-memory or any other backend.
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	ListActive(ctx context.Context) ([]*Session, error)
}

// Classifier converts a raw recognized utterance into a structured command.
// Implementations must be pure: the same utterance always yields the same
// command.
type Classifier interface {
	Classify(utterance string) Command
}

// Navigator performs client-side navigation to a route. The core only
// consumes success/failure for spoken confirmation.
type Navigator interface {
	Navigate(ctx context.Context, route Route) error
}

// Notifier delivers messages to the user. Implementations can write to
// the terminal or also speak through the TTS pipeline.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}

// Speaker queues text for spoken output. Say never blocks; Interrupt
// drops everything queued and silences the current utterance.
type Speaker interface {
	Say(text string)
	Interrupt()
	Mute()
	Unmute()
}

// Route is a client-side navigation target.
type Route string

const (
	RouteHome     Route = "/"
	RouteProducts Route = "/products"
	RouteCart     Route = "/cart"
	RouteCheckout Route = "/checkout"
	RouteSearch   Route = "/search"
)
