package domain

// IntentType classifies what the shopper wants to do.
type IntentType int

const (
	IntentUnknown IntentType = iota
	IntentAddToCart
	IntentRemoveFromCart
	IntentClearCart
	IntentCheckout
	IntentViewCart
	IntentNavigateHome
	IntentNavigateProducts
	IntentSearchProducts
	IntentHelp
	IntentRepeat
	IntentCancel
)

// String returns a human-readable intent type.
func (i IntentType) String() string {
	switch i {
	case IntentAddToCart:
		return "add_to_cart"
	case IntentRemoveFromCart:
		return "remove_from_cart"
	case IntentClearCart:
		return "clear_cart"
	case IntentCheckout:
		return "checkout"
	case IntentViewCart:
		return "view_cart"
	case IntentNavigateHome:
		return "navigate_home"
	case IntentNavigateProducts:
		return "navigate_products"
	case IntentSearchProducts:
		return "search_products"
	case IntentHelp:
		return "help"
	case IntentRepeat:
		return "repeat"
	case IntentCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Command is a fully parsed voice command: the detected intent plus the
// spoken product phrase (empty when the utterance named none) and the
// requested quantity (always >= 1).
type Command struct {
	Intent   IntentType
	Product  string
	Quantity int
}

// intentNames maps snake_case names to IntentType values.
var intentNames = map[string]IntentType{
	"add_to_cart":       IntentAddToCart,
	"remove_from_cart":  IntentRemoveFromCart,
	"clear_cart":        IntentClearCart,
	"checkout":          IntentCheckout,
	"view_cart":         IntentViewCart,
	"navigate_home":     IntentNavigateHome,
	"navigate_products": IntentNavigateProducts,
	"search_products":   IntentSearchProducts,
	"help":              IntentHelp,
	"repeat":            IntentRepeat,
	"cancel":            IntentCancel,
	"unknown":           IntentUnknown,
}

// IntentFromString converts a snake_case intent name to an IntentType.
// Returns IntentUnknown for unrecognized names.
func IntentFromString(name string) IntentType {
	if t, ok := intentNames[name]; ok {
		return t
	}
	return IntentUnknown
}
