// Package speech — lines.go centralises every spoken string.
// Edit this file to change the assistant's personality. Keep lines
// short and direct; the TTS engine handles inflection.
package speech

import (
	"fmt"
	"strings"
)

// ── Greeting / Global ────────────────────────────────────────────

func LineWelcome() string {
	return "Hello! I am your shopping assistant. What would you like me to do?"
}

func LineBye() string {
	return "Goodbye! Have a great day!"
}

func LineShutdown() string {
	return "Shutting down."
}

func LineNothingToRepeat() string {
	return "I haven't said anything yet."
}

func LineApology() string {
	return "Sorry, something went wrong. Please try again."
}

// ── Cart ─────────────────────────────────────────────────────────

// LineAdded confirms a cart addition. When the spoken phrase differs
// from the resolved product, both are read back so the user can catch
// a bad match.
func LineAdded(heard, matched string, quantity int) string {
	item := matched
	if quantity > 1 {
		item = fmt.Sprintf("%d %s", quantity, matched)
	}
	if !strings.EqualFold(heard, matched) {
		return fmt.Sprintf("I heard %s. Adding %s to your cart.", heard, item)
	}
	return fmt.Sprintf("Added %s to your cart.", item)
}

// LineNoMatch apologizes for an unresolvable product phrase and reads
// out what is available.
func LineNoMatch(heard string, available []string) string {
	if len(available) == 0 {
		return fmt.Sprintf("I heard %s, but I couldn't find a matching product.", heard)
	}
	return fmt.Sprintf("I heard %s, but I couldn't find a matching product. Available products include %s.",
		heard, joinSpoken(available))
}

func LineWhichToAdd() string {
	return "Which product would you like to add? Please say add followed by the product name."
}

func LineRemoved(heard, matched string) string {
	if !strings.EqualFold(heard, matched) {
		return fmt.Sprintf("I heard %s. Removing %s from your cart.", heard, matched)
	}
	return fmt.Sprintf("Removed %s from your cart.", matched)
}

func LineNotInCart(heard string) string {
	return fmt.Sprintf("I heard %s, but I couldn't find it in your cart.", heard)
}

func LineWhichToRemove() string {
	return "Which product would you like to remove?"
}

func LineCartCleared() string {
	return "Your cart is empty now."
}

func LineCartEmpty() string {
	return "Your cart is empty."
}

// LineCartSummary reads the cart contents back.
func LineCartSummary(itemNames []string, total string) string {
	if len(itemNames) == 0 {
		return LineCartEmpty()
	}
	s := fmt.Sprintf("You have %s in your cart.", joinSpoken(itemNames))
	if total != "" {
		s += fmt.Sprintf(" The total is %s.", total)
	}
	return s
}

func LineCheckout() string {
	return "Taking you to checkout."
}

// ── Navigation / Search ──────────────────────────────────────────

func LineGoingHome() string {
	return "Taking you to the home page."
}

// LineShowingProducts announces the product listing and, when the
// catalog has categories, reads them out so the shopper knows what
// can be browsed.
func LineShowingProducts(categories []string) string {
	if len(categories) == 0 {
		return "Here are all our products."
	}
	return fmt.Sprintf("Here are all our products. You can browse %s.", joinSpoken(categories))
}

func LineOpeningCart() string {
	return "Opening your shopping cart."
}

func LineSearchResults(query string, count int) string {
	switch count {
	case 0:
		return fmt.Sprintf("I couldn't find anything for %s.", query)
	case 1:
		return fmt.Sprintf("I found 1 product for %s.", query)
	default:
		return fmt.Sprintf("I found %d products for %s.", count, query)
	}
}

func LineWhatToSearch() string {
	return "What would you like to search for?"
}

// ── Help / Fallback ──────────────────────────────────────────────

func LineHelp() string {
	return "You can ask me to add or remove products, go to the home page, show products, or view your cart. What would you like to do?"
}

func LineUnknown() string {
	return "I'm not sure what you want to do. You can say things like: add product, remove product, show cart, go home, or show products."
}

// ── Helpers ──────────────────────────────────────────────────────

// CannedLines returns every fixed line so they can be prefetched into
// the TTS cache at startup.
func CannedLines() []string {
	return []string{
		LineWelcome(),
		LineBye(),
		LineShutdown(),
		LineNothingToRepeat(),
		LineApology(),
		LineWhichToAdd(),
		LineWhichToRemove(),
		LineCartCleared(),
		LineCartEmpty(),
		LineCheckout(),
		LineGoingHome(),
		LineShowingProducts(nil),
		LineOpeningCart(),
		LineWhatToSearch(),
		LineHelp(),
		LineUnknown(),
	}
}

// joinSpoken joins names the way a person would read a list aloud.
func joinSpoken(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}
