// Package conversation provides intent classification, conversation
// history, and user notification implementations.
package conversation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hammamikhairi/voxcart/internal/domain"
	"github.com/hammamikhairi/voxcart/internal/logger"
)

// Compile-time interface check.
var _ domain.Classifier = (*PatternClassifier)(nil)

// PatternClassifier matches utterances to intents using an ordered table
// of word-class rules. Table order defines precedence: the first matching
// rule wins, so "add the laptop to my cart" is add_to_cart even though it
// also contains navigation trigger words. The order is policy, not an
// accident — tests pin it down.
type PatternClassifier struct {
	log   *logger.Logger
	rules []patternRule
}

// patternRule matches when the trigger word class appears anywhere in the
// utterance and, if an object class is set, an object word also appears.
// The two classes are tested independently: "to my cart add the laptop"
// and "add the laptop to my cart" classify the same.
type patternRule struct {
	trigger *regexp.Regexp
	object  *regexp.Regexp // optional
	intent  domain.IntentType
}

func (r patternRule) matches(utterance string) bool {
	if !r.trigger.MatchString(utterance) {
		return false
	}
	return r.object == nil || r.object.MatchString(utterance)
}

var (
	cartWords     = regexp.MustCompile(`\b(cart|basket|bag|order)\b`)
	cartOnlyWords = regexp.MustCompile(`\b(cart|basket|bag)\b`)
	homeWords     = regexp.MustCompile(`\b(home|main|start)\b`)
	storeWords    = regexp.MustCompile(`\b(products?|shop|store|catalog)\b`)
)

// NewPatternClassifier creates a pattern-based intent classifier.
func NewPatternClassifier(log *logger.Logger) *PatternClassifier {
	c := &PatternClassifier{log: log}
	c.rules = []patternRule{
		{regexp.MustCompile(`\b(add|put|place|insert|include|buy)\b`), cartWords, domain.IntentAddToCart},
		{regexp.MustCompile(`\b(remove|delete|take|drop)\b`), cartWords, domain.IntentRemoveFromCart},
		{regexp.MustCompile(`\b(clear|empty)\b`), cartOnlyWords, domain.IntentClearCart},
		{regexp.MustCompile(`\b(checkout|check out|pay|purchase|place my order)\b`), nil, domain.IntentCheckout},
		{regexp.MustCompile(`\b(show|view|open|see|go to|what's in)\b`), cartOnlyWords, domain.IntentViewCart},
		{regexp.MustCompile(`\b(go|navigate|take me|back)\b`), homeWords, domain.IntentNavigateHome},
		{regexp.MustCompile(`\b(go|navigate|show|open|browse)\b`), storeWords, domain.IntentNavigateProducts},
		{regexp.MustCompile(`\b(search|find|looking for|look for|want|need)\b`), nil, domain.IntentSearchProducts},
		{regexp.MustCompile(`\b(help|what can you do|how do i)\b`), nil, domain.IntentHelp},
		{regexp.MustCompile(`\b(repeat|say that again|what did you say|come again)\b`), nil, domain.IntentRepeat},
		{regexp.MustCompile(`\b(stop|exit|quit|close|bye|goodbye|cancel|never mind)\b`), nil, domain.IntentCancel},
	}
	return c
}

// Classify converts an utterance into a command. Pure: no state is read
// or written, so the same utterance always yields the same command.
func (c *PatternClassifier) Classify(utterance string) domain.Command {
	cmd := domain.Command{Intent: domain.IntentUnknown, Quantity: 1}

	lower := strings.ToLower(strings.TrimSpace(utterance))
	if lower == "" {
		return cmd
	}

	c.log.Debug("classifying: %q", lower)

	for _, rule := range c.rules {
		if rule.matches(lower) {
			cmd.Intent = rule.intent
			break
		}
	}

	cmd.Quantity = extractQuantity(lower)
	cmd.Product = extractProduct(lower)

	c.log.Debug("classified intent=%s product=%q quantity=%d", cmd.Intent, cmd.Product, cmd.Quantity)
	return cmd
}

// numberWords maps spelled-out quantities to values. Speech recognition
// usually transcribes small counts as words, not digits.
var numberWords = map[string]int{
	"one":   1,
	"two":   2,
	"three": 3,
	"four":  4,
	"five":  5,
	"six":   6,
	"seven": 7,
	"eight": 8,
	"nine":  9,
	"ten":   10,
}

var digitPattern = regexp.MustCompile(`\b(\d+)\b`)

// extractQuantity finds a numeral or a spelled-out number word in the
// utterance. Defaults to 1.
func extractQuantity(utterance string) int {
	if m := digitPattern.FindStringSubmatch(utterance); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 {
			return n
		}
	}
	for _, word := range strings.Fields(utterance) {
		if n, ok := numberWords[strings.Trim(word, ",.!?")]; ok {
			return n
		}
	}
	return 1
}

// productPatterns are tried in order; the first capturing match wins.
var productPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:add|buy|put|place|insert|remove|delete|take|drop)\s+(?:the\s+|a\s+|an\s+|some\s+)?(.+?)\s+(?:to|into|in|from)\s+(?:the\s+|my\s+)?(?:cart|basket|bag|order)`),
	regexp.MustCompile(`(?:product|item)\s+(?:called|named)\s+(.+)$`),
	regexp.MustCompile(`(?:looking for|look for|searching for|search for|want|need|find)\s+(?:the\s+|a\s+|an\s+|some\s+)?(.+)$`),
	regexp.MustCompile(`(?:add|buy|get|remove|delete)\s+(?:the\s+|a\s+|an\s+|some\s+)?(.+)$`),
}

// trailingFillers are stripped from the end of an extracted phrase.
var trailingFillers = []string{
	"please", "thanks", "thank you", "to cart", "to the cart", "to my cart",
	"from cart", "from the cart", "from my cart",
}

// stopWords are words that can never be a product phrase on their own.
var stopWords = map[string]bool{
	"cart": true, "basket": true, "bag": true, "order": true,
	"product": true, "products": true, "item": true, "items": true,
	"the": true, "a": true, "an": true, "some": true, "it": true,
}

// extractProduct pulls the spoken product phrase out of the utterance.
// Returns "" when no pattern matches or the phrase is an empty/stop word.
func extractProduct(utterance string) string {
	for _, pattern := range productPatterns {
		m := pattern.FindStringSubmatch(utterance)
		if m == nil {
			continue
		}
		phrase := strings.TrimSpace(m[1])
		phrase = stripLeadingQuantity(phrase)
		phrase = stripTrailingFillers(phrase)
		if phrase == "" || stopWords[phrase] {
			continue
		}
		return phrase
	}
	return ""
}

// stripLeadingQuantity removes a leading numeral or number word so
// "two laptops" resolves against "laptops", not "two laptops".
func stripLeadingQuantity(phrase string) string {
	first, rest, found := strings.Cut(phrase, " ")
	if !found {
		return phrase
	}
	if _, ok := numberWords[first]; ok {
		return strings.TrimSpace(rest)
	}
	if _, err := strconv.Atoi(first); err == nil {
		return strings.TrimSpace(rest)
	}
	return phrase
}

func stripTrailingFillers(phrase string) string {
	for changed := true; changed; {
		changed = false
		for _, filler := range trailingFillers {
			if strings.HasSuffix(phrase, " "+filler) || phrase == filler {
				phrase = strings.TrimSpace(strings.TrimSuffix(phrase, filler))
				phrase = strings.TrimRight(phrase, " ,.")
				changed = true
			}
		}
	}
	return phrase
}
