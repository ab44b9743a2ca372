package extraction

import (
	"context"
	"strings"

	"github.com/memwallet/memwallet/plugin/markdown"
)

// fallbackConfidence marks keyword-scanned items as weaker than
// distilled ones.
const fallbackConfidence = 0.7

// fallbackGroups drive the keyword extractor. The lists differ from the
// tuple categorization tables: these scan raw conversation, which uses
// everyday verbs rather than tuple object types.
var fallbackGroups = []struct {
	category string
	keywords []string
}{
	{CategoryShopping, []string{"buy", "purchase", "shop", "order", "product", "price", "cost", "budget", "shopping"}},
	{CategoryEating, []string{"restaurant", "food", "meal", "dinner", "lunch", "breakfast", "eat", "dining", "cuisine", "diet"}},
	{CategoryHealth, []string{"health", "fitness", "exercise", "workout", "medical", "doctor", "symptom", "medication", "supplement"}},
	{CategoryWork, []string{"work", "project", "code", "programming", "meeting", "finance", "budget", "deadline", "task"}},
}

// KeywordExtractor is the deterministic fallback used when no model is
// configured or distillation fails. It yields at most one preference
// item per category, built from the sentences that triggered the match.
type KeywordExtractor struct{}

func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{}
}

// Extract scans the conversation for category keywords. The returned
// error is always nil.
func (*KeywordExtractor) Extract(_ context.Context, conversation string) ([]Item, error) {
	plain := markdown.Normalize(conversation)
	lower := strings.ToLower(plain)

	var items []Item
	for _, group := range fallbackGroups {
		if !matchesAnyKeyword(lower, group.keywords) {
			continue
		}
		snippet := relevantSnippet(plain, group.keywords)
		item := Item{
			Type:       "preference",
			Text:       snippet,
			Category:   group.category,
			Confidence: fallbackConfidence,
		}
		if group.category == CategoryWork {
			item.SubCategory = workSubcategory(strings.ToLower(snippet))
		}
		items = append(items, item)
	}
	return items, nil
}

// relevantSnippet picks up to two sentences containing a keyword, or a
// truncated prefix when sentence splitting finds nothing.
func relevantSnippet(text string, keywords []string) string {
	var relevant []string
	for _, sentence := range strings.Split(text, ".") {
		if matchesAnyKeyword(strings.ToLower(sentence), keywords) {
			relevant = append(relevant, strings.TrimSpace(sentence))
			if len(relevant) >= 2 {
				break
			}
		}
	}
	if len(relevant) == 0 {
		if len(text) > 200 {
			return text[:200]
		}
		return text
	}
	return strings.Join(relevant, ". ")
}
