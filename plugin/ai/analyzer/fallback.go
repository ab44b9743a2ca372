package analyzer

import (
	"context"
	"strings"
)

// domainKeywords maps each detectable domain to its trigger terms.
// Detection is substring containment on the lowercased prompt, so
// "pricey" triggers "price". Order is fixed to keep output deterministic.
var domainKeywords = []struct {
	domain   string
	keywords []string
}{
	{"shopping", []string{
		"buy", "purchase", "price", "cost", "store", "shop", "product",
		"brand", "deal", "discount", "order", "amazon", "review", "rating",
		"cheap", "expensive", "quality", "return", "refund",
	}},
	{"eating", []string{
		"eat", "food", "restaurant", "meal", "cook", "recipe", "dinner",
		"lunch", "breakfast", "snack", "hungry", "cuisine", "diet",
		"taste", "delicious",
	}},
	{"health", []string{
		"health", "fitness", "exercise", "workout", "gym", "doctor",
		"medical", "symptom", "medicine", "sleep", "weight", "nutrition",
		"vitamin", "supplement",
	}},
	{"work", []string{
		"work", "job", "project", "meeting", "deadline", "email",
		"colleague", "office", "code", "programming", "finance", "budget",
		"career", "boss", "salary",
	}},
}

// FallbackAnalyzer is the keyword-based analyzer used when no LLM is
// reachable. It is synchronous, allocation-only, and cannot fail.
type FallbackAnalyzer struct{}

// NewFallbackAnalyzer creates a keyword-based analyzer.
func NewFallbackAnalyzer() *FallbackAnalyzer {
	return &FallbackAnalyzer{}
}

// Analyze derives an analysis from the prompt text alone. The error
// result is always nil; it exists to satisfy the Analyzer interface.
func (*FallbackAnalyzer) Analyze(_ context.Context, prompt string) (*Analysis, error) {
	lower := strings.ToLower(prompt)

	domains := []string{}
	for _, entry := range domainKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				domains = append(domains, entry.domain)
				break
			}
		}
	}
	if len(domains) == 0 {
		domains = append(domains, "general")
	}
	// Style domains ride along so communication and personality cards
	// always have a chance to match.
	domains = append(domains, "communication", "personality")

	keywords := []string{}
	for _, word := range strings.Fields(lower) {
		if len(word) > 3 {
			keywords = append(keywords, word)
		}
	}

	return &Analysis{
		Intent:              "user request",
		Domains:             domains,
		ExplicitPreferences: []string{},
		Keywords:            keywords,
	}, nil
}
