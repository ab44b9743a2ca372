package questionnaire

import (
	"fmt"
	"strings"

	"github.com/memwallet/memwallet/store"
)

// answerStatements maps question patterns to per-option first-person
// statements. Patterns are matched as substrings of the lowercased
// question text, first match wins, so more specific patterns must not
// shadow earlier ones.
var answerStatements = []struct {
	pattern string
	answers map[string]string
}{
	{
		pattern: "blunt and direct rather than diplomatic",
		answers: map[string]string{
			"Blunt":      "User prefers blunt and direct communication over diplomatic language",
			"Neutral":    "User is neutral about communication style - neither blunt nor diplomatic preference",
			"Diplomatic": "User prefers diplomatic and tactful communication over blunt directness",
		},
	},
	{
		pattern: "bottom line first before details",
		answers: map[string]string{
			"Yes": "User prefers getting the bottom line and conclusion first, before detailed explanations",
			"No":  "User prefers detailed explanations before getting to the bottom line",
		},
	},
	{
		pattern: "reasoning and tradeoffs",
		answers: map[string]string{
			"Yes": "User trusts recommendations more when they include reasoning and tradeoffs, not just the answer",
			"No":  "User prefers direct recommendations without lengthy reasoning or tradeoffs",
		},
	},
	{
		pattern: "examples over abstract explanations",
		answers: map[string]string{
			"Examples": "User learns better through concrete examples rather than abstract explanations",
			"Neutral":  "User is flexible with both examples and abstract explanations when learning",
			"Abstract": "User prefers abstract explanations and concepts over concrete examples",
		},
	},
	{
		pattern: "energized by lots of options",
		answers: map[string]string{
			"Yes":     "User gets energized by having lots of options to choose from",
			"Neutral": "User is neutral about the number of options presented",
			"No":      "User gets overwhelmed by too many options and prefers fewer choices",
		},
	},
	{
		pattern: "clear plan before you start",
		answers: map[string]string{
			"Plan":       "User prefers having a clear plan before starting any task",
			"Neutral":    "User is flexible between planning ahead and figuring things out as they go",
			"On the Fly": "User prefers figuring things out as they go rather than planning ahead",
		},
	},
	{
		pattern: "resolve things quickly",
		answers: map[string]string{
			"Quick":     "In disagreements, user prefers to resolve things quickly",
			"Neutral":   "User is flexible about timing when resolving disagreements",
			"Take Time": "In disagreements, user prefers taking time to cool off before resolving",
		},
	},
	{
		pattern: "tell them directly rather than hint",
		answers: map[string]string{
			"Direct":  "When feelings are hurt, user prefers to tell people directly",
			"Neutral": "User is flexible in how they communicate hurt feelings",
			"Hint":    "When feelings are hurt, user prefers to hint or withdraw rather than be direct",
		},
	},
	{
		pattern: "easy to say 'no'",
		answers: map[string]string{
			"Yes":     "User finds it easy to say 'no' without over-explaining",
			"Neutral": "User is neutral about saying 'no' - sometimes easy, sometimes not",
			"No":      "User finds it difficult to say 'no' without feeling the need to over-explain",
		},
	},
	{
		pattern: "privacy and a small circle",
		answers: map[string]string{
			"Private":    "User prefers privacy and a small social circle",
			"Neutral":    "User is flexible between privacy and social activity",
			"Well-known": "User prefers being widely known and socially active",
		},
	},
	{
		pattern: "assume people mean well",
		answers: map[string]string{
			"Yes":     "User generally assumes people mean well unless proven otherwise",
			"Neutral": "User is cautiously neutral about people's intentions",
			"No":      "User does not assume people mean well until they prove themselves",
		},
	},
	{
		pattern: "quiet/internal rather than outward",
		answers: map[string]string{
			"Quiet":     "When stressed, user becomes more quiet and internal",
			"Neutral":   "User's behavior under stress is variable",
			"Talkative": "When stressed, user becomes more outward and talkative",
		},
	},
	{
		pattern: "decide what to buy before you enter",
		answers: map[string]string{
			"Yes":     "User typically decides what to buy before entering stores or websites",
			"Neutral": "User sometimes plans purchases and sometimes browses spontaneously",
			"No":      "User prefers browsing and discovering what to buy in the moment",
		},
	},
	{
		pattern: "cheapest option if it seems 'good enough'",
		answers: map[string]string{
			"Yes":     "User typically chooses the cheapest option when quality seems adequate",
			"Neutral": "User balances price and quality without strong preference for cheapest",
			"No":      "User prioritizes quality over getting the cheapest option",
		},
	},
	{
		pattern: "stick to the same brands",
		answers: map[string]string{
			"Yes":     "User is brand loyal and sticks to brands they like",
			"Neutral": "User is flexible between familiar brands and trying new ones",
			"No":      "User likes to try different brands rather than sticking to one",
		},
	},
	{
		pattern: "reviews/ratings influence you more than recommendations",
		answers: map[string]string{
			"Reviews": "User trusts online reviews and ratings more than personal recommendations",
			"Neutral": "User values both reviews and personal recommendations equally",
			"Recs":    "User trusts recommendations from friends and family more than online reviews",
		},
	},
	{
		pattern: "long-term durability than immediate convenience",
		answers: map[string]string{
			"Durable":     "User prioritizes long-term durability over immediate convenience when shopping",
			"Neutral":     "User balances durability and convenience based on the product",
			"Convenience": "User prioritizes immediate convenience over long-term durability",
		},
	},
	{
		pattern: "prioritize health/nutrition over taste/comfort",
		answers: map[string]string{
			"Health":  "For groceries, user prioritizes health and nutrition over taste",
			"Neutral": "User balances health and taste when shopping for groceries",
			"Taste":   "For groceries, user prioritizes taste and comfort over health considerations",
		},
	},
	{
		pattern: "actively look for deals",
		answers: map[string]string{
			"Yes":     "User actively hunts for deals, coupons, and price comparisons",
			"Neutral": "User sometimes looks for deals but doesn't prioritize it",
			"No":      "User doesn't spend much effort on finding deals or discounts",
		},
	},
	{
		pattern: "avoid products that feel wasteful",
		answers: map[string]string{
			"Yes":     "User avoids wasteful products (excess packaging, disposable, short lifespan)",
			"Neutral": "User considers sustainability but it's not a top priority",
			"No":      "User doesn't strongly consider wastefulness when shopping",
		},
	},
	{
		pattern: "return items easily if they aren't right",
		answers: map[string]string{
			"Yes":     "User returns items easily when they aren't right",
			"Neutral": "User sometimes returns items but often keeps things even if not perfect",
			"No":      "User tends to keep items even if they aren't quite right rather than return",
		},
	},
	{
		pattern: "few 'best' options picked for you",
		answers: map[string]string{
			"Few":     "User prefers having a few curated 'best' options rather than many alternatives",
			"Neutral": "User is flexible between curated picks and browsing many options",
			"Many":    "User prefers browsing lots of alternatives rather than curated recommendations",
		},
	},
}

// categoryKeywords match sub-profile category names against question
// text when the name itself does not appear.
var categoryKeywords = map[string][]string{
	"Finance":       {"finance", "budget", "money", "cost", "expense", "financial"},
	"Coding":        {"code", "programming", "language", "developer", "software"},
	"Projects":      {"project", "task", "deadline", "deliverable"},
	"Meetings":      {"meeting", "call", "schedule", "calendar"},
	"Restaurants":   {"restaurant", "dining", "eat out"},
	"Cooking":       {"cook", "recipe", "kitchen"},
	"Dietary":       {"diet", "restriction", "allergy", "vegan", "vegetarian"},
	"Cuisines":      {"cuisine", "food type", "ethnic"},
	"Fitness":       {"fitness", "exercise", "workout", "gym"},
	"Medical":       {"medical", "doctor", "health", "symptom"},
	"Mental Health": {"mental", "therapy", "stress", "anxiety"},
	"Nutrition":     {"nutrition", "supplement", "vitamin", "diet"},
}

// personalityKeywords route uncategorized main questions into the
// communication/personality domain.
var personalityKeywords = []string{
	"prefer", "communication", "blunt", "diplomatic", "bottom line",
	"reasoning", "learning", "examples", "options", "plan", "disagreement",
	"feelings", "say no", "privacy", "assume", "stressed",
}

// statementFor converts a question and chosen answer into the memory
// statement persisted on the card. Unmapped pairs fall back to a
// generic rendering.
func statementFor(questionText, answerText string) string {
	questionLower := strings.ToLower(questionText)
	for _, entry := range answerStatements {
		if !strings.Contains(questionLower, entry.pattern) {
			continue
		}
		if statement, ok := entry.answers[answerText]; ok {
			return statement
		}
	}
	return fmt.Sprintf("User preference: %s - %s", questionText, answerText)
}

// cardTypeForQuestion infers the card type from the question wording.
func cardTypeForQuestion(questionLower string) store.CardType {
	switch {
	case containsAnyWord(questionLower, "restriction", "constraint", "cannot"):
		return store.CardTypeConstraint
	case containsAnyWord(questionLower, "goal", "aspiration", "want"):
		return store.CardTypeGoal
	case containsAnyWord(questionLower, "capability", "can", "skill"):
		return store.CardTypeCapability
	default:
		return store.CardTypePreference
	}
}

// cardPriorityFor makes constraint answers hard so they survive
// conflicts; everything else stays soft.
func cardPriorityFor(cardType store.CardType) store.CardPriority {
	if cardType == store.CardTypeConstraint {
		return store.CardPriorityHard
	}
	return store.CardPrioritySoft
}

// domainsForQuestion infers card domains. Sub-profile questions carry
// the sub-profile name plus any matched category; main questions are
// routed by content, defaulting to general.
func domainsForQuestion(questionLower string, sub *SubProfile) []string {
	if sub != nil {
		domains := []string{strings.ToLower(sub.Name)}
		for _, category := range sub.Categories {
			if strings.Contains(questionLower, strings.ToLower(category)) ||
				containsAnyWord(questionLower, categoryKeywords[category]...) {
				domains = append(domains, strings.ToLower(category))
			}
		}
		return domains
	}

	switch {
	case containsAnyWord(questionLower, "work", "occupation", "job"):
		return []string{"work"}
	case containsAnyWord(questionLower, "food", "diet", "eating", "meal"):
		return []string{"eating", "food"}
	case containsAnyWord(questionLower, "health", "fitness", "exercise"):
		return []string{"health"}
	case containsAnyWord(questionLower, "shopping", "budget", "purchase"):
		return []string{"shopping"}
	case containsAnyWord(questionLower, personalityKeywords...):
		return []string{"communication", "personality"}
	default:
		return []string{"general"}
	}
}

func containsAnyWord(text string, words ...string) bool {
	for _, word := range words {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}
