package contextpack

// The conflict knowledge lives in two ordered phrase-pair tables rather
// than in code paths, so new opposing axes can be added without touching
// the traversal logic. All matching is case-insensitive substring
// containment.

// contradictionRule marks a stored memory as contradicting the current
// request: it fires when at least one memoryPhrase appears in the card
// text and at least one opposingPhrase appears in the prompt or in an
// explicit preference.
type contradictionRule struct {
	memoryPhrases   []string
	opposingPhrases []string
}

// contradictionRules is evaluated in order with a first-match
// short-circuit. The axes: price vs quality, few vs many options,
// health vs taste, durability vs disposability, brand loyalty vs
// variety, planning vs spontaneity.
var contradictionRules = []contradictionRule{
	{
		memoryPhrases:   []string{"quality over", "prioritizes quality", "not the cheapest"},
		opposingPhrases: []string{"cheapest", "lowest price", "budget", "affordable", "cheap"},
	},
	{
		memoryPhrases:   []string{"expensive", "premium", "luxury", "high-end"},
		opposingPhrases: []string{"cheapest", "budget", "affordable", "cheap", "save money"},
	},
	{
		memoryPhrases:   []string{"cheap", "budget", "inexpensive", "affordable", "lowest price"},
		opposingPhrases: []string{"premium", "luxury", "best quality", "money is no object", "price doesn't matter"},
	},
	{
		memoryPhrases:   []string{"few options", "curated", "best options picked"},
		opposingPhrases: []string{"many options", "lots of choices", "browse", "show me everything", "all options"},
	},
	{
		memoryPhrases:   []string{"browsing lots", "many alternatives", "explore options"},
		opposingPhrases: []string{"just pick one", "best option", "recommend one", "don't show me many"},
	},
	{
		memoryPhrases:   []string{"health", "nutrition", "healthy"},
		opposingPhrases: []string{"taste", "comfort food", "indulgent", "delicious", "tasty"},
	},
	{
		memoryPhrases:   []string{"taste", "comfort", "indulgent"},
		opposingPhrases: []string{"healthy", "nutritious", "diet", "low calorie"},
	},
	{
		memoryPhrases:   []string{"durable", "long-lasting", "quality"},
		opposingPhrases: []string{"disposable", "temporary", "short-term", "one-time use"},
	},
	{
		memoryPhrases:   []string{"brand loyal", "stick to brands", "same brands"},
		opposingPhrases: []string{"try new", "different brands", "alternatives", "variety"},
	},
	{
		memoryPhrases:   []string{"plans ahead", "decides before", "planned"},
		opposingPhrases: []string{"spontaneous", "browse", "discover", "just looking"},
	},
}

// arbitrationRule drops an extracted card that opposes a profile card:
// it fires when at least one extractedPhrase appears in the extracted
// card text and at least one profilePhrase appears in a profile card
// text. Deliberately narrower than the contradiction table; arbitration
// only settles the two axes where mined data regularly fights explicit
// answers.
type arbitrationRule struct {
	extractedPhrases []string
	profilePhrases   []string
}

var arbitrationRules = []arbitrationRule{
	{
		extractedPhrases: []string{"cheapest", "cheap", "budget", "goal cheap"},
		profilePhrases:   []string{"quality over", "prioritizes quality", "not the cheapest"},
	},
	{
		extractedPhrases: []string{"lots", "many"},
		profilePhrases:   []string{"few", "curated"},
	},
}
