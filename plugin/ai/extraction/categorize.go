package extraction

import "strings"

// Sub-profile categories. Work carries a second level because the
// original profile splits it into finance, coding, meetings, and
// projects.
const (
	CategoryShopping = "Shopping"
	CategoryEating   = "Eating"
	CategoryHealth   = "Health"
	CategoryWork     = "Work"
	CategoryGeneral  = "General"

	SubcategoryFinance  = "Finance"
	SubcategoryCoding   = "Coding"
	SubcategoryMeetings = "Meetings"
	SubcategoryProjects = "Projects"
)

// categoryKeywords maps tuple object/predicate text onto sub-profiles.
// First match in table order wins.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{CategoryShopping, []string{"shop", "purchase", "buy", "product", "shopping"}},
	{CategoryEating, []string{"food", "restaurant", "meal", "dining", "diet", "eating", "cuisine"}},
	{CategoryHealth, []string{"health", "fitness", "medical", "exercise", "wellness"}},
	{CategoryWork, []string{"work", "project", "code", "finance", "meeting", "professional"}},
}

var workSubcategoryKeywords = []struct {
	sub      string
	keywords []string
}{
	{SubcategoryFinance, []string{"finance", "budget", "money", "cost", "expense", "financial"}},
	{SubcategoryCoding, []string{"code", "programming", "language", "function", "algorithm", "coding", "developer"}},
	{SubcategoryMeetings, []string{"meeting", "call", "schedule", "calendar", "appointment"}},
}

// cardTypeForPredicate maps a tuple predicate to a card type. Unknown
// predicates read as preferences, the least assertive type.
func cardTypeForPredicate(predicate string) string {
	switch {
	case strings.Contains(predicate, "CONSTRAINT"):
		return "constraint"
	case strings.Contains(predicate, "GOAL"):
		return "goal"
	default:
		return "preference"
	}
}

// categorize assigns a tuple to a sub-profile based on its object type
// and object+predicate text. Uncategorizable tuples land in Shopping,
// the sub-profile most conversation mining feeds.
func categorize(t *Tuple) (category, subCategory string) {
	objType := strings.ToLower(t.ObjectType)
	text := strings.ToLower(t.Object + " " + t.Predicate)

	for _, group := range categoryKeywords {
		if matchesAnyKeyword(objType, group.keywords) || matchesAnyKeyword(text, group.keywords) {
			category = group.category
			break
		}
	}
	if category == "" {
		category = CategoryShopping
	}
	if category == CategoryWork {
		subCategory = workSubcategory(text)
	}
	return category, subCategory
}

func workSubcategory(text string) string {
	for _, group := range workSubcategoryKeywords {
		if matchesAnyKeyword(text, group.keywords) {
			return group.sub
		}
	}
	return SubcategoryProjects
}

// ItemsFromTuples categorizes distilled tuples into card-ready items.
// Tuples without an object carry no usable statement and are dropped;
// confidence is clamped to [0, 1].
func ItemsFromTuples(tuples []Tuple) []Item {
	items := make([]Item, 0, len(tuples))
	for i := range tuples {
		t := &tuples[i]
		if strings.TrimSpace(t.Object) == "" {
			continue
		}
		confidence := t.Confidence
		if confidence < 0 {
			confidence = 0
		} else if confidence > 1 {
			confidence = 1
		}
		category, sub := categorize(t)
		items = append(items, Item{
			Type:        cardTypeForPredicate(t.Predicate),
			Text:        t.Text(),
			Category:    category,
			SubCategory: sub,
			Confidence:  confidence,
			Properties:  t.Properties,
		})
	}
	return items
}

func matchesAnyKeyword(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// bucketKeys is the fixed key set of a categorized extraction
// response. Every key appears in the response even when its bucket is
// empty.
var bucketKeys = []string{
	CategoryShopping,
	CategoryEating,
	CategoryHealth,
	CategoryWork,
	workBucketKey(SubcategoryFinance),
	workBucketKey(SubcategoryCoding),
	workBucketKey(SubcategoryProjects),
	workBucketKey(SubcategoryMeetings),
	CategoryGeneral,
}

func workBucketKey(sub string) string {
	return CategoryWork + "_" + sub
}

// CategorizeItems groups items into the fixed set of response buckets.
// Work items with a sub-category go only into the Work_<Sub> bucket;
// an unrecognized sub-category falls back to Work_Projects, and an
// unrecognized category lands in General.
func CategorizeItems(items []Item) map[string][]Item {
	buckets := make(map[string][]Item, len(bucketKeys))
	for _, key := range bucketKeys {
		buckets[key] = []Item{}
	}
	for _, item := range items {
		key := item.Category
		if item.Category == CategoryWork && item.SubCategory != "" {
			key = workBucketKey(item.SubCategory)
			if _, ok := buckets[key]; !ok {
				key = workBucketKey(SubcategoryProjects)
			}
		} else if _, ok := buckets[key]; !ok {
			key = CategoryGeneral
		}
		buckets[key] = append(buckets[key], item)
	}
	return buckets
}
