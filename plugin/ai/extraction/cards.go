package extraction

import (
	"fmt"
	"sort"
	"strings"

	"github.com/memwallet/memwallet/store"
)

// tagStopwords are filler and predicate tokens excluded from content
// word tags.
var tagStopwords = map[string]bool{
	"user": true, "the": true, "a": true, "an": true, "is": true,
	"are": true, "to": true, "for": true, "of": true, "in": true,
	"on": true, "and": true, "or": true, "likes": true, "prefers": true,
	"has_goal": true, "avoids": true, "wants": true,
}

// maxContentWordTags caps how many words of the item text become tags.
const maxContentWordTags = 5

// CardsFromItems converts extracted items into memory cards ready for
// persistence. Domains come from the category routing; tags carry the
// extracted provenance marker, the routing values, up to five content
// words, any property values, and the caller's extra tags (typically
// hashtags harvested from the transcript). Everything is lowercased and
// deduplicated in first-seen order so repeated ingestion stays stable.
func CardsFromItems(items []Item, persona string, extraTags []string) []*store.Card {
	cards := make([]*store.Card, 0, len(items))
	for _, item := range items {
		if item.Text == "" {
			continue
		}

		domains := []string{strings.ToLower(item.Category)}
		tags := []string{store.TagExtracted, strings.ToLower(item.Category)}
		if item.SubCategory != "" {
			domains = append(domains, strings.ToLower(item.SubCategory))
			tags = append(tags, strings.ToLower(item.SubCategory))
		}
		tags = append(tags, contentWords(item.Text)...)
		tags = append(tags, propertyWords(item.Properties)...)
		for _, tag := range extraTags {
			if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
				tags = append(tags, tag)
			}
		}

		cards = append(cards, &store.Card{
			Type:     store.CardType(item.Type),
			Text:     item.Text,
			Domains:  domains,
			Priority: store.CardPrioritySoft,
			Tags:     dedupeTags(tags),
			Persona:  persona,
		})
	}
	return cards
}

// contentWords picks the meaningful words of the item text as tags.
func contentWords(text string) []string {
	var words []string
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if len(word) <= 3 || tagStopwords[word] {
			continue
		}
		words = append(words, word)
		if len(words) >= maxContentWordTags {
			break
		}
	}
	return words
}

// propertyWords flattens tuple property values into tags. List elements
// become one tag each, string values are split into words, and other
// scalar types are skipped. Keys are visited in sorted order.
func propertyWords(properties map[string]any) []string {
	if len(properties) == 0 {
		return nil
	}
	keys := make([]string, 0, len(properties))
	for key := range properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var words []string
	for _, key := range keys {
		switch value := properties[key].(type) {
		case []any:
			for _, element := range value {
				words = append(words, strings.ToLower(fmt.Sprint(element)))
			}
		case string:
			words = append(words, strings.Fields(strings.ToLower(value))...)
		}
	}
	return words
}

func dedupeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
