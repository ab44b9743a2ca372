package contextpack

import (
	"strings"

	"github.com/memwallet/memwallet/store"
)

const (
	packHeader = "--- PERSONAL CONTEXT ---"
	packFooter = "--- END PERSONAL CONTEXT ---"
)

// typeSections fixes the emission order of the card type groups.
var typeSections = []struct {
	cardType store.CardType
	heading  string
}{
	{store.CardTypeConstraint, "CONSTRAINTS:"},
	{store.CardTypePreference, "PREFERENCES:"},
	{store.CardTypeGoal, "GOALS:"},
	{store.CardTypeCapability, "CAPABILITIES:"},
}

// Format renders the selected cards as the text block callers prepend
// to a chat prompt. Cards are grouped by type in a fixed section order;
// within a section the selection order is preserved, so grouping is
// presentational and never re-ranks. Hard constraints get a visible
// marker. An empty selection renders as an empty string, which callers
// treat as "nothing to inject" rather than an error.
func Format(selected []ScoredCard) string {
	if len(selected) == 0 {
		return ""
	}

	groups := make(map[store.CardType][]*store.Card, len(typeSections))
	for _, sc := range selected {
		groups[sc.Card.Type] = append(groups[sc.Card.Type], sc.Card)
	}

	lines := []string{packHeader, ""}
	for _, section := range typeSections {
		cards := groups[section.cardType]
		if len(cards) == 0 {
			continue
		}
		lines = append(lines, section.heading)
		for _, card := range cards {
			line := "• " + card.Text
			if section.cardType == store.CardTypeConstraint && card.Priority == store.CardPriorityHard {
				line += " [HARD]"
			}
			lines = append(lines, line)
		}
		lines = append(lines, "")
	}
	lines = append(lines, packFooter)
	return strings.Join(lines, "\n")
}
