package store

import (
	"testing"
)

func filterFixture() []*Card {
	return []*Card{
		{
			ID:       "card_1",
			Type:     CardTypeConstraint,
			Text:     "User is allergic to peanuts",
			Domains:  []string{"eating", "health"},
			Priority: CardPriorityHard,
			Tags:     []string{"profile", "eating"},
			Persona:  "Personal",
		},
		{
			ID:       "card_2",
			Type:     CardTypePreference,
			Text:     "User prefers quiet restaurants",
			Domains:  []string{"eating"},
			Priority: CardPrioritySoft,
			Tags:     []string{"extracted"},
			Persona:  "Personal",
		},
		{
			ID:       "card_3",
			Type:     CardTypeGoal,
			Text:     "User wants to run a marathon",
			Domains:  []string{"health"},
			Priority: CardPrioritySoft,
			Tags:     []string{"profile"},
			Persona:  "Work",
		},
	}
}

func TestFilterCards(t *testing.T) {
	cards := filterFixture()

	tests := []struct {
		name       string
		expression string
		wantIDs    []string
	}{
		{"by type", `type == "constraint"`, []string{"card_1"}},
		{"by provenance tag", `"profile" in tags`, []string{"card_1", "card_3"}},
		{"by domain", `"eating" in domains`, []string{"card_1", "card_2"}},
		{"compound", `priority == "hard" && "health" in domains`, []string{"card_1"}},
		{"by persona", `persona == "Work"`, []string{"card_3"}},
		{"no match", `type == "capability"`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterCards(cards, tt.expression)
			if err != nil {
				t.Fatalf("FilterCards(%q): %v", tt.expression, err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d cards, want %d", len(got), len(tt.wantIDs))
			}
			for i, card := range got {
				if card.ID != tt.wantIDs[i] {
					t.Errorf("card[%d] = %s, want %s", i, card.ID, tt.wantIDs[i])
				}
			}
		})
	}
}

func TestFilterRejectsNonBoolean(t *testing.T) {
	if _, err := NewCardFilter(`text`); err == nil {
		t.Error("string-typed expression should be rejected")
	}
}

func TestFilterRejectsBadSyntax(t *testing.T) {
	if _, err := NewCardFilter(`type ==`); err == nil {
		t.Error("syntax error should be rejected")
	}
}
