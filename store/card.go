package store

import (
	"strings"

	"github.com/lithammer/shortuuid/v4"
)

// CardType classifies what kind of fact a memory card states.
type CardType string

const (
	CardTypeConstraint CardType = "constraint"
	CardTypePreference CardType = "preference"
	CardTypeGoal       CardType = "goal"
	CardTypeCapability CardType = "capability"
)

// Valid reports whether t is one of the known card types.
func (t CardType) Valid() bool {
	switch t {
	case CardTypeConstraint, CardTypePreference, CardTypeGoal, CardTypeCapability:
		return true
	}
	return false
}

// CardPriority says whether a card may be outweighed when cards conflict.
type CardPriority string

const (
	CardPriorityHard CardPriority = "hard"
	CardPrioritySoft CardPriority = "soft"
)

// Valid reports whether p is one of the known priorities.
func (p CardPriority) Valid() bool {
	return p == CardPriorityHard || p == CardPrioritySoft
}

// Provenance tag values. "profile" cards come from answered questionnaire
// questions; "extracted" cards are mined from conversation text.
const (
	TagProfile   = "profile"
	TagExtracted = "extracted"
)

// Card is an atomic stored fact about the user. Text is the unit of semantic
// matching; everything else is routing metadata. Cards are immutable once
// persisted except for explicit replacement.
type Card struct {
	ID       string
	Type     CardType
	Text     string
	Domains  []string
	Priority CardPriority
	Tags     []string
	Persona  string

	CreatedTs int64
	UpdatedTs int64
}

// NewCardID returns a fresh card identifier.
func NewCardID() string {
	return "card_" + shortuuid.New()
}

// HasTag reports whether the card carries the given tag.
func (c *Card) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasDomain reports whether the card declares the given domain,
// compared case-insensitively.
func (c *Card) HasDomain(domain string) bool {
	for _, d := range c.Domains {
		if strings.EqualFold(d, domain) {
			return true
		}
	}
	return false
}

// IsProfile reports whether the card has profile provenance.
func (c *Card) IsProfile() bool {
	return c.HasTag(TagProfile)
}

// IsExtracted reports whether the card was mined from conversation
// without profile confirmation.
func (c *Card) IsExtracted() bool {
	return c.HasTag(TagExtracted) && !c.HasTag(TagProfile)
}

// Valid reports whether the card carries every required field.
// Rows failing this are skipped by readers rather than aborting a request.
func (c *Card) Valid() bool {
	if c.ID == "" || c.Text == "" || c.Persona == "" {
		return false
	}
	return c.Type.Valid()
}

// FindCard specifies the conditions for finding cards.
type FindCard struct {
	ID      *string
	IDs     []string
	Persona *string
	// Domain matches cards whose domain set contains this value.
	Domain *string
	Type   *CardType
	// Tag matches cards whose tag set contains this value.
	Tag *string

	Limit  int
	Offset int
}

// UpdateCard specifies an in-place card update. Nil fields are left unchanged.
type UpdateCard struct {
	ID string

	Type     *CardType
	Text     *string
	Domains  []string
	Priority *CardPriority
	Tags     []string

	UpdatedTs int64
}

// DeleteCard specifies the conditions for deleting cards.
type DeleteCard struct {
	ID      *string
	Persona *string
}

// CardWithScore pairs a card with a similarity score from vector search.
type CardWithScore struct {
	Card  *Card
	Score float32
}
