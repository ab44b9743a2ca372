package contextpack

import (
	"sort"
	"strings"

	"github.com/memwallet/memwallet/plugin/ai/analyzer"
	"github.com/memwallet/memwallet/store"
)

// scoreStopwords are prompt words that carry no topical signal.
var scoreStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"to": true, "for": true, "of": true, "in": true, "on": true,
	"and": true, "or": true, "find": true, "me": true, "some": true,
	"get": true, "best": true, "good": true, "how": true, "what": true,
	"why": true, "when": true, "where": true, "can": true,
	"should": true, "would": true, "could": true,
}

// ScoredCard pairs a candidate card with its computed relevance.
type ScoredCard struct {
	Card  *store.Card
	Score float32
}

// Engine scores, filters, and orders memory cards for a draft prompt.
// It holds no mutable state and performs no I/O, so a single Engine can
// serve any number of concurrent calls.
//
// The weights are empirically chosen and carry no documented
// derivation. They live in fields rather than package constants so a
// calibration pass can tune them without touching the scoring code.
type Engine struct {
	profileBoost     float32
	domainWeight     float32
	styleBonus       float32
	lexicalWeight    float32
	lexicalCap       float32
	keywordWeight    float32
	keywordCap       float32
	constraintBonus  float32
	hardBonus        float32
	extractedDamping float32
}

func NewEngine() *Engine {
	return &Engine{
		profileBoost:     0.3,
		domainWeight:     0.4,
		styleBonus:       0.35,
		lexicalWeight:    0.45,
		lexicalCap:       0.8,
		keywordWeight:    0.08,
		keywordCap:       0.25,
		constraintBonus:  0.2,
		hardBonus:        0.15,
		extractedDamping: 0.9,
	}
}

// Score combines additive relevance signals and clamps the sum to 1.0.
// Signals are heuristic and correlated, so a card matching several at
// once saturates instead of multiplying.
func (e *Engine) Score(card *store.Card, analysis *analyzer.Analysis, prompt string) float32 {
	var score float32

	// Profile cards state what the user explicitly answered; they start
	// ahead of anything mined from conversation.
	if card.IsProfile() {
		score += e.profileBoost
	}

	if len(card.Domains) > 0 && len(analysis.Domains) > 0 {
		promptDomains := make(map[string]bool, len(analysis.Domains))
		for _, d := range analysis.Domains {
			promptDomains[strings.ToLower(d)] = true
		}
		overlap := 0
		for _, d := range card.Domains {
			if promptDomains[strings.ToLower(d)] {
				overlap++
			}
		}
		if overlap > 0 {
			score += e.domainWeight * float32(overlap) / float32(len(card.Domains))
		}
	}

	// Conversational style applies to every interaction, whatever the
	// prompt is about.
	if card.HasDomain("communication") || card.HasDomain("personality") {
		score += e.styleBonus
	}

	cardText := strings.ToLower(card.Text)

	// Lexical match is the strongest signal: a card whose text names
	// what the user just asked about belongs near the top even with no
	// domain metadata. Containment rather than word equality keeps
	// punctuation and inflection from hiding a match.
	matches := 0
	for _, w := range strings.Fields(strings.ToLower(prompt)) {
		if len(w) <= 2 || scoreStopwords[w] {
			continue
		}
		if strings.Contains(cardText, w) {
			matches++
		}
	}
	if matches > 0 {
		score += min(e.lexicalCap, e.lexicalWeight*float32(matches))
	}

	if len(analysis.Keywords) > 0 {
		cardWords := make(map[string]bool)
		for _, w := range strings.Fields(cardText) {
			cardWords[w] = true
		}
		overlap := 0
		for _, k := range analysis.Keywords {
			if cardWords[strings.ToLower(k)] {
				overlap++
			}
		}
		if overlap > 0 {
			score += min(e.keywordCap, e.keywordWeight*float32(overlap))
		}
	}

	// Silently omitting an active constraint is a worse failure than
	// showing a mildly irrelevant preference, so constraints surface at
	// moderate relevance and hard ones more so.
	if card.Type == store.CardTypeConstraint {
		score += e.constraintBonus
		if card.Priority == store.CardPriorityHard {
			score += e.hardBonus
		}
	}

	// Mined facts never outrank profile-confirmed ones at equal raw
	// score.
	if card.IsExtracted() {
		score *= e.extractedDamping
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// Conflicts reports whether the card text contradicts the prompt or any
// explicit preference. Rules are evaluated in table order against the
// prompt first, then against each explicit preference, returning on the
// first match.
//
// A rule is skipped when the card text contains phrases from both of
// its sides: a statement like "quality over price, not the cheapest
// option" names both poles of the price axis, and substring matching
// would otherwise read the negated pole as a live conflict. Such
// self-qualifying cards are left to scoring and arbitration instead.
func (e *Engine) Conflicts(cardText, prompt string, explicitPreferences []string) bool {
	card := strings.ToLower(cardText)
	lowerPrompt := strings.ToLower(prompt)

	for _, rule := range contradictionRules {
		if !containsAny(card, rule.memoryPhrases) {
			continue
		}
		if containsAny(card, rule.opposingPhrases) {
			continue
		}
		if containsAny(lowerPrompt, rule.opposingPhrases) {
			return true
		}
	}
	for _, pref := range explicitPreferences {
		lowerPref := strings.ToLower(pref)
		for _, rule := range contradictionRules {
			if !containsAny(card, rule.memoryPhrases) {
				continue
			}
			if containsAny(card, rule.opposingPhrases) {
				continue
			}
			if containsAny(lowerPref, rule.opposingPhrases) {
				return true
			}
		}
	}
	return false
}

// Arbitrate drops extracted cards that lose to a profile card on an
// arbitration axis. Profile cards and cards with neither provenance tag
// pass through untouched. Input order is preserved: this is a filter,
// not a re-sort.
func (e *Engine) Arbitrate(scored []ScoredCard) []ScoredCard {
	var profileTexts []string
	for _, sc := range scored {
		if sc.Card.IsProfile() {
			profileTexts = append(profileTexts, strings.ToLower(sc.Card.Text))
		}
	}

	out := make([]ScoredCard, 0, len(scored))
	for _, sc := range scored {
		if sc.Card.IsExtracted() && losesArbitration(strings.ToLower(sc.Card.Text), profileTexts) {
			continue
		}
		out = append(out, sc)
	}
	return out
}

func losesArbitration(extractedText string, profileTexts []string) bool {
	for _, rule := range arbitrationRules {
		if !containsAny(extractedText, rule.extractedPhrases) {
			continue
		}
		for _, p := range profileTexts {
			if containsAny(p, rule.profilePhrases) {
				return true
			}
		}
	}
	return false
}

// Decision outcomes, also served verbatim on the preview endpoint.
const (
	ReasonSelected        = "selected"
	ReasonInvalid         = "invalid card"
	ReasonConflict        = "conflicts with prompt"
	ReasonBelowThreshold  = "below relevance threshold"
	ReasonLostArbitration = "lost arbitration to profile card"
	ReasonOverCap         = "over card cap"
)

// Decision records what the pipeline did with one candidate card.
type Decision struct {
	Card     *store.Card
	Score    float32
	Included bool
	Reason   string
}

// Explain runs the full pipeline over the candidate set and reports a
// decision per card: contradiction veto, relevance scoring against the
// minimum threshold, a stable sort by descending score, arbitration,
// then the cardinality cap. Candidates are visited in input order, so
// equal scores keep the repository's iteration order and repeated calls
// produce identical output. A negative maxCards means no cap.
//
// Decisions come back with the scored cards first, in final score
// order, followed by the cards rejected before scoring in candidate
// order.
func (e *Engine) Explain(cards []*store.Card, analysis *analyzer.Analysis, prompt string, maxCards int, minRelevance float32) []Decision {
	if analysis == nil {
		analysis = &analyzer.Analysis{}
	}

	var rejected []Decision
	scored := make([]ScoredCard, 0, len(cards))
	for _, card := range cards {
		if card == nil {
			continue
		}
		if !card.Valid() {
			rejected = append(rejected, Decision{Card: card, Reason: ReasonInvalid})
			continue
		}
		if e.Conflicts(card.Text, prompt, analysis.ExplicitPreferences) {
			rejected = append(rejected, Decision{Card: card, Reason: ReasonConflict})
			continue
		}
		s := e.Score(card, analysis, prompt)
		if s < minRelevance {
			rejected = append(rejected, Decision{Card: card, Score: s, Reason: ReasonBelowThreshold})
			continue
		}
		scored = append(scored, ScoredCard{Card: card, Score: s})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	kept := make(map[*store.Card]bool, len(scored))
	for _, sc := range e.Arbitrate(scored) {
		kept[sc.Card] = true
	}

	decisions := make([]Decision, 0, len(cards))
	selected := 0
	for _, sc := range scored {
		d := Decision{Card: sc.Card, Score: sc.Score}
		switch {
		case !kept[sc.Card]:
			d.Reason = ReasonLostArbitration
		case maxCards >= 0 && selected >= maxCards:
			d.Reason = ReasonOverCap
		default:
			d.Included = true
			d.Reason = ReasonSelected
			selected++
		}
		decisions = append(decisions, d)
	}
	return append(decisions, rejected...)
}

// Select is Explain reduced to the cards that made the pack, in pack
// order.
func (e *Engine) Select(cards []*store.Card, analysis *analyzer.Analysis, prompt string, maxCards int, minRelevance float32) []ScoredCard {
	decisions := e.Explain(cards, analysis, prompt, maxCards, minRelevance)
	out := make([]ScoredCard, 0, len(decisions))
	for _, d := range decisions {
		if d.Included {
			out = append(out, ScoredCard{Card: d.Card, Score: d.Score})
		}
	}
	return out
}

func containsAny(text string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
