// Package extraction mines structured facts from chat transcripts. A
// distiller turns free conversation text into semantic tuples via the
// model, tuples are categorized into sub-profiles by keyword tables,
// and the result is shaped into memory cards. A keyword extractor
// provides a deterministic fallback so ingestion works without a model.
package extraction

import (
	"context"
	"strings"
)

// Tuple predicates the distiller is asked to produce. Anything outside
// this set still round-trips; predicate only steers card typing.
const (
	PredicatePrefers       = "PREFERS"
	PredicateHasGoal       = "HAS_GOAL"
	PredicateHasConstraint = "HAS_CONSTRAINT"
	PredicateLikes         = "LIKES"
	PredicateDislikes      = "DISLIKES"
	PredicateWants         = "WANTS"
	PredicateAvoids        = "AVOIDS"
	PredicateInterestedIn  = "INTERESTED_IN"
)

// Tuple field defaults for models that omit the optional fields.
const (
	defaultSubjectType = "Person"
	defaultObjectType  = "Entity"
	defaultSource      = "manual"
	defaultConfidence  = 0.5
)

// Tuple is one structured relationship distilled from conversation
// text.
type Tuple struct {
	Subject     string         `json:"subject"`
	SubjectType string         `json:"subject_type"`
	Predicate   string         `json:"predicate"`
	Object      string         `json:"object"`
	ObjectType  string         `json:"object_type"`
	Confidence  float64        `json:"confidence"`
	Source      string         `json:"source"`
	Properties  map[string]any `json:"properties"`
}

// Text renders the tuple as the card statement.
func (t *Tuple) Text() string {
	return t.Subject + " " + t.Predicate + " " + t.Object
}

// Normalize fills the optional fields a model may omit. A zero
// confidence counts as omitted.
func (t *Tuple) Normalize() {
	if strings.TrimSpace(t.SubjectType) == "" {
		t.SubjectType = defaultSubjectType
	}
	if strings.TrimSpace(t.ObjectType) == "" {
		t.ObjectType = defaultObjectType
	}
	if strings.TrimSpace(t.Source) == "" {
		t.Source = defaultSource
	}
	if t.Confidence == 0 {
		t.Confidence = defaultConfidence
	}
}

// Item is an extracted fact after categorization, ready to become a
// memory card.
type Item struct {
	Type        string         `json:"type"`
	Text        string         `json:"text"`
	Category    string         `json:"category"`
	SubCategory string         `json:"sub_category,omitempty"`
	Confidence  float64        `json:"confidence"`
	Properties  map[string]any `json:"properties,omitempty"`
}

// Extractor mines items from a conversation transcript.
type Extractor interface {
	Extract(ctx context.Context, conversation string) ([]Item, error)
}

// ChatClient is the completion seam the distiller needs.
type ChatClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
