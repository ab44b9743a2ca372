package questionnaire

import (
	"time"

	"github.com/lithammer/shortuuid/v4"
)

// QuestionType constrains how a question is presented and answered.
type QuestionType string

const (
	QuestionTypeText           QuestionType = "text"
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeScale          QuestionType = "scale"
	QuestionTypeBoolean        QuestionType = "boolean"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeText, QuestionTypeMultipleChoice, QuestionTypeScale, QuestionTypeBoolean:
		return true
	}
	return false
}

// Question is one profile question. SemanticTags flow onto the memory
// card created from its answer, so cross-profile matching works even
// when the statement text names nothing matchable.
type Question struct {
	ID           string       `json:"id"`
	Text         string       `json:"question_text"`
	Type         QuestionType `json:"question_type"`
	Options      []string     `json:"options"`
	SemanticTags []string     `json:"semantic_tags"`
	Required     bool         `json:"required"`
	Order        int          `json:"order"`
	CreatedTs    int64        `json:"created_ts"`
}

// Answer records the chosen option for a question.
type Answer struct {
	QuestionID string `json:"question_id"`
	Text       string `json:"answer_text"`
	AnsweredTs int64  `json:"answered_ts"`
	UpdatedTs  int64  `json:"updated_ts"`
}

// SubProfile groups topical questions under a named area with its
// routing categories.
type SubProfile struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Categories  []string    `json:"categories"`
	Questions   []*Question `json:"questions"`
	Answers     []*Answer   `json:"answers"`
	CreatedTs   int64       `json:"created_ts"`
	UpdatedTs   int64       `json:"updated_ts"`
}

// Profile is the questionnaire state for one persona.
type Profile struct {
	Persona       string        `json:"persona"`
	MainQuestions []*Question   `json:"main_questions"`
	MainAnswers   []*Answer     `json:"main_answers"`
	SubProfiles   []*SubProfile `json:"sub_profiles"`
	CreatedTs     int64         `json:"created_ts"`
	UpdatedTs     int64         `json:"updated_ts"`
}

// NewQuestionID returns a fresh question identifier.
func NewQuestionID() string {
	return "q_" + shortuuid.New()
}

// NewSubProfileID returns a fresh sub-profile identifier.
func NewSubProfileID() string {
	return "sub_" + shortuuid.New()
}

func newQuestion(text string, options []string, semanticTags []string, order int) *Question {
	return &Question{
		ID:           NewQuestionID(),
		Text:         text,
		Type:         QuestionTypeMultipleChoice,
		Options:      options,
		SemanticTags: semanticTags,
		Required:     true,
		Order:        order,
		CreatedTs:    time.Now().Unix(),
	}
}

// defaultMainQuestions are the twelve baseline personality and
// communication questions every profile starts with.
func defaultMainQuestions() []*Question {
	return []*Question{
		newQuestion(
			"Do you usually prefer people to be blunt and direct rather than diplomatic?",
			[]string{"Blunt", "Neutral", "Diplomatic"},
			[]string{"communication", "directness", "style"},
			1,
		),
		newQuestion(
			"Do you like getting the bottom line first before details?",
			[]string{"Yes", "No"},
			[]string{"communication", "details", "summary"},
			2,
		),
		newQuestion(
			"Do you trust a recommendation more when it includes the reasoning and tradeoffs, not just the answer?",
			[]string{"Yes", "No"},
			[]string{"recommendations", "reasoning", "tradeoffs", "decisions"},
			3,
		),
		newQuestion(
			"When learning, do you prefer examples over abstract explanations?",
			[]string{"Examples", "Neutral", "Abstract"},
			[]string{"learning", "examples", "explanations"},
			4,
		),
		newQuestion(
			"Do you get energized by lots of options, rather than overwhelmed by them?",
			[]string{"Yes", "Neutral", "No"},
			[]string{"options", "choices", "variety", "decisions"},
			5,
		),
		newQuestion(
			"Do you generally prefer a clear plan before you start, rather than figuring it out as you go?",
			[]string{"Plan", "Neutral", "On the Fly"},
			[]string{"planning", "structure", "spontaneity"},
			6,
		),
		newQuestion(
			"In disagreements, do you prefer to resolve things quickly rather than take time to cool off?",
			[]string{"Quick", "Neutral", "Take Time"},
			[]string{"conflict", "resolution", "timing"},
			7,
		),
		newQuestion(
			"If someone hurts your feelings, do you usually tell them directly rather than hint or withdraw?",
			[]string{"Direct", "Neutral", "Hint"},
			[]string{"communication", "emotions", "directness"},
			8,
		),
		newQuestion(
			"Do you find it easy to say 'no' without over-explaining?",
			[]string{"Yes", "Neutral", "No"},
			[]string{"boundaries", "communication", "assertiveness"},
			9,
		),
		newQuestion(
			"Do you prefer privacy and a small circle over being widely known and socially active?",
			[]string{"Private", "Neutral", "Well-known"},
			[]string{"privacy", "social", "personality"},
			10,
		),
		newQuestion(
			"Do you generally assume people mean well unless proven otherwise?",
			[]string{"Yes", "Neutral", "No"},
			[]string{"trust", "optimism", "people"},
			11,
		),
		newQuestion(
			"When you're stressed, do you become more quiet/internal rather than outward/talkative?",
			[]string{"Quiet", "Neutral", "Talkative"},
			[]string{"stress", "coping", "personality"},
			12,
		),
	}
}

// defaultSubProfiles returns the four starter areas. Only Shopping
// ships with questions; the others are empty shells users extend.
func defaultSubProfiles() []*SubProfile {
	now := time.Now().Unix()
	return []*SubProfile{
		{
			ID:          NewSubProfileID(),
			Name:        "Shopping",
			Description: "Shopping preferences and habits",
			Categories:  []string{"Electronics", "Clothing", "Groceries", "Books"},
			Questions: []*Question{
				newQuestion(
					"Do you usually decide what to buy before you enter the store/website?",
					[]string{"Yes", "Neutral", "No"},
					[]string{"planning", "spontaneity", "browsing"},
					0,
				),
				newQuestion(
					"Do you typically choose the cheapest option if it seems 'good enough'?",
					[]string{"Yes", "Neutral", "No"},
					[]string{"price", "budget", "cheap", "quality", "value"},
					0,
				),
				newQuestion(
					"Do you usually stick to the same brands once you find one you like?",
					[]string{"Yes", "Neutral", "No"},
					[]string{"brands", "loyalty", "variety"},
					0,
				),
				newQuestion(
					"Do reviews/ratings influence you more than recommendations from friends/family?",
					[]string{"Reviews", "Neutral", "Recs"},
					[]string{"reviews", "recommendations", "ratings", "trust"},
					0,
				),
				newQuestion(
					"Do you care more about long-term durability than immediate convenience?",
					[]string{"Durable", "Neutral", "Convenience"},
					[]string{"durability", "quality", "convenience", "longevity"},
					0,
				),
				newQuestion(
					"For groceries, do you prioritize health/nutrition over taste/comfort?",
					[]string{"Health", "Neutral", "Taste"},
					[]string{"health", "nutrition", "taste", "food", "groceries"},
					0,
				),
				newQuestion(
					"Do you actively look for deals (coupons, discounts, price comparisons) most of the time?",
					[]string{"Yes", "Neutral", "No"},
					[]string{"deals", "discounts", "price", "budget", "savings"},
					0,
				),
				newQuestion(
					"Do you avoid products that feel wasteful (extra packaging, disposable, short lifespan)?",
					[]string{"Yes", "Neutral", "No"},
					[]string{"sustainability", "waste", "environment", "packaging"},
					0,
				),
				newQuestion(
					"Do you return items easily if they aren't right, rather than keeping them?",
					[]string{"Yes", "Neutral", "No"},
					[]string{"returns", "satisfaction", "decisions"},
					0,
				),
				newQuestion(
					"Do you prefer a few 'best' options picked for you over browsing lots of alternatives?",
					[]string{"Few", "Neutral", "Many"},
					[]string{"options", "choices", "curation", "variety", "browsing"},
					0,
				),
			},
			CreatedTs: now,
			UpdatedTs: now,
		},
		{
			ID:          NewSubProfileID(),
			Name:        "Eating",
			Description: "Food preferences and dining habits",
			Categories:  []string{"Restaurants", "Cooking", "Dietary", "Cuisines"},
			CreatedTs:   now,
			UpdatedTs:   now,
		},
		{
			ID:          NewSubProfileID(),
			Name:        "Health",
			Description: "Health and wellness information",
			Categories:  []string{"Fitness", "Medical", "Mental Health", "Nutrition"},
			CreatedTs:   now,
			UpdatedTs:   now,
		},
		{
			ID:          NewSubProfileID(),
			Name:        "Work",
			Description: "Work and professional information",
			Categories:  []string{"Finance", "Coding", "Projects", "Meetings"},
			CreatedTs:   now,
			UpdatedTs:   now,
		},
	}
}
