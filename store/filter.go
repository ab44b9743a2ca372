package store

import (
	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"
)

// CardFilter evaluates a CEL expression against cards, powering the
// listing API's filter parameter. Expressions see one card at a time, e.g.
//
//	type == "constraint" && "profile" in tags
//	"shopping" in domains && priority == "hard"
type CardFilter struct {
	program cel.Program
}

// NewCardFilter compiles a filter expression. The expression must evaluate
// to a boolean.
func NewCardFilter(expression string) (*CardFilter, error) {
	env, err := cel.NewEnv(
		cel.Variable("id", cel.StringType),
		cel.Variable("type", cel.StringType),
		cel.Variable("text", cel.StringType),
		cel.Variable("priority", cel.StringType),
		cel.Variable("persona", cel.StringType),
		cel.Variable("domains", cel.ListType(cel.StringType)),
		cel.Variable("tags", cel.ListType(cel.StringType)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create filter environment")
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, errors.Wrap(issues.Err(), "invalid filter expression")
	}
	if ast.OutputType() != cel.BoolType {
		return nil, errors.Errorf("filter must evaluate to a boolean, got %s", ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build filter program")
	}
	return &CardFilter{program: program}, nil
}

// Matches reports whether the card satisfies the filter.
// Evaluation errors count as non-matches.
func (f *CardFilter) Matches(card *Card) bool {
	out, _, err := f.program.Eval(map[string]any{
		"id":       card.ID,
		"type":     string(card.Type),
		"text":     card.Text,
		"priority": string(card.Priority),
		"persona":  card.Persona,
		"domains":  card.Domains,
		"tags":     card.Tags,
	})
	if err != nil {
		return false
	}
	matched, ok := out.Value().(bool)
	return ok && matched
}

// FilterCards returns the cards matching the expression, preserving order.
func FilterCards(cards []*Card, expression string) ([]*Card, error) {
	filter, err := NewCardFilter(expression)
	if err != nil {
		return nil, err
	}
	matched := make([]*Card, 0, len(cards))
	for _, card := range cards {
		if filter.Matches(card) {
			matched = append(matched, card)
		}
	}
	return matched, nil
}
