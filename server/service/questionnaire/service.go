// Package questionnaire manages per-persona profile questionnaires and
// converts answered questions into profile memory cards. Question and
// answer state lives in memory; only the derived cards are persisted,
// so restarting the daemon keeps the profile's memory but re-presents
// the questions.
package questionnaire

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	serviceerrors "github.com/memwallet/memwallet/server/internal/errors"
	"github.com/memwallet/memwallet/store"
)

const defaultPersona = "Personal"

// statementPrefixLen bounds the prefix compared when replacing a
// previously answered question's card.
const statementPrefixLen = 50

// Service owns questionnaire state and the answer-to-card conversion.
type Service struct {
	store *store.Store

	mu       sync.Mutex
	profiles map[string]*Profile
}

func NewService(st *store.Store) *Service {
	return &Service{
		store:    st,
		profiles: map[string]*Profile{},
	}
}

// GetProfile returns a snapshot of the persona's questionnaire,
// creating it with the default question tables on first access.
func (s *Service) GetProfile(persona string) *Profile {
	persona = normalizePersona(persona)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureProfile(persona).snapshot()
}

// CreateProfile explicitly creates a persona's questionnaire. Unlike
// GetProfile it fails when one already exists.
func (s *Service) CreateProfile(persona string) (*Profile, error) {
	persona = normalizePersona(persona)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[persona]; ok {
		return nil, serviceerrors.InvalidArgument(fmt.Sprintf("profile already exists for persona %q", persona))
	}
	return s.ensureProfile(persona).snapshot(), nil
}

// AddSubProfile appends a new topical area to the persona's profile.
func (s *Service) AddSubProfile(persona, name, description string, categories []string) (*SubProfile, error) {
	if name == "" {
		return nil, serviceerrors.InvalidArgument("sub-profile name is required")
	}
	persona = normalizePersona(persona)
	now := time.Now().Unix()

	s.mu.Lock()
	defer s.mu.Unlock()
	profile := s.ensureProfile(persona)
	sub := &SubProfile{
		ID:          NewSubProfileID(),
		Name:        name,
		Description: description,
		Categories:  categories,
		CreatedTs:   now,
		UpdatedTs:   now,
	}
	profile.SubProfiles = append(profile.SubProfiles, sub)
	profile.UpdatedTs = now
	return sub.snapshot(), nil
}

// AddQuestion appends a question to the main profile, or to the named
// sub-profile when subProfileID is set.
func (s *Service) AddQuestion(persona, subProfileID string, question *Question) (*Question, error) {
	if question == nil || question.Text == "" {
		return nil, serviceerrors.InvalidArgument("question text is required")
	}
	persona = normalizePersona(persona)

	added := *question
	if added.ID == "" {
		added.ID = NewQuestionID()
	}
	if added.Type == "" {
		added.Type = QuestionTypeText
	}
	added.CreatedTs = time.Now().Unix()

	s.mu.Lock()
	defer s.mu.Unlock()
	profile := s.ensureProfile(persona)
	if subProfileID == "" {
		profile.MainQuestions = append(profile.MainQuestions, &added)
	} else {
		sub := profile.subProfileByID(subProfileID)
		if sub == nil {
			return nil, serviceerrors.NotFound("sub-profile", subProfileID)
		}
		sub.Questions = append(sub.Questions, &added)
		sub.UpdatedTs = added.CreatedTs
	}
	profile.UpdatedTs = added.CreatedTs

	snapshot := added
	return &snapshot, nil
}

// Answer records the chosen option and syncs the derived memory card.
// Card persistence failures are logged, not returned: the answer is
// accepted either way and the card catches up on the next update.
func (s *Service) Answer(ctx context.Context, persona, questionID, answerText string) (*Answer, error) {
	if questionID == "" {
		return nil, serviceerrors.InvalidArgument("question id is required")
	}
	if answerText == "" {
		return nil, serviceerrors.InvalidArgument("answer text is required")
	}
	persona = normalizePersona(persona)

	s.mu.Lock()
	profile := s.ensureProfile(persona)
	question, sub := profile.findQuestion(questionID)
	if question == nil {
		s.mu.Unlock()
		return nil, serviceerrors.NotFound("question", questionID)
	}

	now := time.Now().Unix()
	answers := &profile.MainAnswers
	if sub != nil {
		answers = &sub.Answers
	}
	answer := upsertAnswer(answers, questionID, answerText, now)
	if sub != nil {
		sub.UpdatedTs = now
	}
	profile.UpdatedTs = now

	card := s.buildCard(persona, question, sub, answerText)
	recorded := *answer
	s.mu.Unlock()

	if err := s.syncCard(ctx, persona, card); err != nil {
		slog.Error("profile card sync failed",
			slog.String("persona", persona),
			slog.String("question", questionID),
			slog.String("error", err.Error()))
	}
	return &recorded, nil
}

// buildCard assembles the memory card for an answered question. Tags
// carry the profile provenance marker so selection treats the card as
// confirmed rather than mined.
func (s *Service) buildCard(persona string, question *Question, sub *SubProfile, answerText string) *store.Card {
	questionLower := strings.ToLower(question.Text)
	cardType := cardTypeForQuestion(questionLower)
	domains := domainsForQuestion(questionLower, sub)

	tags := append([]string{store.TagProfile}, domains...)
	tags = append(tags, question.SemanticTags...)

	return &store.Card{
		Type:     cardType,
		Text:     statementFor(question.Text, answerText),
		Domains:  domains,
		Priority: cardPriorityFor(cardType),
		Tags:     dedupeStrings(tags),
		Persona:  persona,
	}
}

// syncCard replaces the previous card for this statement, matched by
// lowercased prefix, then persists the new one.
func (s *Service) syncCard(ctx context.Context, persona string, card *store.Card) error {
	existing, err := s.store.ListCards(ctx, &store.FindCard{Persona: &persona})
	if err != nil {
		return errors.Wrap(err, "list cards")
	}
	prefix := statementPrefix(card.Text)
	for _, found := range existing {
		if statementPrefix(found.Text) != prefix {
			continue
		}
		if err := s.store.DeleteCard(ctx, &store.DeleteCard{ID: &found.ID}); err != nil {
			return errors.Wrapf(err, "delete card %s", found.ID)
		}
		slog.Debug("replaced profile card", slog.String("card", found.ID))
		break
	}
	if _, err := s.store.CreateCard(ctx, card); err != nil {
		return errors.Wrap(err, "create card")
	}
	return nil
}

func (p *Profile) findQuestion(questionID string) (*Question, *SubProfile) {
	for _, question := range p.MainQuestions {
		if question.ID == questionID {
			return question, nil
		}
	}
	for _, sub := range p.SubProfiles {
		for _, question := range sub.Questions {
			if question.ID == questionID {
				return question, sub
			}
		}
	}
	return nil, nil
}

func (p *Profile) subProfileByID(id string) *SubProfile {
	for _, sub := range p.SubProfiles {
		if sub.ID == id {
			return sub
		}
	}
	return nil
}

func (s *Service) ensureProfile(persona string) *Profile {
	if profile, ok := s.profiles[persona]; ok {
		return profile
	}
	now := time.Now().Unix()
	profile := &Profile{
		Persona:       persona,
		MainQuestions: defaultMainQuestions(),
		SubProfiles:   defaultSubProfiles(),
		CreatedTs:     now,
		UpdatedTs:     now,
	}
	s.profiles[persona] = profile
	return profile
}

func upsertAnswer(answers *[]*Answer, questionID, answerText string, now int64) *Answer {
	for _, answer := range *answers {
		if answer.QuestionID == questionID {
			answer.Text = answerText
			answer.UpdatedTs = now
			return answer
		}
	}
	answer := &Answer{
		QuestionID: questionID,
		Text:       answerText,
		AnsweredTs: now,
		UpdatedTs:  now,
	}
	*answers = append(*answers, answer)
	return answer
}

func normalizePersona(persona string) string {
	if persona == "" {
		return defaultPersona
	}
	return persona
}

func statementPrefix(text string) string {
	lower := strings.ToLower(text)
	if len(lower) > statementPrefixLen {
		return lower[:statementPrefixLen]
	}
	return lower
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		if seen[value] {
			continue
		}
		seen[value] = true
		out = append(out, value)
	}
	return out
}

// snapshot returns a copy safe to serialize while the service keeps
// mutating the live profile.
func (p *Profile) snapshot() *Profile {
	out := &Profile{
		Persona:   p.Persona,
		CreatedTs: p.CreatedTs,
		UpdatedTs: p.UpdatedTs,
	}
	out.MainQuestions = snapshotQuestions(p.MainQuestions)
	out.MainAnswers = snapshotAnswers(p.MainAnswers)
	for _, sub := range p.SubProfiles {
		out.SubProfiles = append(out.SubProfiles, sub.snapshot())
	}
	return out
}

func (sp *SubProfile) snapshot() *SubProfile {
	out := *sp
	out.Questions = snapshotQuestions(sp.Questions)
	out.Answers = snapshotAnswers(sp.Answers)
	return &out
}

func snapshotQuestions(questions []*Question) []*Question {
	out := make([]*Question, 0, len(questions))
	for _, question := range questions {
		copied := *question
		out = append(out, &copied)
	}
	return out
}

func snapshotAnswers(answers []*Answer) []*Answer {
	out := make([]*Answer, 0, len(answers))
	for _, answer := range answers {
		copied := *answer
		out = append(out, &copied)
	}
	return out
}
