package contextpack

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/memwallet/memwallet/plugin/ai/analyzer"
	"github.com/memwallet/memwallet/store"
	teststore "github.com/memwallet/memwallet/store/test"
)

func newTestService(t *testing.T, mock analyzer.Analyzer) (*Service, *store.Store) {
	ctx := context.Background()
	st := teststore.NewTestingStore(ctx, t)
	return NewService(st, mock), st
}

func mustCreateCard(t *testing.T, st *store.Store, card *store.Card) *store.Card {
	created, err := st.CreateCard(context.Background(), card)
	require.NoError(t, err)
	return created
}

func TestBuildContextPackEndToEnd(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, &analyzer.MockAnalyzer{Result: shoppingAnalysis()})

	profile := mustCreateCard(t, st, &store.Card{
		Type:      store.CardTypePreference,
		Text:      "User prioritizes quality over price, not the cheapest option",
		Domains:   []string{"shopping"},
		Tags:      []string{store.TagProfile},
		CreatedTs: 1000,
	})
	mustCreateCard(t, st, &store.Card{
		Type:      store.CardTypeGoal,
		Text:      "User's goal: cheapest pans possible",
		Domains:   []string{"shopping"},
		Tags:      []string{store.TagExtracted},
		CreatedTs: 1001,
	})

	pack, err := svc.BuildContextPack(ctx, &Request{DraftPrompt: "find me the cheapest pans"})
	require.NoError(t, err)

	require.Equal(t, 1, pack.CardCount)
	require.Len(t, pack.UsedCards, 1)
	require.Equal(t, profile.ID, pack.UsedCards[0].ID)
	require.Equal(t, string(store.CardTypePreference), pack.UsedCards[0].Type)
	require.GreaterOrEqual(t, pack.UsedCards[0].RelevanceScore, float32(0.5))
	require.LessOrEqual(t, pack.UsedCards[0].RelevanceScore, float32(1.0))

	require.True(t, strings.HasPrefix(pack.PackText, "--- PERSONAL CONTEXT ---"))
	require.True(t, strings.HasSuffix(pack.PackText, "--- END PERSONAL CONTEXT ---"))
	require.Contains(t, pack.PackText, "PREFERENCES:")
	require.Contains(t, pack.PackText, "• User prioritizes quality over price, not the cheapest option")
	require.NotContains(t, pack.PackText, "cheapest pans possible")

	require.Equal(t, DefaultPersona, pack.Persona)
	require.Equal(t, SensitivityQuiet, pack.SensitivityMode)
	require.False(t, pack.GeneratedAt.IsZero())
}

func TestBuildContextPackEmptyWallet(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &analyzer.MockAnalyzer{Result: shoppingAnalysis()})

	pack, err := svc.BuildContextPack(ctx, &Request{DraftPrompt: "find me the cheapest pans"})
	require.NoError(t, err)

	require.Equal(t, "", pack.PackText)
	require.Equal(t, 0, pack.CardCount)
	require.Empty(t, pack.UsedCards)
}

func TestBuildContextPackStrictThreshold(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, &analyzer.MockAnalyzer{Result: shoppingAnalysis()})

	mustCreateCard(t, st, &store.Card{
		Type:    store.CardTypePreference,
		Text:    "Likes apples",
		Domains: []string{"shopping"},
	})

	pack, err := svc.BuildContextPack(ctx, &Request{
		DraftPrompt:  "find me the cheapest pans",
		MinRelevance: 0.99,
	})
	require.NoError(t, err)

	require.Equal(t, "", pack.PackText)
	require.Equal(t, 0, pack.CardCount)
}

func TestBuildContextPackAppliesCardCap(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, &analyzer.MockAnalyzer{Result: shoppingAnalysis()})

	for i := 0; i < 15; i++ {
		mustCreateCard(t, st, &store.Card{
			Type:      store.CardTypePreference,
			Text:      fmt.Sprintf("Preference number %d", i),
			Domains:   []string{"shopping"},
			Tags:      []string{store.TagProfile},
			CreatedTs: int64(1000 + i),
		})
	}

	pack, err := svc.BuildContextPack(ctx, &Request{DraftPrompt: "find me the cheapest pans"})
	require.NoError(t, err)
	require.Equal(t, DefaultMaxCards, pack.CardCount)
	require.Len(t, pack.UsedCards, DefaultMaxCards)

	smaller, err := svc.BuildContextPack(ctx, &Request{
		DraftPrompt: "find me the cheapest pans",
		MaxCards:    3,
	})
	require.NoError(t, err)
	require.Equal(t, 3, smaller.CardCount)
}

func TestBuildContextPackValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &analyzer.MockAnalyzer{Result: shoppingAnalysis()})

	_, err := svc.BuildContextPack(ctx, nil)
	require.Error(t, err)

	_, err = svc.BuildContextPack(ctx, &Request{DraftPrompt: "   "})
	require.Error(t, err)

	_, err = svc.BuildContextPack(ctx, &Request{
		DraftPrompt:     "find me the cheapest pans",
		SensitivityMode: "loud",
	})
	require.Error(t, err)
}

func TestBuildContextPackAnalyzerFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	mock := &analyzer.MockAnalyzer{Err: errors.New("provider down")}
	svc, st := newTestService(t, mock)

	mustCreateCard(t, st, &store.Card{
		Type:    store.CardTypePreference,
		Text:    "Prefers non-stick pans",
		Domains: []string{"shopping"},
		Tags:    []string{store.TagProfile},
	})

	pack, err := svc.BuildContextPack(ctx, &Request{DraftPrompt: "find me the cheapest pans"})
	require.NoError(t, err)
	require.Len(t, mock.Calls, 1)

	// The keyword fallback still classifies the prompt as shopping, so
	// the card scores above the default threshold.
	require.Equal(t, 1, pack.CardCount)
	require.Contains(t, pack.PackText, "Prefers non-stick pans")
}

func TestBuildContextPackGraphHintOrdersTies(t *testing.T) {
	ctx := context.Background()
	mock := &analyzer.MockAnalyzer{Result: &analyzer.Analysis{
		Domains:  []string{"general"},
		Keywords: []string{"kitchen"},
	}}
	svc, st := newTestService(t, mock)

	first := mustCreateCard(t, st, &store.Card{
		Type:      store.CardTypePreference,
		Text:      "Likes apples",
		Domains:   []string{"general"},
		Tags:      []string{"pantry"},
		CreatedTs: 1000,
	})
	second := mustCreateCard(t, st, &store.Card{
		Type:      store.CardTypePreference,
		Text:      "Likes oranges",
		Domains:   []string{"general"},
		Tags:      []string{"kitchen"},
		CreatedTs: 1001,
	})

	// Both cards tie on score; the tag hit on "kitchen" pulls the
	// second card to the front of the candidate order.
	pack, err := svc.BuildContextPack(ctx, &Request{
		DraftPrompt:  "hello there friend",
		MinRelevance: 0.3,
	})
	require.NoError(t, err)
	require.Equal(t, 2, pack.CardCount)
	require.Equal(t, second.ID, pack.UsedCards[0].ID)
	require.Equal(t, first.ID, pack.UsedCards[1].ID)
	require.Equal(t, pack.UsedCards[0].RelevanceScore, pack.UsedCards[1].RelevanceScore)
}

type scriptedHints struct {
	ids   []string
	err   error
	calls int
}

func (s *scriptedHints) FindRelatedCardIDsByTags(_ context.Context, _ []string, _ string, _ int) ([]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.ids, nil
}

func TestSetHintProviderSwapsOrderingSource(t *testing.T) {
	ctx := context.Background()
	mock := &analyzer.MockAnalyzer{Result: &analyzer.Analysis{
		Domains:  []string{"general"},
		Keywords: []string{"kitchen"},
	}}
	svc, st := newTestService(t, mock)

	first := mustCreateCard(t, st, &store.Card{
		Type:      store.CardTypePreference,
		Text:      "Likes apples",
		Domains:   []string{"general"},
		Tags:      []string{"pantry"},
		CreatedTs: 1000,
	})
	second := mustCreateCard(t, st, &store.Card{
		Type:      store.CardTypePreference,
		Text:      "Likes oranges",
		Domains:   []string{"general"},
		Tags:      []string{"kitchen"},
		CreatedTs: 1001,
	})

	// The injected provider replaces the store's tag index and pins
	// the first card to the front despite the "kitchen" tag hit.
	hints := &scriptedHints{ids: []string{first.ID}}
	svc.SetHintProvider(hints)

	pack, err := svc.BuildContextPack(ctx, &Request{
		DraftPrompt:  "hello there friend",
		MinRelevance: 0.3,
	})
	require.NoError(t, err)
	require.Equal(t, 2, pack.CardCount)
	require.Equal(t, first.ID, pack.UsedCards[0].ID)
	require.Equal(t, second.ID, pack.UsedCards[1].ID)
	require.Equal(t, 1, hints.calls)

	// A nil provider is ignored; the installed one keeps serving.
	svc.SetHintProvider(nil)
	_, err = svc.BuildContextPack(ctx, &Request{DraftPrompt: "hello there friend", MinRelevance: 0.3})
	require.NoError(t, err)
	require.Equal(t, 2, hints.calls)
}

func TestBuildContextPackHintFailureKeepsRepositoryOrder(t *testing.T) {
	ctx := context.Background()
	mock := &analyzer.MockAnalyzer{Result: &analyzer.Analysis{
		Domains:  []string{"general"},
		Keywords: []string{"kitchen"},
	}}
	svc, st := newTestService(t, mock)

	first := mustCreateCard(t, st, &store.Card{
		Type:      store.CardTypePreference,
		Text:      "Likes apples",
		Domains:   []string{"general"},
		Tags:      []string{"pantry"},
		CreatedTs: 1000,
	})
	second := mustCreateCard(t, st, &store.Card{
		Type:      store.CardTypePreference,
		Text:      "Likes oranges",
		Domains:   []string{"general"},
		Tags:      []string{"kitchen"},
		CreatedTs: 1001,
	})

	svc.SetHintProvider(&scriptedHints{err: errors.New("hint index offline")})

	pack, err := svc.BuildContextPack(ctx, &Request{
		DraftPrompt:  "hello there friend",
		MinRelevance: 0.3,
	})
	require.NoError(t, err)
	require.Equal(t, 2, pack.CardCount)
	require.Equal(t, first.ID, pack.UsedCards[0].ID)
	require.Equal(t, second.ID, pack.UsedCards[1].ID)
}

func TestBuildContextPackDeterministic(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, &analyzer.MockAnalyzer{Result: shoppingAnalysis()})

	for i := 0; i < 6; i++ {
		mustCreateCard(t, st, &store.Card{
			Type:      store.CardTypePreference,
			Text:      fmt.Sprintf("Preference number %d", i),
			Domains:   []string{"shopping"},
			Tags:      []string{store.TagProfile},
			CreatedTs: int64(2000 + i),
		})
	}

	req := func() *Request {
		return &Request{DraftPrompt: "find me the cheapest pans"}
	}
	first, err := svc.BuildContextPack(ctx, req())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := svc.BuildContextPack(ctx, req())
		require.NoError(t, err)
		require.Equal(t, first.PackText, again.PackText)
		require.Equal(t, first.UsedCards, again.UsedCards)
		require.Equal(t, first.CardCount, again.CardCount)
	}
}

func TestBuildPreview(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, &analyzer.MockAnalyzer{Result: shoppingAnalysis()})

	longText := "User " + strings.Repeat("really ", 20) + "likes detailed cooking notes"
	require.Greater(t, len(longText), previewTextLimit)
	mustCreateCard(t, st, &store.Card{
		Type:      store.CardTypePreference,
		Text:      longText,
		CreatedTs: 1000,
	})
	for i := 0; i < 6; i++ {
		mustCreateCard(t, st, &store.Card{
			Type:      store.CardTypeGoal,
			Text:      fmt.Sprintf("Goal number %d", i),
			CreatedTs: int64(1001 + i),
		})
	}

	preview, err := svc.BuildPreview(ctx, "", 0)
	require.NoError(t, err)

	require.Equal(t, DefaultPersona, preview.Persona)
	require.Equal(t, 7, preview.TotalCards)
	require.Equal(t, DefaultPreviewCards, preview.PreviewCards)
	require.Len(t, preview.Cards, DefaultPreviewCards)

	require.Contains(t, preview.PackPreview, "--- PERSONAL CONTEXT ---")
	require.Contains(t, preview.PackPreview, "GOALS:")

	truncated := preview.Cards[0].Text
	require.True(t, strings.HasSuffix(truncated, "..."))
	require.Len(t, truncated, previewTextLimit+3)
}

func TestBuildPreviewEmptyWallet(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &analyzer.MockAnalyzer{Result: shoppingAnalysis()})

	preview, err := svc.BuildPreview(ctx, "Personal", 5)
	require.NoError(t, err)
	require.Equal(t, 0, preview.TotalCards)
	require.Equal(t, "", preview.PackPreview)
	require.Empty(t, preview.Cards)
}

func TestExplainContextPack(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, &analyzer.MockAnalyzer{Result: shoppingAnalysis()})

	profile := mustCreateCard(t, st, &store.Card{
		Type:      store.CardTypePreference,
		Text:      "User prioritizes quality over price, not the cheapest option",
		Domains:   []string{"shopping"},
		Tags:      []string{store.TagProfile},
		CreatedTs: 1000,
	})
	extracted := mustCreateCard(t, st, &store.Card{
		Type:      store.CardTypeGoal,
		Text:      "User's goal: cheapest pans possible",
		Domains:   []string{"shopping"},
		Tags:      []string{store.TagExtracted},
		CreatedTs: 1001,
	})

	explanation, err := svc.ExplainContextPack(ctx, &Request{DraftPrompt: "find me the cheapest pans"})
	require.NoError(t, err)

	require.Equal(t, 1, explanation.CardCount)
	require.Contains(t, explanation.PackText, "quality over price")
	require.NotNil(t, explanation.Analysis)
	require.Contains(t, explanation.Analysis.Domains, "shopping")

	require.Len(t, explanation.Decisions, 2)
	require.Equal(t, profile.ID, explanation.Decisions[0].ID)
	require.True(t, explanation.Decisions[0].Included)
	require.Equal(t, ReasonSelected, explanation.Decisions[0].Reason)

	require.Equal(t, extracted.ID, explanation.Decisions[1].ID)
	require.False(t, explanation.Decisions[1].Included)
	require.Equal(t, ReasonLostArbitration, explanation.Decisions[1].Reason)
}
