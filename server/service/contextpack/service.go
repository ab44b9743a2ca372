// Package contextpack selects a bounded, relevant, conflict-free slice
// of a persona's memory cards for a draft prompt and renders it as a
// text block suitable for prepending to an outbound chat request.
//
// The selection pipeline is: contradiction veto against the prompt and
// its explicit preferences, multi-signal relevance scoring with a
// minimum threshold, a stable sort by descending score, profile-wins
// arbitration between profile and extracted cards, then truncation to
// the card cap. The pipeline itself is pure; this package's Service
// adds the two blocking collaborator calls around it, the card
// repository and the prompt analyzer.
package contextpack

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/memwallet/memwallet/plugin/ai/analyzer"
	serviceerrors "github.com/memwallet/memwallet/server/internal/errors"
	"github.com/memwallet/memwallet/store"
)

// Sensitivity modes. The mode is recorded and echoed back but does not
// alter selection yet; it is an extension point for suppressing soft
// preferences in shared contexts.
const (
	SensitivityQuiet   = "quiet"
	SensitivityVerbose = "verbose"
)

const (
	DefaultPersona      = "Personal"
	DefaultMaxCards     = 12
	DefaultMinRelevance = 0.5
	DefaultPreviewCards = 5

	// graphHintLimit caps the supplementary tag lookup that pre-seeds
	// candidate ordering.
	graphHintLimit = 20

	previewTextLimit = 100
)

// Request carries one context pack invocation. Zero values select the
// documented defaults; MinRelevance must be negative to disable the
// threshold entirely.
type Request struct {
	DraftPrompt     string  `json:"draft_prompt"`
	Persona         string  `json:"persona"`
	SensitivityMode string  `json:"sensitivity_mode"`
	MaxCards        int     `json:"max_cards"`
	MinRelevance    float32 `json:"min_relevance"`
}

func (r *Request) normalize() {
	if r.Persona == "" {
		r.Persona = DefaultPersona
	}
	if r.SensitivityMode == "" {
		r.SensitivityMode = SensitivityQuiet
	}
	if r.MaxCards == 0 {
		r.MaxCards = DefaultMaxCards
	}
	if r.MinRelevance == 0 {
		r.MinRelevance = DefaultMinRelevance
	}
}

func (r *Request) validate() error {
	if strings.TrimSpace(r.DraftPrompt) == "" {
		return serviceerrors.InvalidArgument("draft prompt is required")
	}
	if r.SensitivityMode != SensitivityQuiet && r.SensitivityMode != SensitivityVerbose {
		return serviceerrors.InvalidArgument(fmt.Sprintf("invalid sensitivity mode %q: must be %q or %q", r.SensitivityMode, SensitivityQuiet, SensitivityVerbose))
	}
	return nil
}

// UsedCard describes one card included in a pack.
type UsedCard struct {
	ID             string   `json:"id"`
	Type           string   `json:"type"`
	Text           string   `json:"text"`
	Domains        []string `json:"domain"`
	RelevanceScore float32  `json:"relevance_score"`
}

// Pack is a rendered context pack.
type Pack struct {
	PackText        string     `json:"pack_text"`
	UsedCards       []UsedCard `json:"used_cards"`
	CardCount       int        `json:"card_count"`
	Persona         string     `json:"persona"`
	SensitivityMode string     `json:"sensitivity_mode"`
	GeneratedAt     time.Time  `json:"generated_at"`
}

// PreviewCard is the truncated card view returned by Preview.
type PreviewCard struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Text    string   `json:"text"`
	Domains []string `json:"domain"`
}

// Preview shows what a pack looks like for a persona without a prompt.
type Preview struct {
	Persona      string        `json:"persona"`
	TotalCards   int           `json:"total_cards"`
	PreviewCards int           `json:"preview_cards"`
	PackPreview  string        `json:"pack_preview"`
	Cards        []PreviewCard `json:"cards"`
}

// HintProvider supplies supplementary candidate-ordering hints from a
// tag index. The store satisfies it; tests inject fakes.
type HintProvider interface {
	FindRelatedCardIDsByTags(ctx context.Context, tags []string, persona string, limit int) ([]string, error)
}

// Service builds context packs from stored cards and a prompt analyzer.
type Service struct {
	store    *store.Store
	analyzer analyzer.Analyzer
	fallback *analyzer.FallbackAnalyzer
	hints    HintProvider
	engine   *Engine
}

func NewService(st *store.Store, an analyzer.Analyzer) *Service {
	if an == nil {
		an = analyzer.NewChain(nil)
	}
	return &Service{
		store:    st,
		analyzer: an,
		fallback: analyzer.NewFallbackAnalyzer(),
		hints:    st,
		engine:   NewEngine(),
	}
}

// SetHintProvider swaps the supplementary ordering-hint source. The
// store's tag index is the default; deployments with an embedding
// model can install a similarity-backed provider instead.
func (s *Service) SetHintProvider(h HintProvider) {
	if h == nil {
		return
	}
	s.hints = h
}

// gather fetches the persona's cards and the prompt analysis
// concurrently, then applies ordering hints. Analysis failures degrade
// to the keyword fallback; only repository failures propagate.
func (s *Service) gather(ctx context.Context, req *Request) ([]*store.Card, *analyzer.Analysis, error) {
	var (
		cards    []*store.Card
		analysis *analyzer.Analysis
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cards, err = s.store.ListCards(gctx, &store.FindCard{Persona: &req.Persona})
		if err != nil {
			return serviceerrors.StoreFailed("list cards", err)
		}
		return nil
	})
	g.Go(func() error {
		a, err := s.analyzer.Analyze(gctx, req.DraftPrompt)
		if err != nil || a == nil {
			slog.Warn("prompt analysis failed, using keyword fallback", "error", err)
			a, _ = s.fallback.Analyze(gctx, req.DraftPrompt)
		}
		analysis = a
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return s.applyGraphHints(ctx, cards, analysis, req.Persona), analysis, nil
}

// BuildContextPack runs the selection pipeline for a draft prompt and
// renders the result. An empty wallet or an over-strict threshold
// yields an empty pack, not an error; only invalid input and repository
// failures error out.
func (s *Service) BuildContextPack(ctx context.Context, req *Request) (*Pack, error) {
	if req == nil {
		return nil, serviceerrors.InvalidArgument("request is required")
	}
	req.normalize()
	if err := req.validate(); err != nil {
		return nil, err
	}

	cards, analysis, err := s.gather(ctx, req)
	if err != nil {
		return nil, err
	}

	selected := s.engine.Select(cards, analysis, req.DraftPrompt, req.MaxCards, req.MinRelevance)

	used := make([]UsedCard, 0, len(selected))
	for _, sc := range selected {
		used = append(used, UsedCard{
			ID:             sc.Card.ID,
			Type:           string(sc.Card.Type),
			Text:           sc.Card.Text,
			Domains:        domainsOrEmpty(sc.Card.Domains),
			RelevanceScore: sc.Score,
		})
	}

	slog.Debug("context pack built",
		"persona", req.Persona,
		"candidates", len(cards),
		"selected", len(used))

	return &Pack{
		PackText:        Format(selected),
		UsedCards:       used,
		CardCount:       len(used),
		Persona:         req.Persona,
		SensitivityMode: req.SensitivityMode,
		GeneratedAt:     time.Now().UTC(),
	}, nil
}

// CardDecision is the per-card view returned by the preview endpoint.
type CardDecision struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	Text     string  `json:"text"`
	Score    float32 `json:"score"`
	Included bool    `json:"included"`
	Reason   string  `json:"reason"`
}

// Explanation is a dry run of pack building: the same pipeline with
// every candidate's fate reported instead of only the winners.
type Explanation struct {
	Persona     string             `json:"persona"`
	Analysis    *analyzer.Analysis `json:"analysis"`
	Decisions   []CardDecision     `json:"decisions"`
	PackText    string             `json:"pack_text"`
	CardCount   int                `json:"card_count"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// ExplainContextPack builds the pack while reporting what happened to
// every candidate card: its score and whether it was selected, vetoed,
// under threshold, arbitrated away, or over the cap.
func (s *Service) ExplainContextPack(ctx context.Context, req *Request) (*Explanation, error) {
	if req == nil {
		return nil, serviceerrors.InvalidArgument("request is required")
	}
	req.normalize()
	if err := req.validate(); err != nil {
		return nil, err
	}

	cards, analysis, err := s.gather(ctx, req)
	if err != nil {
		return nil, err
	}

	decisions := s.engine.Explain(cards, analysis, req.DraftPrompt, req.MaxCards, req.MinRelevance)

	selected := make([]ScoredCard, 0, len(decisions))
	out := make([]CardDecision, 0, len(decisions))
	for _, d := range decisions {
		if d.Included {
			selected = append(selected, ScoredCard{Card: d.Card, Score: d.Score})
		}
		out = append(out, CardDecision{
			ID:       d.Card.ID,
			Type:     string(d.Card.Type),
			Text:     d.Card.Text,
			Score:    d.Score,
			Included: d.Included,
			Reason:   d.Reason,
		})
	}

	return &Explanation{
		Persona:     req.Persona,
		Analysis:    analysis,
		Decisions:   out,
		PackText:    Format(selected),
		CardCount:   len(selected),
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// BuildPreview renders the first cards of a persona without any
// prompt-based filtering. The popup uses it to show what context is
// currently on file.
func (s *Service) BuildPreview(ctx context.Context, persona string, maxCards int) (*Preview, error) {
	if persona == "" {
		persona = DefaultPersona
	}
	if maxCards <= 0 {
		maxCards = DefaultPreviewCards
	}

	cards, err := s.store.ListCards(ctx, &store.FindCard{Persona: &persona})
	if err != nil {
		return nil, serviceerrors.StoreFailed("list cards", err)
	}

	head := cards
	if len(head) > maxCards {
		head = head[:maxCards]
	}
	selected := make([]ScoredCard, 0, len(head))
	preview := make([]PreviewCard, 0, len(head))
	for _, card := range head {
		selected = append(selected, ScoredCard{Card: card, Score: 1.0})
		text := card.Text
		if len(text) > previewTextLimit {
			text = text[:previewTextLimit] + "..."
		}
		preview = append(preview, PreviewCard{
			ID:      card.ID,
			Type:    string(card.Type),
			Text:    text,
			Domains: domainsOrEmpty(card.Domains),
		})
	}

	return &Preview{
		Persona:      persona,
		TotalCards:   len(cards),
		PreviewCards: len(preview),
		PackPreview:  Format(selected),
		Cards:        preview,
	}, nil
}

// applyGraphHints moves cards related to the analysis topics to the
// front of the candidate order, keeping hint order among them and
// repository order for the rest. Hints adjust ordering only, never
// membership, and a failed lookup is ignored so the supplementary index
// can be down without affecting packs.
func (s *Service) applyGraphHints(ctx context.Context, cards []*store.Card, analysis *analyzer.Analysis, persona string) []*store.Card {
	if len(cards) == 0 || analysis == nil {
		return cards
	}

	hintTags := make([]string, 0, len(analysis.Domains)+len(analysis.Keywords))
	hintTags = append(hintTags, analysis.Domains...)
	hintTags = append(hintTags, analysis.Keywords...)
	if len(hintTags) == 0 {
		return cards
	}

	ids, err := s.hints.FindRelatedCardIDsByTags(ctx, hintTags, persona, graphHintLimit)
	if err != nil {
		slog.Warn("related card lookup failed, keeping repository order", "error", err)
		return cards
	}
	if len(ids) == 0 {
		return cards
	}

	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, ok := pos[id]; !ok {
			pos[id] = i
		}
	}

	hinted := make([]*store.Card, 0, len(pos))
	rest := make([]*store.Card, 0, len(cards))
	for _, card := range cards {
		if _, ok := pos[card.ID]; ok {
			hinted = append(hinted, card)
		} else {
			rest = append(rest, card)
		}
	}
	sort.SliceStable(hinted, func(i, j int) bool {
		return pos[hinted[i].ID] < pos[hinted[j].ID]
	})
	return append(hinted, rest...)
}

func domainsOrEmpty(domains []string) []string {
	if domains == nil {
		return []string{}
	}
	return domains
}
