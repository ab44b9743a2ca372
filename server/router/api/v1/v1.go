package v1

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/memwallet/memwallet/internal/profile"
	"github.com/memwallet/memwallet/plugin/ai/analyzer"
	"github.com/memwallet/memwallet/plugin/ai/extraction"
	"github.com/memwallet/memwallet/plugin/ai/graph"
	"github.com/memwallet/memwallet/plugin/ai/vector"
	"github.com/memwallet/memwallet/server/ai"
	"github.com/memwallet/memwallet/server/middleware"
	"github.com/memwallet/memwallet/server/service/contextpack"
	"github.com/memwallet/memwallet/server/service/questionnaire"
	"github.com/memwallet/memwallet/store"
)

type APIV1Service struct {
	Secret  string
	Profile *profile.Profile
	Store   *store.Store

	ContextPackService   *contextpack.Service
	QuestionnaireService *questionnaire.Service
	ExtractionChain      *extraction.Chain
	GraphBuilder         *graph.Builder

	// rateLimiter throttles the LLM-backed routes per client.
	rateLimiter *middleware.RateLimiter
}

func NewAPIV1Service(secret string, profile *profile.Profile, store *store.Store) *APIV1Service {
	// The analyzer and extractor run on the LLM when one is configured
	// and fall back to keyword heuristics otherwise. Both chains accept
	// a nil primary.
	var promptAnalyzer analyzer.Analyzer
	var extractor extraction.Extractor
	var provider *ai.Provider
	if profile.IsAIEnabled() {
		p, err := ai.NewProvider(ai.ConfigFromProfile(profile))
		if err != nil {
			slog.Warn("AI provider unavailable, using keyword fallbacks", "error", err)
		} else {
			provider = p
			promptAnalyzer = analyzer.NewLLMAnalyzer(provider)
			extractor = extraction.NewDistiller(provider)
		}
	}

	packService := contextpack.NewService(store, analyzer.NewChain(promptAnalyzer))
	if provider != nil && profile.Driver == "postgres" {
		// Similarity hints need the pgvector tables.
		packService.SetHintProvider(vector.NewHintProvider(store, provider))
	}

	return &APIV1Service{
		Secret:               secret,
		Profile:              profile,
		Store:                store,
		ContextPackService:   packService,
		QuestionnaireService: questionnaire.NewService(store),
		ExtractionChain:      extraction.NewChain(extractor),
		GraphBuilder:         graph.NewBuilder(store),
		rateLimiter:          middleware.NewRateLimiter(),
	}
}

// Register mounts the REST routes on the given Echo instance. Mutating
// routes require a bearer token when a JWT secret is configured; the
// LLM-backed routes are rate limited per client.
func (s *APIV1Service) Register(echoServer *echo.Echo) {
	echoServer.GET("/healthz", s.Healthz)

	apiV1 := echoServer.Group("/api/v1")
	apiV1.GET("/version", s.GetVersion)
	apiV1.GET("/system/metrics", s.GetMetricsOverview)

	cardGroup := apiV1.Group("/cards")
	cardGroup.GET("", s.ListCards)
	cardGroup.GET("/feed", s.GetCardsFeed)
	cardGroup.GET("/:id", s.GetCard)
	cardGroup.POST("", s.CreateCard, s.authMiddleware)
	cardGroup.DELETE("/:id", s.DeleteCard, s.authMiddleware)

	contextGroup := apiV1.Group("/context")
	contextGroup.POST("/pack", s.GenerateContextPack, s.rateLimitMiddleware)
	contextGroup.POST("/preview", s.ExplainContextPack, s.rateLimitMiddleware)
	contextGroup.GET("/preview", s.PreviewContextPack)

	apiV1.GET("/memory/graph", s.GetMemoryGraph)
	apiV1.POST("/extract", s.ExtractConversation, s.authMiddleware, s.rateLimitMiddleware)

	profileGroup := apiV1.Group("/profile")
	profileGroup.GET("", s.GetUserProfile)
	profileGroup.POST("", s.CreateUserProfile, s.authMiddleware)
	profileGroup.POST("/answer", s.UpdateAnswer, s.authMiddleware)
	profileGroup.POST("/sub-profile", s.CreateSubProfile, s.authMiddleware)
	profileGroup.POST("/question", s.AddQuestion, s.authMiddleware)
}
