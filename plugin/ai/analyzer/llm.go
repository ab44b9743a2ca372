package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const analysisPrompt = `Analyze this user prompt and determine:
1. What is the user's primary goal/intent?
2. What domains/categories are relevant? Choose from: shopping, eating, health, work, communication, personality, general
3. Are there any explicit preferences stated in the prompt that should override stored memory?

Output ONLY valid JSON with this structure:
{
  "intent": "brief description of what user wants",
  "domains": ["list", "of", "relevant", "domains"],
  "explicit_preferences": ["any preferences explicitly stated in the prompt"],
  "keywords": ["key", "terms", "from", "prompt"]
}

User prompt: %q

Output ONLY the JSON, no other text:`

// LLMAnalyzer asks a chat model to read the prompt. Any failure is
// returned to the caller; chain it with the fallback for the
// never-fails contract.
type LLMAnalyzer struct {
	client ChatClient
}

// NewLLMAnalyzer creates an LLM-backed analyzer.
func NewLLMAnalyzer(client ChatClient) *LLMAnalyzer {
	return &LLMAnalyzer{client: client}
}

// Analyze sends the prompt to the model and parses the JSON reply.
func (a *LLMAnalyzer) Analyze(ctx context.Context, prompt string) (*Analysis, error) {
	raw, err := a.client.CompleteJSON(ctx, fmt.Sprintf(analysisPrompt, prompt))
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}

	analysis := &Analysis{}
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), analysis); err != nil {
		return nil, fmt.Errorf("analysis response is not valid JSON: %w", err)
	}

	// Models occasionally drop fields; normalize rather than reject.
	if len(analysis.Domains) == 0 {
		analysis.Domains = []string{"general", "communication", "personality"}
	}
	for i, domain := range analysis.Domains {
		analysis.Domains[i] = strings.ToLower(strings.TrimSpace(domain))
	}
	if analysis.ExplicitPreferences == nil {
		analysis.ExplicitPreferences = []string{}
	}
	if analysis.Keywords == nil {
		analysis.Keywords = []string{}
	}
	for i, kw := range analysis.Keywords {
		analysis.Keywords[i] = strings.ToLower(kw)
	}

	return analysis, nil
}

// stripCodeFence removes a wrapping markdown code fence. Models pointed
// at non-OpenAI backends may ignore the JSON response format and fence
// their output anyway.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
