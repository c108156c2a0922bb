package service

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/vtmai/celwrite/config"
	"github.com/vtmai/celwrite/internal/dto"
	"github.com/vtmai/celwrite/internal/task"
)

// Band scale bounds for every scoring criterion.
const (
	BandMin = 1.0
	BandMax = 12.0
)

// ScoringService evaluates one writing response and returns the
// fixed-shape result. Implementations must keep every band within the
// 1-12 scale.
type ScoringService interface {
	ScoreWriting(ctx context.Context, t task.Type, prompt, response string, wordCount int) (*dto.ScoringResult, error)
}

// NewScoringService selects the Gemini-backed examiner when an API key is
// configured and the deterministic mock otherwise.
func NewScoringService(cfg *config.Config) (ScoringService, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Using mock scoring service.")
		return NewMockScoringService(), nil
	}
	return NewGeminiScoringService(cfg)
}

type mockScoringService struct{}

// NewMockScoringService returns a scorer with fixed values, used for
// local development and tests.
func NewMockScoringService() ScoringService {
	return &mockScoringService{}
}

func (s *mockScoringService) ScoreWriting(ctx context.Context, t task.Type, prompt, response string, wordCount int) (*dto.ScoringResult, error) {
	return &dto.ScoringResult{
		Overall:       8,
		Grammar:       8,
		Vocabulary:    8,
		Coherence:     8,
		TaskRelevance: 8,
		Feedback:      "This is a mock feedback. Your writing is clear and relevant. (AI feedback will appear here in production.)",
		ImprovementTips: []string{
			"Review grammar structures",
			"Expand vocabulary usage",
			"Improve paragraph organization",
			"Ensure all parts of the prompt are addressed",
		},
	}, nil
}

func clampBand(v float64) float64 {
	if v < BandMin {
		return BandMin
	}
	if v > BandMax {
		return BandMax
	}
	return v
}
