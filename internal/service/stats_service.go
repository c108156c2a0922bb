package service

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/vtmai/celwrite/internal/dto"
	"github.com/vtmai/celwrite/internal/identity"
	"github.com/vtmai/celwrite/internal/model"
	"github.com/vtmai/celwrite/internal/repository"
)

// recentAttemptCount caps the recent-attempt list in statistics.
const recentAttemptCount = 5

// StatsService aggregates an identity's practice history.
type StatsService interface {
	GetStats(actor identity.Identity, guestID string) (*dto.StatsResponse, error)
}

type statsService struct {
	attempts repository.AttemptRepository
}

func NewStatsService(attempts repository.AttemptRepository) StatsService {
	return &statsService{attempts: attempts}
}

// GetStats computes attempt count, mean overall band, total seconds
// practiced, total words written and the five most recent attempts,
// newest first. An identity with no attempts yields all-zero aggregates
// and an empty recent list, never an error.
func (s *statsService) GetStats(actor identity.Identity, guestID string) (*dto.StatsResponse, error) {
	var (
		attempts []model.WritingAttempt
		err      error
	)
	switch {
	case actor.IsSigned():
		attempts, err = s.attempts.FindByUser(actor.UserID, 0)
	case guestID != "":
		attempts, err = s.attempts.FindByGuest(guestID, 0)
	default:
		// No identity at all: nothing to aggregate.
		attempts = nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attempts for stats: %w", err)
	}

	resp := &dto.StatsResponse{RecentAttempts: []dto.RecentAttemptDTO{}}
	if len(attempts) == 0 {
		return resp, nil
	}

	sum := 0.0
	for i := range attempts {
		resp.TimePracticed += attempts[i].TimeSpent
		resp.WordsWritten += attempts[i].WordCount
		sum += overallScore(&attempts[i])
	}
	resp.TotalAttempts = len(attempts)
	resp.AverageScore = math.Round(sum/float64(len(attempts))*10) / 10

	recent := attempts
	if len(recent) > recentAttemptCount {
		recent = recent[:recentAttemptCount]
	}
	for i := range recent {
		var item dto.RecentAttemptDTO
		if err := copier.Copy(&item, &recent[i]); err != nil {
			log.Warn().Err(err).Str("attemptID", recent[i].ID).Msg("Failed to map recent attempt")
			continue
		}
		item.Score = overallScore(&recent[i])
		resp.RecentAttempts = append(resp.RecentAttempts, item)
	}
	return resp, nil
}

func overallScore(attempt *model.WritingAttempt) float64 {
	var score dto.ScoringResult
	if err := json.Unmarshal(attempt.Score, &score); err != nil {
		log.Warn().Err(err).Str("attemptID", attempt.ID).Msg("Unreadable score blob, counting as zero")
		return 0
	}
	return score.Overall
}
