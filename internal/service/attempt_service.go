package service

import (
	"encoding/json"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/vtmai/celwrite/internal/dto"
	"github.com/vtmai/celwrite/internal/identity"
	"github.com/vtmai/celwrite/internal/model"
	"github.com/vtmai/celwrite/internal/repository"
	"github.com/vtmai/celwrite/internal/task"
)

// AttemptService records and retrieves writing attempts. Attempts are
// created exactly once, at submission time, and never mutated.
type AttemptService interface {
	CreateAttempt(actor identity.Identity, req dto.AttemptCreateRequest) (*dto.AttemptResponse, error)
	GetAttempt(id string) (*dto.AttemptResponse, error)
	ListAttempts(actor identity.Identity, guestID string, limit int) ([]dto.AttemptResponse, error)
}

type attemptService struct {
	attempts    repository.AttemptRepository
	entitlement EntitlementService
}

func NewAttemptService(attempts repository.AttemptRepository, entitlement EntitlementService) AttemptService {
	return &attemptService{attempts: attempts, entitlement: entitlement}
}

// CreateAttempt persists the attempt and, for signed-in users, performs
// the advisory entitlement bookkeeping (consume promo test or mark the
// free trial used). Guests keep their entitlement client-side, so the
// client performs the equivalent writes itself.
func (s *attemptService) CreateAttempt(actor identity.Identity, req dto.AttemptCreateRequest) (*dto.AttemptResponse, error) {
	taskType, err := task.Parse(req.TaskType)
	if err != nil {
		return nil, err
	}
	if req.WordCount < 0 || req.TimeSpent < 0 {
		return nil, fmt.Errorf("word count and time spent must be non-negative")
	}

	scoreJSON, err := json.Marshal(req.Score)
	if err != nil {
		return nil, fmt.Errorf("failed to encode score: %w", err)
	}

	attempt := model.WritingAttempt{
		TaskType:  taskType.String(),
		Prompt:    req.Prompt,
		Response:  req.Response,
		WordCount: req.WordCount,
		TimeSpent: req.TimeSpent,
		Score:     scoreJSON,
	}
	switch {
	case actor.IsSigned():
		attempt.UserID = &actor.UserID
	case req.GuestID != "":
		guestID := req.GuestID
		attempt.GuestID = &guestID
	}

	if err := s.attempts.Create(&attempt); err != nil {
		log.Error().Err(err).Str("taskType", req.TaskType).Msg("Failed to save writing attempt")
		return nil, fmt.Errorf("failed to save attempt: %w", err)
	}

	if actor.IsSigned() {
		ent := s.entitlement.Load(actor)
		if ent.PromoCodeApplied && ent.RemainingTests > 0 {
			s.entitlement.DecrementRemainingTests(actor)
		} else {
			s.entitlement.MarkFreeTestConsumed(actor)
		}
	}

	return attemptToDTO(&attempt)
}

// GetAttempt fetches one attempt by id. An unknown id surfaces the
// repository's record-not-found error for the controller to map to 404.
func (s *attemptService) GetAttempt(id string) (*dto.AttemptResponse, error) {
	attempt, err := s.attempts.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("attempt %s: %w", id, err)
	}
	return attemptToDTO(attempt)
}

// ListAttempts returns the caller's attempts newest first. Signed-in
// callers see their own rows; guests see rows under their anon id; a
// caller with neither sees only fully anonymous rows.
func (s *attemptService) ListAttempts(actor identity.Identity, guestID string, limit int) ([]dto.AttemptResponse, error) {
	var (
		attempts []model.WritingAttempt
		err      error
	)
	switch {
	case actor.IsSigned():
		attempts, err = s.attempts.FindByUser(actor.UserID, limit)
	case guestID != "":
		attempts, err = s.attempts.FindByGuest(guestID, limit)
	default:
		attempts, err = s.attempts.FindAnonymous(limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attempts: %w", err)
	}

	dtos := make([]dto.AttemptResponse, 0, len(attempts))
	for i := range attempts {
		resp, convErr := attemptToDTO(&attempts[i])
		if convErr != nil {
			log.Warn().Err(convErr).Str("attemptID", attempts[i].ID).Msg("Skipping attempt with unreadable score blob")
			continue
		}
		dtos = append(dtos, *resp)
	}
	return dtos, nil
}

func attemptToDTO(attempt *model.WritingAttempt) (*dto.AttemptResponse, error) {
	var resp dto.AttemptResponse
	if err := copier.Copy(&resp, attempt); err != nil {
		return nil, fmt.Errorf("failed to map attempt: %w", err)
	}
	if err := json.Unmarshal(attempt.Score, &resp.Score); err != nil {
		return nil, fmt.Errorf("failed to decode score blob: %w", err)
	}
	return &resp, nil
}
