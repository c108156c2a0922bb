package service

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/vtmai/celwrite/internal/dto"
	"github.com/vtmai/celwrite/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (r *fakeUserRepo) FindByID(id string) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *user
	return &copy, nil
}

func (r *fakeUserRepo) Create(user *model.User) error {
	copy := *user
	r.users[user.ID] = &copy
	return nil
}

// The update methods mirror SQL semantics: touching a missing row matches
// zero rows and is not an error.
func (r *fakeUserRepo) MarkFreeTestUsed(id string) error {
	if user, ok := r.users[id]; ok {
		user.HasUsedFreeTest = true
	}
	return nil
}

func (r *fakeUserRepo) ApplyPromoGrant(id string, remainingTests int) error {
	if user, ok := r.users[id]; ok {
		user.PromoCodeApplied = true
		user.RemainingTests = remainingTests
	}
	return nil
}

func (r *fakeUserRepo) DecrementRemainingTests(id string) error {
	if user, ok := r.users[id]; ok && user.RemainingTests > 0 {
		user.RemainingTests--
	}
	return nil
}

type fakeAttemptRepo struct {
	attempts []model.WritingAttempt
}

func (r *fakeAttemptRepo) Create(attempt *model.WritingAttempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now()
	}
	r.attempts = append(r.attempts, *attempt)
	return nil
}

func (r *fakeAttemptRepo) FindByID(id string) (*model.WritingAttempt, error) {
	for i := range r.attempts {
		if r.attempts[i].ID == id {
			copy := r.attempts[i]
			return &copy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAttemptRepo) FindByUser(userID string, limit int) ([]model.WritingAttempt, error) {
	return r.find(func(a *model.WritingAttempt) bool {
		return a.UserID != nil && *a.UserID == userID
	}, limit), nil
}

func (r *fakeAttemptRepo) FindByGuest(guestID string, limit int) ([]model.WritingAttempt, error) {
	return r.find(func(a *model.WritingAttempt) bool {
		return a.GuestID != nil && *a.GuestID == guestID
	}, limit), nil
}

func (r *fakeAttemptRepo) FindAnonymous(limit int) ([]model.WritingAttempt, error) {
	return r.find(func(a *model.WritingAttempt) bool {
		return a.UserID == nil && a.GuestID == nil
	}, limit), nil
}

func (r *fakeAttemptRepo) find(match func(*model.WritingAttempt) bool, limit int) []model.WritingAttempt {
	var out []model.WritingAttempt
	for i := range r.attempts {
		if match(&r.attempts[i]) {
			out = append(out, r.attempts[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func scoreBlob(overall float64) datatypes.JSON {
	blob, _ := json.Marshal(dto.ScoringResult{
		Overall:         overall,
		Grammar:         overall,
		Vocabulary:      overall,
		Coherence:       overall,
		TaskRelevance:   overall,
		Feedback:        "solid work",
		ImprovementTips: []string{"keep practicing"},
	})
	return blob
}
