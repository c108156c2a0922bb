package repository

import (
	"github.com/vtmai/celwrite/internal/model"
	"gorm.io/gorm"
)

// AttemptRepository persists writing attempts. Attempts are insert-only;
// there is intentionally no update or delete method.
type AttemptRepository interface {
	Create(attempt *model.WritingAttempt) error
	FindByID(id string) (*model.WritingAttempt, error)
	FindByUser(userID string, limit int) ([]model.WritingAttempt, error)
	FindByGuest(guestID string, limit int) ([]model.WritingAttempt, error)
	FindAnonymous(limit int) ([]model.WritingAttempt, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(attempt *model.WritingAttempt) error {
	return r.db.Create(attempt).Error
}

func (r *attemptRepository) FindByID(id string) (*model.WritingAttempt, error) {
	var attempt model.WritingAttempt
	if err := r.db.First(&attempt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByUser(userID string, limit int) ([]model.WritingAttempt, error) {
	return r.find(r.db.Where("user_id = ?", userID), limit)
}

func (r *attemptRepository) FindByGuest(guestID string, limit int) ([]model.WritingAttempt, error) {
	return r.find(r.db.Where("guest_id = ?", guestID), limit)
}

func (r *attemptRepository) FindAnonymous(limit int) ([]model.WritingAttempt, error) {
	return r.find(r.db.Where("user_id IS NULL AND guest_id IS NULL"), limit)
}

func (r *attemptRepository) find(query *gorm.DB, limit int) ([]model.WritingAttempt, error) {
	var attempts []model.WritingAttempt
	query = query.Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}
