package repository

import (
	"github.com/vtmai/celwrite/internal/model"
	"gorm.io/gorm"
)

// UserRepository persists entitlement records for signed-in principals.
type UserRepository interface {
	FindByID(id string) (*model.User, error)
	Create(user *model.User) error
	MarkFreeTestUsed(id string) error
	ApplyPromoGrant(id string, remainingTests int) error
	DecrementRemainingTests(id string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(id string) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

// MarkFreeTestUsed is idempotent: setting an already-true flag is a no-op
// at the SQL level and never an error.
func (r *userRepository) MarkFreeTestUsed(id string) error {
	return r.db.Model(&model.User{}).
		Where("id = ?", id).
		Update("has_used_free_test", true).Error
}

// ApplyPromoGrant sets the promo flag and replaces the remaining-test
// balance with a flat grant.
func (r *userRepository) ApplyPromoGrant(id string, remainingTests int) error {
	return r.db.Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"promo_code_applied": true,
			"remaining_tests":    remainingTests,
		}).Error
}

// DecrementRemainingTests decreases the balance by one, never below zero.
func (r *userRepository) DecrementRemainingTests(id string) error {
	return r.db.Model(&model.User{}).
		Where("id = ? AND remaining_tests > 0", id).
		Update("remaining_tests", gorm.Expr("remaining_tests - 1")).Error
}
