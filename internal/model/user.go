package model

import (
	"time"
)

// User is an authenticated principal's entitlement record. The row is
// created lazily the first time a session is observed for the identity and
// is never deleted. HasUsedFreeTest is monotonic: once true the
// application never resets it.
type User struct {
	ID               string    `gorm:"type:uuid;primarykey" json:"id"`
	Email            string    `json:"email" gorm:"index"`
	HasUsedFreeTest  bool      `json:"has_used_free_test" gorm:"not null;default:false"`
	PromoCodeApplied bool      `json:"promo_code_applied" gorm:"not null;default:false"`
	RemainingTests   int       `json:"remaining_tests" gorm:"not null;default:0"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
