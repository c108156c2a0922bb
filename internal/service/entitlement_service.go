package service

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/vtmai/celwrite/internal/identity"
	"github.com/vtmai/celwrite/internal/localstore"
	"github.com/vtmai/celwrite/internal/model"
	"github.com/vtmai/celwrite/internal/repository"
	"gorm.io/gorm"
)

const (
	// PromoCode is the single recognized promo literal.
	PromoCode = "CELPIP10"
	// PromoGrant is the flat (not additive) remaining-test balance a
	// successful promo application sets.
	PromoGrant = 10
)

// ErrInvalidPromoCode rejects an unrecognized promo code with no side
// effects.
var ErrInvalidPromoCode = errors.New("invalid promo code")

// Entitlement is the trial/promo permission state of one actor.
type Entitlement struct {
	HasUsedFreeTest  bool
	PromoCodeApplied bool
	RemainingTests   int
}

// CanStartNewSession is the single admission predicate gating a new
// writing session. Callers that find it false must route to the paywall
// instead of rendering a session.
func (e Entitlement) CanStartNewSession() bool {
	if e.PromoCodeApplied && e.RemainingTests > 0 {
		return true
	}
	return !e.HasUsedFreeTest
}

// GuestEntitlementStore is the client-side persistence for anonymous
// actors.
type GuestEntitlementStore interface {
	Load() localstore.GuestRecord
	Save(rec localstore.GuestRecord) error
}

// EntitlementService maintains entitlement state for both signed-in users
// (database row) and guests (local record). Reads fail open to zero
// values and writes are advisory bookkeeping: failures are logged and
// swallowed rather than propagated, because entitlement here is
// client-observable UX state, not an access-control boundary.
type EntitlementService interface {
	EnsureRecordExists(actor identity.Identity)
	Load(actor identity.Identity) Entitlement
	MarkFreeTestConsumed(actor identity.Identity)
	ApplyPromoCode(actor identity.Identity, code string) (Entitlement, error)
	DecrementRemainingTests(actor identity.Identity)
}

type entitlementService struct {
	users  repository.UserRepository
	guests GuestEntitlementStore
}

// NewEntitlementService wires both entitlement stores. The guest store may
// be nil on the server, which holds no guest state: guest entitlement then
// resolves to the all-false default and guest writes become no-ops.
func NewEntitlementService(users repository.UserRepository, guests GuestEntitlementStore) EntitlementService {
	return &entitlementService{users: users, guests: guests}
}

// EnsureRecordExists lazily creates the user row with all-false defaults.
// Guests need nothing: their record is created on first read by the store.
func (s *entitlementService) EnsureRecordExists(actor identity.Identity) {
	if !actor.IsSigned() {
		return
	}
	_, err := s.users.FindByID(actor.UserID)
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn().Err(err).Str("userID", actor.UserID).Msg("Failed to look up user record")
		return
	}
	user := &model.User{ID: actor.UserID, Email: actor.Email}
	if err := s.users.Create(user); err != nil {
		log.Warn().Err(err).Str("userID", actor.UserID).Msg("Failed to create user record")
	}
}

// Load returns the actor's entitlement. Absence of any record, or a
// failed read, yields the all-false/zero default rather than an error.
func (s *entitlementService) Load(actor identity.Identity) Entitlement {
	if actor.IsSigned() {
		user, err := s.users.FindByID(actor.UserID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Warn().Err(err).Str("userID", actor.UserID).Msg("Entitlement read failed, defaulting to unused")
			}
			return Entitlement{}
		}
		return Entitlement{
			HasUsedFreeTest:  user.HasUsedFreeTest,
			PromoCodeApplied: user.PromoCodeApplied,
			RemainingTests:   user.RemainingTests,
		}
	}
	if s.guests == nil {
		return Entitlement{}
	}
	rec := s.guests.Load()
	return Entitlement{
		HasUsedFreeTest:  rec.HasUsedFreeTest,
		PromoCodeApplied: rec.PromoCodeApplied,
		RemainingTests:   rec.RemainingTests,
	}
}

// MarkFreeTestConsumed idempotently raises the has-used flag in the
// appropriate store. It never fails the caller's flow.
func (s *entitlementService) MarkFreeTestConsumed(actor identity.Identity) {
	if actor.IsSigned() {
		s.EnsureRecordExists(actor)
		if err := s.users.MarkFreeTestUsed(actor.UserID); err != nil {
			log.Warn().Err(err).Str("userID", actor.UserID).Msg("Failed to mark free test as used")
		}
		return
	}
	if s.guests == nil {
		return
	}
	rec := s.guests.Load()
	rec.HasUsedFreeTest = true
	if err := s.guests.Save(rec); err != nil {
		log.Warn().Err(err).Msg("Failed to mark guest free test as used")
	}
}

// ApplyPromoCode validates the code and, on match, sets the promo flag
// and replaces the remaining balance with the flat grant. A mismatch
// returns ErrInvalidPromoCode with no side effects.
func (s *entitlementService) ApplyPromoCode(actor identity.Identity, code string) (Entitlement, error) {
	if code != PromoCode {
		return s.Load(actor), ErrInvalidPromoCode
	}
	if actor.IsSigned() {
		s.EnsureRecordExists(actor)
		if err := s.users.ApplyPromoGrant(actor.UserID, PromoGrant); err != nil {
			return s.Load(actor), fmt.Errorf("failed to apply promo grant: %w", err)
		}
		return s.Load(actor), nil
	}
	if s.guests == nil {
		return Entitlement{}, fmt.Errorf("no guest entitlement store configured")
	}
	rec := s.guests.Load()
	rec.PromoCodeApplied = true
	rec.RemainingTests = PromoGrant
	if err := s.guests.Save(rec); err != nil {
		return s.Load(actor), fmt.Errorf("failed to save guest promo grant: %w", err)
	}
	return s.Load(actor), nil
}

// DecrementRemainingTests consumes one promo test; the balance never goes
// negative.
func (s *entitlementService) DecrementRemainingTests(actor identity.Identity) {
	if actor.IsSigned() {
		if err := s.users.DecrementRemainingTests(actor.UserID); err != nil {
			log.Warn().Err(err).Str("userID", actor.UserID).Msg("Failed to decrement remaining tests")
		}
		return
	}
	if s.guests == nil {
		return
	}
	rec := s.guests.Load()
	if rec.RemainingTests <= 0 {
		return
	}
	rec.RemainingTests--
	if err := s.guests.Save(rec); err != nil {
		log.Warn().Err(err).Msg("Failed to decrement guest remaining tests")
	}
}
