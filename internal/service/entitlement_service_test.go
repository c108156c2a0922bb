package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vtmai/celwrite/internal/identity"
	"github.com/vtmai/celwrite/internal/localstore"
)

func TestCanStartNewSession(t *testing.T) {
	tests := []struct {
		name string
		ent  Entitlement
		want bool
	}{
		{"fresh actor with unused trial", Entitlement{}, true},
		{"trial consumed, no promo", Entitlement{HasUsedFreeTest: true}, false},
		{"promo active with balance", Entitlement{HasUsedFreeTest: true, PromoCodeApplied: true, RemainingTests: 3}, true},
		{"promo active but exhausted", Entitlement{HasUsedFreeTest: true, PromoCodeApplied: true, RemainingTests: 0}, false},
		{"promo without trial consumed", Entitlement{PromoCodeApplied: true, RemainingTests: 5}, true},
		{"balance without promo flag does not count", Entitlement{HasUsedFreeTest: true, RemainingTests: 5}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.ent.CanStartNewSession())
		})
	}
}

func TestEntitlementSignedUser(t *testing.T) {
	actor := identity.Signed("user-1", "writer@example.com")

	t.Run("load with no record defaults to unused", func(t *testing.T) {
		svc := NewEntitlementService(newFakeUserRepo(), nil)
		ent := svc.Load(actor)
		assert.Equal(t, Entitlement{}, ent)
		assert.True(t, ent.CanStartNewSession())
	})

	t.Run("ensure record exists is lazy and idempotent", func(t *testing.T) {
		users := newFakeUserRepo()
		svc := NewEntitlementService(users, nil)

		svc.EnsureRecordExists(actor)
		user, err := users.FindByID("user-1")
		require.NoError(t, err)
		assert.Equal(t, "writer@example.com", user.Email)
		assert.False(t, user.HasUsedFreeTest)

		svc.EnsureRecordExists(actor)
		assert.Len(t, users.users, 1)
	})

	t.Run("mark free test consumed is idempotent", func(t *testing.T) {
		svc := NewEntitlementService(newFakeUserRepo(), nil)

		svc.MarkFreeTestConsumed(actor)
		svc.MarkFreeTestConsumed(actor)

		ent := svc.Load(actor)
		assert.True(t, ent.HasUsedFreeTest)
		assert.False(t, ent.CanStartNewSession())
	})

	t.Run("valid promo code grants a flat balance", func(t *testing.T) {
		svc := NewEntitlementService(newFakeUserRepo(), nil)
		svc.MarkFreeTestConsumed(actor)

		ent, err := svc.ApplyPromoCode(actor, PromoCode)
		require.NoError(t, err)
		assert.True(t, ent.PromoCodeApplied)
		assert.Equal(t, PromoGrant, ent.RemainingTests)
		assert.True(t, ent.CanStartNewSession())
	})

	t.Run("reapplying the promo resets the balance to the grant", func(t *testing.T) {
		svc := NewEntitlementService(newFakeUserRepo(), nil)
		_, err := svc.ApplyPromoCode(actor, PromoCode)
		require.NoError(t, err)
		svc.DecrementRemainingTests(actor)

		ent, err := svc.ApplyPromoCode(actor, PromoCode)
		require.NoError(t, err)
		assert.Equal(t, PromoGrant, ent.RemainingTests)
	})

	t.Run("unknown promo code has no side effects", func(t *testing.T) {
		users := newFakeUserRepo()
		svc := NewEntitlementService(users, nil)
		svc.EnsureRecordExists(actor)

		ent, err := svc.ApplyPromoCode(actor, "NOTACODE")
		assert.ErrorIs(t, err, ErrInvalidPromoCode)
		assert.False(t, ent.PromoCodeApplied)
		assert.Zero(t, ent.RemainingTests)
	})

	t.Run("decrement never goes below zero", func(t *testing.T) {
		svc := NewEntitlementService(newFakeUserRepo(), nil)
		_, err := svc.ApplyPromoCode(actor, PromoCode)
		require.NoError(t, err)

		for i := 0; i < PromoGrant+5; i++ {
			svc.DecrementRemainingTests(actor)
		}
		assert.Zero(t, svc.Load(actor).RemainingTests)
	})
}

func TestEntitlementGuest(t *testing.T) {
	newGuestSvc := func(t *testing.T) (EntitlementService, *localstore.GuestStore) {
		t.Helper()
		store, err := localstore.NewGuestStore(t.TempDir())
		require.NoError(t, err)
		return NewEntitlementService(newFakeUserRepo(), store), store
	}
	guest := identity.Guest("anon-1")

	t.Run("fresh guest can start the free trial", func(t *testing.T) {
		svc, _ := newGuestSvc(t)
		ent := svc.Load(guest)
		assert.Equal(t, Entitlement{}, ent)
		assert.True(t, ent.CanStartNewSession())
	})

	t.Run("trial consumption persists in the local record", func(t *testing.T) {
		svc, store := newGuestSvc(t)
		svc.MarkFreeTestConsumed(guest)

		assert.False(t, svc.Load(guest).CanStartNewSession())
		assert.True(t, store.Load().HasUsedFreeTest)
	})

	t.Run("promo grant and consumption", func(t *testing.T) {
		svc, _ := newGuestSvc(t)
		svc.MarkFreeTestConsumed(guest)

		ent, err := svc.ApplyPromoCode(guest, PromoCode)
		require.NoError(t, err)
		assert.Equal(t, PromoGrant, ent.RemainingTests)

		svc.DecrementRemainingTests(guest)
		ent = svc.Load(guest)
		assert.Equal(t, PromoGrant-1, ent.RemainingTests)
		assert.True(t, ent.CanStartNewSession())
	})

	t.Run("invalid code leaves the record untouched", func(t *testing.T) {
		svc, store := newGuestSvc(t)
		_, err := svc.ApplyPromoCode(guest, "WRONG")
		assert.ErrorIs(t, err, ErrInvalidPromoCode)
		assert.False(t, store.Load().PromoCodeApplied)
	})
}

func TestEntitlementWithoutGuestStore(t *testing.T) {
	// Server-side configuration: no local guest state is held at all.
	svc := NewEntitlementService(newFakeUserRepo(), nil)
	guest := identity.Guest("anon-1")

	assert.Equal(t, Entitlement{}, svc.Load(guest))

	// Advisory writes become no-ops rather than panics.
	svc.MarkFreeTestConsumed(guest)
	svc.DecrementRemainingTests(guest)
	assert.Equal(t, Entitlement{}, svc.Load(guest))

	_, err := svc.ApplyPromoCode(guest, PromoCode)
	assert.Error(t, err)
}
