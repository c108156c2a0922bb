package identity

// Identity is the resolved actor: a signed-in principal or an anonymous
// guest identified only by a locally generated random id.
type Identity struct {
	UserID  string // set when signed in
	Email   string // set when signed in
	GuestID string // set for guests
}

// Signed builds a signed-in identity.
func Signed(userID, email string) Identity {
	return Identity{UserID: userID, Email: email}
}

// Guest builds an anonymous identity.
func Guest(guestID string) Identity {
	return Identity{GuestID: guestID}
}

// IsSigned reports whether the actor is an authenticated principal.
func (id Identity) IsSigned() bool { return id.UserID != "" }

// Provider resolves who is acting and notifies observers when the ambient
// session changes (sign-in / sign-out). Every change is expected to trigger
// a fresh entitlement load by the consumer.
type Provider interface {
	Current() Identity
	Changes() <-chan Identity
}
