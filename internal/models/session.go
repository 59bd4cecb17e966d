package models

// Entitlement is the feature gate derived from the identity type.
type Entitlement string

const (
	// EntitlementFree is granted to anonymous identities.
	EntitlementFree Entitlement = "free"
	// EntitlementPremium is granted to email identities.
	EntitlementPremium Entitlement = "premium"
)

// Identity is who the current session acts as.
type Identity struct {
	ID        string `json:"id"`
	Email     string `json:"email,omitempty"`
	Anonymous bool   `json:"anonymous"`
}

// Entitlement derives the feature gate: premium iff an email identity is present.
func (i Identity) Entitlement() Entitlement {
	if !i.Anonymous && i.Email != "" {
		return EntitlementPremium
	}
	return EntitlementFree
}

// Session is the published auth state.
type Session struct {
	Identity    Identity    `json:"identity"`
	Entitlement Entitlement `json:"entitlement"`
	Token       string      `json:"token,omitempty"`
}

// NewSession builds a session with entitlement derived from the identity.
func NewSession(identity Identity, token string) Session {
	return Session{
		Identity:    identity,
		Entitlement: identity.Entitlement(),
		Token:       token,
	}
}

// Premium reports whether premium features are unlocked.
func (s Session) Premium() bool {
	return s.Entitlement == EntitlementPremium
}

// Authenticated reports whether the provider issued any identity, anonymous included.
func (s Session) Authenticated() bool {
	return s.Identity.ID != ""
}
