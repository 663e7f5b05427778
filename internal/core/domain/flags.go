package domain

const anonymousFlagKey = "anonymous"

// FlagContext is the evaluation subject handed to the feature-flag backend.
type FlagContext struct {
	Kind  string `json:"kind"`
	Key   string `json:"key"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Anonymous reports whether the context carries no user identity.
func (fc FlagContext) Anonymous() bool {
	return fc.Key == anonymousFlagKey
}

// UserFlagContext builds the flag context for u; nil yields the anonymous context.
func UserFlagContext(u *User) FlagContext {
	if u == nil {
		return FlagContext{Kind: "user", Key: anonymousFlagKey}
	}
	return FlagContext{
		Kind:  "user",
		Key:   u.ID,
		Email: u.Email,
		Role:  string(u.Role),
	}
}
