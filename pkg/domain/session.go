package domain

// Session is the authenticated identity and credential bundle held by the
// client. It is either fully present or absent; see Complete.
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	User         User   `json:"user"`
	Role         Role   `json:"role"`
}

// Complete reports whether s satisfies the presence invariant: an access
// token, a valid role, a user, and no disagreement between Role and User.Role.
func (s Session) Complete() bool {
	if s.AccessToken == "" || !s.Role.Valid() {
		return false
	}
	if s.User.ID == "" && s.User.Email == "" && s.User.Name == "" {
		return false
	}
	return s.User.Role == "" || s.User.Role == s.Role
}

// Landing is the default route for the session's role.
func (s Session) Landing() string {
	return Landing(s.Role)
}
