package domain

import (
	"encoding/json"
	"strings"
)

// Profile is the role-specific profile served by /api/profile/{role}/{userId}.
type Profile struct {
	Username          string   `json:"username,omitempty"`
	Gender            string   `json:"gender,omitempty"`
	DOB               string   `json:"dob,omitempty"`
	CurrentOccupation string   `json:"currentOccupation,omitempty"`
	Bio               string   `json:"bio,omitempty"`
	Address           string   `json:"address,omitempty"`
	Mobile            string   `json:"mobile,omitempty"`
	Preferences       []string `json:"preferences,omitempty"`
	ProfileImage      string   `json:"profileImage,omitempty"`
	User              *User    `json:"userId,omitempty"`
}

// UnmarshalJSON tolerates "userId" being either a populated user or an id.
func (p *Profile) UnmarshalJSON(data []byte) error {
	type plain Profile
	var raw struct {
		plain
		User json.RawMessage `json:"userId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Profile(raw.plain)
	p.User = nil
	if len(raw.User) == 0 || string(raw.User) == "null" {
		return nil
	}
	var id string
	if json.Unmarshal(raw.User, &id) == nil {
		p.User = &User{ID: id}
		return nil
	}
	var u User
	if err := json.Unmarshal(raw.User, &u); err != nil {
		return err
	}
	p.User = &u
	return nil
}

// BirthDate returns the date part of DOB ("2001-04-02T00:00:00Z" -> "2001-04-02").
func (p Profile) BirthDate() string {
	if i := strings.IndexByte(p.DOB, 'T'); i >= 0 {
		return p.DOB[:i]
	}
	return p.DOB
}

// ReaderPreferences are the topics a reader can follow.
var ReaderPreferences = []string{
	"Technology",
	"Science",
	"Fiction",
	"News",
	"Sports",
	"Entertainment",
}

// UserDetail is the admin view of a single user.
type UserDetail struct {
	User        User     `json:"user"`
	RoleProfile *Profile `json:"roleProfile,omitempty"`
}
