package domain

import (
	"encoding/json"
	"time"
)

// User is the identity embedded in a session and returned by the admin API.
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// UnmarshalJSON accepts both "id" and the backend's "_id", and normalizes
// role aliases.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var raw struct {
		plain
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = User(raw.plain)
	u.ID = pickID(u.ID, raw.MongoID)
	if r, ok := ParseRole(string(u.Role)); ok {
		u.Role = r
	}
	return nil
}

// DisplayName falls back to the email when the name is empty.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// CountByRole tallies users per role.
func CountByRole(users []User) map[Role]int {
	counts := make(map[Role]int, 3)
	for _, u := range users {
		counts[u.Role]++
	}
	return counts
}

func pickID(id, mongoID string) string {
	if id != "" {
		return id
	}
	return mongoID
}
