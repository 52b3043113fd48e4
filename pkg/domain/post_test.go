package domain

import (
	"encoding/json"
	"testing"
)

func TestUserUnmarshalMongoID(t *testing.T) {
	var u User
	if err := json.Unmarshal([]byte(`{"_id":"abc","name":"Jo","email":"jo@x.io","role":"user"}`), &u); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if u.ID != "abc" {
		t.Errorf("ID = %q, want %q", u.ID, "abc")
	}
	if u.Role != RoleReader {
		t.Errorf("Role = %q, want %q", u.Role, RoleReader)
	}
}

func TestUserUnmarshalPrefersID(t *testing.T) {
	var u User
	if err := json.Unmarshal([]byte(`{"id":"u1","_id":"m1"}`), &u); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if u.ID != "u1" {
		t.Errorf("ID = %q, want %q", u.ID, "u1")
	}
}

func TestPostAuthorAsString(t *testing.T) {
	var p Post
	if err := json.Unmarshal([]byte(`{"_id":"p1","title":"T","author":"u9"}`), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if p.ID != "p1" {
		t.Errorf("ID = %q, want %q", p.ID, "p1")
	}
	if !p.AuthoredBy("u9") {
		t.Error("expected post to be authored by u9")
	}
	if p.AuthorName() != "Unknown Author" {
		t.Errorf("AuthorName() = %q, want %q", p.AuthorName(), "Unknown Author")
	}
}

func TestPostAuthorObject(t *testing.T) {
	var p Post
	if err := json.Unmarshal([]byte(`{"id":"p1","author":{"_id":"u1","name":"Jane"}}`), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !p.AuthoredBy("u1") || p.AuthorName() != "Jane" {
		t.Errorf("author = %+v", p.Author)
	}
}

func TestPostMatches(t *testing.T) {
	p := Post{Title: "Go Routines", Content: "channels", Author: &Author{Name: "Rob"}}
	tests := []struct {
		q    string
		want bool
	}{
		{"", true},
		{"routines", true},
		{"CHANNEL", true},
		{"rob", true},
		{"rust", false},
	}
	for _, tt := range tests {
		if got := p.Matches(tt.q); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.q, got, tt.want)
		}
	}
}

func TestFilterByAuthorAndTotals(t *testing.T) {
	posts := []Post{
		{ID: "1", Author: &Author{ID: "a"}, Views: 10, Likes: 2},
		{ID: "2", Author: &Author{ID: "b"}, Views: 5},
		{ID: "3", Author: &Author{ID: "a"}, Views: 1, Comments: 4},
		{ID: "4"},
	}
	mine := FilterByAuthor(posts, "a")
	if len(mine) != 2 {
		t.Fatalf("got %d posts, want 2", len(mine))
	}
	tot := Totals(mine)
	if tot.Posts != 2 || tot.Views != 11 || tot.Likes != 2 || tot.Comments != 4 {
		t.Errorf("Totals = %+v", tot)
	}
	if got := FilterByAuthor(posts, ""); len(got) != 0 {
		t.Errorf("empty user id matched %d posts", len(got))
	}
}

func TestImageURL(t *testing.T) {
	p := Post{Image: "pic.png"}
	if got := p.ImageURL("http://localhost:3000/"); got != "http://localhost:3000/uploads/pic.png" {
		t.Errorf("ImageURL = %q", got)
	}
	p.Image = "https://cdn.example.com/x.png"
	if got := p.ImageURL("http://localhost:3000"); got != p.Image {
		t.Errorf("absolute ImageURL = %q", got)
	}
	if got := (Post{}).ImageURL("http://x"); got != "" {
		t.Errorf("empty ImageURL = %q", got)
	}
}

func TestProfileUserIDForms(t *testing.T) {
	var p Profile
	if err := json.Unmarshal([]byte(`{"bio":"hi","dob":"2001-04-02T00:00:00.000Z","userId":{"_id":"u1","name":"R","role":"reader"}}`), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if p.User == nil || p.User.ID != "u1" || p.User.Role != RoleReader {
		t.Errorf("User = %+v", p.User)
	}
	if p.BirthDate() != "2001-04-02" {
		t.Errorf("BirthDate() = %q", p.BirthDate())
	}

	var q Profile
	if err := json.Unmarshal([]byte(`{"userId":"u2"}`), &q); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if q.User == nil || q.User.ID != "u2" {
		t.Errorf("User = %+v", q.User)
	}
}

func TestCountByRole(t *testing.T) {
	counts := CountByRole([]User{{Role: RoleAdmin}, {Role: RoleReader}, {Role: RoleReader}})
	if counts[RoleReader] != 2 || counts[RoleAdmin] != 1 || counts[RoleAuthor] != 0 {
		t.Errorf("CountByRole = %v", counts)
	}
}
