package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Post is a blog post as served by /api/blogs.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Image     string    `json:"image,omitempty"`
	Author    *Author   `json:"author,omitempty"`
	Views     int       `json:"views"`
	Likes     int       `json:"likes"`
	Comments  int       `json:"comments"`
	CreatedAt time.Time `json:"createdAt"`
}

// Author is the populated author of a post. The backend sometimes sends a
// bare id string instead of an object.
type Author struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

func (p *Post) UnmarshalJSON(data []byte) error {
	type plain Post
	var raw struct {
		plain
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Post(raw.plain)
	p.ID = pickID(p.ID, raw.MongoID)
	return nil
}

func (a *Author) UnmarshalJSON(data []byte) error {
	var id string
	if json.Unmarshal(data, &id) == nil {
		*a = Author{ID: id}
		return nil
	}
	type plain Author
	var raw struct {
		plain
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = Author(raw.plain)
	a.ID = pickID(a.ID, raw.MongoID)
	return nil
}

// AuthorName returns the author's name or "Unknown Author".
func (p Post) AuthorName() string {
	if p.Author == nil || p.Author.Name == "" {
		return "Unknown Author"
	}
	return p.Author.Name
}

// AuthoredBy reports whether userID wrote the post.
func (p Post) AuthoredBy(userID string) bool {
	return userID != "" && p.Author != nil && p.Author.ID == userID
}

// Matches reports whether query appears in the title, content, or author
// name, case-insensitively. An empty query matches everything.
func (p Post) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Content), q) ||
		(p.Author != nil && strings.Contains(strings.ToLower(p.Author.Name), q))
}

// ImageURL resolves the uploaded image against the API base URL.
func (p Post) ImageURL(apiBase string) string {
	if p.Image == "" {
		return ""
	}
	if strings.HasPrefix(p.Image, "http://") || strings.HasPrefix(p.Image, "https://") {
		return p.Image
	}
	return strings.TrimRight(apiBase, "/") + "/uploads/" + p.Image
}

// FilterByAuthor returns the posts written by userID.
func FilterByAuthor(posts []Post, userID string) []Post {
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if p.AuthoredBy(userID) {
			out = append(out, p)
		}
	}
	return out
}

// PostTotals sums engagement counters across posts.
type PostTotals struct {
	Posts    int
	Views    int
	Likes    int
	Comments int
}

// Totals aggregates engagement counters.
func Totals(posts []Post) PostTotals {
	t := PostTotals{Posts: len(posts)}
	for _, p := range posts {
		t.Views += p.Views
		t.Likes += p.Likes
		t.Comments += p.Comments
	}
	return t
}
