package domain

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Role
		ok   bool
	}{
		{"admin", "admin", RoleAdmin, true},
		{"author", "author", RoleAuthor, true},
		{"reader", "reader", RoleReader, true},
		{"user alias", "user", RoleReader, true},
		{"mixed case", " Author ", RoleAuthor, true},
		{"empty", "", "", false},
		{"unknown", "editor", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRole(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseRole(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestLanding(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleAdmin, "/admin-dashboard"},
		{RoleAuthor, "/author-dashboard"},
		{RoleReader, "/user-home"},
		{"", "/user-home"},
		{"editor", "/user-home"},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			got := Landing(tt.role)
			if got != tt.want {
				t.Errorf("Landing(%q) = %q, want %q", tt.role, got, tt.want)
			}
			if again := Landing(tt.role); again != got {
				t.Errorf("Landing(%q) not idempotent: %q then %q", tt.role, got, again)
			}
		})
	}
}

func TestLandingTotal(t *testing.T) {
	for _, r := range Roles() {
		if Landing(r) == "" {
			t.Errorf("Landing(%q) is empty", r)
		}
		if !r.Valid() {
			t.Errorf("Roles() returned invalid role %q", r)
		}
	}
}

func TestRoleTitle(t *testing.T) {
	if got := RoleAuthor.Title(); got != "Author" {
		t.Errorf("Title() = %q, want %q", got, "Author")
	}
	if got := Role("").Title(); got != "" {
		t.Errorf("empty Title() = %q, want empty", got)
	}
}

func TestSessionComplete(t *testing.T) {
	base := Session{
		AccessToken: "tok",
		User:        User{ID: "u1", Name: "A", Role: RoleAuthor},
		Role:        RoleAuthor,
	}
	if !base.Complete() {
		t.Fatal("expected complete session")
	}

	noToken := base
	noToken.AccessToken = ""
	if noToken.Complete() {
		t.Error("session without access token reported complete")
	}

	badRole := base
	badRole.Role = "editor"
	if badRole.Complete() {
		t.Error("session with unknown role reported complete")
	}

	mismatch := base
	mismatch.User.Role = RoleAdmin
	if mismatch.Complete() {
		t.Error("session with user.role != role reported complete")
	}

	noUser := base
	noUser.User = User{}
	if noUser.Complete() {
		t.Error("session without user reported complete")
	}
}
