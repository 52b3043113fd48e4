package tui

import (
	"context"
	"sync"

	"github.com/bloghub/bloghub/pkg/client"
	"github.com/bloghub/bloghub/pkg/domain"
)

// fakeAPI is an in-memory backend for screen tests.
type fakeAPI struct {
	mu      sync.Mutex
	posts   []domain.Post
	users   []domain.User
	profile *domain.Profile
	detail  *domain.UserDetail
	err     error
	deleted []string
	created []client.PostInput
	updated []client.ProfileUpdate
}

func (f *fakeAPI) BaseURL() string { return "http://api.test" }

func (f *fakeAPI) ListPosts(context.Context) ([]domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Post(nil), f.posts...), nil
}

func (f *fakeAPI) GetPost(_ context.Context, id string) (*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.posts {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, &client.HTTPError{StatusCode: 404, Message: "Blog not found"}
}

func (f *fakeAPI) CreatePost(_ context.Context, in client.PostInput) (*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, in)
	return &domain.Post{ID: "new", Title: in.Title, Content: in.Content}, nil
}

func (f *fakeAPI) UpdatePost(_ context.Context, id string, in client.PostInput) (*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Post{ID: id, Title: in.Title, Content: in.Content}, nil
}

func (f *fakeAPI) DeletePost(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) GetProfile(context.Context, domain.Role, string) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.profile == nil {
		return nil, &client.HTTPError{StatusCode: 404, Message: "Profile not found"}
	}
	p := *f.profile
	return &p, nil
}

func (f *fakeAPI) UpdateProfile(_ context.Context, _ domain.Role, _ string, in client.ProfileUpdate) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.updated = append(f.updated, in)
	return &domain.Profile{Gender: in.Gender, Bio: in.Bio, Preferences: in.Preferences}, nil
}

func (f *fakeAPI) ListUsers(context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.User(nil), f.users...), nil
}

func (f *fakeAPI) GetUser(context.Context, string) (*domain.UserDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.detail, nil
}

// fakeAuth records gateway calls.
type fakeAuth struct {
	mu       sync.Mutex
	expired  []string
	logouts  int
	loginErr error
}

func (f *fakeAuth) Login(context.Context, string, string, domain.Role) (domain.Session, error) {
	return domain.Session{}, f.loginErr
}

func (f *fakeAuth) Register(context.Context, string, string, string, string, domain.Role) error {
	return nil
}

func (f *fakeAuth) Logout(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
}

func (f *fakeAuth) Expire(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expired = append(f.expired, reason)
}
