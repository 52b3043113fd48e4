package route

import (
	"fmt"
	"strings"

	"github.com/bloghub/bloghub/pkg/domain"
)

// Name identifies a screen.
type Name string

const (
	Home           Name = "home"
	About          Name = "about"
	Team           Name = "team"
	Login          Name = "login"
	Register       Name = "register"
	AdminDashboard Name = "admin-dashboard"
	ManageUsers    Name = "manage-users"
	UserDetail     Name = "user-detail"
	AdminProfile   Name = "admin-profile"
	AuthorDash     Name = "author-dashboard"
	AuthorPosts    Name = "author-posts"
	CreatePost     Name = "create-post"
	EditPost       Name = "edit-post"
	AuthorProfile  Name = "author-profile"
	UserHome       Name = "user-home"
	ReaderProfile  Name = "reader-profile"
	PostDetail     Name = "post-detail"
)

// Route is one entry of a tree. Pattern segments starting with ':' bind a
// parameter. Roles restricts access; nil means any authenticated role.
type Route struct {
	Pattern string
	Name    Name
	Roles   []domain.Role
}

var (
	adminOnly  = []domain.Role{domain.RoleAdmin}
	authorOnly = []domain.Role{domain.RoleAuthor}
	readerOnly = []domain.Role{domain.RoleReader}
)

// GuestRoutes are served while no session is present.
var GuestRoutes = []Route{
	{Pattern: "/", Name: Home},
	{Pattern: "/about", Name: About},
	{Pattern: "/team", Name: Team},
	{Pattern: "/login", Name: Login},
	{Pattern: "/register", Name: Register},
}

// AuthRoutes are served while a session is present.
var AuthRoutes = []Route{
	{Pattern: "/admin-dashboard", Name: AdminDashboard, Roles: adminOnly},
	{Pattern: "/manage-users", Name: ManageUsers, Roles: adminOnly},
	{Pattern: "/manage-users/:id", Name: UserDetail, Roles: adminOnly},
	{Pattern: "/admin-profile", Name: AdminProfile, Roles: adminOnly},
	{Pattern: "/author-dashboard", Name: AuthorDash, Roles: authorOnly},
	{Pattern: "/author-posts", Name: AuthorPosts, Roles: authorOnly},
	{Pattern: "/create-post", Name: CreatePost, Roles: authorOnly},
	{Pattern: "/edit-post/:id", Name: EditPost, Roles: authorOnly},
	{Pattern: "/author-profile", Name: AuthorProfile, Roles: authorOnly},
	{Pattern: "/user-home", Name: UserHome, Roles: readerOnly},
	{Pattern: "/reader-profile", Name: ReaderProfile, Roles: readerOnly},
	{Pattern: "/posts/:id", Name: PostDetail, Roles: domain.Roles()},
}

// maxRedirects bounds Resolve. The shipped tables settle in two hops.
const maxRedirects = 4

// Resolution is the screen a navigation ends on.
type Resolution struct {
	Path   string
	Name   Name
	Params map[string]string
	// Redirected is true when Path differs from the requested path.
	Redirected bool
}

// Param returns a bound path parameter.
func (r Resolution) Param(key string) string { return r.Params[key] }

// Table resolves paths against the guest and authenticated trees.
type Table struct {
	Guest []Route
	Auth  []Route
}

// Default is the application's route table.
var Default = Table{Guest: GuestRoutes, Auth: AuthRoutes}

// Resolve picks the tree from session presence, matches path and applies the
// guard, following redirects until a route renders.
func (t Table) Resolve(path string, sess domain.Session, present bool) (Resolution, error) {
	requested := Clean(path)
	current := requested
	for range maxRedirects {
		next, res, ok := t.step(current, sess, present)
		if ok {
			res.Redirected = res.Path != requested
			return res, nil
		}
		current = next
	}
	return Resolution{}, fmt.Errorf("route: redirect loop resolving %q", requested)
}

// step returns either a rendered resolution or the next path to try.
func (t Table) step(path string, sess domain.Session, present bool) (string, Resolution, bool) {
	if present {
		if r, params, ok := match(t.Auth, path); ok {
			if d := Evaluate(sess, present, r.Roles); !d.Render() {
				return d.Redirect, Resolution{}, false
			}
			return "", Resolution{Path: path, Name: r.Name, Params: params}, true
		}
		landing := domain.Landing(sess.Role)
		if path == landing {
			// A landing route missing from the tree would loop forever.
			return "", Resolution{Path: path, Name: Home}, true
		}
		return landing, Resolution{}, false
	}

	if r, params, ok := match(t.Guest, path); ok {
		return "", Resolution{Path: path, Name: r.Name, Params: params}, true
	}
	if r, _, ok := match(t.Auth, path); ok {
		return Evaluate(sess, false, r.Roles).Redirect, Resolution{}, false
	}
	return "/", Resolution{}, false
}

func match(routes []Route, path string) (Route, map[string]string, bool) {
	segs := split(path)
	for _, r := range routes {
		if params, ok := matchPattern(split(r.Pattern), segs); ok {
			return r, params, true
		}
	}
	return Route{}, nil, false
}

func matchPattern(pattern, segs []string) (map[string]string, bool) {
	if len(pattern) != len(segs) {
		return nil, false
	}
	var params map[string]string
	for i, p := range pattern {
		if name, ok := strings.CutPrefix(p, ":"); ok {
			if segs[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string, 1)
			}
			params[name] = segs[i]
			continue
		}
		if p != segs[i] {
			return nil, false
		}
	}
	return params, true
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// Clean normalizes a path: leading slash, no trailing slash, no query.
func Clean(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSpace(path)
	path = "/" + strings.Trim(path, "/")
	return path
}

// PostPath is the detail route for a post.
func PostPath(id string) string { return "/posts/" + id }

// EditPostPath is the edit route for a post.
func EditPostPath(id string) string { return "/edit-post/" + id }

// UserPath is the admin detail route for a user.
func UserPath(id string) string { return "/manage-users/" + id }
