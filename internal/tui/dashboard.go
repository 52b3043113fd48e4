package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/bloghub/bloghub/internal/route"
	"github.com/bloghub/bloghub/pkg/domain"
)

// authorDashboard summarizes the author's own posts.
type authorDashboard struct {
	env     env
	posts   []domain.Post
	totals  domain.PostTotals
	loading bool
	width   int
	height  int
}

func newAuthorDashboard(e env) authorDashboard {
	return authorDashboard{env: e, loading: true, width: e.width, height: e.height}
}

func (m authorDashboard) Init() tea.Cmd {
	api, ctx, uid := m.env.api, m.env.ctx, m.env.sess.User.ID
	return func() tea.Msg {
		posts, err := api.ListPosts(ctx)
		if err == nil {
			posts = domain.FilterByAuthor(posts, uid)
		}
		return postsLoadedMsg{posts: posts, err: err}
	}
}

func (m authorDashboard) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case postsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			return m, reportErr(msg.err, "Failed to load your posts")
		}
		m.posts = msg.posts
		m.totals = domain.Totals(msg.posts)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "n":
			return m, navigate("/create-post")
		case "p":
			return m, navigate("/author-posts")
		case "r":
			m.loading = true
			return m, m.Init()
		}
	}
	return m, nil
}

func (m authorDashboard) helpKeys() string {
	return helpBar("n", "new post", "p", "my posts", "r", "refresh")
}

func (m authorDashboard) capturing() bool { return false }

func (m authorDashboard) View() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("Author dashboard") + "  " +
		dimStyle.Render("Welcome back, "+m.env.sess.User.DisplayName()) + "\n\n")
	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}
	b.WriteString(cards(
		statCard("Posts", m.totals.Posts, roleColors[domain.RoleAuthor]),
		statCard("Views", m.totals.Views, "#a78bfa"),
		statCard("Likes", m.totals.Likes, "#f472b6"),
		statCard("Comments", m.totals.Comments, "#fbbf24"),
	) + "\n\n")

	b.WriteString(" " + sectionHeaderStyle.Render("RECENT POSTS") + "\n")
	if len(m.posts) == 0 {
		b.WriteString(" " + dimStyle.Render("No posts yet. Press n to write one.") + "\n")
	}
	for i, p := range m.posts {
		if i == 5 {
			break
		}
		fmt.Fprintf(&b, " %s %s  %s\n", accentStyle.Render("●"),
			normalStyle.Render(truncStr(oneLine(p.Title), max(m.width-30, 20))),
			metaStyle.Render(fmt.Sprintf("%s views · %s", formatNum(p.Views), formatTime(p.CreatedAt))))
	}
	return truncateToHeight(b.String(), m.height)
}

type adminStatsMsg struct {
	users []domain.User
	posts []domain.Post
	err   error
}

// adminDashboard shows platform-wide counts.
type adminDashboard struct {
	env     env
	byRole  map[domain.Role]int
	users   int
	totals  domain.PostTotals
	loading bool
	height  int
}

func newAdminDashboard(e env) adminDashboard {
	return adminDashboard{env: e, loading: true, height: e.height}
}

// Init loads users and posts concurrently; either failure fails the load.
func (m adminDashboard) Init() tea.Cmd {
	api, ctx := m.env.api, m.env.ctx
	return func() tea.Msg {
		var users []domain.User
		var posts []domain.Post
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			users, err = api.ListUsers(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			posts, err = api.ListPosts(gctx)
			return err
		})
		err := g.Wait()
		return adminStatsMsg{users: users, posts: posts, err: err}
	}
}

func (m adminDashboard) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case adminStatsMsg:
		m.loading = false
		if msg.err != nil {
			m.env.logger.Warn("load admin stats", "error", msg.err)
			return m, reportErr(msg.err, "Failed to load dashboard")
		}
		m.byRole = domain.CountByRole(msg.users)
		m.users = len(msg.users)
		m.totals = domain.Totals(msg.posts)
	case tea.WindowSizeMsg:
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "u":
			return m, navigate("/manage-users")
		case "r":
			m.loading = true
			return m, m.Init()
		}
	}
	return m, nil
}

func (m adminDashboard) helpKeys() string { return helpBar("u", "manage users", "r", "refresh") }

func (m adminDashboard) capturing() bool { return false }

func (m adminDashboard) View() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("Admin dashboard") + "\n\n")
	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}
	if m.byRole == nil {
		b.WriteString(" " + dimStyle.Render("no data (r to retry)"))
		return b.String()
	}
	b.WriteString(cards(
		statCard("Users", m.users, "#e4e4ec"),
		statCard("Admins", m.byRole[domain.RoleAdmin], roleColors[domain.RoleAdmin]),
		statCard("Authors", m.byRole[domain.RoleAuthor], roleColors[domain.RoleAuthor]),
		statCard("Readers", m.byRole[domain.RoleReader], roleColors[domain.RoleReader]),
	) + "\n")
	b.WriteString(cards(
		statCard("Posts", m.totals.Posts, "#a78bfa"),
		statCard("Views", m.totals.Views, "#a78bfa"),
		statCard("Likes", m.totals.Likes, "#f472b6"),
	) + "\n")
	return truncateToHeight(b.String(), m.height)
}

type usersLoadedMsg struct {
	users []domain.User
	err   error
}

// roleFilters is the cycle order of the manage-users filter; "" means all.
var roleFilters = []domain.Role{"", domain.RoleAdmin, domain.RoleAuthor, domain.RoleReader}

// manageUsersScreen lists accounts with a role filter.
type manageUsersScreen struct {
	env     env
	users   []domain.User
	filter  int
	cursor  int
	loading bool
	width   int
	height  int
}

func newManageUsersScreen(e env) manageUsersScreen {
	return manageUsersScreen{env: e, loading: true, width: e.width, height: e.height}
}

func (m manageUsersScreen) Init() tea.Cmd {
	api, ctx := m.env.api, m.env.ctx
	return func() tea.Msg {
		users, err := api.ListUsers(ctx)
		return usersLoadedMsg{users: users, err: err}
	}
}

func (m manageUsersScreen) visible() []domain.User {
	role := roleFilters[m.filter]
	if role == "" {
		return m.users
	}
	var out []domain.User
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out
}

func (m manageUsersScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case usersLoadedMsg:
		m.loading = false
		if msg.err != nil {
			return m, reportErr(msg.err, "Failed to load users")
		}
		m.users = msg.users
		m.cursor = 0
		return m, notify(toastInfo, fmt.Sprintf("Loaded %d users", len(msg.users)))
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.visible())-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "f":
			m.filter = (m.filter + 1) % len(roleFilters)
			m.cursor = 0
		case "r":
			m.loading = true
			return m, m.Init()
		case "enter":
			if v := m.visible(); m.cursor < len(v) {
				return m, navigate(route.UserPath(v[m.cursor].ID))
			}
		}
	}
	return m, nil
}

func (m manageUsersScreen) helpKeys() string {
	return helpBar("j/k", "nav", "enter", "details", "f", "filter", "r", "refresh")
}

func (m manageUsersScreen) capturing() bool { return false }

func (m manageUsersScreen) View() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("Manage users") + "\n")
	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}

	counts := domain.CountByRole(m.users)
	filter := "all"
	if r := roleFilters[m.filter]; r != "" {
		filter = string(r)
	}
	fmt.Fprintf(&b, " %s  %s  %s  %s   %s\n",
		metaStyle.Render(fmt.Sprintf("%d total", len(m.users))),
		RoleStyle(domain.RoleAdmin).Render(fmt.Sprintf("%d admins", counts[domain.RoleAdmin])),
		RoleStyle(domain.RoleAuthor).Render(fmt.Sprintf("%d authors", counts[domain.RoleAuthor])),
		RoleStyle(domain.RoleReader).Render(fmt.Sprintf("%d readers", counts[domain.RoleReader])),
		searchStyle.Render("filter: "+filter))
	b.WriteString(" " + metaStyle.Render(strings.Repeat("─", max(m.width-2, 4))) + "\n")

	users := m.visible()
	if len(users) == 0 {
		b.WriteString(" " + dimStyle.Render("No users found"))
		return b.String()
	}
	maxVisible := max(m.height-5, 3)
	start := 0
	if m.cursor >= maxVisible {
		start = m.cursor - maxVisible + 1
	}
	for i := start; i < len(users) && i < start+maxVisible; i++ {
		u := users[i]
		cursor := "  "
		style := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			style = normalStyle.Bold(true)
		}
		joined := ""
		if u.CreatedAt != nil {
			joined = u.CreatedAt.Format("Jan 2, 2006")
		}
		fmt.Fprintf(&b, "%s%s %s %s %s\n", cursor,
			style.Render(fmt.Sprintf("%-20s", truncStr(u.DisplayName(), 20))),
			metaStyle.Render(fmt.Sprintf("%-28s", truncStr(u.Email, 28))),
			RoleStyle(u.Role).Render(fmt.Sprintf("%-8s", u.Role)),
			metaStyle.Render(joined))
	}
	return truncateToHeight(b.String(), m.height)
}

type userDetailMsg struct {
	detail *domain.UserDetail
	err    error
}

// userDetailScreen shows an account with its role profile.
type userDetailScreen struct {
	env     env
	id      string
	detail  *domain.UserDetail
	loading bool
	height  int
}

func newUserDetailScreen(e env, id string) userDetailScreen {
	return userDetailScreen{env: e, id: id, loading: true, height: e.height}
}

func (m userDetailScreen) Init() tea.Cmd {
	api, ctx, id := m.env.api, m.env.ctx, m.id
	return func() tea.Msg {
		d, err := api.GetUser(ctx, id)
		return userDetailMsg{detail: d, err: err}
	}
}

func (m userDetailScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case userDetailMsg:
		m.loading = false
		if msg.err != nil {
			return m, tea.Batch(reportErr(msg.err, "Failed to load user profile"), navigate("/manage-users"))
		}
		m.detail = msg.detail
	case tea.WindowSizeMsg:
		m.height = msg.Height
	case tea.KeyMsg:
		if msg.String() == "esc" || msg.String() == "backspace" {
			return m, navigate("/manage-users")
		}
	}
	return m, nil
}

func (m userDetailScreen) helpKeys() string { return helpBar("esc", "back") }

func (m userDetailScreen) capturing() bool { return false }

func (m userDetailScreen) View() string {
	var b strings.Builder
	b.WriteString(" " + dimStyle.Render("<- back (esc)") + "\n")
	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}
	if m.detail == nil {
		return b.String()
	}
	u := m.detail.User
	b.WriteString(" " + titleStyle.Render(u.DisplayName()) + " " + RoleBadge(u.Role) + "\n")
	b.WriteString(" " + metaStyle.Render(u.Email) + "\n\n")
	if m.detail.RoleProfile == nil {
		b.WriteString(" " + dimStyle.Render("This user has not filled in a profile yet."))
		return b.String()
	}
	b.WriteString(profileDetails(*m.detail.RoleProfile, u.Role))
	return truncateToHeight(b.String(), m.height)
}

// cards lays stat cards out side by side.
func cards(items ...string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, items...)
}
