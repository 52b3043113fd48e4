// Package tui is the terminal client: a Bubble Tea root model that routes
// between screens according to the stored session.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bloghub/bloghub/internal/browser"
	"github.com/bloghub/bloghub/internal/events"
	"github.com/bloghub/bloghub/internal/logging"
	"github.com/bloghub/bloghub/internal/route"
	"github.com/bloghub/bloghub/internal/session"
	"github.com/bloghub/bloghub/pkg/client"
	"github.com/bloghub/bloghub/pkg/domain"
)

// API is the backend surface the screens use. *client.Client implements it.
type API interface {
	BaseURL() string
	ListPosts(ctx context.Context) ([]domain.Post, error)
	GetPost(ctx context.Context, id string) (*domain.Post, error)
	CreatePost(ctx context.Context, in client.PostInput) (*domain.Post, error)
	UpdatePost(ctx context.Context, id string, in client.PostInput) (*domain.Post, error)
	DeletePost(ctx context.Context, id string) error
	GetProfile(ctx context.Context, role domain.Role, userID string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, role domain.Role, userID string, in client.ProfileUpdate) (*domain.Profile, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.UserDetail, error)
}

// Auth is the auth gateway as seen by the screens. *auth.Gateway implements it.
type Auth interface {
	Login(ctx context.Context, email, password string, role domain.Role) (domain.Session, error)
	Register(ctx context.Context, name, email, password, confirmPassword string, role domain.Role) error
	Logout(ctx context.Context)
	Expire(reason string)
}

// Deps wires the App.
type Deps struct {
	API     API
	Auth    Auth
	Session session.Reader
	Bus     *events.Bus
	Logger  *slog.Logger
	// WebURL is the browser front end, for the help overlay links.
	WebURL string
	// Start is the first path to open. Defaults to "/".
	Start string
	// Now is the clock for token expiry. Defaults to time.Now.
	Now func() time.Time
}

// sessionEventMsg delivers a bus event to the Update loop.
type sessionEventMsg struct{ event events.Event }

// App is the root Bubbletea model and the application router.
type App struct {
	deps    Deps
	mailbox *events.Mailbox

	screen  screen
	current route.Resolution
	sess    domain.Session
	present bool

	nav    int
	cancel context.CancelFunc

	// spent holds access tokens already expired or rejected. A stored
	// session carrying one reads as a guest even if clearing it failed.
	spent map[string]struct{}

	toasts     toasts
	helpOpen   bool
	helpCursor int
	width      int
	height     int
	frame      int
}

// NewApp creates the application and subscribes to session changes. Call
// Close when the program exits.
func NewApp(d Deps) App {
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Start == "" {
		d.Start = "/"
	}
	if d.Bus == nil {
		d.Bus = events.New()
	}
	return App{
		deps:    d,
		mailbox: d.Bus.Listen(events.SessionEstablished, events.SessionCleared),
		spent:   make(map[string]struct{}),
	}
}

// Close releases the session subscription and cancels in-flight loads.
func (a App) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	a.mailbox.Close()
}

func (a App) Init() tea.Cmd {
	return tea.Batch(navigate(a.deps.Start), a.waitForSession(), shimmerTickCmd())
}

// waitForSession blocks on the mailbox; it is re-armed after every event.
func (a App) waitForSession() tea.Cmd {
	mb := a.mailbox
	return func() tea.Msg {
		e, err := mb.Wait(context.Background())
		if err != nil {
			return nil
		}
		return sessionEventMsg{event: e}
	}
}

// bodySize is the screen area: header(2) + tabs(1) + toast(1) + help(1).
func (a App) bodySize() (int, int) {
	return a.width, a.height - 5
}

// navigate re-reads the session, resolves path and mounts the screen. The
// previous screen's in-flight calls are canceled and their results dropped.
func (a App) navigate(path string) (App, tea.Cmd) {
	var cmds []tea.Cmd

	sess, ok := a.deps.Session.Get()
	if ok {
		if _, gone := a.spent[sess.AccessToken]; gone {
			sess, ok = domain.Session{}, false
		} else if session.Expired(sess, a.deps.Now()) {
			a.deps.Logger.Info("stored access token expired", "user_id", sess.User.ID)
			a.spent[sess.AccessToken] = struct{}{}
			cmds = append(cmds, a.expire("access token expired"))
			sess, ok = domain.Session{}, false
		}
	}

	res, err := route.Default.Resolve(path, sess, ok)
	if err != nil {
		a.deps.Logger.Error("resolve route", "path", path, "error", err)
		res = route.Resolution{Path: "/", Name: route.Home}
	}

	if a.cancel != nil {
		a.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.nav++

	a.sess, a.present, a.current = sess, ok, res
	w, h := a.bodySize()
	e := env{
		ctx:     ctx,
		api:     a.deps.API,
		sess:    sess,
		present: ok,
		logger:  a.deps.Logger,
		width:   w,
		height:  h,
	}
	a.screen = newScreen(e, res, a.deps.Auth)
	a.deps.Logger.Debug("navigate", "requested", path, "resolved", res.Path, "screen", res.Name)

	cmds = append(cmds, scope(a.nav, a.screen.Init()))
	return a, tea.Batch(cmds...)
}

// expire runs the implicit logout off the Update loop; the resulting
// SessionCleared event brings the user to the login screen.
func (a App) expire(reason string) tea.Cmd {
	gw := a.deps.Auth
	return func() tea.Msg {
		gw.Expire(reason)
		return nil
	}
}

func (a App) logout() tea.Cmd {
	gw := a.deps.Auth
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		gw.Logout(ctx)
		return toastMsg{text: "Logged out successfully", level: toastSuccess}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.screen != nil {
			w, h := a.bodySize()
			var cmd tea.Cmd
			a.screen, cmd = a.screen.Update(tea.WindowSizeMsg{Width: w, Height: h})
			return a, scope(a.nav, cmd)
		}
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case navigateMsg:
		return a.navigate(msg.path)

	case sessionEventMsg:
		var cmd, toastCmd tea.Cmd
		switch msg.event.Kind {
		case events.SessionEstablished:
			a, cmd = a.navigate(msg.event.RedirectPath)
			if a.present {
				toastCmd = a.toasts.push("Welcome, "+a.sess.User.DisplayName()+"!", toastSuccess, a.deps.Now())
			}
		case events.SessionCleared:
			a, cmd = a.navigate(route.GuestEntry)
		}
		return a, tea.Batch(cmd, toastCmd, a.waitForSession())

	case unauthorizedMsg:
		if a.present {
			if _, gone := a.spent[a.sess.AccessToken]; gone {
				return a, nil
			}
			a.spent[a.sess.AccessToken] = struct{}{}
		}
		a.deps.Logger.Info("backend rejected session", "error", msg.err)
		toastCmd := a.toasts.push("Your session has expired. Please log in again.", toastError, a.deps.Now())
		return a, tea.Batch(toastCmd, a.expire("unauthorized"))

	case toastMsg:
		return a, a.toasts.push(msg.text, msg.level, a.deps.Now())

	case toastExpireMsg:
		a.toasts.expire(msg.id)
		return a, nil

	case scopedMsg:
		if msg.nav != a.nav {
			a.deps.Logger.Debug("dropping stale response", "nav", msg.nav, "current", a.nav)
			return a, nil
		}
		return a.routeToScreen(msg.msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.Close()
			return a, tea.Quit
		}
		if a.helpOpen {
			return a.updateHelp(msg)
		}
		if a.screen == nil || !a.screen.capturing() {
			if model, cmd, handled := a.globalKey(msg); handled {
				return model, cmd
			}
		}
	}

	return a.routeToScreen(msg)
}

// routeToScreen hands msg to the current screen, scoping any command it
// returns to the current navigation.
func (a App) routeToScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case navigateMsg, toastMsg, unauthorizedMsg:
		return a.Update(msg)
	case tea.BatchMsg:
		return a, tea.Batch(msg...)
	}
	if a.screen == nil {
		return a, nil
	}
	var cmd tea.Cmd
	a.screen, cmd = a.screen.Update(msg)
	return a, scope(a.nav, cmd)
}

func (a App) globalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch key := msg.String(); key {
	case "q":
		a.Close()
		return a, tea.Quit, true
	case "h", "?":
		a.helpOpen = true
		a.helpCursor = 0
		return a, nil, true
	case "x":
		a.toasts.clear()
		return a, nil, true
	case "L":
		if a.present {
			return a, a.logout(), true
		}
	default:
		tabs := tabsFor(a.sess, a.present)
		for _, t := range tabs {
			if t.key == key {
				if t.path == a.current.Path {
					return a, nil, true
				}
				model, cmd := a.navigate(t.path)
				return model, cmd, true
			}
		}
	}
	return a, nil, false
}

func (a App) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", "?", "esc":
		a.helpOpen = false
	case "q":
		a.Close()
		return a, tea.Quit
	case "j", "down":
		if a.helpCursor < len(helpItems)-1 {
			a.helpCursor++
		}
	case "k", "up":
		if a.helpCursor > 0 {
			a.helpCursor--
		}
	case "enter":
		item := helpItems[a.helpCursor]
		if err := browser.Open(a.deps.WebURL + item.path); err != nil {
			a.deps.Logger.Warn("open browser", "error", err)
			return a, a.toasts.push("Could not open the browser", toastError, a.deps.Now())
		}
	}
	return a, nil
}

// tab is a navbar entry.
type tab struct {
	key  string
	name string
	path string
}

// tabsFor mirrors the web navbar for each session state.
func tabsFor(sess domain.Session, present bool) []tab {
	if !present {
		return []tab{
			{"1", "Home", "/"},
			{"2", "About", "/about"},
			{"3", "Team", "/team"},
			{"4", "Login", "/login"},
			{"5", "Register", "/register"},
		}
	}
	switch sess.Role {
	case domain.RoleAdmin:
		return []tab{
			{"1", "Dashboard", domain.AdminLanding},
			{"2", "Users", "/manage-users"},
			{"3", "Profile", "/admin-profile"},
		}
	case domain.RoleAuthor:
		return []tab{
			{"1", "Dashboard", domain.AuthorLanding},
			{"2", "My Posts", "/author-posts"},
			{"3", "New Post", "/create-post"},
			{"4", "Profile", "/author-profile"},
		}
	default:
		return []tab{
			{"1", "Home", domain.ReaderLanding},
			{"2", "Profile", "/reader-profile"},
		}
	}
}

// Path is the currently rendered route.
func (a App) Path() string { return a.current.Path }

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	header := center(logo, a.width) + "\n"

	var who string
	if a.present {
		who = selectedStyle.Render(a.sess.User.DisplayName()) + " " + RoleBadge(a.sess.Role)
	} else {
		who = dimStyle.Render("guest")
	}
	header += center(who, a.width)

	tabs := tabsFor(a.sess, a.present)
	colWidth := a.width / max(len(tabs), 1)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.path == a.current.Path {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		labelWidth := lipgloss.Width(label)
		leftPad := max((colWidth-labelWidth)/2, 0)
		rightPad := max(colWidth-labelWidth-leftPad, 0)
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}

	var body, help string
	if a.screen != nil {
		body = a.screen.View()
		help = " " + a.screen.helpKeys()
	}
	if a.screen == nil || !a.screen.capturing() {
		global := helpBar("h", "help", "q", "quit")
		if a.present {
			global = helpBar("L", "logout") + "  " + global
		}
		help = strings.TrimRight(help, " ") + "  " + global
	}
	if a.helpOpen {
		body = helpView(a.helpCursor, a.deps.WebURL)
		help = " " + helpBar("j/k", "nav", "enter", "open", "esc", "close")
	}

	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabBar.String(), body, a.toasts.View(), help)
}

func center(s string, width int) string {
	pad := max((width-lipgloss.Width(s))/2, 0)
	return strings.Repeat(" ", pad) + s
}
