package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bloghub/bloghub/internal/auth"
	"github.com/bloghub/bloghub/pkg/domain"
)

const (
	loginEmail = iota
	loginPassword
	loginRole
)

type loginResultMsg struct{ err error }

// loginScreen is the sign-in form. Success is observed through the session
// bus, not through the result message.
type loginScreen struct {
	env     env
	auth    Auth
	form    form
	pending bool
	status  string
}

func roleChoices(roles ...domain.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

func newLoginScreen(e env, a Auth) loginScreen {
	return loginScreen{
		env:  e,
		auth: a,
		form: form{fields: []formField{
			{label: "Email", hint: "you@example.com"},
			{label: "Password", secret: true},
			{label: "Account type", value: string(domain.RoleReader),
				choices: roleChoices(domain.RoleReader, domain.RoleAuthor, domain.RoleAdmin)},
		}},
	}
}

func (m loginScreen) Init() tea.Cmd { return nil }

func (m loginScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.pending = false
		if msg.err != nil {
			m.status = auth.Message(msg.err)
			m.form.fields[loginPassword].value = ""
			return m, notify(toastError, m.status)
		}
		return m, nil

	case tea.KeyMsg:
		if m.pending {
			return m, nil
		}
		m.status = ""
		switch msg.String() {
		case "enter", "ctrl+s":
			if m.form.focus < loginRole && msg.String() == "enter" {
				m.form.focus++
				return m, nil
			}
			return m.submit()
		case "esc":
			return m, navigate("/")
		case "ctrl+r":
			return m, navigate("/register")
		}
		m.form.handleKey(msg.String())
	}
	return m, nil
}

func (m loginScreen) submit() (screen, tea.Cmd) {
	email := strings.TrimSpace(m.form.value(loginEmail))
	password := m.form.value(loginPassword)
	role := domain.Role(m.form.value(loginRole))

	m.pending = true
	gw, ctx := m.auth, m.env.ctx
	return m, func() tea.Msg {
		_, err := gw.Login(ctx, email, password, role)
		return loginResultMsg{err: err}
	}
}

func (m loginScreen) helpKeys() string {
	return helpBar("tab", "next", "enter", "sign in", "ctrl+r", "register", "esc", "home")
}

func (m loginScreen) capturing() bool { return true }

func (m loginScreen) View() string {
	var b strings.Builder
	b.WriteString("\n " + titleStyle.Render("Welcome back") + "\n")
	b.WriteString(" " + dimStyle.Render("Sign in to continue to your dashboard.") + "\n\n")
	b.WriteString(m.form.View())
	b.WriteString("\n")
	switch {
	case m.pending:
		b.WriteString(" " + dimStyle.Render("signing in..."))
	case m.status != "":
		b.WriteString(" " + errorStyle.Render(m.status))
	default:
		b.WriteString(" " + metaStyle.Render("No account yet? ") + helpEntry("ctrl+r", "register"))
	}
	return b.String()
}
