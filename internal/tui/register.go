package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bloghub/bloghub/internal/auth"
	"github.com/bloghub/bloghub/pkg/domain"
)

const (
	regName = iota
	regEmail
	regPassword
	regConfirm
	regRole
)

type registerResultMsg struct{ err error }

// registerScreen creates reader and author accounts. Admins are provisioned
// on the backend.
type registerScreen struct {
	env     env
	auth    Auth
	form    form
	pending bool
	status  string
}

func newRegisterScreen(e env, a Auth) registerScreen {
	return registerScreen{
		env:  e,
		auth: a,
		form: form{fields: []formField{
			{label: "Full name"},
			{label: "Email", hint: "you@example.com"},
			{label: "Password", secret: true, hint: "at least 6 characters"},
			{label: "Confirm password", secret: true},
			{label: "Account type", value: string(domain.RoleReader),
				choices: roleChoices(domain.RoleReader, domain.RoleAuthor)},
		}},
	}
}

func (m registerScreen) Init() tea.Cmd { return nil }

func (m registerScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case registerResultMsg:
		m.pending = false
		if msg.err != nil {
			m.status = auth.Message(msg.err)
			return m, notify(toastError, m.status)
		}
		return m, tea.Batch(
			notify(toastSuccess, "Registration successful! Please login."),
			navigate("/login"),
		)

	case tea.KeyMsg:
		if m.pending {
			return m, nil
		}
		m.status = ""
		switch msg.String() {
		case "enter", "ctrl+s":
			if m.form.focus < regRole && msg.String() == "enter" {
				m.form.focus++
				return m, nil
			}
			return m.submit()
		case "esc":
			return m, navigate("/")
		case "ctrl+l":
			return m, navigate("/login")
		}
		m.form.handleKey(msg.String())
	}
	return m, nil
}

func (m registerScreen) submit() (screen, tea.Cmd) {
	name := strings.TrimSpace(m.form.value(regName))
	email := strings.TrimSpace(m.form.value(regEmail))
	password := m.form.value(regPassword)
	confirm := m.form.value(regConfirm)
	role := domain.Role(m.form.value(regRole))

	m.pending = true
	gw, ctx := m.auth, m.env.ctx
	return m, func() tea.Msg {
		return registerResultMsg{err: gw.Register(ctx, name, email, password, confirm, role)}
	}
}

func (m registerScreen) helpKeys() string {
	return helpBar("tab", "next", "enter", "create account", "ctrl+l", "login", "esc", "home")
}

func (m registerScreen) capturing() bool { return true }

func (m registerScreen) View() string {
	var b strings.Builder
	b.WriteString("\n " + titleStyle.Render("Create your account") + "\n")
	b.WriteString(" " + dimStyle.Render("Join BlogHub as a reader or an author.") + "\n\n")
	b.WriteString(m.form.View())
	b.WriteString("\n")
	switch {
	case m.pending:
		b.WriteString(" " + dimStyle.Render("creating account..."))
	case m.status != "":
		b.WriteString(" " + errorStyle.Render(m.status))
	}
	return b.String()
}
