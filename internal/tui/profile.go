package tui

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bloghub/bloghub/pkg/client"
	"github.com/bloghub/bloghub/pkg/domain"
)

const (
	profGender = iota
	profDOB
	profOccupation
	profBio
	profAddress
	profMobile
	profImage
	profPreferences
)

type profileLoadedMsg struct {
	profile *domain.Profile
	err     error
}

type profileSavedMsg struct {
	profile *domain.Profile
	err     error
}

// profileScreen shows and edits the session user's role profile.
type profileScreen struct {
	env     env
	profile *domain.Profile
	editing bool
	form    form
	loading bool
	pending bool
	status  string
	height  int
}

func newProfileScreen(e env) profileScreen {
	return profileScreen{env: e, loading: true, height: e.height}
}

func (m profileScreen) Init() tea.Cmd {
	api, ctx, role, uid := m.env.api, m.env.ctx, m.env.sess.Role, m.env.sess.User.ID
	return func() tea.Msg {
		p, err := api.GetProfile(ctx, role, uid)
		if client.IsStatus(err, http.StatusNotFound) {
			return profileLoadedMsg{profile: &domain.Profile{}}
		}
		return profileLoadedMsg{profile: p, err: err}
	}
}

func (m profileScreen) editForm() form {
	p := m.profile
	if p == nil {
		p = &domain.Profile{}
	}
	f := form{fields: []formField{
		{label: "Gender", value: p.Gender, choices: []string{"", "male", "female", "other"}},
		{label: "Date of birth", value: p.BirthDate(), hint: "YYYY-MM-DD"},
		{label: "Occupation", value: p.CurrentOccupation},
		{label: "Bio", value: p.Bio},
		{label: "Address", value: p.Address},
		{label: "Mobile", value: p.Mobile},
		{label: "Profile image", hint: "optional path to an image"},
	}}
	if m.env.sess.Role == domain.RoleReader {
		f.fields = append(f.fields, formField{
			label: "Preferences",
			value: strings.Join(p.Preferences, ", "),
			hint:  strings.Join(domain.ReaderPreferences, ", "),
		})
	}
	return f
}

// parsePreferences keeps the known topics from a comma-separated list.
func parsePreferences(raw string) ([]string, error) {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx := slices.IndexFunc(domain.ReaderPreferences, func(p string) bool {
			return strings.EqualFold(p, part)
		})
		if idx < 0 {
			return nil, fmt.Errorf("Unknown preference %q", part)
		}
		if pref := domain.ReaderPreferences[idx]; !slices.Contains(out, pref) {
			out = append(out, pref)
		}
	}
	return out, nil
}

func (m profileScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		m.loading = false
		if msg.err != nil {
			return m, reportErr(msg.err, "Failed to load profile")
		}
		m.profile = msg.profile
		return m, nil

	case profileSavedMsg:
		m.pending = false
		if msg.err != nil {
			m.status = "Failed to update profile"
			m.env.logger.Warn("update profile", "role", m.env.sess.Role, "error", msg.err)
			return m, reportErr(msg.err, m.status)
		}
		m.profile = msg.profile
		m.editing = false
		return m, notify(toastSuccess, "Profile updated successfully!")

	case tea.WindowSizeMsg:
		m.height = msg.Height

	case tea.KeyMsg:
		if m.pending {
			return m, nil
		}
		if !m.editing {
			switch msg.String() {
			case "e":
				if !m.loading {
					m.editing = true
					m.form = m.editForm()
				}
			case "r":
				m.loading = true
				return m, m.Init()
			}
			return m, nil
		}
		m.status = ""
		switch msg.String() {
		case "esc":
			m.editing = false
			return m, nil
		case "ctrl+s":
			return m.submit()
		case "enter":
			m.form.focus = (m.form.focus + 1) % len(m.form.fields)
			return m, nil
		}
		m.form.handleKey(msg.String())
	}
	return m, nil
}

func (m profileScreen) submit() (screen, tea.Cmd) {
	v := func(i int) string { return strings.TrimSpace(m.form.value(i)) }
	in := client.ProfileUpdate{
		Gender:            v(profGender),
		DOB:               v(profDOB),
		CurrentOccupation: v(profOccupation),
		Bio:               v(profBio),
		Address:           v(profAddress),
		Mobile:            v(profMobile),
		ImagePath:         v(profImage),
	}
	if len(m.form.fields) > profPreferences {
		prefs, err := parsePreferences(m.form.value(profPreferences))
		if err != nil {
			m.status = err.Error()
			return m, notify(toastError, m.status)
		}
		in.Preferences = prefs
	}

	m.pending = true
	api, ctx, role, uid := m.env.api, m.env.ctx, m.env.sess.Role, m.env.sess.User.ID
	return m, func() tea.Msg {
		p, err := api.UpdateProfile(ctx, role, uid, in)
		return profileSavedMsg{profile: p, err: err}
	}
}

func (m profileScreen) helpKeys() string {
	if m.editing {
		return helpBar("tab", "next", "ctrl+s", "save", "esc", "cancel")
	}
	return helpBar("e", "edit", "r", "refresh")
}

func (m profileScreen) capturing() bool { return m.editing }

func (m profileScreen) View() string {
	var b strings.Builder
	u := m.env.sess.User
	b.WriteString(" " + titleStyle.Render(m.env.sess.Role.Title()+" profile") + "\n")
	b.WriteString(" " + selectedStyle.Render(u.DisplayName()) + " " + RoleBadge(m.env.sess.Role) +
		"  " + metaStyle.Render(u.Email) + "\n\n")
	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}
	if m.editing {
		b.WriteString(m.form.View())
		b.WriteString("\n")
		switch {
		case m.pending:
			b.WriteString(" " + dimStyle.Render("saving..."))
		case m.status != "":
			b.WriteString(" " + errorStyle.Render(m.status))
		}
		return b.String()
	}
	if m.profile != nil {
		b.WriteString(profileDetails(*m.profile, m.env.sess.Role))
	}
	return truncateToHeight(b.String(), m.height)
}

// profileDetails renders a read-only profile.
func profileDetails(p domain.Profile, role domain.Role) string {
	rows := [][2]string{
		{"Gender", p.Gender},
		{"Date of birth", p.BirthDate()},
		{"Occupation", p.CurrentOccupation},
		{"Bio", p.Bio},
		{"Address", p.Address},
		{"Mobile", p.Mobile},
		{"Profile image", p.ProfileImage},
	}
	if role == domain.RoleReader {
		rows = append(rows, [2]string{"Preferences", strings.Join(p.Preferences, ", ")})
	}
	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "   %s %s\n", metaStyle.Render(fmt.Sprintf("%-16s", r[0])), normalStyle.Render(orDash(r[1])))
	}
	return b.String()
}
