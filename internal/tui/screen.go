package tui

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bloghub/bloghub/pkg/client"
	"github.com/bloghub/bloghub/pkg/domain"
)

// screen is one routed view. The App owns exactly one at a time and
// replaces it on every navigation.
type screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (screen, tea.Cmd)
	View() string
	// helpKeys is the screen's part of the help bar.
	helpKeys() string
	// capturing is true while the screen consumes every key (forms, search).
	capturing() bool
}

// env is what a screen is constructed with. ctx is canceled when the user
// navigates away.
type env struct {
	ctx     context.Context
	api     API
	sess    domain.Session
	present bool
	logger  *slog.Logger
	width   int
	height  int
}

// Messages screens send to the App.
type (
	// navigateMsg asks the App to resolve and render path.
	navigateMsg struct{ path string }

	// toastMsg raises a transient notification.
	toastMsg struct {
		text  string
		level toastLevel
	}

	// unauthorizedMsg reports a 401-class response from a content call.
	unauthorizedMsg struct{ err error }
)

func navigate(path string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{path: path} }
}

func notify(level toastLevel, text string) tea.Cmd {
	return func() tea.Msg { return toastMsg{text: text, level: level} }
}

// reportErr turns a failed call into a toast, or into an implicit logout when
// the backend rejected the token. Canceled calls are silent.
func reportErr(err error, fallback string) tea.Cmd {
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	if client.IsUnauthorized(err) {
		return func() tea.Msg { return unauthorizedMsg{err: err} }
	}
	text := fallback
	if msg, ok := client.APIMessage(err); ok {
		text = msg
	}
	return notify(toastError, text)
}

// scopedMsg tags a screen's message with the navigation that produced it.
type scopedMsg struct {
	nav int
	msg tea.Msg
}

// scope wraps cmd so its result can be dropped once the user has moved on.
func scope(nav int, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		msg := cmd()
		switch msg := msg.(type) {
		case nil:
			return nil
		case tea.BatchMsg:
			out := make(tea.BatchMsg, 0, len(msg))
			for _, c := range msg {
				if c != nil {
					out = append(out, scope(nav, c))
				}
			}
			return out
		}
		return scopedMsg{nav: nav, msg: msg}
	}
}
