package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type toastLevel int

const (
	toastInfo toastLevel = iota
	toastSuccess
	toastError
)

// toastTTL is how long a notification stays up unless dismissed.
const toastTTL = 5 * time.Second

// maxToasts caps the queue; the oldest is dropped first.
const maxToasts = 3

type toast struct {
	id      int
	text    string
	level   toastLevel
	expires time.Time
}

type toastExpireMsg struct{ id int }

type toasts struct {
	items  []toast
	nextID int
}

func (t *toasts) push(text string, level toastLevel, now time.Time) tea.Cmd {
	t.nextID++
	id := t.nextID
	t.items = append(t.items, toast{id: id, text: text, level: level, expires: now.Add(toastTTL)})
	if len(t.items) > maxToasts {
		t.items = t.items[len(t.items)-maxToasts:]
	}
	return tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpireMsg{id: id} })
}

func (t *toasts) expire(id int) {
	for i, it := range t.items {
		if it.id == id {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return
		}
	}
}

func (t *toasts) clear() { t.items = nil }

// View renders the newest notification with a count of the others.
func (t toasts) View() string {
	if len(t.items) == 0 {
		return ""
	}
	last := t.items[len(t.items)-1]
	style := dimStyle
	icon := "•"
	switch last.level {
	case toastSuccess:
		style, icon = successStyle, "✓"
	case toastError:
		style, icon = errorStyle, "✗"
	}
	out := " " + style.Render(icon+" "+last.text)
	if n := len(t.items) - 1; n > 0 {
		out += metaStyle.Render(" (+" + formatNum(n) + ")")
	}
	return out + "  " + helpEntry("x", "dismiss")
}
