package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxInputLen is the maximum number of runes allowed in form inputs.
const maxInputLen = 2000

// editRune processes a keystroke for inline text editing.
// Handles backspace (rune-aware) and single printable characters.
// Returns the text unchanged for non-printable keys (enter, esc, etc.).
// Input is clamped to maxInputLen runes.
func editRune(text string, key string) string {
	switch key {
	case "backspace":
		if len(text) > 0 {
			runes := []rune(text)
			return string(runes[:len(runes)-1])
		}
		return text
	case "space":
		key = " "
	}
	if utf8.RuneCountInString(key) == 1 {
		if utf8.RuneCountInString(text) >= maxInputLen {
			return text
		}
		return text + key
	}
	return text
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// formField is one labelled input of a form.
type formField struct {
	label  string
	value  string
	secret bool
	// choices turns the field into a picker cycled with left/right.
	choices []string
	hint    string
}

// cycle moves a picker field by delta, wrapping around.
func (f *formField) cycle(delta int) {
	if len(f.choices) == 0 {
		return
	}
	idx := 0
	for i, c := range f.choices {
		if c == f.value {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(f.choices)) % len(f.choices)
	f.value = f.choices[idx]
}

// form is the shared focus and editing logic of the login, register,
// compose and profile screens.
type form struct {
	fields []formField
	focus  int
}

func (f *form) value(i int) string { return f.fields[i].value }

// handleKey applies an editing key to the focused field. It reports whether
// the key was consumed.
func (f *form) handleKey(key string) bool {
	if len(f.fields) == 0 {
		return false
	}
	cur := &f.fields[f.focus]
	switch key {
	case "tab", "down":
		f.focus = (f.focus + 1) % len(f.fields)
	case "shift+tab", "up":
		f.focus = (f.focus - 1 + len(f.fields)) % len(f.fields)
	case "left":
		cur.cycle(-1)
	case "right":
		cur.cycle(1)
	default:
		if len(cur.choices) > 0 {
			if key == "space" || key == " " {
				cur.cycle(1)
				return true
			}
			return false
		}
		before := cur.value
		cur.value = editRune(cur.value, key)
		return cur.value != before || key == "backspace"
	}
	return true
}

func (f form) View() string {
	var b strings.Builder
	for i, fld := range f.fields {
		cursor := " "
		style := metaStyle
		if i == f.focus {
			cursor = accentStyle.Render(">")
			style = selectedStyle
		}
		value := fld.value
		if fld.secret {
			value = strings.Repeat("•", utf8.RuneCountInString(value))
		}
		switch {
		case len(fld.choices) > 0:
			value = searchStyle.Render("< "+value+" >") + "  " + metaStyle.Render("(left/right)")
		case i == f.focus:
			value = normalStyle.Render(value) + accentStyle.Render("█")
		case value == "" && fld.hint != "":
			value = inputPlaceholderStyle.Render(fld.hint)
		default:
			value = normalStyle.Render(value)
		}
		fmt.Fprintf(&b, " %s %s %s\n", cursor, style.Render(fmt.Sprintf("%-18s", fld.label)), value)
	}
	return b.String()
}
