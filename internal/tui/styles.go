package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bloghub/bloghub/pkg/domain"
)

// Shimmer animation for the BLOGHUB logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "BLOGHUB" as a wave of light flowing left to
// right, from deep indigo (#1e1b4b) to bright violet (#a78bfa).
func renderShimmerLogo(frame int) string {
	const text = "BLOGHUB"
	n := len(text)

	var out strings.Builder
	t := float64(frame)

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)

		tide := math.Sin(t*0.035) * 0.12
		b = b*0.75 + tide + 0.18
		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		// Deep:   (30, 27, 75)    #1e1b4b
		// Bright: (167, 139, 250) #a78bfa
		r := clampByte(30 + b*(167-30))
		g := clampByte(27 + b*(139-27))
		bl := clampByte(75 + b*(250-75))

		color := fmt.Sprintf("#%02X%02X%02X", r, g, bl)
		out.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).Render(string(text[i])))

		if i < n-1 {
			out.WriteString("  ")
		}
	}
	return out.String()
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	// Base styles
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	searchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a78bfa")).
			Bold(true)

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8b5cf6"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c4b5fd")).
			Bold(true)

	taglineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a8a29e")).
			Italic(true)

	// Notifications
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f87171"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fbbf24"))

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#8b5cf6")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	statValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 2)

	borderColor = lipgloss.Color("#2e2a4a")

	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#1e1b2e"))

	// Role colors, matching the web badges: admin red, author blue, reader green.
	roleColors = map[domain.Role]lipgloss.Color{
		domain.RoleAdmin:  lipgloss.Color("#f87171"),
		domain.RoleAuthor: lipgloss.Color("#60a5fa"),
		domain.RoleReader: lipgloss.Color("#4ade80"),
	}
)

// RoleStyle returns a bold style colored for the role.
func RoleStyle(r domain.Role) lipgloss.Style {
	if c, ok := roleColors[r]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#8890a0")).Bold(true)
}

// RoleBadge returns a short colored badge such as "[author]".
func RoleBadge(r domain.Role) string {
	if r == "" {
		return ""
	}
	return RoleStyle(r).Render("[" + string(r) + "]")
}

// statCard renders a bordered number with a caption.
func statCard(label string, value int, color lipgloss.Color) string {
	v := lipgloss.NewStyle().Foreground(color).Bold(true).Render(formatNum(value))
	return cardStyle.Render(v + "\n" + metaStyle.Render(label))
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpBar joins key/label pairs into a help line.
func helpBar(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, helpEntry(pairs[i], pairs[i+1]))
	}
	return strings.Join(parts, "  ")
}

// helpItem is a selectable link in the help overlay.
type helpItem struct {
	label string
	path  string
}

var helpItems = []helpItem{
	{"About BlogHub", "/about"},
	{"Meet the team", "/team"},
	{"Website", "/"},
}

// helpView renders the interactive help overlay with a cursor.
func helpView(cursor int, webURL string) string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a78bfa")).
		Bold(true).
		Render("B L O G H U B")

	quote := taglineStyle.Render(`"Everything professional publishers need to succeed."`)

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	cursorStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a78bfa"))
	linkDescStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	commands := []struct{ cmd, desc string }{
		{"bloghub", "Open the terminal client"},
		{"bloghub whoami", "Show the stored session"},
		{"bloghub logout", "Sign out and clear the session"},
		{"bloghub about", "Open the about page"},
		{"bloghub --version", "Show version"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n  %s\n\n", title, quote)

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Keys"))
	keys := []struct{ key, desc string }{
		{"1-5", "switch section"},
		{"L", "sign out"},
		{"x", "dismiss notifications"},
		{"ctrl+c", "quit"},
	}
	for _, k := range keys {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", k.key)), descStyle.Render(k.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Links (enter to open)"))
	for i, item := range helpItems {
		label := cmdStyle.Render(fmt.Sprintf("%-20s", item.label))
		prefix := "    "
		if i == cursor {
			label = cursorStyle.Render(fmt.Sprintf("%-20s", item.label))
			prefix = "  > "
		}
		fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, linkDescStyle.Render(webURL+item.path))
	}
	return b.String()
}
