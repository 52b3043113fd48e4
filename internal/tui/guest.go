package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// pageScreen is a static, scrollable marketing page.
type pageScreen struct {
	title   string
	tagline string
	render  func(width int) string
	links   [][2]string // key, path
	offset  int
	width   int
	height  int
}

func newHomeScreen(e env) pageScreen {
	return pageScreen{
		title:   "Publish with purpose.",
		tagline: "Everything professional publishers need to succeed.",
		render:  renderHome,
		links:   [][2]string{{"l", "/login"}, {"r", "/register"}, {"a", "/about"}, {"t", "/team"}},
		width:   e.width,
		height:  e.height,
	}
}

func newAboutScreen(e env) pageScreen {
	return pageScreen{
		title:   "About BlogHub",
		tagline: "We're building the next generation of intelligent blog management systems.",
		render:  renderAbout,
		links:   [][2]string{{"r", "/register"}, {"t", "/team"}},
		width:   e.width,
		height:  e.height,
	}
}

func newTeamScreen(e env) pageScreen {
	return pageScreen{
		title:   "Meet the team",
		tagline: "The people building BlogHub.",
		render:  renderTeam,
		links:   [][2]string{{"a", "/about"}, {"r", "/register"}},
		width:   e.width,
		height:  e.height,
	}
}

func (m pageScreen) Init() tea.Cmd { return nil }

func (m pageScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "j", "down":
			m.offset++
		case "k", "up":
			if m.offset > 0 {
				m.offset--
			}
		default:
			for _, l := range m.links {
				if l[0] == key {
					return m, navigate(l[1])
				}
			}
		}
	}
	return m, nil
}

func (m pageScreen) helpKeys() string {
	pairs := []string{"j/k", "scroll"}
	for _, l := range m.links {
		pairs = append(pairs, l[0], strings.TrimPrefix(l[1], "/"))
	}
	return helpBar(pairs...)
}

func (m pageScreen) capturing() bool { return false }

func (m pageScreen) View() string {
	var b strings.Builder
	b.WriteString("\n " + titleStyle.Render(m.title) + "\n")
	b.WriteString(" " + taglineStyle.Render(m.tagline) + "\n\n")
	b.WriteString(m.render(max(m.width-4, 40)))

	lines := strings.Split(b.String(), "\n")
	off := min(m.offset, max(len(lines)-1, 0))
	return truncateToHeight(strings.Join(lines[off:], "\n"), m.height)
}

type feature struct{ title, desc string }

var homeFeatures = []feature{
	{"Editor & Drafts", "Rich editing experience, autosave, drafts and revision history."},
	{"Roles & Access", "Invite team members and control what each role can do."},
	{"Analytics", "Understand traffic and engagement with simple dashboards."},
}

func renderHome(width int) string {
	var b strings.Builder
	desc := "BlogHub is a modern publishing platform built for creators who want to build a " +
		"business around their content. Create beautiful posts, manage your audience, " +
		"track analytics, and grow your revenue, all in one place."
	b.WriteString(indent(wrap(desc, width), " ") + "\n\n")
	b.WriteString(" " + sectionHeaderStyle.Render("POWERFUL FEATURES") + "\n")
	for _, f := range homeFeatures {
		fmt.Fprintf(&b, " %s %s\n", accentStyle.Render("●"), selectedStyle.Render(f.title))
		b.WriteString(indent(wrap(f.desc, width-3), "   ") + "\n")
	}
	b.WriteString("\n " + normalStyle.Render("Ready to start writing?") + " " +
		helpEntry("r", "create an account") + "  " + helpEntry("l", "log in") + "\n")
	return b.String()
}

var aboutSections = []feature{
	{"Our Vision", "In a digital landscape saturated with blogging platforms, we recognized a gap. " +
		"Most existing solutions focus on quantity over quality, forcing users into rigid workflows " +
		"that don't match their creative process. BlogHub was born from a simple belief: content " +
		"creators deserve better."},
	{"Intelligent Design", "Our system learns from your preferences and adapts to your workflow, " +
		"making content creation faster and more intuitive."},
	{"User-Centric Approach", "Every feature is designed with the creator in mind, not the platform. " +
		"Your success is our success."},
	{"Continuous Improvement", "We're constantly evolving, listening to feedback, and pushing the " +
		"boundaries of what's possible in blog management."},
	{"Lightning Fast", "Built with modern technologies for fast performance. Your content loads " +
		"instantly, every time."},
	{"Laser-Focused Features", "No bloat, no unnecessary features. Every tool we build serves a " +
		"specific purpose in your content creation journey."},
}

func renderAbout(width int) string {
	var b strings.Builder
	for _, s := range aboutSections {
		b.WriteString(" " + selectedStyle.Render(s.title) + "\n")
		b.WriteString(indent(wrap(s.desc, width-2), "  ") + "\n\n")
	}
	return b.String()
}

type member struct {
	name, role, bio string
}

var teamMembers = []member{
	{"Sanvi Chakraborty", "Full Stack Web Developer",
		"Full-stack web developer with expertise in React.js and Next.js. Focused on building responsive web applications."},
	{"Mrittika Nath", "Full Stack Web Developer",
		"Full-stack developer with expertise in React.js, Next, and Express with TypeScript. Experienced in both MySQL and MongoDB."},
	{"Sneha Ghoshal", "Full Stack Developer & Designer",
		"Full-stack developer and designer with strong UI/UX fundamentals using Figma and Adobe tools."},
	{"Krishanu Dey", "Full Stack Developer",
		"Full-stack developer skilled in both MySQL and MongoDB, dedicated to building scalable web applications."},
	{"Soumyodipto Pal", "Full Stack Web Developer",
		"Full-stack web developer proficient in SQL and NoSQL databases, passionate about real-time applications."},
}

func renderTeam(width int) string {
	var b strings.Builder
	for _, m := range teamMembers {
		fmt.Fprintf(&b, " %s  %s\n", selectedStyle.Render(m.name), accentStyle.Render(m.role))
		b.WriteString(indent(wrap(m.bio, width-2), "  ") + "\n\n")
	}
	return b.String()
}

func wrap(s string, width int) string {
	return lipgloss.NewStyle().Width(max(width, 20)).Render(s)
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + dimStyle.Render(strings.TrimRight(l, " "))
	}
	return strings.Join(lines, "\n")
}
