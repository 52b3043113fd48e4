package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bloghub/bloghub/internal/route"
	"github.com/bloghub/bloghub/pkg/domain"
)

type postsLoadedMsg struct {
	posts []domain.Post
	err   error
}

type postDeletedMsg struct {
	id  string
	err error
}

// postListScreen lists published posts. With mine set it shows only the
// session user's posts and offers edit and delete.
type postListScreen struct {
	env       env
	mine      bool
	posts     []domain.Post
	cursor    int
	search    string
	editing   bool
	confirmID string
	loading   bool
	err       error
	width     int
	height    int
}

func newPostListScreen(e env, mine bool) postListScreen {
	return postListScreen{env: e, mine: mine, loading: true, width: e.width, height: e.height}
}

func (m postListScreen) Init() tea.Cmd { return m.load() }

func (m postListScreen) load() tea.Cmd {
	api, ctx, mine, uid := m.env.api, m.env.ctx, m.mine, m.env.sess.User.ID
	return func() tea.Msg {
		posts, err := api.ListPosts(ctx)
		if err == nil && mine {
			posts = domain.FilterByAuthor(posts, uid)
		}
		return postsLoadedMsg{posts: posts, err: err}
	}
}

// visible applies the search filter.
func (m postListScreen) visible() []domain.Post {
	if m.search == "" {
		return m.posts
	}
	out := make([]domain.Post, 0, len(m.posts))
	for _, p := range m.posts {
		if p.Matches(m.search) {
			out = append(out, p)
		}
	}
	return out
}

func (m postListScreen) selected() (domain.Post, bool) {
	v := m.visible()
	if m.cursor < 0 || m.cursor >= len(v) {
		return domain.Post{}, false
	}
	return v[m.cursor], true
}

func (m postListScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case postsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.env.logger.Warn("load posts", "mine", m.mine, "error", msg.err)
			return m, reportErr(msg.err, "Failed to load posts")
		}
		m.posts = msg.posts
		if m.cursor >= len(m.visible()) {
			m.cursor = 0
		}
		return m, nil

	case postDeletedMsg:
		if msg.err != nil {
			m.env.logger.Warn("delete post", "id", msg.id, "error", msg.err)
			return m, reportErr(msg.err, "Failed to delete post")
		}
		for i, p := range m.posts {
			if p.ID == msg.id {
				m.posts = append(m.posts[:i:i], m.posts[i+1:]...)
				break
			}
		}
		if m.cursor >= len(m.visible()) && m.cursor > 0 {
			m.cursor--
		}
		return m, notify(toastSuccess, "Post deleted successfully")

	case copyResultMsg:
		return m, copyResult(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateSearch(msg)
		}
		if m.confirmID != "" {
			return m.updateConfirm(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m postListScreen) updateSearch(msg tea.KeyMsg) (screen, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.editing = false
	case "esc":
		m.editing = false
		m.search = ""
	default:
		m.search = editRune(m.search, msg.String())
	}
	m.cursor = 0
	return m, nil
}

func (m postListScreen) updateConfirm(msg tea.KeyMsg) (screen, tea.Cmd) {
	id := m.confirmID
	m.confirmID = ""
	if msg.String() != "y" {
		return m, nil
	}
	api, ctx := m.env.api, m.env.ctx
	return m, func() tea.Msg {
		return postDeletedMsg{id: id, err: api.DeletePost(ctx, id)}
	}
}

func (m postListScreen) updateList(msg tea.KeyMsg) (screen, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "/":
		m.editing = true
		m.search = ""
		m.cursor = 0
	case "r":
		m.loading = true
		return m, m.load()
	case "enter":
		if p, ok := m.selected(); ok {
			return m, navigate(route.PostPath(p.ID))
		}
	case "c":
		if p, ok := m.selected(); ok {
			return m, copyCmd(p.Content)
		}
	case "e":
		if p, ok := m.selected(); ok && m.mine {
			return m, navigate(route.EditPostPath(p.ID))
		}
	case "d":
		if p, ok := m.selected(); ok && m.mine {
			m.confirmID = p.ID
		}
	case "n":
		if m.mine {
			return m, navigate("/create-post")
		}
	}
	return m, nil
}

func (m postListScreen) helpKeys() string {
	switch {
	case m.editing:
		return helpBar("enter", "apply", "esc", "clear")
	case m.confirmID != "":
		return helpBar("y", "confirm delete", "any", "cancel")
	case m.mine:
		return helpBar("j/k", "nav", "enter", "open", "e", "edit", "d", "delete", "n", "new", "/", "search")
	}
	return helpBar("j/k", "nav", "enter", "read", "c", "copy", "/", "search", "r", "refresh")
}

func (m postListScreen) capturing() bool { return m.editing || m.confirmID != "" }

func (m postListScreen) View() string {
	var b strings.Builder
	heading := "Latest posts"
	if m.mine {
		heading = "My posts"
	}
	b.WriteString(" " + titleStyle.Render(heading))
	if m.env.present && !m.mine {
		b.WriteString("  " + dimStyle.Render("Welcome, "+m.env.sess.User.DisplayName()))
	}
	b.WriteString("\n")

	switch {
	case m.editing:
		b.WriteString(" " + searchStyle.Render("/ "+m.search+"█") + "\n")
	case m.search != "":
		b.WriteString(" " + searchStyle.Render("/ "+m.search) + "\n")
	default:
		b.WriteString(" " + dimStyle.Render("/ search posts...") + "\n")
	}
	b.WriteString(" " + metaStyle.Render(strings.Repeat("─", max(m.width-2, 4))) + "\n")

	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}
	if m.err != nil {
		b.WriteString(" " + dimStyle.Render("could not load posts (r to retry)"))
		return b.String()
	}

	posts := m.visible()
	if len(posts) == 0 {
		if m.mine && m.search == "" {
			b.WriteString(" " + dimStyle.Render("You haven't written anything yet. Press n to create your first post."))
		} else {
			b.WriteString(" " + dimStyle.Render("no posts found"))
		}
		return b.String()
	}

	maxVisible := max(m.height-6, 3)
	start := 0
	if m.cursor >= maxVisible {
		start = m.cursor - maxVisible + 1
	}
	for i := start; i < len(posts) && i < start+maxVisible; i++ {
		p := posts[i]
		cursor := "  "
		style := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			style = normalStyle.Bold(true)
		}
		right := metaStyle.Render(fmt.Sprintf("%5s views %4s likes", formatNum(p.Views), formatNum(p.Likes)))
		if !m.mine {
			right = metaStyle.Render(fmt.Sprintf("%-14s", truncStr(p.AuthorName(), 14))) + " " + right
		}
		titleWidth := max(m.width-4-lipgloss.Width(right)-1, 10)
		title := fmt.Sprintf("%-*s", titleWidth, truncStr(oneLine(p.Title), titleWidth))
		line := cursor + style.Render(title) + " " + right
		if i == m.cursor {
			line = selectedRowBg.Render(line + strings.Repeat(" ", max(m.width-lipgloss.Width(line), 0)))
		}
		b.WriteString(line + "\n")
	}

	if m.confirmID != "" {
		if p, ok := m.selected(); ok {
			b.WriteString("\n " + warnStyle.Render(fmt.Sprintf("Delete %q? This cannot be undone. (y/N)", truncStr(p.Title, 40))) + "\n")
		}
	} else if p, ok := m.selected(); ok {
		b.WriteString("\n " + metaStyle.Render(truncStr(oneLine(p.Content), max(m.width-2, 20))) + "\n")
	}
	return truncateToHeight(b.String(), m.height)
}

type copyResultMsg struct{ err error }

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return copyResultMsg{err: clipboard.WriteAll(text)}
	}
}

func copyResult(msg copyResultMsg) tea.Cmd {
	if msg.err != nil {
		return notify(toastError, "Copy failed: "+msg.err.Error())
	}
	return notify(toastSuccess, "Copied to clipboard")
}

type postLoadedMsg struct {
	post *domain.Post
	err  error
}

// postDetailScreen shows one post.
type postDetailScreen struct {
	env     env
	id      string
	post    *domain.Post
	loading bool
	offset  int
	width   int
	height  int
}

func newPostDetailScreen(e env, id string) postDetailScreen {
	return postDetailScreen{env: e, id: id, loading: true, width: e.width, height: e.height}
}

func (m postDetailScreen) Init() tea.Cmd {
	api, ctx, id := m.env.api, m.env.ctx, m.id
	return func() tea.Msg {
		p, err := api.GetPost(ctx, id)
		return postLoadedMsg{post: p, err: err}
	}
}

func (m postDetailScreen) back() string {
	if m.env.sess.Role == domain.RoleAuthor {
		return "/author-posts"
	}
	return m.env.sess.Landing()
}

func (m postDetailScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case postLoadedMsg:
		m.loading = false
		if msg.err != nil {
			return m, tea.Batch(reportErr(msg.err, "Failed to load post"), navigate(m.back()))
		}
		m.post = msg.post
		return m, nil

	case copyResultMsg:
		return m, copyResult(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "backspace":
			return m, navigate(m.back())
		case "j", "down":
			m.offset++
		case "k", "up":
			if m.offset > 0 {
				m.offset--
			}
		case "c":
			if m.post != nil {
				return m, copyCmd(m.post.Content)
			}
		case "y":
			if m.post != nil {
				if u := m.post.ImageURL(m.env.api.BaseURL()); u != "" {
					return m, copyCmd(u)
				}
			}
		case "e":
			if m.post != nil && m.post.AuthoredBy(m.env.sess.User.ID) {
				return m, navigate(route.EditPostPath(m.post.ID))
			}
		}
	}
	return m, nil
}

func (m postDetailScreen) helpKeys() string {
	pairs := []string{"j/k", "scroll", "c", "copy text"}
	if m.post != nil && m.post.Image != "" {
		pairs = append(pairs, "y", "copy image url")
	}
	if m.post != nil && m.post.AuthoredBy(m.env.sess.User.ID) {
		pairs = append(pairs, "e", "edit")
	}
	return helpBar(append(pairs, "esc", "back")...)
}

func (m postDetailScreen) capturing() bool { return false }

func (m postDetailScreen) View() string {
	var b strings.Builder
	b.WriteString(" " + dimStyle.Render("<- back (esc)") + "\n")
	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}
	if m.post == nil {
		return b.String()
	}
	p := m.post
	b.WriteString(" " + titleStyle.Render(p.Title) + "\n")

	meta := " " + normalStyle.Render(p.AuthorName())
	if when := formatTime(p.CreatedAt); when != "" {
		meta += metaStyle.Render(" · " + when)
	}
	meta += metaStyle.Render(fmt.Sprintf(" · %d views · %d likes · %d comments", p.Views, p.Likes, p.Comments))
	b.WriteString(meta + "\n")
	if u := p.ImageURL(m.env.api.BaseURL()); u != "" {
		b.WriteString(" " + metaStyle.Render("image: "+u) + "\n")
	}
	b.WriteString("\n")

	wrapped := lipgloss.NewStyle().Width(max(m.width-4, 40)).Render(p.Content)
	lines := strings.Split(wrapped, "\n")
	off := min(m.offset, max(len(lines)-1, 0))
	for _, line := range lines[off:] {
		b.WriteString(" " + normalStyle.Render(line) + "\n")
	}
	return truncateToHeight(b.String(), m.height)
}
