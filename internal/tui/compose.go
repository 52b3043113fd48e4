package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bloghub/bloghub/pkg/client"
	"github.com/bloghub/bloghub/pkg/domain"
)

const (
	composeTitle = iota
	composeContent
	composeImage
)

// maxImageSize is the upload limit enforced by the backend.
const maxImageSize = 10 << 20

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

type postSavedMsg struct {
	post *domain.Post
	err  error
}

// composeScreen creates a post, or edits one when id is set.
type composeScreen struct {
	env     env
	id      string
	form    form
	loading bool
	pending bool
	status  string
	current string // image already attached to the post being edited
}

func newComposeScreen(e env, id string) composeScreen {
	return composeScreen{
		env:     e,
		id:      id,
		loading: id != "",
		form: form{fields: []formField{
			{label: "Title", hint: "at least 5 characters"},
			{label: "Content", hint: "at least 20 characters"},
			{label: "Image file", hint: "optional path to a jpg, png, gif or webp"},
		}},
	}
}

func (m composeScreen) Init() tea.Cmd {
	if m.id == "" {
		return nil
	}
	api, ctx, id := m.env.api, m.env.ctx, m.id
	return func() tea.Msg {
		p, err := api.GetPost(ctx, id)
		return postLoadedMsg{post: p, err: err}
	}
}

// validatePost checks a draft before upload.
func validatePost(title, content, imagePath string) error {
	switch {
	case title == "":
		return errors.New("Please enter a post title")
	case utf8.RuneCountInString(title) < 5:
		return errors.New("Post title must be at least 5 characters")
	case content == "":
		return errors.New("Please write some content")
	case utf8.RuneCountInString(content) < 20:
		return errors.New("Content must be at least 20 characters")
	}
	if imagePath == "" {
		return nil
	}
	if !imageExts[strings.ToLower(filepath.Ext(imagePath))] {
		return errors.New("Only JPG, PNG, GIF, and WebP formats are allowed")
	}
	info, err := os.Stat(imagePath)
	if err != nil {
		return fmt.Errorf("Cannot read image: %w", err)
	}
	if info.Size() > maxImageSize {
		return errors.New("File size must be less than 10MB")
	}
	return nil
}

func (m composeScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case postLoadedMsg:
		m.loading = false
		if msg.err != nil {
			return m, tea.Batch(reportErr(msg.err, "Failed to load post"), navigate("/author-posts"))
		}
		if !msg.post.AuthoredBy(m.env.sess.User.ID) && msg.post.Author != nil {
			return m, tea.Batch(notify(toastError, "You can only edit your own posts"), navigate("/author-posts"))
		}
		m.form.fields[composeTitle].value = msg.post.Title
		m.form.fields[composeContent].value = msg.post.Content
		m.current = msg.post.Image
		return m, nil

	case postSavedMsg:
		m.pending = false
		if msg.err != nil {
			m.status = "Failed to save post"
			m.env.logger.Warn("save post", "id", m.id, "error", msg.err)
			return m, reportErr(msg.err, m.status)
		}
		text := "Post created successfully!"
		if m.id != "" {
			text = "Post updated successfully!"
		}
		return m, tea.Batch(notify(toastSuccess, text), navigate("/author-posts"))

	case tea.KeyMsg:
		if m.pending || m.loading {
			if msg.String() == "esc" {
				return m, navigate("/author-posts")
			}
			return m, nil
		}
		m.status = ""
		switch msg.String() {
		case "ctrl+s":
			return m.submit()
		case "esc":
			return m, navigate("/author-posts")
		case "enter":
			if m.form.focus == composeContent {
				m.form.fields[composeContent].value += "\n"
			} else {
				m.form.focus = (m.form.focus + 1) % len(m.form.fields)
			}
			return m, nil
		}
		m.form.handleKey(msg.String())
	}
	return m, nil
}

func (m composeScreen) submit() (screen, tea.Cmd) {
	in := client.PostInput{
		Title:     strings.TrimSpace(m.form.value(composeTitle)),
		Content:   strings.TrimSpace(m.form.value(composeContent)),
		ImagePath: strings.TrimSpace(m.form.value(composeImage)),
	}
	if err := validatePost(in.Title, in.Content, in.ImagePath); err != nil {
		m.status = err.Error()
		return m, notify(toastError, m.status)
	}

	m.pending = true
	api, ctx, id := m.env.api, m.env.ctx, m.id
	return m, func() tea.Msg {
		var p *domain.Post
		var err error
		if id == "" {
			p, err = api.CreatePost(ctx, in)
		} else {
			p, err = api.UpdatePost(ctx, id, in)
		}
		return postSavedMsg{post: p, err: err}
	}
}

func (m composeScreen) helpKeys() string {
	return helpBar("tab", "next", "enter", "newline", "ctrl+s", "publish", "esc", "cancel")
}

func (m composeScreen) capturing() bool { return true }

func (m composeScreen) View() string {
	var b strings.Builder
	heading := "Create a new post"
	if m.id != "" {
		heading = "Edit post"
	}
	b.WriteString(" " + titleStyle.Render(heading) + "\n\n")
	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}
	b.WriteString(m.form.View())
	if m.current != "" {
		b.WriteString("   " + metaStyle.Render("current image: "+m.current+" (leave the field empty to keep it)") + "\n")
	}
	b.WriteString("\n")
	switch {
	case m.pending:
		b.WriteString(" " + dimStyle.Render("publishing..."))
	case m.status != "":
		b.WriteString(" " + errorStyle.Render(m.status))
	}
	return b.String()
}
