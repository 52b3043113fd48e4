package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

func printHelp(out io.Writer) {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a78bfa")).
		Bold(true).
		Render("B L O G H U B")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(`"Everything professional publishers need to succeed."`)

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"bloghub", "Open the terminal client"},
		{"bloghub login", "Open the client on the sign-in form"},
		{"bloghub register", "Open the client on the sign-up form"},
		{"bloghub logout", "Sign out and clear the stored session"},
		{"bloghub whoami", "Show the stored session"},
		{"bloghub about", "About BlogHub (browser)"},
		{"bloghub team", "Meet the team (browser)"},
		{"bloghub --version", "Show version"},
		{"bloghub help", "You are here"},
	}

	fmt.Fprintf(out, "\n  %s\n\n  %s\n\n  Commands:\n", title, quote)
	for _, c := range commands {
		fmt.Fprintf(out, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}

	envStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	fmt.Fprintf(out, "\n  Environment:\n")
	for _, e := range []string{
		"BLOGHUB_API_URL          backend base URL",
		"BLOGHUB_SESSION_BACKEND  file | redis | memory",
		"BLOGHUB_LOG_LEVEL        debug | info | warn | error",
	} {
		fmt.Fprintf(out, "    %s\n", envStyle.Render(e))
	}
	fmt.Fprintln(out)
}
