// Package browser opens web pages in the user's default browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// command is swapped in tests.
var command = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Open opens rawURL in the user's default browser. Only http, https and
// mailto URLs are accepted.
func Open(rawURL string) error {
	if err := Check(rawURL); err != nil {
		return err
	}
	switch runtime.GOOS {
	case "darwin":
		return command("open", rawURL)
	case "linux":
		return command("xdg-open", rawURL)
	case "windows":
		return command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
}

// Check rejects URLs the browser should not be handed.
func Check(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("browser: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("browser: missing host in %q", rawURL)
		}
		return nil
	case "mailto":
		return nil
	}
	return fmt.Errorf("browser: refusing scheme %q", u.Scheme)
}
