package browser

import (
	"runtime"
	"testing"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		url string
		ok  bool
	}{
		{"https://bloghub.example/about", true},
		{"http://localhost:5173/team", true},
		{"mailto:team@bloghub.example", true},
		{"file:///etc/passwd", false},
		{"javascript:alert(1)", false},
		{"https://", false},
		{"://bad", false},
	}
	for _, tc := range tests {
		if err := Check(tc.url); (err == nil) != tc.ok {
			t.Errorf("Check(%q) = %v, want ok=%v", tc.url, err, tc.ok)
		}
	}
}

func TestOpenRunsPlatformCommand(t *testing.T) {
	var gotName string
	var gotArgs []string
	orig := command
	command = func(name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}
	t.Cleanup(func() { command = orig })

	err := Open("https://bloghub.example/about")
	switch runtime.GOOS {
	case "darwin", "linux", "windows":
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
	default:
		t.Skip("unsupported platform")
	}
	if gotName == "" || gotArgs[len(gotArgs)-1] != "https://bloghub.example/about" {
		t.Errorf("ran %q %v", gotName, gotArgs)
	}
}

func TestOpenRejectsBeforeRunning(t *testing.T) {
	called := false
	orig := command
	command = func(string, ...string) error { called = true; return nil }
	t.Cleanup(func() { command = orig })

	if err := Open("file:///tmp/x"); err == nil {
		t.Fatal("expected error")
	}
	if called {
		t.Error("command must not run for rejected URLs")
	}
}
