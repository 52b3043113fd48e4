package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/bloghub/bloghub/internal/events"
	"github.com/bloghub/bloghub/internal/session"
	"github.com/bloghub/bloghub/pkg/client"
	"github.com/bloghub/bloghub/pkg/domain"
)

type fixture struct {
	gw     *Gateway
	store  *session.Store
	bus    *events.Bus
	events []events.Event
	calls  *atomic.Int32
}

func newFixture(t *testing.T, handler http.HandlerFunc) *fixture {
	t.Helper()
	calls := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	store := session.NewStore(session.NewMemoryBackend(), nil)
	f := &fixture{store: store, bus: events.New(), calls: calls}
	record := func(e events.Event) { f.events = append(f.events, e) }
	f.bus.On(events.SessionEstablished, record)
	f.bus.On(events.SessionCleared, record)
	c := client.New(srv.URL, store.AccessToken)
	f.gw = NewGateway(c, store, f.bus, nil)
	return f
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func authorSession() domain.Session {
	return domain.Session{
		AccessToken:  "A1",
		RefreshToken: "R1",
		User:         domain.User{ID: "u1", Name: "Ada", Email: "a@x.io", Role: domain.RoleAuthor},
		Role:         domain.RoleAuthor,
	}
}

func TestLoginEstablishesSession(t *testing.T) {
	var got client.LoginRequest
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got) //nolint:errcheck
		writeJSON(w, http.StatusOK, map[string]any{
			"accessToken":  "A1",
			"refreshToken": "R1",
			"user":         map[string]any{"_id": "u1", "name": "Ada", "email": "a@x.io", "role": "author"},
		})
	})

	sess, err := f.gw.Login(context.Background(), "a@x.io", "pw123456", domain.RoleAuthor)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.Email != "a@x.io" || got.Role != "author" {
		t.Errorf("request = %+v", got)
	}
	if sess.AccessToken != "A1" || sess.Role != domain.RoleAuthor || sess.User.ID != "u1" {
		t.Errorf("session = %+v", sess)
	}
	stored, ok := f.store.Get()
	if !ok || stored != sess {
		t.Errorf("stored = %+v, %v; want %+v", stored, ok, sess)
	}
	if len(f.events) != 1 {
		t.Fatalf("got %d events, want 1", len(f.events))
	}
	if e := f.events[0]; e.Kind != events.SessionEstablished || e.RedirectPath != "/author-dashboard" {
		t.Errorf("event = %+v", e)
	}
}

func TestLoginRoleFallbacks(t *testing.T) {
	tests := []struct {
		name      string
		body      map[string]any
		requested domain.Role
		want      domain.Role
	}{
		{
			name:      "top level role",
			body:      map[string]any{"accessToken": "A", "user": map[string]any{"_id": "u"}, "role": "admin"},
			requested: domain.RoleReader,
			want:      domain.RoleAdmin,
		},
		{
			name:      "requested role",
			body:      map[string]any{"accessToken": "A", "user": map[string]any{"_id": "u"}},
			requested: domain.RoleAuthor,
			want:      domain.RoleAuthor,
		},
		{
			name:      "user alias",
			body:      map[string]any{"accessToken": "A", "user": map[string]any{"_id": "u", "role": "user"}},
			requested: domain.RoleAdmin,
			want:      domain.RoleReader,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusOK, tc.body)
			})
			sess, err := f.gw.Login(context.Background(), "e@x.io", "pw", tc.requested)
			if err != nil {
				t.Fatalf("Login: %v", err)
			}
			if sess.Role != tc.want || sess.User.Role != tc.want {
				t.Errorf("role = %s / %s, want %s", sess.Role, sess.User.Role, tc.want)
			}
			if f.events[0].RedirectPath != domain.Landing(tc.want) {
				t.Errorf("redirect = %q", f.events[0].RedirectPath)
			}
		})
	}
}

func TestLoginRejected(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
	})
	prior := authorSession()
	if err := f.store.Set(prior); err != nil {
		t.Fatal(err)
	}

	_, err := f.gw.Login(context.Background(), "a@x.io", "wrong", domain.RoleAuthor)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Invalid credentials" {
		t.Errorf("message = %q", err.Error())
	}
	var ae *Error
	if !errors.As(err, &ae) || ae.Kind != KindAuthentication {
		t.Errorf("kind = %+v", ae)
	}
	if !client.IsStatus(err, http.StatusUnauthorized) {
		t.Error("cause should unwrap to the HTTP error")
	}
	if got, ok := f.store.Get(); !ok || got != prior {
		t.Errorf("store changed: %+v", got)
	}
	if len(f.events) != 0 {
		t.Errorf("unexpected events %v", f.events)
	}
}

func TestLoginFallbackMessages(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
		kind    Kind
	}{
		{
			name: "error field",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Role mismatch"})
			},
			want: "Role mismatch",
			kind: KindAuthentication,
		},
		{
			name: "no message",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("<html>oops</html>")) //nolint:errcheck
			},
			want: MsgLoginFailed,
			kind: KindAuthentication,
		},
		{
			name: "missing token",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"_id": "u"}})
			},
			want: MsgLoginFailed,
			kind: KindAuthentication,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.handler)
			_, err := f.gw.Login(context.Background(), "a@x.io", "pw", domain.RoleReader)
			var ae *Error
			if !errors.As(err, &ae) {
				t.Fatalf("err = %v", err)
			}
			if ae.Message != tc.want || ae.Kind != tc.kind {
				t.Errorf("got %q kind %d, want %q kind %d", ae.Message, ae.Kind, tc.want, tc.kind)
			}
			if _, ok := f.store.Get(); ok {
				t.Error("store should stay absent")
			}
		})
	}
}

func TestLoginTransportFailure(t *testing.T) {
	f := newFixture(t, func(http.ResponseWriter, *http.Request) {})
	c := client.New("http://127.0.0.1:1", f.store.AccessToken)
	f.gw = NewGateway(c, f.store, f.bus, nil)

	_, err := f.gw.Login(context.Background(), "a@x.io", "pw", domain.RoleReader)
	var ae *Error
	if !errors.As(err, &ae) || ae.Kind != KindTransport || ae.Message != MsgLoginFailed {
		t.Errorf("err = %#v", err)
	}
}

func TestLoginValidation(t *testing.T) {
	tests := []struct {
		email, password string
		role            domain.Role
		want            string
	}{
		{"", "pw", domain.RoleReader, MsgFillAllFields},
		{"a@x.io", "", domain.RoleReader, MsgFillAllFields},
		{"a@x.io", "pw", "", MsgFillAllFields},
		{"ax.io", "pw", domain.RoleReader, MsgInvalidEmail},
		{"a@x.io", "pw", "editor", MsgInvalidRole},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			f := newFixture(t, func(http.ResponseWriter, *http.Request) {})
			_, err := f.gw.Login(context.Background(), tc.email, tc.password, tc.role)
			if !IsValidation(err) || err.Error() != tc.want {
				t.Errorf("err = %v, want %q", err, tc.want)
			}
			if f.calls.Load() != 0 {
				t.Error("no request should be made")
			}
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name                             string
		user, email, pass, confirm, role string
		want                             string
	}{
		{"empty name", "", "e@x.io", "secret1", "secret1", "reader", MsgFillAllFields},
		{"empty confirm", "Bob", "e@x.io", "secret1", "", "reader", MsgFillAllFields},
		{"short name and bad email", "Bo", "ex.io", "secret1", "secret1", "reader", MsgNameTooShort},
		{"bad email", "Bob", "ex.io", "secret1", "secret1", "reader", MsgInvalidEmail},
		{"short password", "Bob", "e@x.io", "abc", "abc", "reader", MsgPasswordTooShort},
		{"mismatch", "Bob", "e@x.io", "secret1", "secret2", "reader", MsgPasswordMismatch},
		{"bad role", "Bob", "e@x.io", "secret1", "secret1", "root", MsgInvalidRole},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, func(http.ResponseWriter, *http.Request) {})
			err := f.gw.Register(context.Background(), tc.user, tc.email, tc.pass, tc.confirm, domain.Role(tc.role))
			if !IsValidation(err) || err.Error() != tc.want {
				t.Errorf("err = %v, want %q", err, tc.want)
			}
			if f.calls.Load() != 0 {
				t.Error("no request should be made")
			}
		})
	}
}

func TestRegisterDoesNotSignIn(t *testing.T) {
	var got client.RegisterRequest
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got) //nolint:errcheck
		writeJSON(w, http.StatusCreated, map[string]string{"message": "ok"})
	})

	err := f.gw.Register(context.Background(), "Bob", "b@x.io", "secret1", "secret1", domain.RoleAuthor)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if got.Name != "Bob" || got.Role != "author" {
		t.Errorf("request = %+v", got)
	}
	if _, ok := f.store.Get(); ok {
		t.Error("registration must not create a session")
	}
	if len(f.events) != 0 {
		t.Errorf("unexpected events %v", f.events)
	}
}

func TestRegisterBackendMessage(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "User already exists"})
	})
	err := f.gw.Register(context.Background(), "Bob", "b@x.io", "secret1", "secret1", domain.RoleReader)
	if Message(err) != "User already exists" {
		t.Errorf("Message = %q", Message(err))
	}
}

func TestLogoutClearsEvenWhenBackendFails(t *testing.T) {
	var token string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
		token = body["token"]
		w.WriteHeader(http.StatusInternalServerError)
	})
	if err := f.store.Set(authorSession()); err != nil {
		t.Fatal(err)
	}

	f.gw.Logout(context.Background())

	if token != "R1" {
		t.Errorf("token sent = %q", token)
	}
	if _, ok := f.store.Get(); ok {
		t.Error("session should be cleared")
	}
	if len(f.events) != 1 || f.events[0].Kind != events.SessionCleared {
		t.Errorf("events = %v", f.events)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	f.gw.Logout(context.Background())
	f.gw.Logout(context.Background())

	if f.calls.Load() != 0 {
		t.Errorf("no refresh token, want no requests; got %d", f.calls.Load())
	}
	if len(f.events) != 2 {
		t.Errorf("want a cleared event per call, got %d", len(f.events))
	}
}

func TestExpireSkipsBackend(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if err := f.store.Set(authorSession()); err != nil {
		t.Fatal(err)
	}

	f.gw.Expire("unauthorized")

	if f.calls.Load() != 0 {
		t.Error("expire must not call the backend")
	}
	if _, ok := f.store.Get(); ok {
		t.Error("session should be cleared")
	}
	if len(f.events) != 1 || f.events[0].Kind != events.SessionCleared {
		t.Errorf("events = %v", f.events)
	}
}

func TestMessage(t *testing.T) {
	if Message(nil) != "" {
		t.Error("nil error should map to empty message")
	}
	plain := errors.New("boom")
	if Message(plain) != "boom" {
		t.Errorf("Message = %q", Message(plain))
	}
	wrapped := &client.HTTPError{StatusCode: 403, Message: "Forbidden resource"}
	if Message(wrapped) != "Forbidden resource" {
		t.Errorf("Message = %q", Message(wrapped))
	}
}
