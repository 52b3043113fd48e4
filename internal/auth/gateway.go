// Package auth is the gateway between the user interface and the backend's
// auth endpoints. It is the only writer of the session store.
package auth

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/bloghub/bloghub/internal/events"
	"github.com/bloghub/bloghub/internal/session"
	"github.com/bloghub/bloghub/pkg/client"
	"github.com/bloghub/bloghub/pkg/domain"
)

// Fallback messages when the backend gives none.
const (
	MsgLoginFailed        = "Login failed"
	MsgRegistrationFailed = "Registration failed"
)

// API is the subset of the backend client the gateway calls.
type API interface {
	Login(ctx context.Context, req client.LoginRequest) (*client.LoginResponse, error)
	Register(ctx context.Context, req client.RegisterRequest) error
	Logout(ctx context.Context, refreshToken string) error
}

// Gateway performs login, registration and logout. Operations are
// serialized; the last one to finish determines the stored session.
type Gateway struct {
	api      API
	store    session.ReadWriter
	bus      *events.Bus
	logger   *slog.Logger
	validate *validator.Validate
	mu       sync.Mutex
}

// NewGateway wires a gateway.
func NewGateway(api API, store session.ReadWriter, bus *events.Bus, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Gateway{
		api:      api,
		store:    store,
		bus:      bus,
		logger:   logger,
		validate: newValidator(),
	}
}

// Login authenticates and persists the session, then emits
// SessionEstablished with the role's landing route. On failure the stored
// session is left as it was.
func (g *Gateway) Login(ctx context.Context, email, password string, role domain.Role) (domain.Session, error) {
	if err := check(g.validate, loginInput{Email: email, Password: password, Role: role.String()}); err != nil {
		return domain.Session{}, err
	}
	requested, _ := domain.ParseRole(role.String())

	g.mu.Lock()
	defer g.mu.Unlock()

	resp, err := g.api.Login(ctx, client.LoginRequest{Email: email, Password: password, Role: requested.String()})
	if err != nil {
		g.logger.Info("login rejected", "email", email, "role", requested, "error", err)
		return domain.Session{}, remoteError(err, MsgLoginFailed)
	}
	sess, ok := sessionFromLogin(resp, email, requested)
	if !ok {
		g.logger.Warn("login response missing credentials", "email", email)
		return domain.Session{}, &Error{Kind: KindAuthentication, Message: MsgLoginFailed}
	}
	if err := g.store.Set(sess); err != nil {
		g.logger.Error("persist session", "error", err)
		return domain.Session{}, &Error{Kind: KindTransport, Message: MsgLoginFailed, Err: err}
	}

	g.logger.Info("login succeeded", "user_id", sess.User.ID, "role", sess.Role)
	g.bus.Emit(events.Established(sess.Landing()))
	return sess, nil
}

// sessionFromLogin builds a session from a login body. The role comes from
// user.role, then the top-level role, then the role that was requested.
func sessionFromLogin(resp *client.LoginResponse, email string, requested domain.Role) (domain.Session, bool) {
	if resp == nil || resp.AccessToken == "" {
		return domain.Session{}, false
	}
	var user domain.User
	if resp.User != nil {
		user = *resp.User
	}
	role := requested
	if r, ok := domain.ParseRole(string(user.Role)); ok {
		role = r
	} else if r, ok := domain.ParseRole(resp.Role); ok {
		role = r
	}
	user.Role = role
	if user.Email == "" {
		user.Email = email
	}
	sess := domain.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         user,
		Role:         role,
	}
	return sess, sess.Complete()
}

// Register creates an account after local validation. It never establishes
// a session; the caller sends the user to the login screen.
func (g *Gateway) Register(ctx context.Context, name, email, password, confirmPassword string, role domain.Role) error {
	in := registerInput{
		Name:            name,
		Email:           email,
		Password:        password,
		ConfirmPassword: confirmPassword,
		Role:            role.String(),
	}
	if err := check(g.validate, in); err != nil {
		return err
	}
	r, _ := domain.ParseRole(role.String())

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.api.Register(ctx, client.RegisterRequest{Name: name, Email: email, Password: password, Role: r.String()}); err != nil {
		g.logger.Info("registration rejected", "email", email, "error", err)
		return remoteError(err, MsgRegistrationFailed)
	}
	g.logger.Info("registered", "email", email, "role", r)
	return nil
}

// Logout notifies the backend when a refresh token exists, then always
// clears the local session and emits SessionCleared. Backend failures are
// logged and ignored so an outage cannot keep the user signed in.
func (g *Gateway) Logout(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if sess, ok := g.store.Get(); ok && sess.RefreshToken != "" {
		if err := g.api.Logout(ctx, sess.RefreshToken); err != nil {
			g.logger.Warn("logout notification failed", "error", err)
		}
	}
	g.teardown("logout")
}

// Expire is the implicit logout: the session was found invalid (401 from the
// backend, expired token, tampered storage). It tears down locally without
// calling the backend.
func (g *Gateway) Expire(reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.teardown(reason)
}

func (g *Gateway) teardown(reason string) {
	if err := g.store.Clear(); err != nil {
		g.logger.Error("clear session", "reason", reason, "error", err)
	}
	g.logger.Info("session cleared", "reason", reason)
	g.bus.Emit(events.Cleared())
}
