package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/bloghub/bloghub/pkg/domain"
)

// DefaultTimeout bounds every request unless overridden with WithTimeout.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a failed response is read.
const maxErrorBody = 1 << 20

// TokenSource returns the current access token, or "" when there is no session.
// It is consulted on every request so a logout takes effect immediately.
type TokenSource func() string

// Client is the BlogHub API client.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	logger     *slog.Logger
	reads      singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a new API client.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	if tokens == nil {
		tokens = func() string { return "" }
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// --- Auth ---

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginResponse is the body of a successful login. The role may arrive on the
// user object or at the top level.
type LoginResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	User         *domain.User `json:"user,omitempty"`
	Role         string       `json:"role,omitempty"`
}

// RegisterRequest is the payload for POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Login exchanges credentials for tokens.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", req, &resp, false); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &resp, nil
}

// Register creates an account. It does not sign the user in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/register", req, nil, false); err != nil {
		return fmt.Errorf("client.Register: %w", err)
	}
	return nil
}

// Logout tells the backend to revoke refreshToken.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	body := map[string]string{"token": refreshToken}
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/logout", body, nil, false); err != nil {
		return fmt.Errorf("client.Logout: %w", err)
	}
	return nil
}

// --- Posts ---

// PostInput is the multipart payload for creating or editing a post.
// ImagePath, when set, is uploaded as the "image" file part.
type PostInput struct {
	Title     string
	Content   string
	ImagePath string
}

// ListPosts returns every published post.
func (c *Client) ListPosts(ctx context.Context) ([]domain.Post, error) {
	var posts []domain.Post
	if err := c.get(ctx, "/api/blogs", &posts); err != nil {
		return nil, fmt.Errorf("client.ListPosts: %w", err)
	}
	return posts, nil
}

// GetPost fetches a single post by ID.
func (c *Client) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	if err := c.get(ctx, "/api/blogs/"+url.PathEscape(id), &post); err != nil {
		return nil, fmt.Errorf("client.GetPost: %w", err)
	}
	return &post, nil
}

// CreatePost publishes a new post.
func (c *Client) CreatePost(ctx context.Context, in PostInput) (*domain.Post, error) {
	var created domain.Post
	if err := c.doMultipart(ctx, http.MethodPost, "/api/blogs", postFields(in), "image", in.ImagePath, &created); err != nil {
		return nil, fmt.Errorf("client.CreatePost: %w", err)
	}
	return &created, nil
}

// UpdatePost edits an existing post.
func (c *Client) UpdatePost(ctx context.Context, id string, in PostInput) (*domain.Post, error) {
	var updated domain.Post
	if err := c.doMultipart(ctx, http.MethodPut, "/api/blogs/"+url.PathEscape(id), postFields(in), "image", in.ImagePath, &updated); err != nil {
		return nil, fmt.Errorf("client.UpdatePost: %w", err)
	}
	return &updated, nil
}

// DeletePost removes a post by ID.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/blogs/"+url.PathEscape(id), nil, nil, true); err != nil {
		return fmt.Errorf("client.DeletePost: %w", err)
	}
	return nil
}

func postFields(in PostInput) [][2]string {
	return [][2]string{{"title", in.Title}, {"content", in.Content}}
}

// --- Profiles ---

// ProfileUpdate is the multipart payload for PUT /api/profile/{role}/{userId}.
// Empty fields are not sent.
type ProfileUpdate struct {
	Gender            string
	DOB               string
	CurrentOccupation string
	Bio               string
	Address           string
	Mobile            string
	Preferences       []string
	ImagePath         string
}

// GetProfile fetches the role profile of a user.
func (c *Client) GetProfile(ctx context.Context, role domain.Role, userID string) (*domain.Profile, error) {
	var p domain.Profile
	if err := c.get(ctx, profilePath(role, userID), &p); err != nil {
		return nil, fmt.Errorf("client.GetProfile: %w", err)
	}
	return &p, nil
}

// UpdateProfile saves profile fields and returns the stored profile.
func (c *Client) UpdateProfile(ctx context.Context, role domain.Role, userID string, in ProfileUpdate) (*domain.Profile, error) {
	fields := [][2]string{}
	add := func(k, v string) {
		if v != "" {
			fields = append(fields, [2]string{k, v})
		}
	}
	add("gender", in.Gender)
	add("dob", in.DOB)
	add("currentOccupation", in.CurrentOccupation)
	add("bio", in.Bio)
	add("address", in.Address)
	add("mobile", in.Mobile)
	if len(in.Preferences) > 0 {
		prefs, err := json.Marshal(in.Preferences)
		if err != nil {
			return nil, fmt.Errorf("client.UpdateProfile: marshal preferences: %w", err)
		}
		add("preferences", string(prefs))
	}

	var raw json.RawMessage
	if err := c.doMultipart(ctx, http.MethodPut, profilePath(role, userID), fields, "profileImage", in.ImagePath, &raw); err != nil {
		return nil, fmt.Errorf("client.UpdateProfile: %w", err)
	}
	p, err := decodeProfileEnvelope(raw, role)
	if err != nil {
		return nil, fmt.Errorf("client.UpdateProfile: %w", err)
	}
	return p, nil
}

func profilePath(role domain.Role, userID string) string {
	return "/api/profile/" + url.PathEscape(role.String()) + "/" + url.PathEscape(userID)
}

// decodeProfileEnvelope unwraps {"<role>Profile": {...}} or {"profile": {...}},
// falling back to the body itself.
func decodeProfileEnvelope(raw json.RawMessage, role domain.Role) (*domain.Profile, error) {
	if len(raw) == 0 {
		return &domain.Profile{}, nil
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	for _, key := range []string{role.String() + "Profile", "profile"} {
		if inner, ok := envelope[key]; ok && string(inner) != "null" {
			raw = inner
			break
		}
	}
	var p domain.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

// --- Admin ---

// ListUsers returns every registered user.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.get(ctx, "/api/admin/users", &users); err != nil {
		return nil, fmt.Errorf("client.ListUsers: %w", err)
	}
	return users, nil
}

// GetUser returns a user with their role profile.
func (c *Client) GetUser(ctx context.Context, id string) (*domain.UserDetail, error) {
	var d domain.UserDetail
	if err := c.get(ctx, "/api/admin/users/"+url.PathEscape(id), &d); err != nil {
		return nil, fmt.Errorf("client.GetUser: %w", err)
	}
	return &d, nil
}

// --- transport ---

func (c *Client) get(ctx context.Context, path string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Identical concurrent reads under the same credential share one round trip.
	key := c.tokens() + " " + path
	ch := c.reads.DoChan(key, func() (any, error) {
		// The shared call outlives any one caller; the client timeout bounds it.
		return c.roundTrip(context.WithoutCancel(ctx), http.MethodGet, path, nil, "", true)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return res.Err
	}
	return decodeInto(res.Val.([]byte), out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any, authed bool) error {
	var reqBody io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
		contentType = "application/json"
	}
	data, err := c.roundTrip(ctx, method, path, reqBody, contentType, authed)
	if err != nil {
		return err
	}
	return decodeInto(data, out)
}

func (c *Client) doMultipart(ctx context.Context, method, path string, fields [][2]string, fileField, filePath string, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	if filePath != "" {
		if err := attachFile(mw, fileField, filePath); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}
	data, err := c.roundTrip(ctx, method, path, &buf, mw.FormDataContentType(), true)
	if err != nil {
		return err
	}
	return decodeInto(data, out)
}

func attachFile(mw *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close() //nolint:errcheck // read-only
	part, err := mw.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("create %s part: %w", field, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy %s: %w", field, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body io.Reader, contentType string, authed bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	if authed {
		if tok := c.tokens(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("api request failed", "method", method, "path", path, "request_id", reqID, "error", err)
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close
	c.logger.Debug("api request", "method", method, "path", path, "request_id", reqID,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if readErr != nil {
			return nil, &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr), rawBody: true}
		}
		var apiErr struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil {
			if apiErr.Message != "" {
				return nil, &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message}
			}
			if apiErr.Error != "" {
				return nil, &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
			}
		}
		return nil, &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody)), rawBody: true}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}

func decodeInto(data []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
