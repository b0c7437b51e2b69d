package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/cortexhq/cortex/internal/domain"
)

// TokenSource supplies the bearer credential attached to every request.
// Invalidate is called when the server rejects the credential (401) so the
// session resets to signed-out.
type TokenSource interface {
	Token() string
	Invalidate()
}

// Client is the gateway to the Cortex platform API
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	userAgent  string
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a new platform client. tokens may be nil for
// unauthenticated use (login/signup only).
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: "cortex-cli",
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// TokenResponse is returned by login and signup
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// LoginRequest is the credential payload for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest is the registration payload for POST /auth/signup
type SignupRequest struct {
	Email        string      `json:"email"`
	Password     string      `json:"password"`
	FullName     string      `json:"full_name"`
	SelectedRole domain.Role `json:"selected_role"`
}

// ProfilePatch carries partial profile updates for PUT /users/profile
type ProfilePatch struct {
	FullName     *string      `json:"full_name,omitempty"`
	SelectedRole *domain.Role `json:"selected_role,omitempty"`
}

// CreateResponseRequest is the submission bundle for POST /responses.
// Architecture and ArchitectureData reflect the dual diagram
// representation: exactly one of them carries the user's diagram unless
// the section was untouched.
type CreateResponseRequest struct {
	TaskID            string `json:"task_id"`
	Assumptions       string `json:"assumptions"`
	Architecture      string `json:"architecture"`
	ArchitectureData  string `json:"architecture_data,omitempty"`
	ArchitectureImage string `json:"architecture_image,omitempty"`
	TradeOffs         string `json:"trade_offs"`
	FailureScenarios  string `json:"failure_scenarios"`
}

// Login exchanges credentials for a bearer token
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	var token TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", LoginRequest{Email: email, Password: password}, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// Signup registers a new account and returns its bearer token
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*TokenResponse, error) {
	var token TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signup", req, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// Me fetches the identity behind the stored credential
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies a partial profile update
func (c *Client) UpdateProfile(ctx context.Context, patch ProfilePatch) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodPut, "/users/profile", patch, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListTasks fetches tasks, optionally filtered by role and difficulty
func (c *Client) ListTasks(ctx context.Context, role, difficulty string) ([]domain.Task, error) {
	params := url.Values{}
	if role != "" {
		params.Set("role", role)
	}
	if difficulty != "" {
		params.Set("difficulty", difficulty)
	}
	path := "/tasks"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var tasks []domain.Task
	if err := c.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask fetches a single task by ID
func (c *Client) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &task); err != nil {
		return nil, mapNotFound(err, domain.ErrTaskNotFound)
	}
	return &task, nil
}

// RandomTask fetches the daily-challenge task
func (c *Client) RandomTask(ctx context.Context) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodGet, "/tasks/random/pick", nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateResponse submits a completed workspace. Never retried
// automatically: submission idempotency is the caller's concern.
func (c *Client) CreateResponse(ctx context.Context, req CreateResponseRequest) (*domain.TaskResponse, error) {
	var resp domain.TaskResponse
	if err := c.do(ctx, http.MethodPost, "/responses", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetResponse fetches a persisted submission by ID
func (c *Client) GetResponse(ctx context.Context, id string) (*domain.TaskResponse, error) {
	var resp domain.TaskResponse
	if err := c.do(ctx, http.MethodGet, "/responses/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, mapNotFound(err, domain.ErrResponseNotFound)
	}
	return &resp, nil
}

// RequestFeedback asks the server to generate feedback for a response.
// A cooldown rejection comes back as *Error with the server's detail.
func (c *Client) RequestFeedback(ctx context.Context, responseID string) error {
	return c.do(ctx, http.MethodPost, "/responses/"+url.PathEscape(responseID)+"/feedback", nil, nil)
}

// ProgressStats fetches the user's aggregate progress counters
func (c *Client) ProgressStats(ctx context.Context) (*domain.ProgressStats, error) {
	var stats domain.ProgressStats
	if err := c.do(ctx, http.MethodGet, "/progress/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// History fetches the user's submission history, newest first
func (c *Client) History(ctx context.Context) ([]domain.TaskResponse, error) {
	var history []domain.TaskResponse
	if err := c.do(ctx, http.MethodGet, "/responses/user/history", nil, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// ListDrills fetches the available practice drills
func (c *Client) ListDrills(ctx context.Context) ([]domain.Drill, error) {
	var drills []domain.Drill
	if err := c.do(ctx, http.MethodGet, "/drills", nil, &drills); err != nil {
		return nil, err
	}
	return drills, nil
}

// SubmitDrill answers a drill and returns it with the correct answer and
// explanation revealed
func (c *Client) SubmitDrill(ctx context.Context, drillID, answer string) (*domain.Drill, error) {
	body := struct {
		Answer string `json:"answer"`
	}{Answer: answer}

	var drill domain.Drill
	if err := c.do(ctx, http.MethodPost, "/drills/"+url.PathEscape(drillID)+"/answer", body, &drill); err != nil {
		return nil, mapNotFound(err, domain.ErrDrillNotFound)
	}
	return &drill, nil
}

// do issues one request and decodes the response into out (when non-nil).
// Non-2xx statuses become *Error; a 401 additionally invalidates the
// stored credential and comes back as domain.ErrUnauthorized.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if c.tokens != nil {
			c.tokens.Invalidate()
		}
		return domain.ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		// Detail is optional; an empty body still yields a usable error.
		json.Unmarshal(raw, apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// mapNotFound converts a 404 *Error into the given sentinel
func mapNotFound(err error, sentinel error) error {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return sentinel
	}
	return err
}
