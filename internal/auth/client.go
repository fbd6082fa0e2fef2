package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"job-board-go/internal/models"
	"job-board-go/internal/ratelimit"
	"job-board-go/pkg/httpclient"
)

const genericFailure = "Something went wrong"

// RemoteError is a failure reported by the auth API.
type RemoteError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Client talks to the login/register API and keeps the session token.
type Client struct {
	httpClient *httpclient.HttpClient
	limiter    *ratelimit.Limiter
	baseURL    string
	rateLimit  int
	store      *TokenStore
	logger     *log.Logger
	now        func() time.Time
}

// NewClient creates a client; limiter may be nil.
func NewClient(httpClient *httpclient.HttpClient, limiter *ratelimit.Limiter, baseURL string, rateLimit int, store *TokenStore, logger *log.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		limiter:    limiter,
		baseURL:    strings.TrimRight(baseURL, "/"),
		rateLimit:  rateLimit,
		store:      store,
		logger:     logger,
		now:        time.Now,
	}
}

// Login authenticates and persists the returned token.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	if err := validate.Struct(creds); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", err)
	}

	resp, err := c.post(ctx, "login", creds)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, &RemoteError{Op: "login", Message: "no token in response"}
	}

	if err := c.store.Save(resp.Token); err != nil {
		return nil, err
	}
	c.logger.Printf("Logged in as %s", creds.Email)
	return resp, nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, reg models.Registration) (*models.AuthResponse, error) {
	if err := validate.Struct(reg); err != nil {
		return nil, fmt.Errorf("invalid registration: %w", err)
	}

	resp, err := c.post(ctx, "register", reg)
	if err != nil {
		return nil, err
	}
	c.logger.Printf("Registered %s", reg.Email)
	return resp, nil
}

// Logout forgets the stored token.
func (c *Client) Logout() error {
	return c.store.Clear()
}

// Token returns the stored token.
func (c *Client) Token() (string, error) {
	return c.store.Load()
}

// Authenticated reports whether a stored token exists and has not expired.
// Tokens without an exp claim count as valid.
func (c *Client) Authenticated() bool {
	token, err := c.store.Load()
	if err != nil {
		if !errors.Is(err, ErrNoToken) {
			c.logger.Printf("Failed to read token: %v", err)
		}
		return false
	}

	expiry, ok, err := TokenExpiry(token)
	if err != nil {
		// opaque tokens are accepted as-is
		return true
	}
	return !ok || c.now().Before(expiry)
}

func (c *Client) post(ctx context.Context, op string, payload any) (*models.AuthResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, op, c.rateLimit); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", op, err)
	}

	resp, err := c.httpClient.Post(ctx, c.baseURL+"/"+op, "application/json", bytes.NewReader(body))
	if err != nil {
		c.logger.Printf("%s request failed: %v", op, err)
		return nil, &RemoteError{Op: op, Message: genericFailure}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := httpclient.ErrorMessage(resp)
		if strings.HasPrefix(msg, "status ") {
			msg = genericFailure
		}
		return nil, &RemoteError{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}

	var out models.AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return &out, nil
}
