package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/romitgit/tc-project-service/internal/model"
	"github.com/romitgit/tc-project-service/internal/port/outbound"
)

// ErrUnavailable is returned while the circuit breaker is open.
var ErrUnavailable = errors.New("identity service unavailable")

// errCallerDone marks calls abandoned by their caller. They say nothing about upstream health.
var errCallerDone = errors.New("identity call abandoned")

// Config contains identity client configuration.
type Config struct {
	BaseURL          string
	Token            string
	FailureThreshold uint32
	CircuitTimeout   time.Duration
	MaxEmailResults  int
}

// DefaultConfig returns the default identity client configuration.
func DefaultConfig() *Config {
	return &Config{
		FailureThreshold: 5,
		CircuitTimeout:   30 * time.Second,
		MaxEmailResults:  100,
	}
}

// Client implements outbound.IdentityPort over the identity service REST API.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	maxHits int
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *zap.Logger
}

// NewClient creates a new identity service client.
func NewClient(httpClient *http.Client, cfg *Config, logger *zap.Logger) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	maxHits := cfg.MaxEmailResults
	if maxHits <= 0 {
		maxHits = 100
	}

	settings := gobreaker.Settings{
		Name:        "identity",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     cfg.CircuitTimeout,
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errCallerDone)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		maxHits: maxHits,
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
		logger:  logger.Named("identity"),
	}
}

// Compile-time interface check
var _ outbound.IdentityPort = (*Client)(nil)

// envelope is the identity service's standard response wrapper.
type envelope[T any] struct {
	Result struct {
		Success bool `json:"success"`
		Status  int  `json:"status"`
		Content T    `json:"content"`
	} `json:"result"`
}

type roleDTO struct {
	RoleName string `json:"roleName"`
}

type userDTO struct {
	ID     json.Number `json:"id"`
	Handle string      `json:"handle"`
	Email  string      `json:"email"`
}

// LookupUserRoles returns the platform roles of a user.
func (c *Client) LookupUserRoles(ctx context.Context, userID int64) ([]model.UserRole, error) {
	q := url.Values{}
	q.Set("filter", "subjectID="+strconv.FormatInt(userID, 10))

	body, err := c.get(ctx, "/roles", q)
	if err != nil {
		return nil, fmt.Errorf("lookup roles of user %d: %w", userID, err)
	}

	var resp envelope[[]roleDTO]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode roles response: %w", err)
	}

	roles := make([]model.UserRole, 0, len(resp.Result.Content))
	for _, r := range resp.Result.Content {
		if r.RoleName != "" {
			roles = append(roles, model.UserRole(r.RoleName))
		}
	}
	return roles, nil
}

// LookupUsersByEmail returns the registered accounts matching any of emails.
func (c *Client) LookupUsersByEmail(ctx context.Context, emails []string) ([]*model.IdentityUser, error) {
	if len(emails) == 0 {
		return nil, nil
	}

	clauses := make([]string, 0, len(emails))
	for _, e := range emails {
		clauses = append(clauses, fmt.Sprintf("email=%q", strings.ToLower(strings.TrimSpace(e))))
	}
	q := url.Values{}
	q.Set("fields", "handle,id,email")
	q.Set("filter", strings.Join(clauses, " OR "))
	q.Set("limit", strconv.Itoa(c.maxHits))

	body, err := c.get(ctx, "/users", q)
	if err != nil {
		return nil, fmt.Errorf("lookup users by email: %w", err)
	}

	var resp envelope[[]userDTO]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode users response: %w", err)
	}

	users := make([]*model.IdentityUser, 0, len(resp.Result.Content))
	for _, u := range resp.Result.Content {
		id, err := u.ID.Int64()
		if err != nil || id <= 0 {
			c.logger.Warn("skipping identity user with invalid id", zap.String("id", u.ID.String()))
			continue
		}
		users = append(users, &model.IdentityUser{ID: id, Email: u.Email, Handle: u.Handle})
	}
	return users, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		body, err := c.do(ctx, path, q)
		if err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", errCallerDone, err)
		}
		return body, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return body, err
}

func (c *Client) do(ctx context.Context, path string, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("identity request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("identity service returned status %d", resp.StatusCode)
	}
	return body, nil
}
