package menu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrInvalidCredentials is returned by VerifyUser when the backend rejects the pair.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrBusinessNotFound is returned when no business matches the slug.
var ErrBusinessNotFound = errors.New("business not found")

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// GetBusinessBySlug returns the business settings together with all of its products.
func (c *Client) GetBusinessBySlug(ctx context.Context, slug string) (Business, []Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return Business{}, nil, fmt.Errorf("business slug is required")
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/businesses/"+url.PathEscape(slug), nil)
	if err != nil {
		return Business{}, nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Business{}, nil, fmt.Errorf("get business request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Business{}, nil, fmt.Errorf("get business %q: %w", slug, ErrBusinessNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return Business{}, nil, statusError("get business", resp)
	}

	// The backend answers null for unknown slugs.
	var payload *businessResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Business{}, nil, fmt.Errorf("decode business response: %w", err)
	}
	if payload == nil {
		return Business{}, nil, fmt.Errorf("get business %q: %w", slug, ErrBusinessNotFound)
	}
	return payload.Business, payload.Products, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/products", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list products request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("list products", resp)
	}

	var products []Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode products response: %w", err)
	}
	return products, nil
}

// VerifyUser checks a username/password pair against the backend.
func (c *Client) VerifyUser(ctx context.Context, userName, password string) (User, error) {
	body, err := json.Marshal(map[string]string{"userName": userName, "password": password})
	if err != nil {
		return User{}, fmt.Errorf("encode credentials: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/users/verify", bytes.NewReader(body))
	if err != nil {
		return User{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return User{}, fmt.Errorf("verify user request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return User{}, ErrInvalidCredentials
	}
	if resp.StatusCode != http.StatusOK {
		return User{}, statusError("verify user", resp)
	}

	var user *User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return User{}, fmt.Errorf("decode verify response: %w", err)
	}
	if user == nil || user.ID == "" {
		return User{}, ErrInvalidCredentials
	}
	return *user, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("%s failed with status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(body)))
}
