package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Auth operations. Login and Register are the only calls that go out without
// a bearer token; both return the token the session layer persists.

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, creds Credentials) (t *TokenResponse, err error) {
	defer func() { observe("login", err) }()
	return c.authenticate(ctx, "login", c.baseURL+"/api/auth/login", creds)
}

// Register creates an account and returns its access token.
func (c *Client) Register(ctx context.Context, creds Credentials) (t *TokenResponse, err error) {
	defer func() { observe("register", err) }()
	return c.authenticate(ctx, "register", c.baseURL+"/api/auth/register", creds)
}

func (c *Client) authenticate(ctx context.Context, op, url string, creds Credentials) (*TokenResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateEmail(creds.Email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(creds.Password); err != nil {
		return nil, err
	}
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, responseError(op, resp)
	}

	var tok TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}
	if tok.AccessToken == "" {
		return nil, &APIError{Op: op, Status: resp.StatusCode, Detail: "response carried no access token"}
	}
	return &tok, nil
}
