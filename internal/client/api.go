package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jobguard/jobguard/internal/model"
)

// Server endpoints.
const (
	pathPredict       = "/predict"
	pathUserInfo      = "/api/user_info"
	pathSystemLogs    = "/api/system_logs"
	pathLogin         = "/api/login"
	pathSignup        = "/api/signup"
	pathLogout        = "/api/logout"
	pathDeleteAccount = "/api/delete_account"
)

type predictRequest struct {
	Text string `json:"text"`
}

// Predict submits text for analysis.
//
// A response body that decodes as a result is returned even when the status
// is not 2xx; its Error field then carries the server's message. Only a
// transport failure or an undecodable body returns an error.
func (c *Client) Predict(ctx context.Context, text string) (*model.ScanResult, error) {
	resp, err := c.do(ctx, http.MethodPost, pathPredict, predictRequest{Text: text})
	if err != nil {
		return nil, err
	}

	var result model.ScanResult
	if err := json.Unmarshal(resp.body, &result); err != nil {
		if !resp.ok() {
			return nil, &ServerError{Status: resp.status, Message: statusMessage(resp.status)}
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if !resp.ok() && result.Error == "" {
		result.Error = statusMessage(resp.status)
	}
	return &result, nil
}

// UserInfo is the server-reported session identity.
type UserInfo struct {
	Username string `json:"username,omitempty"`
}

// UserInfo asks the server who the session belongs to.
// An unauthenticated session yields an empty username, not an error.
func (c *Client) UserInfo(ctx context.Context) (*UserInfo, error) {
	resp, err := c.do(ctx, http.MethodGet, pathUserInfo, nil)
	if err != nil {
		return nil, err
	}

	if resp.status == http.StatusUnauthorized {
		return &UserInfo{}, nil
	}
	if !resp.ok() {
		return nil, decodeServerError(resp)
	}

	var info UserInfo
	if err := json.Unmarshal(resp.body, &info); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return &info, nil
}

// SystemLogs fetches the server's system log lines.
// Both a bare JSON array and an object with a "logs" array are accepted.
func (c *Client) SystemLogs(ctx context.Context) ([]string, error) {
	resp, err := c.do(ctx, http.MethodGet, pathSystemLogs, nil)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, decodeServerError(resp)
	}

	var lines []string
	if err := json.Unmarshal(resp.body, &lines); err == nil {
		return lines, nil
	}

	var wrapped struct {
		Logs []string `json:"logs"`
	}
	if err := json.Unmarshal(resp.body, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return wrapped.Logs, nil
}

// AuthResult is the body returned by the auth endpoints.
type AuthResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Username string `json:"username,omitempty"`
	Error    string `json:"error,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// Login authenticates and stores the resulting session cookie.
// With remember set the server issues a persistent session.
func (c *Client) Login(ctx context.Context, username, password string, remember bool) (*AuthResult, error) {
	res, err := c.auth(ctx, pathLogin, loginRequest{
		Username: username,
		Password: password,
		Remember: remember,
	})
	if err != nil {
		return nil, err
	}
	if res.Username == "" {
		res.Username = username
	}
	return res, nil
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers a new account. The server logs the new user in.
func (c *Client) Signup(ctx context.Context, username, email, password string) (*AuthResult, error) {
	res, err := c.auth(ctx, pathSignup, signupRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	if res.Username == "" {
		res.Username = username
	}
	return res, nil
}

// Logout ends the server session.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.auth(ctx, pathLogout, struct{}{})
	return err
}

// DeleteAccount deletes the logged-in account and ends the session.
func (c *Client) DeleteAccount(ctx context.Context) error {
	_, err := c.auth(ctx, pathDeleteAccount, struct{}{})
	return err
}

func (c *Client) auth(ctx context.Context, path string, in any) (*AuthResult, error) {
	resp, err := c.do(ctx, http.MethodPost, path, in)
	if err != nil {
		return nil, err
	}

	var res AuthResult
	if err := json.Unmarshal(resp.body, &res); err != nil {
		if !resp.ok() {
			return nil, &ServerError{Status: resp.status, Message: statusMessage(resp.status)}
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if !resp.ok() || !res.Success {
		msg := res.Error
		if msg == "" {
			msg = statusMessage(resp.status)
		}
		return nil, &ServerError{Status: resp.status, Message: msg}
	}
	return &res, nil
}

func decodeServerError(resp *response) error {
	var body struct {
		Error string `json:"error"`
	}
	msg := statusMessage(resp.status)
	if err := json.Unmarshal(resp.body, &body); err == nil && body.Error != "" {
		msg = body.Error
	}
	return &ServerError{Status: resp.status, Message: msg}
}
