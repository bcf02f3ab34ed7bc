package synapse

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/httpx"
	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/synapseapi"
)

// Login exchanges credentials for a session token. Every later call on either
// endpoint carries the token. Profiling is suspended for the login call.
func (c *Client) Login(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", ErrInvalidArgument)
	}

	prev := c.RequestProfiling()
	c.SetRequestProfiling(false)
	defer c.SetRequestProfiling(prev)

	body, err := synapseapi.EncodeJSON(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, Authentication, &httpx.Request{
		Method: http.MethodPost,
		URI:    "/session",
		Body:   body,
		Expect: []int{http.StatusCreated},
	})
	if err != nil {
		return err
	}

	session, err := decodeEntity(resp.Body)
	if err != nil {
		return fmt.Errorf("decode session: %w", err)
	}
	token := session.String("sessionToken")
	if token == "" {
		return fmt.Errorf("%w: response carries no sessionToken", ErrAuthentication)
	}
	c.SetSessionToken(token)
	c.logger.Debug("logged in", "email", email)
	return nil
}

// SessionToken returns the current session token, or "".
func (c *Client) SessionToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionToken
}

// SetSessionToken installs a token obtained elsewhere.
func (c *Client) SetSessionToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionToken = token
}

// Logout forgets the session token. The service is not contacted.
func (c *Client) Logout() {
	c.SetSessionToken("")
}
