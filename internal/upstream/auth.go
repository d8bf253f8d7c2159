package upstream

import (
	"context"
	"net/http"
)

// LoginResult is the token issuance response.
type LoginResult struct {
	Token string `json:"token"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminLogin exchanges admin credentials for a bearer token.
func (c *Client) AdminLogin(ctx context.Context, email, password string) (*LoginResult, error) {
	var res LoginResult
	err := c.doJSON(ctx, "", http.MethodPost, "/api/auth/admin/login", loginRequest{Email: email, Password: password}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// PartnerLogin exchanges partner credentials for a bearer token.
func (c *Client) PartnerLogin(ctx context.Context, email, password string) (*LoginResult, error) {
	var res LoginResult
	err := c.doJSON(ctx, "", http.MethodPost, "/api/auth/partner/login", loginRequest{Email: email, Password: password}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword changes the authenticated user's password.
func (c *Client) ChangePassword(ctx context.Context, token, current, next string) error {
	return c.doJSON(ctx, token, http.MethodPost, "/api/auth/change-password", changePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	}, nil)
}
