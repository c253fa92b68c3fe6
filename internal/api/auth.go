package api

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/qurvii/stylesync/pkg/models"
)

type loginRequest struct {
	EmployeeID int    `json:"employee_id"`
	Password   string `json:"password"`
}

type loginData struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         *models.User `json:"user"`
}

type registerRequest struct {
	Username   string `json:"username"`
	EmployeeID int    `json:"employee_id"`
	Password   string `json:"password"`
}

// Login exchanges credentials for a token pair and persists it.
func (c *Client) Login(ctx context.Context, employeeID int, password string) (*models.User, error) {
	var data loginData
	_, err := c.call(ctx, http.MethodPost, "/auth/login", nil,
		loginRequest{EmployeeID: employeeID, Password: password}, &data, false)
	if err != nil {
		return nil, err
	}

	if err := c.store.SetTokens(data.AccessToken, data.RefreshToken); err != nil {
		return nil, err
	}
	if err := c.store.SetUser(data.User); err != nil {
		return nil, err
	}
	return data.User, nil
}

// Register creates an account and signs it in immediately, mirroring
// the register-then-login flow of the web client.
func (c *Client) Register(ctx context.Context, username string, employeeID int, password string) (*models.User, error) {
	_, err := c.call(ctx, http.MethodPost, "/auth/register", nil,
		registerRequest{Username: username, EmployeeID: employeeID, Password: password}, nil, false)
	if err != nil {
		return nil, err
	}

	return c.Login(ctx, employeeID, password)
}

// Logout invalidates the session server-side on a best-effort basis and
// always clears the local tokens. A server that is down cannot keep the
// operator signed in.
func (c *Client) Logout(ctx context.Context) error {
	if c.store.Authenticated() {
		if _, err := c.call(ctx, http.MethodPost, "/auth/logout", nil, nil, nil, true); err != nil {
			c.logger.Debug("server-side logout failed", zap.Error(err))
		}
	}
	return c.store.Clear()
}

// Profile fetches the signed-in user from the server.
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var data struct {
		User *models.User `json:"user"`
	}
	if _, err := c.call(ctx, http.MethodGet, "/auth/profile", nil, nil, &data, true); err != nil {
		return nil, err
	}
	return data.User, nil
}
