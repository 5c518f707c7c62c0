package memos

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/usememos/memos.go/pkg/models"
)

// GetUser fetches a user. Bare ids are qualified with the "users/" prefix.
func (c *Client) GetUser(ctx context.Context, userID string) (*models.User, error) {
	name := models.QualifyUserName(userID)

	user := &models.User{}
	if err := c.do(ctx, http.MethodGet, name, requestOptions{}, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetCurrentUser fetches the user behind the current session.
func (c *Client) GetCurrentUser(ctx context.Context) (*models.User, error) {
	session, ok := c.auth.CurrentSession(ctx)
	if !ok {
		return nil, &AuthenticationError{APIError{Message: "no active session"}}
	}

	raw, ok := session["user"]
	if !ok {
		return nil, &NotFoundError{APIError{Message: "session carries no user"}}
	}
	payload, err := json.Marshal(raw)
	if err != nil {
		return nil, &ValidationError{APIError{Message: err.Error()}}
	}

	user := &models.User{}
	if err := json.Unmarshal(payload, user); err != nil {
		return nil, &ValidationError{APIError{Message: err.Error()}}
	}
	if err := user.Validate(); err != nil {
		return nil, &ValidationError{APIError{Message: err.Error()}}
	}
	return user, nil
}
