package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	cerr "github.com/fnndsc/chrisctl/cmd/chris/errors"
)

func (c *client) AuthToken(ctx context.Context, username string, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.apipath("auth-token"), bytes.NewReader(body),
	)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "") // credentials are in the body.

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	// CUBE responds 400 for wrong credentials.
	if resp.StatusCode == http.StatusBadRequest {
		detail, _ := io.ReadAll(resp.Body)
		return "", cerr.NewCuiError(
			fmt.Sprintf("user %s cannot log in", username),
			cerr.WithCause(ErrUnauthorized),
			cerr.WithDetail(func(summary string) (string, error) {
				return summary + "\n" + parseErrorMessage(detail), nil
			}),
			cerr.WithAdvice("Check your username and password."),
		)
	}

	token := struct {
		Token string `json:"token"`
	}{}
	if err := unmarshalJsonResponse(
		resp, &token,
		MessageFor{
			Status4xx: fmt.Sprintf("user %s cannot log in", username),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return "", err
	}
	return token.Token, nil
}
