package upstream

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-adventure-bff/internal/errors"
)

const csrfPath = "/csrf/"

type csrfResponse struct {
	CSRFToken string `json:"csrfToken"`
}

// FetchCSRF asks the upstream for a fresh anti-forgery token. No credentials
// are sent and nothing is cached: every mutating call fetches its own token.
func (c *Client) FetchCSRF(ctx context.Context) (string, error) {
	req, err := c.NewRequest(ctx, http.MethodGet, csrfPath, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req, "csrf")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return "", errors.Wrapf(errors.ErrCSRFUnavailable, "[upstream FetchCSRF] status %d", resp.StatusCode)
	}

	var body csrfResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", errors.Wrapf(errors.ErrCSRFUnavailable, "[upstream FetchCSRF] decode: %v", err)
	}
	if body.CSRFToken == "" {
		return "", errors.Wrapf(errors.ErrCSRFUnavailable, "[upstream FetchCSRF] empty token")
	}
	return body.CSRFToken, nil
}
