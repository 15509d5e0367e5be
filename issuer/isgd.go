// Package issuer talks to an external short-code issuing service with
// an is.gd compatible API.
package issuer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"url-shortener-service/models"
)

// Client issues a short link for a URL. Implementations must treat
// the returned link as globally unique.
type Client interface {
	Issue(ctx context.Context, originalURL string) (shortURL string, err error)
}

// ISGdClient calls an is.gd style create endpoint:
// GET {endpoint}?format=json&url={url}&logstats=1
// Success bodies contain "shorturl"; failures carry "errorcode" and
// "errormessage".
type ISGdClient struct {
	endpoint string
	client   *http.Client
}

var _ Client = (*ISGdClient)(nil)

func NewISGdClient(endpoint string, timeout time.Duration) *ISGdClient {
	return &ISGdClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type isgdResponse struct {
	ShortURL     string `json:"shorturl"`
	ErrorCode    int    `json:"errorcode"`
	ErrorMessage string `json:"errormessage"`
}

func (c *ISGdClient) Issue(ctx context.Context, originalURL string) (string, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("url", originalURL)
	params.Set("logstats", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", &models.IssuerError{Message: fmt.Sprintf("failed to build issuer request: %v", err)}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// Timeouts and connection failures are issuer failures, never hangs.
		return "", &models.IssuerError{Message: fmt.Sprintf("issuer request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &models.IssuerError{Message: fmt.Sprintf("issuer returned status %d", resp.StatusCode)}
	}

	var body isgdResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", &models.IssuerError{Message: "malformed issuer response"}
	}

	if body.ErrorCode != 0 {
		msg := body.ErrorMessage
		if msg == "" {
			msg = "Error from issuer service"
		}
		return "", &models.IssuerError{Code: body.ErrorCode, Message: msg}
	}
	if body.ShortURL == "" {
		return "", &models.IssuerError{Message: "issuer response missing shorturl"}
	}

	return body.ShortURL, nil
}
