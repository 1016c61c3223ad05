package ggsa

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jbaris/grain-price-analyzer/internal/api"
)

const (
	BaseURL = "https://www.ggsa.com.ar"

	// Rosario board.
	DefaultBoard     = "pros59"
	DefaultStartDate = "2017-01-01"

	dateLayout  = "2006-01-02"
	contentType = "application/json;charset=UTF-8"
)

var ErrMissingCredentials = errors.New("ggsa session credentials are not configured")

// Credentials are the session cookie and the CSRF token of a logged-in
// browser session. They expire and must be renewed by the operator.
type Credentials struct {
	CSRFToken string
	SessionID string
}

func (c Credentials) Validate() error {
	if c.CSRFToken == "" || c.SessionID == "" {
		return ErrMissingCredentials
	}

	return nil
}

type PizarraRequest struct {
	Board string
	From  time.Time
	To    time.Time
}

func (r PizarraRequest) Path() string {
	return fmt.Sprintf("get_pizarra/%s/%s/%s/", r.Board, r.From.Format(dateLayout), r.To.Format(dateLayout))
}

type Client struct {
	httpClient  api.HTTPClient
	baseURL     string
	credentials Credentials
}

func NewClient(baseURL string, credentials Credentials) *Client {
	return &Client{httpClient: &http.Client{}, baseURL: baseURL, credentials: credentials}
}

func NewClientWithHTTPClient(baseURL string, credentials Credentials, httpClient api.HTTPClient) *Client {
	return &Client{httpClient: httpClient, baseURL: baseURL, credentials: credentials}
}

func (c *Client) origin() string {
	return strings.TrimRight(c.baseURL, "/")
}

func (c *Client) newPizarraRequest(ctx context.Context, request PizarraRequest) (*http.Request, error) {
	return api.NewRequestBuilder(http.MethodPost, c.baseURL, request.Path()).
		WithHeader("Content-Type", contentType).
		WithHeader("Origin", c.origin()).
		WithHeader("Referer", c.origin()+"/").
		WithHeader("X-CSRFToken", c.credentials.CSRFToken).
		WithCookie("csrftoken", c.credentials.CSRFToken).
		WithCookie("sessionid", c.credentials.SessionID).
		WithJSONBody(struct{}{}).
		Build(ctx)
}

// GetPizarra posts an empty JSON object to the board endpoint and returns the
// raw payload.
func (c *Client) GetPizarra(ctx context.Context, request PizarraRequest) (*api.Response, error) {
	if err := c.credentials.Validate(); err != nil {
		return nil, err
	}

	req, err := c.newPizarraRequest(ctx, request)
	if err != nil {
		return nil, err
	}

	resp, err := api.Do(c.httpClient, req)
	if err != nil {
		return nil, err
	}

	return resp, api.CheckStatus(req, resp)
}
