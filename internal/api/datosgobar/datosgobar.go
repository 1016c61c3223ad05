// Package datosgobar is a client for the time-series API published at
// apis.datos.gob.ar.
package datosgobar

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/jbaris/grain-price-analyzer/internal/api"
)

const (
	BaseURL = "https://apis.datos.gob.ar"

	// Official BNA USD/ARS seller rate, daily.
	DefaultSeriesID  = "168.1_T_CAMBIOR_D_0_0_26"
	DefaultStartDate = "2018-07"
	DefaultLimit     = 5000

	seriesPath = "series/api/series/"
	accept     = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7"
	referer    = "https://datosgobar.github.io/"
)

type SeriesRequest struct {
	IDs []string
	// StartDate accepts any granularity the API understands (YYYY, YYYY-MM, YYYY-MM-DD).
	StartDate string
	Limit     int
}

func NewSeriesRequest() SeriesRequest {
	return SeriesRequest{
		IDs:       []string{DefaultSeriesID},
		StartDate: DefaultStartDate,
		Limit:     DefaultLimit,
	}
}

type Client struct {
	httpClient api.HTTPClient
	baseURL    string
}

func NewClient(baseURL string) *Client {
	return &Client{httpClient: &http.Client{}, baseURL: baseURL}
}

func NewClientWithHTTPClient(baseURL string, httpClient api.HTTPClient) *Client {
	return &Client{httpClient: httpClient, baseURL: baseURL}
}

func (c *Client) newSeriesRequest(ctx context.Context, request SeriesRequest) (*http.Request, error) {
	return api.NewRequestBuilder(http.MethodGet, c.baseURL, seriesPath).
		AddQueryParameter("ids", strings.Join(request.IDs, ",")).
		AddQueryParameter("start_date", request.StartDate).
		AddQueryParameter("limit", strconv.Itoa(request.Limit)).
		WithHeader("Accept", accept).
		WithHeader("Referer", referer).
		Build(ctx)
}

// GetSeries returns the raw API payload. Non-2xx statuses are reported as
// *api.StatusError together with the response.
func (c *Client) GetSeries(ctx context.Context, request SeriesRequest) (*api.Response, error) {
	req, err := c.newSeriesRequest(ctx, request)
	if err != nil {
		return nil, err
	}

	resp, err := api.Do(c.httpClient, req)
	if err != nil {
		return nil, err
	}

	return resp, api.CheckStatus(req, resp)
}
