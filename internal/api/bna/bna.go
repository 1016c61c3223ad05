package bna

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/jbaris/grain-price-analyzer/internal/api"
	"github.com/jbaris/grain-price-analyzer/internal/dataset"
)

const (
	BaseURL = "https://www.bna.com.ar"

	historyPath    = "Cotizador/HistoricoPrincipales"
	requestTimeout = 10 * time.Second
	queryLayout    = "02/01/2006"
	quotesMarker   = `<div id="cotizacionesCercanas">`
	rowsSelector   = "div#tablaDolar > table > tbody > tr"
)

var ErrNoQuotes = errors.New("no quotes found")

type Quote struct {
	Date  time.Time
	Value decimal.Decimal
}

type Client struct {
	httpClient api.HTTPClient
	baseURL    string
}

func NewClient(baseURL string) *Client {
	return &Client{httpClient: &http.Client{Timeout: requestTimeout}, baseURL: baseURL}
}

func NewClientWithHTTPClient(baseURL string, httpClient api.HTTPClient) *Client {
	return &Client{httpClient: httpClient, baseURL: baseURL}
}

func (c *Client) newHistoryRequest(ctx context.Context, date time.Time) (*http.Request, error) {
	return api.NewRequestBuilder(http.MethodGet, c.baseURL, historyPath).
		AddQueryParameter("id", "billetes").
		AddQueryParameter("fecha", date.Format(queryLayout)).
		AddQueryParameter("filtroEuro", "0").
		AddQueryParameter("filtroDolar", "1").
		Build(ctx)
}

// GetHistoricalQuotes returns the USD bill quotes the bank lists around the
// given date. The table may include neighbouring days.
func (c *Client) GetHistoricalQuotes(ctx context.Context, date time.Time) ([]Quote, error) {
	req, err := c.newHistoryRequest(ctx, date)
	if err != nil {
		return nil, err
	}

	resp, err := api.Do(c.httpClient, req)
	if err != nil {
		return nil, err
	}

	if err := api.CheckStatus(req, resp); err != nil {
		return nil, err
	}

	return ParseHistoricalQuotes(string(resp.Body), date)
}

// ParseHistoricalQuotes extracts quotes from the history page. Rows whose
// date cell cannot be parsed are assigned fallbackDate.
func ParseHistoricalQuotes(content string, fallbackDate time.Time) ([]Quote, error) {
	idx := strings.Index(content, quotesMarker)
	if idx == -1 {
		return nil, ErrNoQuotes
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content[idx:]))
	if err != nil {
		return nil, fmt.Errorf("failed to parse quotes page: %w", err)
	}

	rows := doc.Find(rowsSelector)
	if rows.Length() == 0 {
		return nil, ErrNoQuotes
	}

	quotes := []Quote{}
	// first row is the table header
	rows.Slice(1, goquery.ToEnd).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}

		valueRaw := strings.ReplaceAll(strings.TrimSpace(cells.Eq(2).Text()), ",", ".")
		value, err := decimal.NewFromString(valueRaw)
		if err != nil {
			return
		}

		date, err := time.ParseInLocation(queryLayout, strings.TrimSpace(cells.Eq(3).Text()), fallbackDate.Location())
		if err != nil {
			date = fallbackDate
		}

		quotes = append(quotes, Quote{Date: date, Value: dataset.RoundFloat(value, 1)})
	})

	return quotes, nil
}
