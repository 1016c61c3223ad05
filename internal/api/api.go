package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

type HTTPClient interface {
	Do(request *http.Request) (*http.Response, error)
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Do sends the request and reads the whole body. Non-2xx responses are
// returned as is; callers decide whether the status is an error.
func Do(client HTTPClient, request *http.Request) (*Response, error) {
	resp, err := client.Do(request)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// CheckStatus converts a non-2xx response into a *StatusError.
func CheckStatus(request *http.Request, resp *Response) error {
	if resp.IsSuccess() {
		return nil
	}

	return &StatusError{
		Method:     request.Method,
		URL:        request.URL.String(),
		StatusCode: resp.StatusCode,
	}
}

type queryParameter struct {
	key   string
	value string
}

// RequestBuilder keeps query parameters in insertion order. Some upstream
// endpoints are sensitive to parameter order, so url.Values is not used.
type RequestBuilder struct {
	method      string
	baseURL     string
	path        string
	query       []queryParameter
	header      http.Header
	cookies     []*http.Cookie
	requestBody *[]byte
	err         error
}

func NewRequestBuilder(method string, baseURL string, path string) *RequestBuilder {
	return &RequestBuilder{
		method:  method,
		baseURL: baseURL,
		path:    path,
		header:  http.Header{},
	}
}

func (b *RequestBuilder) AddQueryParameter(key string, value string) *RequestBuilder {
	if b.err != nil {
		return b
	}

	b.query = append(b.query, queryParameter{key: key, value: value})

	return b
}

func (b *RequestBuilder) WithHeader(key string, value string) *RequestBuilder {
	if b.err != nil {
		return b
	}

	b.header.Set(key, value)

	return b
}

func (b *RequestBuilder) WithCookie(name string, value string) *RequestBuilder {
	if b.err != nil {
		return b
	}

	b.cookies = append(b.cookies, &http.Cookie{Name: name, Value: value})

	return b
}

func (b *RequestBuilder) WithJSONBody(body interface{}) *RequestBuilder {
	if b.err != nil {
		return b
	}

	reqBody, err := json.Marshal(body)
	if err != nil {
		b.err = fmt.Errorf("failed to marshal request body: %w", err)
		return b
	}

	if b.header.Get("Content-Type") == "" {
		b.header.Set("Content-Type", "application/json")
	}
	b.requestBody = &reqBody

	return b
}

func (b *RequestBuilder) Build(ctx context.Context) (*http.Request, error) {
	if b.err != nil {
		return nil, b.err
	}

	u, err := b.makeURL()
	if err != nil {
		return nil, err
	}

	return b.makeRequest(ctx, u, b.makeBody())
}

func (b *RequestBuilder) makeURL() (*url.URL, error) {
	rawURL := fmt.Sprintf("%s/%s", strings.TrimRight(b.baseURL, "/"), strings.TrimLeft(b.path, "/"))

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url %q: %w", rawURL, err)
	}

	u.RawQuery = b.encodeQuery()

	return u, nil
}

func (b *RequestBuilder) encodeQuery() string {
	pairs := make([]string, 0, len(b.query))
	for _, p := range b.query {
		pairs = append(pairs, url.QueryEscape(p.key)+"="+url.QueryEscape(p.value))
	}

	return strings.Join(pairs, "&")
}

func (b *RequestBuilder) makeBody() io.Reader {
	if b.requestBody == nil {
		return nil
	}

	return bytes.NewReader(*b.requestBody)
}

func (b *RequestBuilder) makeRequest(ctx context.Context, u *url.URL, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, b.method, u.String(), body)
	if err != nil {
		return nil, err
	}

	for header, values := range b.header {
		for _, value := range values {
			req.Header.Add(header, value)
		}
	}

	for _, cookie := range b.cookies {
		req.AddCookie(cookie)
	}

	return req, nil
}
