package apitest

import (
	"bytes"
	"io"
	"net/http"

	"github.com/stretchr/testify/mock"
)

type HTTPClientMock struct {
	mock.Mock
}

func (m *HTTPClientMock) Do(request *http.Request) (*http.Response, error) {
	result := m.Called(request)

	resp, _ := result.Get(0).(*http.Response)

	return resp, result.Error(1)
}

func MakeResponse(statusCode int, bodyContents string) *http.Response {
	return &http.Response{
		Body:       io.NopCloser(bytes.NewReader([]byte(bodyContents))),
		StatusCode: statusCode,
		Header:     http.Header{},
	}
}

type RequestMatcher struct {
	ExpectedMethod       string
	ExpectedURL          string
	ExpectedHeader       http.Header
	ExpectedBodyContents *string
}

func (m RequestMatcher) Matches(request *http.Request) bool {
	if request.Method != m.ExpectedMethod {
		return false
	}

	if request.URL.String() != m.ExpectedURL {
		return false
	}

	if len(request.Header) != len(m.ExpectedHeader) {
		return false
	}

	for expectedKey, expectedValues := range m.ExpectedHeader {
		values, ok := request.Header[expectedKey]
		if !ok {
			return false
		}

		if len(values) != len(expectedValues) {
			return false
		}

		for i, expectedValue := range expectedValues {
			if values[i] != expectedValue {
				return false
			}
		}
	}

	if m.ExpectedBodyContents == nil {
		return request.Body == nil || request.Body == http.NoBody
	}

	// GetBody leaves request.Body unread, the matcher may run more than once.
	if request.GetBody == nil {
		return false
	}

	body, err := request.GetBody()
	if err != nil {
		return false
	}
	defer body.Close()

	bodyData, err := io.ReadAll(body)
	if err != nil {
		return false
	}

	return string(bodyData) == *m.ExpectedBodyContents
}

func (m RequestMatcher) ToFunc() func(*http.Request) bool {
	return func(request *http.Request) bool {
		return m.Matches(request)
	}
}
