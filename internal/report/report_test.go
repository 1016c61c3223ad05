package report

import (
	"errors"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockHub struct {
	mock.Mock
}

func (m *MockHub) CaptureException(exception error) *sentry.EventID {
	args := m.Called(exception)
	return args.Get(0).(*sentry.EventID)
}

func (m *MockHub) WithScope(callback func(scope *sentry.Scope)) {
	m.Called(callback)
	callback(sentry.NewScope())
}

func TestCaptureCommandError(t *testing.T) {
	tests := []struct {
		name    string
		command string
		err     error
	}{
		{name: "fetch error", command: "fetch-data ggsa", err: errors.New("csrf verification failed")},
		{name: "pipeline error", command: "build-prices", err: errors.New("no such file")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := new(MockHub)
			hub.On("WithScope", mock.Anything)
			hub.On("CaptureException", tt.err).Return(new(sentry.EventID))

			CaptureCommandError(tt.command, "run-id", hub, tt.err)

			hub.AssertExpectations(t)
		})
	}
}

func TestInit_WithoutDSN(t *testing.T) {
	enabled, err := Init("", "test")

	assert.NoError(t, err)
	assert.False(t, enabled)
}

func TestInit_InvalidDSN(t *testing.T) {
	enabled, err := Init("not a dsn", "test")

	assert.Error(t, err)
	assert.False(t, enabled)
}
