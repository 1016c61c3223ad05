package report

import (
	"time"

	"github.com/getsentry/sentry-go"
)

const flushTimeout = 2 * time.Second

type sentryHub interface {
	CaptureException(exception error) *sentry.EventID
	WithScope(callback func(scope *sentry.Scope))
}

// Init configures the global Sentry client. It is a no-op without a DSN.
func Init(dsn string, environment string) (bool, error) {
	if dsn == "" {
		return false, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		AttachStacktrace: true,
	})
	if err != nil {
		return false, err
	}

	return true, nil
}

func Flush() {
	sentry.Flush(flushTimeout)
}

func CurrentHub() *sentry.Hub {
	return sentry.CurrentHub()
}

// CaptureCommandError reports err under the command name instead of the Go
// error type, which is usually *errors.errorString.
func CaptureCommandError(command string, runID string, hub sentryHub, err error) {
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("command", command)
		scope.SetTag("run_id", runID)
		scope.AddEventProcessor(func(e *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			if len(e.Exception) > 0 {
				e.Exception[len(e.Exception)-1].Type = command
			}
			return e
		})
		hub.CaptureException(err)
	})
}
