package logging

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const stacktraceField = "stacktrace"

// stackTracer and causer are unexported by pkg/errors but documented as part
// of its stable interface.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

type causer interface {
	Cause() error
}

// WithStacktrace adds err to the entry, plus a stack trace when some error
// in err's cause chain carries one.
func WithStacktrace(logger *logrus.Entry, err error) *logrus.Entry {
	logger = logger.WithError(err)
	if stack := ExtractStack(err); stack != nil {
		logger = logger.WithField(stacktraceField, stack)
	}
	return logger
}

// ExtractStack returns the first stack trace found while walking err's cause
// chain, or nil if no error in the chain carries one.
func ExtractStack(err error) errors.StackTrace {
	for err != nil {
		if withStack, ok := err.(stackTracer); ok {
			return withStack.StackTrace()
		}
		cause, ok := err.(causer)
		if !ok {
			return nil
		}
		err = cause.Cause()
	}
	return nil
}
