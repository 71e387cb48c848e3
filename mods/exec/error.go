package exec

import (
	"github.com/pkg/errors"
)

// Kind classifies a setup failure.
type Kind int

const (
	KindOK Kind = iota
	KindUsage
	KindDescriptor
	KindLimit
	KindFilterUnavailable
	KindFilter
	KindLaunch
	KindStageOrder
	KindSetup
)

var ErrorString = []string{
	"OK",
	"usage error",
	"descriptor setup failed",
	"resource limit setup failed",
	"seccomp filter unavailable, the sandbox cannot be enforced",
	"seccomp filter setup failed",
	"launch failed",
	"stage out of order",
	"setup failed",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(ErrorString) {
		return "unknown error"
	}
	return ErrorString[k]
}

type Error struct {
	Kind   Kind
	Helper string
	Err    error
}

func (e *Error) Error() string {
	msg := "sandbox: " + e.Kind.String()
	if len(e.Helper) != 0 {
		msg += ", " + e.Helper
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Cause() error  { return e.Err }
func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, helper string, err error) *Error {
	return &Error{Kind: kind, Helper: helper, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindOK
// for nil. Errors from outside this package are reported as KindSetup;
// usage problems are always marked with UsageError.
func KindOf(err error) Kind {
	if err == nil {
		return KindOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindSetup
}

// UsageError marks err as a problem with the invocation.
func UsageError(helper string, err error) error {
	return newError(KindUsage, helper, err)
}
