package checkout

import "errors"

// ErrEmptySession is returned by Finish and Cancel when nothing is staged
// for the register.
var ErrEmptySession = errors.New("scan session is empty")

// ValidationError reports malformed scan input. Nothing is mutated when
// one is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }
