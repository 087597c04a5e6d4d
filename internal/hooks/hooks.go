// Package hooks implements named lifecycle channels.
//
// A Context collects callbacks under hook names and invokes them in
// registration order. Registration is only legal while the context is the
// current (top) entry of the Stack it was opened on; setup code receives the
// context explicitly and registers everything during one synchronous call.
package hooks

import (
	"errors"
	"fmt"
)

// Name identifies a lifecycle channel.
type Name string

const (
	BeforeAddToView      Name = "beforeAddToView"
	AddedToView          Name = "addedToView"
	BeforeRemoveFromView Name = "beforeRemoveToView"
	RemovedFromView      Name = "removedToView"
	BeforeFocus          Name = "beforeFocus"
	Focused              Name = "focused"
	UnFocused            Name = "unFocused"
	ViewMouseEvent       Name = "viewMouseEvent"
	WidgetStateChanged   Name = "widgetStateChanged"
	BeforeDelete         Name = "beforeDelete"
	Deleted              Name = "deleted"
)

var (
	ErrOutsideContext = errors.New("cannot register hook outside a context")
	ErrUnbalanced     = errors.New("context stack is unbalanced")
)

// Outcome is what a hook callback asks of the transition that invoked it.
type Outcome int

const (
	Proceed Outcome = iota
	Veto
	Error
)

func (o Outcome) String() string {
	switch o {
	case Proceed:
		return "proceed"
	case Veto:
		return "veto"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result is returned by every hook callback.
type Result struct {
	Outcome Outcome
	Err     error
}

// OK lets the transition continue.
func OK() Result { return Result{Outcome: Proceed} }

// Reject vetoes the transition. A veto is not an error.
func Reject() Result { return Result{Outcome: Veto} }

// Fail aborts the transition and reports err.
func Fail(err error) Result { return Result{Outcome: Error, Err: err} }

// Decide folds the results of one invocation. ok is false when any callback
// vetoed or failed; err joins the failures.
func Decide(results []Result) (ok bool, err error) {
	ok = true
	var errs []error
	for _, r := range results {
		switch r.Outcome {
		case Veto:
			ok = false
		case Error:
			ok = false
			if r.Err != nil {
				errs = append(errs, r.Err)
			}
		}
	}
	return ok, errors.Join(errs...)
}

// Func is a hook callback.
type Func[A any] func(A) Result
