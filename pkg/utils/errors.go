package utils

import (
	"fmt"
	"runtime/debug"

	"github.com/LICODX/rnr-poh/pkg/logging"
)

// PanicError carries a recovered panic value and the stack where it happened.
type PanicError struct {
	Component string
	Value     interface{}
	Stack     []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("[%s] panic: %v", e.Component, e.Value)
}

// RecoverFromPanic must be deferred. It logs the panic and, when errp is
// non-nil, stores a *PanicError in it.
func RecoverFromPanic(component string, errp *error) {
	r := recover()
	if r == nil {
		return
	}
	pe := &PanicError{Component: component, Value: r, Stack: debug.Stack()}
	logging.WithField("component", component).ErrorWithFields("panic recovered", map[string]interface{}{
		"panic": fmt.Sprint(r),
		"stack": string(pe.Stack),
	})
	if errp != nil {
		*errp = pe
	}
}

// SafeCheck evaluates a predicate supplied by a collaborator. A panic inside
// check counts as a false verdict.
func SafeCheck(component string, check func() bool) (ok bool) {
	var err error
	defer func() {
		if err != nil {
			ok = false
		}
	}()
	defer RecoverFromPanic(component, &err)
	return check()
}
