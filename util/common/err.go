package common

import (
	"errors"
	"fmt"

	"github.com/usjp/campus-panel/logger"
)

func NewErrorf(format string, a ...any) error {
	msg := fmt.Sprintf(format, a...)
	return errors.New(msg)
}

// Combine joins the non-nil errors, returning nil when there are none.
func Combine(errs ...error) error {
	return errors.Join(errs...)
}

// Recover logs a panic of the calling goroutine. It must be deferred
// directly.
func Recover(msg string) any {
	panicErr := recover()
	if panicErr != nil {
		if msg != "" {
			logger.Error(msg, "panic:", panicErr)
		}
	}
	return panicErr
}
