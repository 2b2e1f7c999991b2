package health

import "errors"

type StartupCompleteChecker struct {
	complete bool
}

func NewStartupCompleteChecker() *StartupCompleteChecker {
	return &StartupCompleteChecker{complete: false}
}

func (checker *StartupCompleteChecker) Check() error {
	if checker.complete {
		return nil
	}
	return errors.New("startup not complete")
}

func (checker *StartupCompleteChecker) MarkComplete() {
	checker.complete = true
}
