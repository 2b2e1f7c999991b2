package health

import (
	"errors"
	"strings"
)

// MultiChecker reports healthy only when every registered Checker does.
type MultiChecker struct {
	checkers []Checker
}

func NewMultiChecker(checkers ...Checker) *MultiChecker {
	return &MultiChecker{checkers: checkers}
}

// Add registers a further Checker. Register all checkers before serving.
func (mc *MultiChecker) Add(checker Checker) {
	mc.checkers = append(mc.checkers, checker)
}

// Check runs every registered checker and folds their failures into a
// single error, one reason per line.
func (mc *MultiChecker) Check() error {
	var failures []string
	for _, checker := range mc.checkers {
		if err := checker.Check(); err != nil {
			failures = append(failures, err.Error())
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return errors.New(strings.Join(failures, "\n"))
}
