package singleton

import (
	"fmt"
	"strings"
)

// Strategy selects how a Provider synchronizes construction.
type Strategy string

const (
	// DoubleChecked checks for the instance without a lock and rechecks
	// inside the critical section before constructing.
	DoubleChecked Strategy = "double_checked"
	// Synchronized takes the lock on every Get.
	Synchronized Strategy = "synchronized"
	// Eager constructs inside New.
	Eager Strategy = "eager"
)

// Strategies lists every supported strategy.
func Strategies() []Strategy {
	return []Strategy{DoubleChecked, Synchronized, Eager}
}

// ParseStrategy parses a strategy name. Empty selects DoubleChecked.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DoubleChecked, nil
	case DoubleChecked:
		return DoubleChecked, nil
	case Synchronized:
		return Synchronized, nil
	case Eager:
		return Eager, nil
	default:
		return "", fmt.Errorf("singleton: unknown strategy %q", s)
	}
}

func (s Strategy) String() string { return string(s) }

// lockFree reports whether Get may skip the lock once the instance exists.
func (s Strategy) lockFree() bool {
	return s != Synchronized
}
