// Package goroutine launches goroutines that log instead of crashing on panic.
package goroutine

import (
	"fmt"
	"runtime/debug"

	"github.com/rolegate/rolegate/internal/shared/logger"
)

// SafeGo runs fn in a new goroutine and recovers any panic it raises.
func SafeGo(log logger.Interface, name string, fn func()) {
	go Run(log, name, fn)
}

// Run calls fn on the current goroutine with the same panic recovery as SafeGo.
func Run(log logger.Interface, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("goroutine panicked",
				"goroutine", name,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
}
