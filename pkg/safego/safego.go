// Package safego launches background goroutines that survive panics.
package safego

import "log/slog"

// Go runs fn in a new goroutine. A panic in fn is recovered and logged
// instead of taking the process down.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("recovered panic in background goroutine", slog.Any("panic", r))
			}
		}()
		fn()
	}()
}
