//go:build !linux

// Package udevwatch notifies a caller when the set of sound devices on the
// host may have changed. udev is Linux-specific; on other platforms Watch
// is a no-op that returns once ctx is cancelled.
package udevwatch

import "context"

// Watch blocks until ctx is done and never calls notify. Non-Linux hosts
// have no udev subsystem to watch; callers fall back to manual
// re-enumeration.
func Watch(ctx context.Context, notify func()) error {
	_ = notify
	<-ctx.Done()
	return nil
}
