//go:build linux

// Package udevwatch notifies a caller when the set of sound devices on the
// host may have changed, so the device registry can be re-enumerated. It
// never touches Channel/audio-thread state: it only ever calls the
// supplied notify function, which is expected to trigger a control-thread
// re-scan.
package udevwatch

import (
	"context"
	"time"

	"github.com/jochenvg/go-udev"
)

// debounce is the minimum interval between successive notify calls, since
// a single USB device plug/unplug can generate several udev events in
// quick succession.
const debounce = 250 * time.Millisecond

// Watch subscribes to the udev "sound" subsystem and calls notify
// (debounced) on every add/remove event, until ctx is done. It blocks
// until ctx is cancelled, so callers should run it in its own goroutine.
func Watch(ctx context.Context, notify func()) error {
	var u = udev.Udev{}
	var monitor = u.NewMonitorFromNetlink("udev")
	if err := monitor.FilterAddMatchSubsystem("sound"); err != nil {
		return err
	}

	var deviceCh, errCh, err = monitor.DeviceChan(ctx)
	if err != nil {
		return err
	}

	var lastFired time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if err != nil {
				return err
			}
		case <-deviceCh:
			var now = time.Now()
			if now.Sub(lastFired) >= debounce {
				lastFired = now
				notify()
			}
		}
	}
}
