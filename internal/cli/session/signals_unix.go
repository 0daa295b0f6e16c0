//go:build unix

package session

import "syscall"

// NewVisibilitySource fires SignalVisible when the process is resumed, which
// is what a shell does when a backgrounded job is brought to the foreground.
func NewVisibilitySource() Source {
	return OSSignalSource{OSSignal: syscall.SIGCONT, Signal: SignalVisible}
}
