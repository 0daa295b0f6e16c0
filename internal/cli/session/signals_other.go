//go:build !unix

package session

// NewVisibilitySource returns a source that never fires; job control signals
// do not exist on this platform.
func NewVisibilitySource() Source {
	return NewBus()
}
