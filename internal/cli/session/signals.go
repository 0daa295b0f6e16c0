package session

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
)

// Signal is an external event that may prompt a session re-check
type Signal int

const (
	// SignalVisible fires when the client comes back into view
	SignalVisible Signal = iota
	// SignalFocus fires when the user turns their attention to the client
	SignalFocus
)

func (s Signal) String() string {
	switch s {
	case SignalVisible:
		return "visible"
	case SignalFocus:
		return "focus"
	default:
		return fmt.Sprintf("Signal(%d)", int(s))
	}
}

// Source delivers signals to subscribed handlers
type Source interface {
	Subscribe(handler func(Signal)) (unsubscribe func())
}

// Bus is a Source fed by explicit Emit calls
type Bus struct {
	mu       sync.Mutex
	next     int
	handlers map[int]func(Signal)
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{handlers: make(map[int]func(Signal))}
}

func (b *Bus) Subscribe(handler func(Signal)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.handlers[id] = handler
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}
}

// Emit delivers sig to every current subscriber, synchronously
func (b *Bus) Emit(sig Signal) {
	b.mu.Lock()
	handlers := make([]func(Signal), 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(sig)
	}
}

// OSSignalSource maps an operating system signal to a Signal
type OSSignalSource struct {
	OSSignal os.Signal
	Signal   Signal
}

func (s OSSignalSource) Subscribe(handler func(Signal)) func() {
	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(ch, s.OSSignal)

	go func() {
		for {
			select {
			case <-ch:
				handler(s.Signal)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
		})
	}
}

// LineSource emits a Signal for every line read from R, e.g. the user
// pressing Enter in a terminal. Only one subscriber should read a given R.
type LineSource struct {
	R      io.Reader
	Signal Signal
}

func (s LineSource) Subscribe(handler func(Signal)) func() {
	var (
		mu      sync.Mutex
		stopped bool
	)

	go func() {
		scanner := bufio.NewScanner(s.R)
		for scanner.Scan() {
			mu.Lock()
			if stopped {
				mu.Unlock()
				return
			}
			mu.Unlock()
			handler(s.Signal)
		}
	}()

	return func() {
		mu.Lock()
		stopped = true
		mu.Unlock()
	}
}
