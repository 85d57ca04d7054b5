package recommend

import (
	"sync/atomic"
	"time"
)

// Live holds the engine currently serving queries. Readers always see a
// complete engine; Swap replaces it in one step.
type Live struct {
	current atomic.Pointer[Engine]
	version atomic.Int64
	swapped atomic.Int64 // unix nanos of the last swap
	onSwap  []func(*Engine)
}

// NewLive wraps an initial engine.
func NewLive(e *Engine) *Live {
	l := &Live{}
	l.current.Store(e)
	l.version.Store(1)
	l.swapped.Store(time.Now().UnixNano())
	return l
}

// OnSwap registers a callback run after every Swap. Register callbacks before
// the Live is shared.
func (l *Live) OnSwap(fn func(*Engine)) {
	l.onSwap = append(l.onSwap, fn)
}

// Engine returns the current engine.
func (l *Live) Engine() *Engine {
	return l.current.Load()
}

// Version increments on every swap.
func (l *Live) Version() int64 {
	return l.version.Load()
}

// SwappedAt returns when the current engine was installed.
func (l *Live) SwappedAt() time.Time {
	return time.Unix(0, l.swapped.Load())
}

// Swap installs a new engine and returns the previous one.
func (l *Live) Swap(e *Engine) *Engine {
	old := l.current.Swap(e)
	l.version.Add(1)
	l.swapped.Store(time.Now().UnixNano())
	for _, fn := range l.onSwap {
		fn(e)
	}
	return old
}
