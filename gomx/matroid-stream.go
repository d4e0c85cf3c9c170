package gomx

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// MatroidStream is a finite pipeline of Matroids flowing through a channel.
//
// A consumer that stops pulling before the stream is drained must call Halt
// so the producer can stop and close the Outlet instead of blocking forever.
type MatroidStream struct {
	Outlet chan *Matroid

	halt     chan struct{}
	haltOnce sync.Once
}

func newMatroidStream(buffered int) *MatroidStream {
	return &MatroidStream{
		Outlet: make(chan *Matroid, buffered),
		halt:   make(chan struct{}),
	}
}

func NewMatroidStream() *MatroidStream {
	return newMatroidStream(0)
}

// StreamMatroid returns a stream that emits a copy of the given Matroid and closes.
func StreamMatroid(m *Matroid) *MatroidStream {
	next := NewMatroidStream()

	go func() {
		next.TryPush(m.Clone())
		next.Close()
	}()

	return next
}

func (stream *MatroidStream) Close() {
	if stream.Outlet != nil {
		close(stream.Outlet)
	}
}

// Halt tells the stream's producer to stop early; the producer then closes
// the Outlet after at most one further matroid. Halt may be called more than
// once and regardless of whether the stream has already drained.
func (stream *MatroidStream) Halt() {
	stream.haltOnce.Do(func() {
		close(stream.halt)
	})
}

// TryPush forwards m, returning false if the stream has been halted.
// Ownership of m transfers to the stream on success.
func (stream *MatroidStream) TryPush(m *Matroid) bool {
	select {
	case stream.Outlet <- m:
		return true
	case <-stream.halt:
		return false
	}
}

func (stream *MatroidStream) PushMatroid(m *Matroid) {
	stream.TryPush(m.Clone())
}

func (stream *MatroidStream) PullMatroid() *Matroid {
	return <-stream.Outlet
}

// PullAll drains the stream, returning how many matroids passed through.
func (stream *MatroidStream) PullAll() int {
	count := 0
	for range stream.Outlet {
		count++
	}
	return count
}

// Print writes each passing matroid to out and forwards it downstream.
func (stream *MatroidStream) Print(out io.Writer, opts PrintOpts) *MatroidStream {
	next := newMatroidStream(1)

	go func() {
		buf := strings.Builder{}
		buf.Grow(256)

		count := 0
		halted := false
		for m := range stream.Outlet {
			if halted {
				continue
			}
			if len(opts.Label) > 0 {
				buf.WriteString(opts.Label)
				buf.WriteByte(',')
			}

			count++
			fmt.Fprintf(&buf, "%06d,", count)
			if opts.Indicator {
				buf.WriteString(m.Encode().String())
			}
			if opts.Bases {
				buf.WriteByte(',')
				buf.WriteString(m.String())
			}
			buf.WriteByte('\n')
			out.Write([]byte(buf.String()))
			buf.Reset()
			if !next.TryPush(m) {
				halted = true
				stream.Halt()
			}
		}
		next.Close()
	}()

	return next
}

// AddTo forwards only the matroids whose isomorphism class was newly added to target.
func (stream *MatroidStream) AddTo(target CatalogAdder) *MatroidStream {
	next := newMatroidStream(1)

	go func() {
		halted := false
		for m := range stream.Outlet {
			if halted {
				continue
			}
			if target.TryAddMatroid(m) {
				if !next.TryPush(m) {
					halted = true
					stream.Halt()
				}
			}
		}
		next.Close()
	}()

	return next
}

// SelectFromCatalog streams every catalog matroid matching the selector.
func SelectFromCatalog(cat Catalog, sel MatroidSelector) *MatroidStream {
	next := newMatroidStream(1)

	onHit := make(chan *Matroid, 4)

	go func() {
		cat.Select(sel, onHit)
		close(onHit)
	}()

	go func() {
		// Select can't be interrupted, so a halted stream drains onHit dry
		// rather than leaving Select blocked on the channel.
		halted := false
		for m := range onHit {
			if !halted && !next.TryPush(m) {
				halted = true
			}
		}
		next.Close()
	}()

	return next
}
