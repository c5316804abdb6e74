// Copyright (c) 2025 The bdk-go developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"github.com/lightningnetwork/lnd/fn/v2"
)

// Progress receives scan progress events from a chain backend.  The
// percentage is in the range [0, 100] and the message, when present, is a
// human readable description of the current scan phase.
type Progress interface {
	Update(progress float32, message fn.Option[string])
}

// noopProgress discards all events.
type noopProgress struct{}

func (noopProgress) Update(float32, fn.Option[string]) {}

// NoopProgress returns a Progress that discards every event, for callers
// that do not care about scan progress.
func NoopProgress() Progress {
	return noopProgress{}
}

// ProgressFunc adapts a plain function to the Progress interface.
type ProgressFunc func(progress float32, message fn.Option[string])

// Update calls the adapted function.
func (f ProgressFunc) Update(progress float32, message fn.Option[string]) {
	f(progress, message)
}

// ProgressBridge forwards scan progress events from a backend to an
// application supplied observer.  Each event is forwarded exactly once,
// in the order produced.  A panicking observer only loses its own event:
// the panic is absorbed and logged, and later events are still
// forwarded.
type ProgressBridge struct {
	observer Progress
}

// NewProgressBridge returns a bridge forwarding to the given observer.
// A nil observer behaves like NoopProgress.
func NewProgressBridge(observer Progress) *ProgressBridge {
	if observer == nil {
		observer = NoopProgress()
	}
	return &ProgressBridge{observer: observer}
}

// Update forwards one event to the observer.
func (b *ProgressBridge) Update(progress float32,
	message fn.Option[string]) {

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Progress observer panicked on %.2f%%: %v",
				progress, r)
		}
	}()

	b.observer.Update(progress, message)
}
