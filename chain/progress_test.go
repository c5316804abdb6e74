// Copyright (c) 2025 The bdk-go developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"testing"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
)

type progressEvent struct {
	progress float32
	message  fn.Option[string]
}

type recordingObserver struct {
	events  []progressEvent
	panicAt fn.Option[float32]
}

func (o *recordingObserver) Update(progress float32,
	message fn.Option[string]) {

	if o.panicAt.IsSome() && o.panicAt.UnsafeFromSome() == progress {
		panic("observer failure")
	}
	o.events = append(o.events, progressEvent{progress, message})
}

// TestProgressBridgeForwardsInOrder asserts every event reaches the
// observer exactly once, in emission order.
func TestProgressBridgeForwardsInOrder(t *testing.T) {
	t.Parallel()

	observer := &recordingObserver{panicAt: fn.None[float32]()}
	bridge := NewProgressBridge(observer)

	bridge.Update(0, fn.Some("starting"))
	bridge.Update(50, fn.None[string]())
	bridge.Update(100, fn.Some("done"))

	require.Equal(t, []progressEvent{
		{0, fn.Some("starting")},
		{50, fn.None[string]()},
		{100, fn.Some("done")},
	}, observer.events)
}

// TestProgressBridgeAbsorbsPanic asserts a panicking observer neither
// crashes the scan nor blocks later events.
func TestProgressBridgeAbsorbsPanic(t *testing.T) {
	t.Parallel()

	observer := &recordingObserver{panicAt: fn.Some(float32(50))}
	bridge := NewProgressBridge(observer)

	require.NotPanics(t, func() {
		bridge.Update(0, fn.None[string]())
		bridge.Update(50, fn.None[string]())
		bridge.Update(100, fn.None[string]())
	})

	require.Equal(t, []progressEvent{
		{0, fn.None[string]()},
		{100, fn.None[string]()},
	}, observer.events)
}

func TestProgressBridgeNilObserver(t *testing.T) {
	t.Parallel()

	bridge := NewProgressBridge(nil)
	require.NotPanics(t, func() {
		bridge.Update(25, fn.Some("quiet"))
	})
}

func TestProgressFunc(t *testing.T) {
	t.Parallel()

	var got []progressEvent
	p := ProgressFunc(func(progress float32, message fn.Option[string]) {
		got = append(got, progressEvent{progress, message})
	})
	p.Update(75, fn.Some("phase"))

	require.Equal(t, []progressEvent{{75, fn.Some("phase")}}, got)
}
