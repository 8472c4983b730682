package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessEventsDispatchesOnCallingGoroutine(t *testing.T) {
	require.True(t, EventSystemInitialize())

	const code EventCode = 0x100
	hits := 0
	EventRegister(code, func(ctx EventContext) {
		hits++
	})

	EventFire(EventContext{Type: code})
	assert.Equal(t, 0, hits, "firing must only enqueue")

	// Listener mutates plain state read right after the drain. Safe only
	// because dispatch happens on the caller, never a background goroutine.
	ProcessEvents()
	assert.Equal(t, 1, hits)

	ProcessEvents()
	assert.Equal(t, 1, hits, "queue must be empty after a drain")
}

func TestProcessEventsDrainsChainedFires(t *testing.T) {
	require.True(t, EventSystemInitialize())

	const first EventCode = 0x110
	const second EventCode = 0x111
	sawSecond := false
	EventRegister(first, func(ctx EventContext) {
		EventFire(EventContext{Type: second})
	})
	EventRegister(second, func(ctx EventContext) {
		sawSecond = true
	})

	// A quit fired from inside a key listener must land in the same frame.
	EventFire(EventContext{Type: first})
	ProcessEvents()
	assert.True(t, sawSecond)
}

func TestProcessEventsDeliversPayload(t *testing.T) {
	require.True(t, EventSystemInitialize())

	const code EventCode = 0x120
	var got *MouseEvent
	EventRegister(code, func(ctx EventContext) {
		got, _ = ctx.Data.(*MouseEvent)
	})

	EventFire(EventContext{Type: code, Data: &MouseEvent{Scroll: -2}})
	ProcessEvents()
	require.NotNil(t, got)
	assert.Equal(t, int8(-2), got.Scroll)
}
