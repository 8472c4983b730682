package core

import "sync"

// System internal event codes. Application should use codes beyond 255.
type EventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01
	// Keyboard key pressed.
	EVENT_CODE_KEY_PRESSED EventCode = 0x02
	// Keyboard key released.
	EVENT_CODE_KEY_RELEASED EventCode = 0x03
	// Mouse button pressed.
	EVENT_CODE_BUTTON_PRESSED EventCode = 0x04
	// Mouse button released.
	EVENT_CODE_BUTTON_RELEASED EventCode = 0x05
	// Mouse moved.
	EVENT_CODE_MOUSE_MOVED EventCode = 0x06
	// Mouse wheel.
	EVENT_CODE_MOUSE_WHEEL EventCode = 0x07
	// Resized/resolution changed from the OS.
	EVENT_CODE_RESIZED EventCode = 0x08

	MAX_EVENT_CODE EventCode = 0xFF
)

type KeyEvent struct {
	KeyCode KeyCode
}

type MouseEvent struct {
	Button Button
	PosX   uint16
	PosY   uint16
	Scroll int8
}

type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
}

type EventContext struct {
	Type EventCode
	Data interface{}
}

type FnOnEvent func(context EventContext)

type eventSystemState struct {
	mu        sync.RWMutex
	listeners map[EventCode][]FnOnEvent
	queue     chan EventContext
}

var onceEvent sync.Once
var eventState *eventSystemState = nil

func EventSystemInitialize() bool {
	onceEvent.Do(func() {
		eventState = &eventSystemState{
			listeners: make(map[EventCode][]FnOnEvent),
			queue:     make(chan EventContext, 256),
		}
	})
	return true
}

func EventSystemShutdown() error {
	if eventState == nil {
		return nil
	}
	eventState.mu.Lock()
	eventState.listeners = make(map[EventCode][]FnOnEvent)
	eventState.mu.Unlock()
	return nil
}

// EventRegister subscribes the callback to events fired with the given code.
func EventRegister(code EventCode, onEvent FnOnEvent) {
	if eventState == nil {
		return
	}
	eventState.mu.Lock()
	eventState.listeners[code] = append(eventState.listeners[code], onEvent)
	eventState.mu.Unlock()
}

// EventFire enqueues the event for processing. It never blocks the caller;
// if the queue is full the event is dropped with a warning.
func EventFire(context EventContext) {
	if eventState == nil {
		return
	}
	select {
	case eventState.queue <- context:
	default:
		LogWarn("event queue full, dropping event with code %d", context.Type)
	}
}

// ProcessEvents drains the queue and dispatches every pending event to its
// listeners on the calling goroutine. The engine calls it once per frame, so
// listeners may touch frame state without synchronization. Events fired by a
// listener are dispatched in the same drain.
func ProcessEvents() {
	if eventState == nil {
		return
	}
	for {
		select {
		case ctx := <-eventState.queue:
			eventState.mu.RLock()
			callbacks := eventState.listeners[ctx.Type]
			eventState.mu.RUnlock()
			for _, cb := range callbacks {
				cb(ctx)
			}
		default:
			return
		}
	}
}
