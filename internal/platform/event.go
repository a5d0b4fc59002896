package platform

import "fmt"

// EventKind classifies an event pulled from the display.
type EventKind int

const (
	EventOther EventKind = iota
	EventKeyPress
	EventKeyRelease
	EventButtonPress
	EventButtonRelease
	EventMotion
	EventEnter
	EventLeave
	EventFocusIn
	EventFocusOut
	EventExpose
	EventVisibility
	EventMap
	EventUnmap
	EventConfigure
	EventDestroy
	EventProperty
	EventColormap
	EventClientMessage
	// EventError carries an asynchronous protocol error.
	EventError
)

var eventKindNames = map[EventKind]string{
	EventOther:         "Other",
	EventKeyPress:      "KeyPress",
	EventKeyRelease:    "KeyRelease",
	EventButtonPress:   "ButtonPress",
	EventButtonRelease: "ButtonRelease",
	EventMotion:        "MotionNotify",
	EventEnter:         "EnterNotify",
	EventLeave:         "LeaveNotify",
	EventFocusIn:       "FocusIn",
	EventFocusOut:      "FocusOut",
	EventExpose:        "Expose",
	EventVisibility:    "VisibilityNotify",
	EventMap:           "MapNotify",
	EventUnmap:         "UnmapNotify",
	EventConfigure:     "ConfigureNotify",
	EventDestroy:       "DestroyNotify",
	EventProperty:      "PropertyNotify",
	EventColormap:      "ColormapNotify",
	EventClientMessage: "ClientMessage",
	EventError:         "Error",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is a backend-neutral view of a display event. MessageType, Format
// and Data are only meaningful for EventClientMessage.
type Event struct {
	Kind        EventKind
	Window      WindowID
	MessageType Atom
	Format      byte
	Data        [5]uint32
	// Detail is a human readable summary (key name, pointer position, error text).
	Detail string
}

// ClientMessage builds a 32-bit client message event.
func ClientMessage(win WindowID, msgType Atom, data ...uint32) Event {
	ev := Event{Kind: EventClientMessage, Window: win, MessageType: msgType, Format: 32}
	copy(ev.Data[:], data)
	return ev
}
