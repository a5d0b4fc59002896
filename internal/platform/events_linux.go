//go:build linux

package platform

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
)

func translateEvent(xu *xgbutil.XUtil, ev xgb.Event) Event {
	switch e := ev.(type) {
	case xproto.ClientMessageEvent:
		out := Event{
			Kind:        EventClientMessage,
			Window:      WindowID(e.Window),
			MessageType: Atom(e.Type),
			Format:      e.Format,
		}
		if e.Format == 32 {
			copy(out.Data[:], e.Data.Data32)
		}
		return out
	case xproto.KeyPressEvent:
		return Event{Kind: EventKeyPress, Window: WindowID(e.Event), Detail: keyName(xu, e.State, e.Detail)}
	case xproto.KeyReleaseEvent:
		return Event{Kind: EventKeyRelease, Window: WindowID(e.Event), Detail: keyName(xu, e.State, e.Detail)}
	case xproto.ButtonPressEvent:
		return Event{Kind: EventButtonPress, Window: WindowID(e.Event), Detail: fmt.Sprintf("button %d at %d,%d", e.Detail, e.EventX, e.EventY)}
	case xproto.ButtonReleaseEvent:
		return Event{Kind: EventButtonRelease, Window: WindowID(e.Event), Detail: fmt.Sprintf("button %d at %d,%d", e.Detail, e.EventX, e.EventY)}
	case xproto.MotionNotifyEvent:
		return Event{Kind: EventMotion, Window: WindowID(e.Event), Detail: fmt.Sprintf("%d,%d", e.EventX, e.EventY)}
	case xproto.EnterNotifyEvent:
		return Event{Kind: EventEnter, Window: WindowID(e.Event)}
	case xproto.LeaveNotifyEvent:
		return Event{Kind: EventLeave, Window: WindowID(e.Event)}
	case xproto.FocusInEvent:
		return Event{Kind: EventFocusIn, Window: WindowID(e.Event)}
	case xproto.FocusOutEvent:
		return Event{Kind: EventFocusOut, Window: WindowID(e.Event)}
	case xproto.ExposeEvent:
		return Event{Kind: EventExpose, Window: WindowID(e.Window), Detail: fmt.Sprintf("%dx%d+%d+%d count=%d", e.Width, e.Height, e.X, e.Y, e.Count)}
	case xproto.VisibilityNotifyEvent:
		return Event{Kind: EventVisibility, Window: WindowID(e.Window), Detail: fmt.Sprintf("state %d", e.State)}
	case xproto.MapNotifyEvent:
		return Event{Kind: EventMap, Window: WindowID(e.Window)}
	case xproto.UnmapNotifyEvent:
		return Event{Kind: EventUnmap, Window: WindowID(e.Window)}
	case xproto.ConfigureNotifyEvent:
		return Event{Kind: EventConfigure, Window: WindowID(e.Window), Detail: fmt.Sprintf("%dx%d+%d+%d", e.Width, e.Height, e.X, e.Y)}
	case xproto.DestroyNotifyEvent:
		return Event{Kind: EventDestroy, Window: WindowID(e.Window)}
	case xproto.PropertyNotifyEvent:
		return Event{Kind: EventProperty, Window: WindowID(e.Window), Detail: fmt.Sprintf("atom %d", e.Atom)}
	case xproto.ColormapNotifyEvent:
		return Event{Kind: EventColormap, Window: WindowID(e.Window)}
	default:
		return Event{Kind: EventOther, Detail: ev.String()}
	}
}

// keyName renders a key event as e.g. "control-q".
func keyName(xu *xgbutil.XUtil, state uint16, code xproto.Keycode) string {
	name := keybind.LookupString(xu, state, code)
	if name == "" {
		return fmt.Sprintf("keycode %d", code)
	}
	if mods := keybind.ModifierString(state); mods != "" {
		return mods + "-" + name
	}
	return name
}
