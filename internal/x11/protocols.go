package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"
)

// InternAtom interns name, going through the xgbutil atom cache so each
// name costs at most one round trip per connection.
func (c *Connection) InternAtom(name string) (xproto.Atom, error) {
	atom, err := xprop.Atm(c.XUtil, name)
	if err != nil {
		return 0, fmt.Errorf("failed to intern %s: %w", name, err)
	}
	return atom, nil
}

// SetProtocols replaces the window's WM_PROTOCOLS property.
func (c *Connection) SetProtocols(win xproto.Window, protocols []xproto.Atom) error {
	data := make([]uint, len(protocols))
	for i, atom := range protocols {
		data[i] = uint(atom)
	}
	if err := xprop.ChangeProp32(c.XUtil, win, "WM_PROTOCOLS", "ATOM", data...); err != nil {
		return fmt.Errorf("failed to set WM_PROTOCOLS: %w", err)
	}
	return nil
}

// SendClientMessage delivers a 32-bit client message to the client that
// owns win, the same way a window manager delivers WM_PROTOCOLS messages.
func (c *Connection) SendClientMessage(win xproto.Window, msgType xproto.Atom, data [5]uint32) error {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   msgType,
		Data:   xproto.ClientMessageDataUnionData32New(data[:]),
	}

	// An empty event mask sends the event to the window's creator.
	return xproto.SendEventChecked(
		c.Conn(),
		false,
		win,
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
}
