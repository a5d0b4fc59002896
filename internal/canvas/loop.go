package canvas

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/1broseidon/pm/internal/platform"
)

type pumped struct {
	ev  platform.Event
	err error
}

type loopHandle struct {
	calls chan func()
	done  chan struct{}
}

// startPump launches the goroutine that blocks on NextEvent. It lives until
// the display is closed, so an event read while no loop is running is held
// for the next Run.
func (c *Canvas) startPump() {
	c.pumpOnce.Do(func() {
		go func() {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			for {
				ev, err := c.display.NextEvent()
				select {
				case c.events <- pumped{ev: ev, err: err}:
				case <-c.stop:
					return
				}
				if err != nil {
					return
				}
			}
		}()
	})
}

// Run dispatches events until the window manager asks the window to close,
// in which case the canvas is closed and Run returns nil. Cancelling ctx
// returns ctx.Err() and leaves the canvas open, ready for another Run.
func (c *Canvas) Run(ctx context.Context) error {
	c.mustBeRunnable("Run")
	return c.runLoop(ctx, c.beginLoop())
}

// Start runs the event loop on a new goroutine, which becomes the owner of
// the canvas until the loop ends. The returned channel receives the loop's
// result and is then closed.
func (c *Canvas) Start(ctx context.Context) <-chan error {
	c.mustBeRunnable("Start")
	l := c.beginLoop()
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		errc <- c.runLoop(ctx, l)
	}()
	return errc
}

func (c *Canvas) mustBeRunnable(op string) {
	switch c.phase {
	case phaseOpen:
	case phaseCreated:
		misuse("%s before Open", op)
	case phaseRunning:
		misuse("%s while already running", op)
	case phaseClosed:
		misuse("%s on closed canvas", op)
	}
}

// beginLoop marks the canvas running and publishes the handle Do queues on.
func (c *Canvas) beginLoop() *loopHandle {
	c.phase = phaseRunning
	l := &loopHandle{calls: make(chan func()), done: make(chan struct{})}
	c.loopMu.Lock()
	c.loop = l
	c.looped = true
	c.loopMu.Unlock()
	return l
}

func (c *Canvas) runLoop(ctx context.Context, l *loopHandle) error {
	defer func() {
		c.loopMu.Lock()
		c.loop = nil
		c.loopMu.Unlock()
		close(l.done)
	}()

	c.startPump()
	c.logger.Debug("event loop started")

	for {
		select {
		case <-ctx.Done():
			if c.phase == phaseRunning {
				c.phase = phaseOpen
			}
			c.logger.Debug("event loop cancelled", "error", ctx.Err())
			return ctx.Err()

		case call := <-l.calls:
			call()

		case p := <-c.events:
			if p.err != nil {
				return c.lost(p.err)
			}
			if c.isCloseRequest(p.ev) {
				c.logger.Info("close requested by window manager", "window", c.window)
				c.Close()
				return nil
			}
			c.dispatch(p.ev)
		}

		if c.phase == phaseClosed {
			c.logger.Debug("event loop ended by close")
			return nil
		}
	}
}

// lost handles a failed event read. The connection is gone, so only the
// local side of the teardown runs.
func (c *Canvas) lost(err error) error {
	c.rc = nil
	c.dc = nil
	c.mapped = false
	close(c.stop)
	c.display.Close()
	c.phase = phaseClosed
	c.closed.Store(true)
	if errors.Is(err, platform.ErrClosed) {
		return fmt.Errorf("display connection lost: %w", err)
	}
	return fmt.Errorf("read event: %w", err)
}

func (c *Canvas) isCloseRequest(ev platform.Event) bool {
	st := c.node.State
	return ev.Kind == platform.EventClientMessage &&
		st.WMProtocols != 0 &&
		ev.MessageType == st.WMProtocols &&
		ev.Format == 32 &&
		platform.Atom(ev.Data[0]) == st.WMDeleteWindow
}

func (c *Canvas) dispatch(ev platform.Event) {
	if ev.Kind == platform.EventError {
		c.logger.Warn("protocol error", "detail", ev.Detail)
	} else {
		c.logger.Debug("event", "kind", ev.Kind.String(), "window", ev.Window, "detail", ev.Detail)
	}
	if c.onEvent != nil {
		c.onEvent(ev)
	}
}

// Do runs fn on the goroutine that owns the canvas. While a loop is running
// fn is queued onto it. Before the first loop fn runs on the calling
// goroutine; after a loop has stopped the owner is unknown and Do returns
// ErrNotRunning. Do returns ErrClosed once the canvas is closed.
func (c *Canvas) Do(ctx context.Context, fn func(*Canvas) error) error {
	for {
		if c.closed.Load() {
			return ErrClosed
		}
		c.loopMu.Lock()
		l, looped := c.loop, c.looped
		c.loopMu.Unlock()
		if l == nil {
			if looped {
				return ErrNotRunning
			}
			return fn(c)
		}

		errc := make(chan error, 1)
		call := func() {
			if c.phase == phaseClosed {
				errc <- ErrClosed
				return
			}
			errc <- fn(c)
		}
		select {
		case l.calls <- call:
			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
				return ctx.Err()
			}
		case <-l.done:
			// Loop ended before taking the call; look again.
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
