// Package channeltask implements the per-connection supervisor that
// drives a freshly accepted Channel through the control parser and, once
// it becomes a data channel, the byte pipe, guaranteeing resource release
// on the way out regardless of which path terminated it.
package channeltask

import (
	"github.com/exonlabs/go-uartmux/internal/channel"
	"github.com/exonlabs/go-uartmux/internal/ctlproto"
	"github.com/exonlabs/go-uartmux/internal/enginepipe"
	"github.com/exonlabs/go-uartmux/internal/registry"
	"github.com/exonlabs/go-uartmux/pkg/xlog"
)

// Task owns one Channel's full lifecycle.
type Task struct {
	c      *channel.Channel
	reg    *registry.Registry
	parser *ctlproto.Parser
	log    *xlog.Logger
}

// New registers c in reg and returns a Task ready to Run it.
func New(c *channel.Channel, reg *registry.Registry, parser *ctlproto.Parser, log *xlog.Logger) *Task {
	reg.Insert(c)
	return &Task{c: c, reg: reg, parser: parser, log: log}
}

// Run drives the channel until it stops, then tears down whatever it
// owns. It always returns after the channel's running flag has gone
// false and cleanup has completed.
func (t *Task) Run() {
	defer t.cleanup()

	if err := t.parser.Run(t.c); err != nil {
		t.c.Stop()
	}

	if t.c.Running() && t.c.Role() == channel.RoleData {
		bc, _ := t.c.OwnerResource().(*enginepipe.Broadcaster)
		if bc != nil {
			pipe := enginepipe.New(t.c, bc, t.log)
			pipe.Run()
		}
	}
}

func (t *Task) cleanup() {
	t.c.Socket().Close()

	if t.c.IsOwner() {
		t.c.ReleaseBorrowers()
		if bc, ok := t.c.OwnerResource().(*enginepipe.Broadcaster); ok && bc != nil {
			bc.Stop()
		}
		if port := t.c.Port(); port != nil {
			port.Close()
		}
		if t.log != nil {
			t.log.Info("CLOSE -- channel %s[%s] released device",
				t.c.PeerAddr(), t.c.CorrelationTag())
		}
	}

	t.reg.Remove(t.c)
}
