// Package channel implements the per-connection Channel state: role,
// running flag, serial-port reference and ownership, and borrowers. The
// supervisor that drives a Channel lives in package channeltask.
package channel

import (
	"fmt"
	"net"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/exonlabs/go-uartmux/internal/serialport"
	"github.com/exonlabs/go-uartmux/pkg/sync/xevent"
)

// Role is the operating mode of a Channel.
type Role int

const (
	RoleControl Role = iota
	RoleData
	RoleTerminal
)

func (r Role) String() string {
	switch r {
	case RoleControl:
		return "control"
	case RoleData:
		return "data"
	case RoleTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// MaxCommandLine is the maximum length, in bytes, of one control command
// line including its arguments.
const MaxCommandLine = 256

// Channel represents one accepted TCP connection, either still
// interpreting control verbs or already piping bytes.
type Channel struct {
	id       int
	peerAddr string

	sock net.Conn

	mu      sync.Mutex
	role    Role
	running *xevent.Event

	port      *serialport.Port
	isOwner   bool
	borrowers map[*Channel]bool // only meaningful on the owning channel

	// ownerResource holds the owning channel's broadcaster. Typed as any
	// to avoid an import cycle between this package and enginepipe, which
	// itself depends on Channel; ctlproto sets it when a device is opened,
	// AttachTo copies it to borrowers, and channeltask reads it via a type
	// assertion to *enginepipe.Broadcaster.
	ownerResource any
}

// New wraps an accepted connection as a fresh control channel.
func New(sock net.Conn) *Channel {
	return &Channel{
		peerAddr:  sock.RemoteAddr().String(),
		sock:      sock,
		role:      RoleControl,
		running:   xevent.NewEvent(),
		borrowers: make(map[*Channel]bool),
	}
}

// RegistryID and SetRegistryID implement registry.Entry.
func (c *Channel) RegistryID() int { return c.id }
func (c *Channel) SetRegistryID(id int) {
	c.id = id
}

// CorrelationTag is a short, stable, non-cryptographic id used purely to
// tie together log lines from the same channel across goroutines; it is
// never part of wire protocol semantics.
func (c *Channel) CorrelationTag() string {
	h := xxhash.Sum64String(fmt.Sprintf("%s#%d", c.peerAddr, c.id))
	return fmt.Sprintf("%08x", uint32(h))
}

func (c *Channel) PeerAddr() string { return c.peerAddr }
func (c *Channel) Socket() net.Conn { return c.sock }

func (c *Channel) Role() Role {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.role
}

// Running reports the channel's monotonic running flag.
func (c *Channel) Running() bool { return !c.running.IsSet() }

// Stop requests cooperative shutdown of this channel. Monotonic: once
// stopped, a channel never resumes running.
func (c *Channel) Stop() { c.running.Set() }

// StopEvent exposes the underlying event for poll loops that need to
// select/wait on it directly (e.g. the pipe's read deadline loop).
func (c *Channel) StopEvent() *xevent.Event { return c.running }

// Port returns the serial port this channel currently references, or nil.
func (c *Channel) Port() *serialport.Port {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.port
}

func (c *Channel) IsOwner() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isOwner
}

// AdoptOwnedPort records a freshly opened device as owned by this channel.
func (c *Channel) AdoptOwnedPort(p *serialport.Port) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.port = p
	c.isOwner = true
}

// AttachTo copies owner's port reference into this channel as a
// non-owning borrower, and transitions this channel to the Data role.
// The owner tracks the borrower so it can be signalled on owner death.
func (c *Channel) AttachTo(owner *Channel) {
	owner.mu.Lock()
	p := owner.port
	res := owner.ownerResource
	owner.borrowers[c] = true
	owner.mu.Unlock()

	c.mu.Lock()
	c.port = p
	c.isOwner = false
	c.role = RoleData
	c.ownerResource = res
	c.mu.Unlock()
}

// SetOwnerResource stashes the owner's broadcaster (or any other
// owner-lifetime resource); OwnerResource retrieves it.
func (c *Channel) SetOwnerResource(v any) {
	c.mu.Lock()
	c.ownerResource = v
	c.mu.Unlock()
}

func (c *Channel) OwnerResource() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ownerResource
}

// ReleaseBorrowers marks every borrower's running flag false. Must be
// called, by the owner only, before the owned port is closed.
func (c *Channel) ReleaseBorrowers() {
	c.mu.Lock()
	borrowers := make([]*Channel, 0, len(c.borrowers))
	for b := range c.borrowers {
		borrowers = append(borrowers, b)
	}
	c.mu.Unlock()
	for _, b := range borrowers {
		b.Stop()
	}
}

