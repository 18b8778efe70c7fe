// Package ctlproto implements the line-oriented control protocol: the
// verb parser that drives a channel's role transitions and serial-port
// acquisition.
package ctlproto

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/exonlabs/go-uartmux/internal/channel"
	"github.com/exonlabs/go-uartmux/internal/enginepipe"
	"github.com/exonlabs/go-uartmux/internal/registry"
	"github.com/exonlabs/go-uartmux/internal/serialport"
	"github.com/exonlabs/go-uartmux/pkg/xlog"
)

// Sentinel errors, by propagation policy class.
var (
	ErrError       = errors.New("")
	ErrUserInput   = fmt.Errorf("%wbad user input", ErrError)
	ErrPeerStalled = fmt.Errorf("%wpeer stalled", ErrError)
	ErrIoFailed    = fmt.Errorf("%wio failed", ErrError)
	ErrShutdown    = fmt.Errorf("%wshutdown requested", ErrError)
	ErrGlobalAbort = fmt.Errorf("%wserver-wide shutdown requested", ErrError)
)

// readTick bounds how long one socket read waits before the parser
// re-checks the channel's running flag, matching the 1-second
// shutdown-observation requirement.
const readTick = time.Second

// maxStaleTicks is the number of consecutive read-deadline timeouts (no
// command line at all within readTick) tolerated before a peer is
// declared stuck. An empty command line (a lone "\n") is a distinct,
// legitimate case -- it does not count toward this.
const maxStaleTicks = 1024

// Parser interprets control-channel verbs against a shared registry.
type Parser struct {
	reg *registry.Registry
	log *xlog.Logger

	// RequestShutdown is invoked when an X verb is received. Wired by the
	// server to its own shutdown sequence.
	RequestShutdown func()
}

// New returns a Parser consulting reg for Attach lookups.
func New(reg *registry.Registry, log *xlog.Logger) *Parser {
	return &Parser{reg: reg, log: log}
}

// Run reads and dispatches control lines for c until the channel stops
// running, its role changes away from Control (Attach succeeded), or an
// unrecoverable I/O condition occurs.
func (p *Parser) Run(c *channel.Channel) error {
	r := bufio.NewReader(c.Socket())
	staleTicks := 0

	for c.Running() && c.Role() == channel.RoleControl {
		c.Socket().SetReadDeadline(time.Now().Add(readTick))

		line, err := readLine(r)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				staleTicks++
				if staleTicks >= maxStaleTicks {
					return ErrPeerStalled
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				return ErrShutdown
			}
			return fmt.Errorf("%w: %s", ErrIoFailed, err)
		}
		staleTicks = 0

		if line == "" {
			// Empty command line: not a stall, not a command. Reply
			// nothing and wait for the next one.
			continue
		}

		if err := p.dispatch(c, line); err != nil {
			if errors.Is(err, ErrGlobalAbort) {
				return err
			}
			// UserInput/DeviceUnavailable: reply already sent, channel stays alive.
		}
	}
	return nil
}

// readLine reads one \n-terminated command, stripping \r, and truncating
// at MaxCommandLine as if \n had arrived.
func readLine(r *bufio.Reader) (string, error) {
	var sb strings.Builder
	for sb.Len() < channel.MaxCommandLine {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if b == '\n' {
			return sb.String(), nil
		}
		if b == '\r' {
			continue
		}
		sb.WriteByte(b)
	}
	return sb.String(), nil
}

func (p *Parser) dispatch(c *channel.Channel, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	verb := fields[0][0]
	args := fields[1:]

	switch verb {
	case 'I':
		return p.verbIdentify(c)
	case 'A':
		return p.verbAttach(c, args)
	case 'O':
		return p.verbOpen(c, args)
	case 'U':
		return p.verbSettings(c, args)
	case 'C':
		return p.verbClose(c)
	case 'X':
		return p.verbGlobalShutdown(c)
	default:
		p.reply(c, "ERROR unknown command: %s", line)
		return nil
	}
}

func (p *Parser) reply(c *channel.Channel, format string, args ...any) {
	msg := fmt.Sprintf(format, args...) + "\n"
	c.Socket().Write([]byte(msg))
}

func (p *Parser) verbIdentify(c *channel.Channel) error {
	id, _ := p.reg.IndexOf(c)
	p.reply(c, "%d\nOK", id)
	return nil
}

func (p *Parser) verbAttach(c *channel.Channel, args []string) error {
	if len(args) < 1 {
		p.reply(c, "ERROR missing channel index")
		return ErrUserInput
	}
	ix, err := strconv.Atoi(args[0])
	if err != nil {
		p.reply(c, "ERROR invalid channel index: %s", args[0])
		return ErrUserInput
	}
	entry, ok := p.reg.LookupByIndex(ix)
	if !ok {
		p.reply(c, "ERROR no such channel")
		return ErrUserInput
	}
	target, ok := entry.(*channel.Channel)
	if !ok {
		p.reply(c, "ERROR no such channel")
		return ErrUserInput
	}
	if target == c {
		p.reply(c, "ERROR cannot attach to self")
		return ErrUserInput
	}
	if target.Port() == nil {
		p.reply(c, "ERROR channel not connected to device")
		return ErrUserInput
	}
	if c.IsOwner() {
		p.reply(c, "ERROR cannot re-attach while owning a device")
		return ErrUserInput
	}
	c.AttachTo(target)
	p.reply(c, "OK")
	if p.log != nil {
		p.log.Info("ATTACH -- channel %s[%s] borrows device from channel %d",
			c.PeerAddr(), c.CorrelationTag(), ix)
	}
	return nil
}

func (p *Parser) verbOpen(c *channel.Channel, args []string) error {
	if len(args) < 1 {
		p.reply(c, "ERROR missing device path")
		return ErrUserInput
	}
	port, err := serialport.Open(args[0])
	if err != nil {
		p.reply(c, "ERROR %s", err)
		return ErrUserInput
	}
	c.AdoptOwnedPort(port)
	c.SetOwnerResource(enginepipe.NewBroadcaster(port, p.log))
	p.reply(c, "OK")
	if p.log != nil {
		p.log.Info("OPEN -- channel %s[%s] opened %s",
			c.PeerAddr(), c.CorrelationTag(), args[0])
	}
	return nil
}

func (p *Parser) verbSettings(c *channel.Channel, tokens []string) error {
	port := c.Port()
	if port == nil {
		p.reply(c, "ERROR channel not connected to device")
		return ErrUserInput
	}
	if err := port.ApplySettings(tokens); err != nil {
		p.reply(c, "ERROR %s", err)
		return ErrUserInput
	}
	p.reply(c, "OK")
	return nil
}

func (p *Parser) verbClose(c *channel.Channel) error {
	p.reply(c, "OK")
	c.Stop()
	return nil
}

func (p *Parser) verbGlobalShutdown(c *channel.Channel) error {
	p.reply(c, "OK")
	if p.RequestShutdown != nil {
		p.RequestShutdown()
	}
	return ErrGlobalAbort
}
