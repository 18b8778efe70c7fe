package enginepipe

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/exonlabs/go-uartmux/internal/channel"
	"github.com/exonlabs/go-uartmux/pkg/xlog"
)

// Sentinel errors, by propagation policy class.
var (
	ErrError       = errors.New("")
	ErrPeerStalled = fmt.Errorf("%wpeer stalled", ErrError)
	ErrIoFailed    = fmt.Errorf("%wio failed", ErrError)
)

// maxStuckTicks consecutive zero-byte reads, on either direction, before a
// channel is declared to have a stuck peer. At the 1-second poll tick
// this tolerates roughly 17 minutes of silence before acting, matching
// the threshold the protocol's original implementation used.
const maxStuckTicks = 1024

// tick bounds one socket-read wait, so the loop re-checks the channel's
// running flag at least this often.
const tick = time.Second

// chunkSize is the transfer unit forwarded in either direction.
const chunkSize = 1024

// Pipe moves bytes between c's socket and its serial port (reached
// through a Broadcaster) until c stops running or either side fails.
type Pipe struct {
	c  *channel.Channel
	bc *Broadcaster
	log *xlog.Logger
}

// New returns a Pipe for a data channel already attached to bc.
func New(c *channel.Channel, bc *Broadcaster, log *xlog.Logger) *Pipe {
	return &Pipe{c: c, bc: bc, log: log}
}

// Run blocks until the channel's running flag clears or an unrecoverable
// I/O condition occurs on either direction.
func (p *Pipe) Run() error {
	sub := p.bc.Subscribe(p.c)
	defer p.bc.Unsubscribe(p.c)

	var wg sync.WaitGroup
	errs := make(chan error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		defer p.c.Stop()
		errs <- p.socketToSerial()
	}()
	go func() {
		defer wg.Done()
		defer p.c.Stop()
		errs <- p.serialToSocket(sub)
	}()

	wg.Wait()
	close(errs)

	p.c.Stop()
	var first error
	for err := range errs {
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}

// socketToSerial reads from the TCP socket and writes straight to the
// serial port; the kernel serializes concurrent writers so no pipe-level
// lock is needed here.
func (p *Pipe) socketToSerial() error {
	buf := make([]byte, chunkSize)
	zeroReads := 0
	sock := p.c.Socket()
	port := p.c.Port()

	for p.c.Running() {
		sock.SetReadDeadline(time.Now().Add(tick))
		n, err := sock.Read(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return nil // EOF / reset: treat as a normal close, not a failure to report
		}
		if n == 0 {
			zeroReads++
			if zeroReads >= maxStuckTicks {
				if p.log != nil {
					p.log.Warn("PEER_STALLED -- channel %s[%s]", p.c.PeerAddr(), p.c.CorrelationTag())
				}
				return ErrPeerStalled
			}
			continue
		}
		zeroReads = 0

		if _, err := port.Write(buf[:n]); err != nil {
			return fmt.Errorf("%w: %s", ErrIoFailed, err)
		}
	}
	return nil
}

// serialToSocket forwards chunks delivered by the broadcaster subscription
// to the socket.
func (p *Pipe) serialToSocket(sub *subscription) error {
	sock := p.c.Socket()
	for p.c.Running() {
		select {
		case <-sub.notify:
		case <-time.After(tick):
		}
		for _, chunk := range sub.drain() {
			sock.SetWriteDeadline(time.Now().Add(tick))
			if _, err := sock.Write(chunk); err != nil {
				return fmt.Errorf("%w: %s", ErrIoFailed, err)
			}
		}
	}
	return nil
}
