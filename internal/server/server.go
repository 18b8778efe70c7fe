// Package server implements the TCP accept loop and the global shutdown
// sequence that tears every channel down cleanly.
package server

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"golang.org/x/net/netutil"

	"github.com/exonlabs/go-uartmux/internal/channel"
	"github.com/exonlabs/go-uartmux/internal/channeltask"
	"github.com/exonlabs/go-uartmux/internal/ctlproto"
	"github.com/exonlabs/go-uartmux/internal/registry"
	"github.com/exonlabs/go-uartmux/pkg/sync/xevent"
	"github.com/exonlabs/go-uartmux/pkg/xlog"
)

var (
	ErrError      = errors.New("")
	ErrSetupFatal = fmt.Errorf("%wbind/listen failed", ErrError)
)

// DefaultConnectionsLimit bounds concurrently accepted connections; 0
// disables the limit. The original implementation accepted unboundedly;
// this default adds a conservative ceiling a caller can override.
const DefaultConnectionsLimit = 256

// Server accepts TCP connections, turns each into a Channel, and
// supervises the registry and global shutdown flag shared by all of them.
type Server struct {
	addr             string
	connectionsLimit int
	log              *xlog.Logger

	reg    *registry.Registry
	parser *ctlproto.Parser

	stop *xevent.Event
	wg   sync.WaitGroup

	mu sync.Mutex
	ln net.Listener
}

// New returns a Server that will listen on addr (host:port, or :port).
func New(addr string, connectionsLimit int, log *xlog.Logger) *Server {
	reg := registry.New()
	s := &Server{
		addr:             addr,
		connectionsLimit: connectionsLimit,
		log:              log,
		reg:              reg,
		stop:             xevent.NewEvent(),
	}
	s.parser = ctlproto.New(reg, log)
	s.parser.RequestShutdown = s.Shutdown
	return s
}

// Run binds the listening socket and accepts connections until Shutdown
// is called (via the X verb or by the caller, e.g. on SIGINT/SIGTERM). It
// blocks until every spawned channel task has returned.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrSetupFatal, err)
	}
	if s.connectionsLimit > 0 {
		ln = netutil.LimitListener(ln, s.connectionsLimit)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	if s.log != nil {
		s.log.Info("LISTEN -- %s", s.addr)
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.stop.IsSet() {
				break
			}
			if s.log != nil {
				s.log.Warn("ACCEPT_ERROR -- %s", err)
			}
			continue
		}

		c := channel.New(conn)
		task := channeltask.New(c, s.reg, s.parser, s.log)
		if s.log != nil {
			s.log.Info("CONNECT -- channel %s[%s]", c.PeerAddr(), c.CorrelationTag())
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			task.Run()
		}()
	}

	s.wg.Wait()
	if s.log != nil {
		s.log.Info("CLOSED -- %s", s.addr)
	}
	return nil
}

// Shutdown runs the global shutdown sequence: stop accepting, mark every
// channel's running flag false, and close the listening socket. Run's
// caller still needs to observe its own channel tasks joining via Run's
// return. Idempotent.
func (s *Server) Shutdown() {
	if s.stop.IsSet() {
		return
	}
	s.stop.Set()

	s.reg.ForEach(func(e registry.Entry) {
		if c, ok := e.(*channel.Channel); ok {
			c.Stop()
		}
	})

	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln != nil {
		ln.Close()
	}
}

// Wait blocks until every accepted channel's task has returned.
func (s *Server) Wait() {
	s.wg.Wait()
}
