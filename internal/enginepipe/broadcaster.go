// Package enginepipe implements the bidirectional byte mover between a
// TCP socket and a serial port (Pipe), and the per-port fan-out reader
// (Broadcaster) that lets several data channels share one device safely.
package enginepipe

import (
	"sync"

	"github.com/exonlabs/go-uartmux/internal/channel"
	"github.com/exonlabs/go-uartmux/internal/serialport"
	"github.com/exonlabs/go-uartmux/pkg/queue"
	"github.com/exonlabs/go-uartmux/pkg/sync/xevent"
	"github.com/exonlabs/go-uartmux/pkg/xlog"
)

// maxSubQueueLen bounds how many undelivered chunks a subscription may
// hold. A data channel whose socket falls this far behind has its
// surplus reads dropped instead of growing this process's memory
// without bound -- queue.Fifo.Push auto-grows and never blocks, so the
// bound has to be enforced here, at the fan-out point.
const maxSubQueueLen = 64

// subscription is one data channel's view onto a Broadcaster: a bounded
// FIFO of delivered chunks, plus a small notification channel the Pipe's
// serial direction waits on so it does not have to busy-poll the FIFO.
type subscription struct {
	fifo    *queue.Fifo
	notify  chan struct{}
	log     *xlog.Logger
	dropped uint64
}

func newSubscription(log *xlog.Logger) *subscription {
	return &subscription{
		fifo:   queue.NewFifo(16),
		notify: make(chan struct{}, 1),
		log:    log,
	}
}

// push enqueues data, dropping it if the subscriber has fallen more than
// maxSubQueueLen chunks behind.
func (s *subscription) push(data []byte) {
	if s.fifo.Length() >= maxSubQueueLen {
		s.dropped++
		if s.log != nil {
			s.log.Warn("BROADCASTER_SUB_OVERFLOW -- subscriber too slow, dropped %d chunks so far", s.dropped)
		}
		return
	}
	s.fifo.Push(data)
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// drain pops every currently queued chunk.
func (s *subscription) drain() [][]byte {
	items := s.fifo.PopN(s.fifo.Length())
	out := make([][]byte, 0, len(items))
	for _, v := range items {
		out = append(out, v.([]byte))
	}
	return out
}

// Broadcaster performs every Read call on a shared, owned serial port and
// fans each chunk out to every currently attached data channel. This is
// the resolution of the "multi-reader semantics" open question: reads are
// multiplexed to all attachers instead of racing the kernel for a single
// winner.
type Broadcaster struct {
	port *serialport.Port
	log  *xlog.Logger

	mu   sync.Mutex
	subs map[*channel.Channel]*subscription

	stop *xevent.Event
	done chan struct{}
}

// NewBroadcaster starts reading port immediately in a background
// goroutine; it runs until Stop is called, a device read fails, or the
// device returns maxStuckTicks consecutive empty reads.
func NewBroadcaster(port *serialport.Port, log *xlog.Logger) *Broadcaster {
	b := &Broadcaster{
		port: port,
		log:  log,
		subs: make(map[*channel.Channel]*subscription),
		stop: xevent.NewEvent(),
		done: make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broadcaster) run() {
	defer close(b.done)
	buf := make([]byte, 1024)
	zeroReads := 0
	for !b.stop.IsSet() {
		n, err := b.port.Read(buf)
		if err != nil {
			if b.log != nil {
				b.log.Warn("BROADCASTER_ERROR -- %s", err)
			}
			return
		}
		if n == 0 {
			zeroReads++
			if zeroReads >= maxStuckTicks {
				if b.log != nil {
					b.log.Warn("BROADCASTER_STALLED -- device %s not responding", b.port.Path())
				}
				return
			}
			continue
		}
		zeroReads = 0

		chunk := make([]byte, n)
		copy(chunk, buf[:n])
		b.mu.Lock()
		for _, s := range b.subs {
			s.push(chunk)
		}
		b.mu.Unlock()
	}
}

// Subscribe registers c as a fan-out target and returns its subscription.
func (b *Broadcaster) Subscribe(c *channel.Channel) *subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := newSubscription(b.log)
	b.subs[c] = s
	return s
}

// Unsubscribe removes c from the fan-out set.
func (b *Broadcaster) Unsubscribe(c *channel.Channel) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, c)
}

// Stop halts the read loop and waits for it to exit.
func (b *Broadcaster) Stop() {
	b.stop.Set()
	<-b.done
}
