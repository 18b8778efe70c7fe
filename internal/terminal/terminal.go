// Package terminal implements the direct console-to-serial bridge mode: a
// line-edited, history-aware stdin piped to a serial device, with the
// device's raw output written straight back to stdout, and optional
// automatic reconnect.
package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/exonlabs/go-uartmux/internal/serialport"
	"github.com/exonlabs/go-uartmux/pkg/console"
	"github.com/exonlabs/go-uartmux/pkg/xlog"
)

const (
	tick         = time.Second
	chunkSize    = 1024
	maxStuckTicks = 1024
)

var cRetry = color.New(color.FgYellow, color.Bold)

// Client bridges the local console to a serial device.
type Client struct {
	devicePath string
	settings   []string
	keepOpen   bool
	log        *xlog.Logger
}

// New returns a Client for devicePath, applying settings once opened.
// keepOpen selects -O (retry at 1s cadence) vs -o (exit on device loss).
func New(devicePath string, settings []string, keepOpen bool, log *xlog.Logger) *Client {
	return &Client{devicePath: devicePath, settings: settings, keepOpen: keepOpen, log: log}
}

// Run puts the terminal into raw mode for its duration and bridges the
// console to the device until it is lost without reconnect, or an I/O
// error occurs on stdin/stdout. The line editor's history survives
// reconnects.
func (c *Client) Run() error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to set terminal to raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	hnd, err := console.NewTermHandler()
	if err != nil {
		return fmt.Errorf("failed to init console handler: %w", err)
	}
	defer hnd.Close()

	retry := 0
	for {
		port, err := c.open()
		if err != nil {
			if !c.keepOpen {
				return err
			}
			retry++
			fmt.Fprint(os.Stdout, "\033[2K\r")
			cRetry.Fprintf(os.Stdout, "Connection lost, retry %d...", retry)
			time.Sleep(tick)
			continue
		}
		if retry > 0 {
			fmt.Fprint(os.Stdout, "\033[2K\rReconnected\n")
		}
		retry = 0

		c.bridge(port, hnd)
		port.Close()

		if !c.keepOpen {
			return nil
		}
	}
}

func (c *Client) open() (*serialport.Port, error) {
	port, err := serialport.Open(c.devicePath)
	if err != nil {
		return nil, err
	}
	if err := port.ApplySettings(c.settings); err != nil {
		port.Close()
		return nil, err
	}
	return port, nil
}

// bridge moves lines from the console's line editor to the device, and
// raw device output back to stdout, until either side fails or reports a
// stuck peer.
func (c *Client) bridge(port *serialport.Port, hnd *console.TermHandler) {
	var wg sync.WaitGroup
	done := make(chan struct{})
	var once sync.Once
	stop := func() { once.Do(func() { close(done) }) }

	wg.Add(2)
	go func() {
		defer wg.Done()
		defer stop()
		c.stdinToPort(port, hnd, done)
	}()
	go func() {
		defer wg.Done()
		defer stop()
		c.portToStdout(port, done)
	}()
	wg.Wait()
}

// stdinToPort reads console input one edited line at a time -- with
// cursor movement, backspace, and history recall handled by the
// underlying term.Terminal -- and forwards each line to the device
// terminated by a newline. A blocked read only returns once a line is
// submitted or the process exits; reconnects are therefore driven by
// portToStdout noticing the device died, not by this loop noticing
// first.
func (c *Client) stdinToPort(port *serialport.Port, hnd *console.TermHandler, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		default:
		}
		line, err := hnd.Read("")
		if err != nil {
			if err != io.EOF && c.log != nil {
				c.log.Warn("STDIN_ERROR -- %s", err)
			}
			return
		}
		if _, err := port.Write([]byte(line + "\n")); err != nil {
			if c.log != nil {
				c.log.Warn("PORT_WRITE_ERROR -- %s", err)
			}
			return
		}
	}
}

func (c *Client) portToStdout(port *serialport.Port, done chan struct{}) {
	buf := make([]byte, chunkSize)
	zeroReads := 0
	for {
		select {
		case <-done:
			return
		default:
		}
		n, err := port.Read(buf)
		if err != nil {
			if c.log != nil {
				c.log.Warn("PORT_READ_ERROR -- %s", err)
			}
			return
		}
		if n == 0 {
			zeroReads++
			if zeroReads >= maxStuckTicks {
				if c.log != nil {
					c.log.Warn("PEER_STALLED -- device %s not responding", c.devicePath)
				}
				return
			}
			continue
		}
		zeroReads = 0
		if _, err := os.Stdout.Write(buf[:n]); err != nil {
			return
		}
	}
}
