// Package serialport wraps a single configurable serial device: open,
// apply line settings, non-blocking read/write, close.
package serialport

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.bug.st/serial"
)

// Sentinel errors, by propagation policy class.
var (
	ErrError             = errors.New("")
	ErrDeviceUnavailable = fmt.Errorf("%wdevice unavailable", ErrError)
	ErrUnsupportedValue  = fmt.Errorf("%wunsupported setting value", ErrError)
	ErrIoFailed          = fmt.Errorf("%wio failed", ErrError)
	ErrClosed            = fmt.Errorf("%wdevice closed", ErrError)
)

// supportedBauds enumerates the explicit baud rates this port accepts,
// matching the rates a POSIX termios layer historically defines.
var supportedBauds = map[int]bool{
	50: true, 75: true, 110: true, 134: true, 150: true, 200: true,
	300: true, 600: true, 1200: true, 1800: true, 2400: true, 4800: true,
	9600: true, 19200: true, 38400: true, 57600: true, 115200: true,
	230400: true, 460800: true, 500000: true, 576000: true, 921600: true,
}

// readPollInterval bounds how long a single Read call may block while
// waiting for bytes. One second, matching the shutdown-observation tick
// the rest of the engine polls at.
const readPollInterval = 1_000_000_000 // 1s, in time.Duration units

// Port is an open, configured serial device.
type Port struct {
	mu   sync.Mutex
	path string
	com  serial.Port
	mode serial.Mode

	rts, dtr bool // last-applied modem output line state, for round-trip reporting
}

// Open opens devicePath for read/write and applies a conservative default
// mode (9600 8N1, lines deasserted) as a baseline; callers normally follow
// with ApplySettings.
func Open(devicePath string) (*Port, error) {
	mode := serial.Mode{
		BaudRate: 9600,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
		InitialStatusBits: &serial.ModemOutputBits{
			RTS: false,
			DTR: false,
		},
	}
	com, err := serial.Open(devicePath, &mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrDeviceUnavailable, devicePath, err)
	}
	p := &Port{path: devicePath, com: com, mode: mode}
	return p, nil
}

// Path returns the device path this port was opened on.
func (p *Port) Path() string {
	return p.path
}

// ApplySettings parses and applies the U-verb setting tokens. Every token
// is validated before any is applied, so a bad value for a recognized
// letter leaves the port's prior configuration untouched. Unrecognized
// letters are silently ignored, matching the wire protocol's documented
// behavior.
func (p *Port) ApplySettings(tokens []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	mode := p.mode
	rts, dtr := p.rts, p.dtr
	touchedLines := false

	for _, tok := range tokens {
		if len(tok) < 2 {
			continue
		}
		letter, value := tok[0], tok[1:]
		switch letter {
		case 'B':
			rate, err := strconv.Atoi(value)
			if err != nil || !supportedBauds[rate] {
				return fmt.Errorf("%wbaud rate not supported: %s", ErrUnsupportedValue, value)
			}
			mode.BaudRate = rate
		case 'D':
			switch value {
			case "5":
				mode.DataBits = 5
			case "6":
				mode.DataBits = 6
			case "7":
				mode.DataBits = 7
			case "8":
				mode.DataBits = 8
			default:
				return fmt.Errorf("%wdatabits not supported [5,6,7,8]: %s", ErrUnsupportedValue, value)
			}
		case 'S':
			switch value {
			case "1":
				mode.StopBits = serial.OneStopBit
			case "2":
				mode.StopBits = serial.TwoStopBits
			default:
				return fmt.Errorf("%wstopbits not supported [1,2]: %s", ErrUnsupportedValue, value)
			}
		case 'P':
			switch value {
			case "n":
				mode.Parity = serial.NoParity
			case "o":
				mode.Parity = serial.OddParity
			case "e":
				mode.Parity = serial.EvenParity
			default:
				return fmt.Errorf("%wparity not supported [n,o,e]: %s", ErrUnsupportedValue, value)
			}
		case 'T', 'M':
			// device read-timeout / minimum-read-size: accepted for wire
			// compatibility but the polled, deadline-driven Read below
			// already provides the non-blocking behavior these control.
			if _, err := strconv.Atoi(value); err != nil {
				return fmt.Errorf("%wnot a number: %s", ErrUnsupportedValue, value)
			}
		case 'r':
			// wire polarity is inverted by design: '0' asserts, '1' deasserts.
			switch value {
			case "0":
				rts = true
			case "1":
				rts = false
			default:
				return fmt.Errorf("%wRTS setting not supported [0,1]: %s", ErrUnsupportedValue, value)
			}
			touchedLines = true
		case 'd':
			switch value {
			case "0":
				dtr = true
			case "1":
				dtr = false
			default:
				return fmt.Errorf("%wDTR setting not supported [0,1]: %s", ErrUnsupportedValue, value)
			}
			touchedLines = true
		}
	}

	if err := p.com.SetMode(&mode); err != nil {
		return fmt.Errorf("%wcould not configure device: %s", ErrDeviceUnavailable, err)
	}
	if touchedLines {
		if err := p.com.SetRTS(rts); err != nil {
			return fmt.Errorf("%wcould not set RTS: %s", ErrDeviceUnavailable, err)
		}
		if err := p.com.SetDTR(dtr); err != nil {
			return fmt.Errorf("%wcould not set DTR: %s", ErrDeviceUnavailable, err)
		}
	}
	p.mode = mode
	p.rts, p.dtr = rts, dtr
	return nil
}

// Lines reports the last-applied RTS/DTR assertion state.
func (p *Port) Lines() (rts, dtr bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rts, p.dtr
}

// Read performs a bounded-wait read: it blocks for at most a short poll
// interval, returning (0, nil) on timeout so callers can treat this like
// a non-blocking would-block return and re-check their shutdown flag.
func (p *Port) Read(buf []byte) (int, error) {
	if err := p.com.SetReadTimeout(readPollInterval); err != nil {
		return 0, fmt.Errorf("%w: %s", ErrIoFailed, err)
	}
	n, err := p.com.Read(buf)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrIoFailed, err)
	}
	return n, nil
}

// Write writes buf in full, draining the device's output buffer before
// returning so the caller observes real I/O errors rather than ones
// deferred to a later flush.
func (p *Port) Write(buf []byte) (int, error) {
	n, err := p.com.Write(buf)
	if err != nil {
		return n, fmt.Errorf("%w: %s", ErrIoFailed, err)
	}
	if err := p.com.Drain(); err != nil {
		return n, fmt.Errorf("%w: %s", ErrIoFailed, err)
	}
	return n, nil
}

// Close releases the OS handle. Safe to call once; a second call returns
// ErrClosed.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.com == nil {
		return ErrClosed
	}
	err := p.com.Close()
	p.com = nil
	if err != nil {
		return fmt.Errorf("%w: %s", ErrIoFailed, err)
	}
	return nil
}
