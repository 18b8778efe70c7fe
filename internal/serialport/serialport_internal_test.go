package serialport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// These exercise only the per-token validation path of ApplySettings,
// which returns before touching the underlying device on any rejected
// token; a zero-value Port is therefore safe to use without a real or
// fake serial.Port.

func TestApplySettings_RejectsUnsupportedBaud(t *testing.T) {
	p := &Port{}
	err := p.ApplySettings([]string{"B12345"})
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestApplySettings_RejectsBadDataBits(t *testing.T) {
	p := &Port{}
	err := p.ApplySettings([]string{"D9"})
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestApplySettings_RejectsBadStopBits(t *testing.T) {
	p := &Port{}
	err := p.ApplySettings([]string{"S3"})
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestApplySettings_RejectsBadParity(t *testing.T) {
	p := &Port{}
	err := p.ApplySettings([]string{"Px"})
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestApplySettings_RejectsBadRTS(t *testing.T) {
	p := &Port{}
	err := p.ApplySettings([]string{"r9"})
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestApplySettings_RejectsBadDTR(t *testing.T) {
	p := &Port{}
	err := p.ApplySettings([]string{"d9"})
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestApplySettings_RejectsBadTimeoutToken(t *testing.T) {
	p := &Port{}
	err := p.ApplySettings([]string{"Tabc"})
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestOpen_UnavailableDevice(t *testing.T) {
	_, err := Open("/dev/nonexistent-uartmux-test-device")
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
}

func TestClose_DoubleCloseReportsClosed(t *testing.T) {
	p := &Port{}
	err := p.Close()
	assert.ErrorIs(t, err, ErrClosed)
}
