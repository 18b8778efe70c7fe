package channel_test

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/exonlabs/go-uartmux/internal/channel"
)

func newTestChannel(t *testing.T) (*channel.Channel, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return channel.New(server), client
}

func TestNew_StartsAsControlAndRunning(t *testing.T) {
	c, _ := newTestChannel(t)
	assert.Equal(t, channel.RoleControl, c.Role())
	assert.True(t, c.Running())
	assert.False(t, c.IsOwner())
	assert.Nil(t, c.Port())
}

func TestStop_IsMonotonic(t *testing.T) {
	c, _ := newTestChannel(t)
	c.Stop()
	assert.False(t, c.Running())
	c.Stop()
	assert.False(t, c.Running())
}

func TestAttachTo_CopiesOwnerPortAndSwitchesToDataRole(t *testing.T) {
	owner, _ := newTestChannel(t)
	borrower, _ := newTestChannel(t)

	owner.AdoptOwnedPort(nil) // owner need not have a real port for this check
	owner.SetOwnerResource("broadcaster-stand-in")

	borrower.AttachTo(owner)

	assert.Equal(t, channel.RoleData, borrower.Role())
	assert.False(t, borrower.IsOwner())
	assert.Equal(t, "broadcaster-stand-in", borrower.OwnerResource())
}

func TestReleaseBorrowers_StopsEveryBorrowerNotTheOwner(t *testing.T) {
	owner, _ := newTestChannel(t)
	b1, _ := newTestChannel(t)
	b2, _ := newTestChannel(t)

	b1.AttachTo(owner)
	b2.AttachTo(owner)

	owner.ReleaseBorrowers()

	assert.False(t, b1.Running())
	assert.False(t, b2.Running())
	assert.True(t, owner.Running())
}

func TestCorrelationTag_StableForSameChannel(t *testing.T) {
	c, _ := newTestChannel(t)
	c.SetRegistryID(7)
	a := c.CorrelationTag()
	b := c.CorrelationTag()
	assert.Equal(t, a, b)
	assert.Len(t, a, 8)
}

func TestCorrelationTag_DiffersAcrossIDs(t *testing.T) {
	c1, _ := newTestChannel(t)
	c2, _ := newTestChannel(t)
	c1.SetRegistryID(1)
	c2.SetRegistryID(2)
	assert.NotEqual(t, c1.CorrelationTag(), c2.CorrelationTag())
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "control", channel.RoleControl.String())
	assert.Equal(t, "data", channel.RoleData.String())
	assert.Equal(t, "terminal", channel.RoleTerminal.String())
}
