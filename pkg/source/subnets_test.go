package source

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermittedSubnetsRejectsLinkLocalAndLoopback(t *testing.T) {
	ps, err := NewPermittedSubnets(nil)
	require.NoError(t, err)

	assert.False(t, ps.Permitted(net.ParseIP("169.254.1.1")))
	assert.False(t, ps.Permitted(net.ParseIP("127.0.0.1")))
	assert.False(t, ps.Permitted(net.ParseIP("fe80::1")))
}

func TestPermittedSubnetsNoIncludeAllowsEverythingElse(t *testing.T) {
	ps, err := NewPermittedSubnets(nil)
	require.NoError(t, err)
	assert.True(t, ps.Permitted(net.ParseIP("10.0.0.5")))
}

func TestPermittedSubnetsRequiresIncludeMatch(t *testing.T) {
	ps, err := NewPermittedSubnets([]string{"10.0.0.0/8"})
	require.NoError(t, err)

	assert.True(t, ps.Permitted(net.ParseIP("10.1.2.3")))
	assert.False(t, ps.Permitted(net.ParseIP("192.168.1.1")))
}

func TestPermittedSubnetsExcludeWinsOverInclude(t *testing.T) {
	ps, err := NewPermittedSubnets([]string{"10.0.0.0/8", "!10.1.0.0/16"})
	require.NoError(t, err)

	assert.True(t, ps.Permitted(net.ParseIP("10.2.3.4")))
	assert.False(t, ps.Permitted(net.ParseIP("10.1.2.3")))
}

func TestNewPermittedSubnetsRejectsMalformedCIDR(t *testing.T) {
	_, err := NewPermittedSubnets([]string{"not-a-cidr"})
	assert.Error(t, err)
}
