package sync

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netboxlabs/netbox-sync-engine/pkg/inventory"
	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
)

func TestFindHostDirectDataMatch(t *testing.T) {
	inv := inventory.New(logr.Discard())
	device, _ := inv.AddObject(objects.ClassDevice, map[string]any{"name": "h1"}, false, nil)

	e, ok, err := FindHost(inv, Settings{}, objects.ClassDevice, map[string]any{"name": "h1"}, nil, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Same(t, device, e)
}

func TestFindHostMatchesByUniqueMAC(t *testing.T) {
	inv := inventory.New(logr.Discard())
	device, _ := inv.AddObject(objects.ClassDevice, map[string]any{"name": "h1"}, false, nil)
	inv.AddObject(objects.ClassInterface, map[string]any{"name": "eth0", "device": device, "mac_address": "AA:BB:CC:00:00:01"}, false, nil)
	inv.ResolveRelations()

	e, ok, err := FindHost(inv, Settings{}, objects.ClassDevice, map[string]any{"name": "unknown-host"}, []string{"aa:bb:cc:00:00:01"}, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Same(t, device, e)
}

func TestFindHostAmbiguousMACMatchIsRejected(t *testing.T) {
	inv := inventory.New(logr.Discard())
	d1, _ := inv.AddObject(objects.ClassDevice, map[string]any{"name": "h1"}, false, nil)
	d2, _ := inv.AddObject(objects.ClassDevice, map[string]any{"name": "h2"}, false, nil)
	inv.AddObject(objects.ClassInterface, map[string]any{"name": "eth0", "device": d1, "mac_address": "AA:BB:CC:00:00:01"}, false, nil)
	inv.AddObject(objects.ClassInterface, map[string]any{"name": "eth0", "device": d2, "mac_address": "AA:BB:CC:00:00:02"}, false, nil)
	inv.ResolveRelations()

	e, ok, err := FindHost(inv, Settings{}, objects.ClassDevice, map[string]any{"name": "unknown"}, []string{"aa:bb:cc:00:00:01", "aa:bb:cc:00:00:02"}, nil)
	assert.Nil(t, e)
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestFindHostDominantMACScoreWinsOverTie(t *testing.T) {
	inv := inventory.New(logr.Discard())
	d1, _ := inv.AddObject(objects.ClassDevice, map[string]any{"name": "h1"}, false, nil)
	d2, _ := inv.AddObject(objects.ClassDevice, map[string]any{"name": "h2"}, false, nil)
	inv.AddObject(objects.ClassInterface, map[string]any{"name": "eth0", "device": d1, "mac_address": "AA:BB:CC:00:00:01"}, false, nil)
	inv.AddObject(objects.ClassInterface, map[string]any{"name": "eth1", "device": d1, "mac_address": "AA:BB:CC:00:00:02"}, false, nil)
	inv.AddObject(objects.ClassInterface, map[string]any{"name": "eth0", "device": d2, "mac_address": "AA:BB:CC:00:00:03"}, false, nil)
	inv.ResolveRelations()

	e, ok, err := FindHost(inv, Settings{}, objects.ClassDevice, map[string]any{"name": "unknown"},
		[]string{"aa:bb:cc:00:00:01", "aa:bb:cc:00:00:02", "aa:bb:cc:00:00:03"}, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Same(t, d1, e)
}

func TestFindHostMatchesBySerialWhenEnabled(t *testing.T) {
	inv := inventory.New(logr.Discard())
	device, _ := inv.AddObject(objects.ClassDevice, map[string]any{"name": "h1", "serial": "SN123"}, false, nil)

	e, ok, err := FindHost(inv, Settings{MatchHostBySerial: true}, objects.ClassDevice,
		map[string]any{"name": "renamed-host", "serial": "SN123"}, nil, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Same(t, device, e)
}

func TestFindHostSerialMatchDisabledBySettings(t *testing.T) {
	inv := inventory.New(logr.Discard())
	inv.AddObject(objects.ClassDevice, map[string]any{"name": "h1", "serial": "SN123"}, false, nil)

	e, ok, err := FindHost(inv, Settings{MatchHostBySerial: false}, objects.ClassDevice,
		map[string]any{"name": "renamed-host", "serial": "SN123"}, nil, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, e)
}

func TestFindHostMatchesByPrimaryIP(t *testing.T) {
	inv := inventory.New(logr.Discard())
	device, _ := inv.AddObject(objects.ClassDevice, map[string]any{"name": "h1"}, false, nil)
	addr, _ := inv.AddObject(objects.ClassIPAddress, map[string]any{"address": "10.0.0.5/24"}, false, nil)
	device.Update(map[string]any{"primary_ip4": addr}, false, nil, inv)

	e, ok, err := FindHost(inv, Settings{}, objects.ClassDevice, map[string]any{"name": "unknown"}, nil, []string{"10.0.0.5"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Same(t, device, e)
}

func TestFindHostNoMatchReturnsMissWithoutError(t *testing.T) {
	inv := inventory.New(logr.Discard())
	inv.AddObject(objects.ClassDevice, map[string]any{"name": "h1"}, false, nil)

	e, ok, err := FindHost(inv, Settings{}, objects.ClassDevice, map[string]any{"name": "brand-new"}, nil, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, e)
}
