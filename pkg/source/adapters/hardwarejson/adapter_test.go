package hardwarejson

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netboxlabs/netbox-sync-engine/pkg/inventory"
	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
	"github.com/netboxlabs/netbox-sync-engine/pkg/runlog"
	"github.com/netboxlabs/netbox-sync-engine/pkg/source"
	"github.com/netboxlabs/netbox-sync-engine/pkg/sync"
)

func newTestAdapter(t *testing.T, dir string) (*Adapter, *inventory.Inventory) {
	t.Helper()
	inv := inventory.New(logr.Discard())
	a := New(dir, source.Settings{Name: "hw", Enabled: true}, inv, sync.Settings{}, runlog.New(logr.Discard()), logr.Discard())
	return a, inv
}

func writeFile(t *testing.T, dir, name string, content map[string]any) {
	t.Helper()
	raw, err := json.Marshal(content)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), raw, 0o644))
}

func TestInitRejectsMissingDirectory(t *testing.T) {
	a, _ := newTestAdapter(t, filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, a.Init(t.Context()))
	assert.False(t, a.InitSuccessful())
}

func TestInitRejectsNonDirectoryPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notadir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	a, _ := newTestAdapter(t, file)
	assert.Error(t, a.Init(t.Context()))
}

func TestInitSucceedsOnExistingDirectory(t *testing.T) {
	a, _ := newTestAdapter(t, t.TempDir())
	require.NoError(t, a.Init(t.Context()))
	assert.True(t, a.InitSuccessful())
}

func TestApplyMatchesDeviceBySerialAndUpdatesInterfaces(t *testing.T) {
	dir := t.TempDir()
	a, inv := newTestAdapter(t, dir)
	require.NoError(t, a.Init(t.Context()))

	device, _ := inv.AddObject(objects.ClassDevice, map[string]any{"name": "h1", "serial": "SN123"}, false, nil)

	writeFile(t, dir, "h1.json", map[string]any{
		"meta": map[string]any{"inventory_layout_version": 1, "inventory_id": 0},
		"system": map[string]any{
			"serial":       "SN123",
			"manufacturer": "Dell Inc.",
			"model":        "R640",
		},
		"network_ports": []map[string]any{
			{"name": "eth0", "id": "", "mac_address": "AA:BB:CC:00:00:01", "enabled": true, "mgmt_only": false, "addresses": []string{"10.0.0.5/24"}},
		},
	})

	require.NoError(t, a.Apply(t.Context()))

	ifaces := inv.GetAllInterfaces(device)
	require.Len(t, ifaces, 1)
	assert.Equal(t, "eth0", ifaces[0].Get("name").String())
	assert.Equal(t, "AA:BB:CC:00:00:01", ifaces[0].Get("primary_mac_address").Ref.Get("mac_address").String())

	mfr, ok := inv.GetByData(objects.ClassManufacturer, map[string]any{"name": "Dell"})
	require.True(t, ok)
	assert.Equal(t, "Dell", mfr.Get("name").String())
}

func TestApplyWarnsAndSkipsUnmatchedFileWithoutFailingRun(t *testing.T) {
	dir := t.TempDir()
	a, _ := newTestAdapter(t, dir)
	require.NoError(t, a.Init(t.Context()))

	writeFile(t, dir, "orphan.json", map[string]any{
		"meta":   map[string]any{"inventory_layout_version": 1, "inventory_id": 99},
		"system": map[string]any{"serial": "UNKNOWN"},
	})

	assert.NoError(t, a.Apply(t.Context()))
}

func TestApplyCorrelatesUntaggedVLANOnPort(t *testing.T) {
	dir := t.TempDir()
	a, inv := newTestAdapter(t, dir)
	require.NoError(t, a.Init(t.Context()))

	device, _ := inv.AddObject(objects.ClassDevice, map[string]any{"name": "h1", "serial": "SN123"}, false, nil)
	vlan, _ := inv.AddObject(objects.ClassVLAN, map[string]any{"vid": 100, "name": "vlan100"}, false, nil)

	writeFile(t, dir, "h1.json", map[string]any{
		"meta": map[string]any{"inventory_layout_version": 1, "inventory_id": 0},
		"system": map[string]any{
			"serial": "SN123",
		},
		"network_ports": []map[string]any{
			{
				"name": "eth0", "mac_address": "AA:BB:CC:00:00:02", "enabled": true,
				"addresses":     []string{"10.0.0.6/24"},
				"untagged_vlan": map[string]any{"vid": 100, "name": "vlan100"},
			},
		},
	})

	require.NoError(t, a.Apply(t.Context()))

	ifaces := inv.GetAllInterfaces(device)
	require.Len(t, ifaces, 1)
	assert.Same(t, vlan, ifaces[0].Get("untagged_vlan").Ref)
}

func TestApplyRejectsOldLayoutVersion(t *testing.T) {
	dir := t.TempDir()
	a, inv := newTestAdapter(t, dir)
	require.NoError(t, a.Init(t.Context()))
	inv.AddObject(objects.ClassDevice, map[string]any{"name": "h1", "serial": "SN1"}, false, nil)

	writeFile(t, dir, "h1.json", map[string]any{
		"meta":   map[string]any{"inventory_layout_version": 0, "inventory_id": 0},
		"system": map[string]any{"serial": "SN1"},
	})

	assert.NoError(t, a.Apply(t.Context()))
}
