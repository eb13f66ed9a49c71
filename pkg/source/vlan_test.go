package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
)

func TestVLANFilterMatchesByVIDAndSite(t *testing.T) {
	f := VLANFilter{VID: 100, SiteName: "dc1"}
	assert.True(t, f.matches("anything", 100, "dc1"))
	assert.False(t, f.matches("anything", 100, "dc2"))
	assert.False(t, f.matches("anything", 200, "dc1"))
}

func TestVLANFilterMatchesByNameRegex(t *testing.T) {
	f := VLANFilter{NameRegex: "^mgmt-.*"}
	assert.True(t, f.matches("mgmt-vlan1", 1, ""))
	assert.False(t, f.matches("data-vlan1", 1, ""))
}

func TestAddVLANObjectToNetboxRejectsReservedAndOutOfRangeIDs(t *testing.T) {
	b := newTestBase(t)
	assert.False(t, b.AddVLANObjectToNetbox(4095, "vgt", "", nil, nil))
	assert.False(t, b.AddVLANObjectToNetbox(5000, "bogus", "", nil, nil))
}

func TestAddVLANObjectToNetboxDisabledWhenVLANSyncOff(t *testing.T) {
	b := newTestBase(t)
	b.Settings.DisableVLANSync = true
	assert.False(t, b.AddVLANObjectToNetbox(100, "v100", "dc1", nil, nil))
}

func TestAddVLANObjectToNetboxHonoursExcludeFilters(t *testing.T) {
	b := newTestBase(t)
	excludeByName := []VLANFilter{{NameRegex: "^blocked-.*"}}
	assert.False(t, b.AddVLANObjectToNetbox(100, "blocked-vlan", "dc1", excludeByName, nil))
	assert.True(t, b.AddVLANObjectToNetbox(100, "allowed-vlan", "dc1", excludeByName, nil))
}

func TestAddVLANGroupLeavesExistingGroupUntouched(t *testing.T) {
	b := newTestBase(t)
	existingGroup, _ := b.Inv.AddObject(objects.ClassVLANGroup, map[string]any{"name": "g1"}, false, nil)

	data := map[string]any{"vid": 100, "group": existingGroup}
	got := b.AddVLANGroup(data)
	assert.Same(t, existingGroup, got["group"])
}

func TestAddVLANGroupAttachesByIDRangeAndDropsConflictingSite(t *testing.T) {
	b := newTestBase(t)
	b.SyncSet.VLANGroupIDRangeStart = 100
	b.SyncSet.VLANGroupIDRangeEnd = 200

	b.Inv.AddObject(objects.ClassVLANGroup, map[string]any{"id": float64(5), "name": "g1", "scope_id": float64(99)}, true, nil)
	site, _ := b.Inv.AddObject(objects.ClassSite, map[string]any{"id": float64(1), "name": "dc1"}, true, nil)

	data := map[string]any{"vid": 150, "site": site}
	got := b.AddVLANGroup(data)

	require.NotNil(t, got["group"])
	_, hasSite := got["site"]
	assert.False(t, hasSite, "group scope (99) differs from the vlan's site id (1), so site must be dropped")
}

func TestAddVLANGroupNoConfiguredMatchLeavesDataUnchanged(t *testing.T) {
	b := newTestBase(t)
	data := map[string]any{"vid": 100}
	got := b.AddVLANGroup(data)
	_, hasGroup := got["group"]
	assert.False(t, hasGroup)
}

func TestGetVLANObjectIfExistsFindsGlobalVLANWithoutCreating(t *testing.T) {
	b := newTestBase(t)
	vlan, _ := b.Inv.AddObject(objects.ClassVLAN, map[string]any{"vid": 100, "name": "v100"}, false, nil)

	got := b.GetVLANObjectIfExists(nil, 100, nil)
	assert.Same(t, vlan, got)
}

func TestGetVLANObjectIfExistsNeverCreatesOnMiss(t *testing.T) {
	b := newTestBase(t)
	assert.Nil(t, b.GetVLANObjectIfExists(nil, 999, nil))
	assert.Empty(t, b.Inv.All(objects.ClassVLAN))
}
