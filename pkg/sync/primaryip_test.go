package sync

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"

	"github.com/netboxlabs/netbox-sync-engine/pkg/inventory"
	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
)

func TestArbitratePrimaryIPNoExistingHolderProceeds(t *testing.T) {
	assert.Equal(t, ArbitrationProceed, ArbitratePrimaryIP(nil, nil))
}

func TestArbitratePrimaryIPAnycastAlwaysProceeds(t *testing.T) {
	inv := inventory.New(logr.Discard())
	ip, _ := inv.AddObject(objects.ClassIPAddress, map[string]any{"address": "10.0.0.1/32", "role": "anycast"}, false, nil)

	assert.Equal(t, ArbitrationProceed, ArbitratePrimaryIP(ip, nil))
}

func TestArbitratePrimaryIPSameParentDifferentInterfaceReassigns(t *testing.T) {
	inv := inventory.New(logr.Discard())
	device, _ := inv.AddObject(objects.ClassDevice, map[string]any{"name": "h1"}, false, nil)
	eth0, _ := inv.AddObject(objects.ClassInterface, map[string]any{"name": "eth0", "device": device}, false, nil)
	eth1, _ := inv.AddObject(objects.ClassInterface, map[string]any{"name": "eth1", "device": device}, false, nil)
	inv.ResolveRelations()

	ip, _ := inv.AddObject(objects.ClassIPAddress, map[string]any{
		"address": "10.0.0.1/32", "assigned_object_type": "dcim.interface", "assigned_object_id": eth0,
	}, false, nil)
	inv.ResolveRelations()

	assert.Equal(t, ArbitrationReassign, ArbitratePrimaryIP(ip, eth1))
}

func TestArbitratePrimaryIPOursWinsWhenExistingDisabled(t *testing.T) {
	inv := inventory.New(logr.Discard())
	d1, _ := inv.AddObject(objects.ClassDevice, map[string]any{"name": "h1"}, false, nil)
	d2, _ := inv.AddObject(objects.ClassDevice, map[string]any{"name": "h2"}, false, nil)
	theirs, _ := inv.AddObject(objects.ClassInterface, map[string]any{"name": "eth0", "device": d1, "enabled": false}, false, nil)
	ours, _ := inv.AddObject(objects.ClassInterface, map[string]any{"name": "eth0", "device": d2, "enabled": true}, false, nil)
	inv.ResolveRelations()

	ip, _ := inv.AddObject(objects.ClassIPAddress, map[string]any{
		"address": "10.0.0.1/32", "assigned_object_type": "dcim.interface", "assigned_object_id": theirs,
	}, false, nil)
	inv.ResolveRelations()

	assert.Equal(t, ArbitrationProceed, ArbitratePrimaryIP(ip, ours))
}

func TestArbitratePrimaryIPOursLosesWhenExistingEnabled(t *testing.T) {
	inv := inventory.New(logr.Discard())
	d1, _ := inv.AddObject(objects.ClassDevice, map[string]any{"name": "h1"}, false, nil)
	d2, _ := inv.AddObject(objects.ClassDevice, map[string]any{"name": "h2"}, false, nil)
	theirs, _ := inv.AddObject(objects.ClassInterface, map[string]any{"name": "eth0", "device": d1, "enabled": true}, false, nil)
	ours, _ := inv.AddObject(objects.ClassInterface, map[string]any{"name": "eth0", "device": d2, "enabled": false}, false, nil)
	inv.ResolveRelations()

	ip, _ := inv.AddObject(objects.ClassIPAddress, map[string]any{
		"address": "10.0.0.1/32", "assigned_object_type": "dcim.interface", "assigned_object_id": theirs,
	}, false, nil)
	inv.ResolveRelations()

	assert.Equal(t, ArbitrationSkip, ArbitratePrimaryIP(ip, ours))
}

func TestArbitratePrimaryIPBothEnabledDefers(t *testing.T) {
	inv := inventory.New(logr.Discard())
	d1, _ := inv.AddObject(objects.ClassDevice, map[string]any{"name": "h1"}, false, nil)
	d2, _ := inv.AddObject(objects.ClassDevice, map[string]any{"name": "h2"}, false, nil)
	theirs, _ := inv.AddObject(objects.ClassInterface, map[string]any{"name": "eth0", "device": d1, "enabled": true}, false, nil)
	ours, _ := inv.AddObject(objects.ClassInterface, map[string]any{"name": "eth0", "device": d2, "enabled": true}, false, nil)
	inv.ResolveRelations()

	ip, _ := inv.AddObject(objects.ClassIPAddress, map[string]any{
		"address": "10.0.0.1/32", "assigned_object_type": "dcim.interface", "assigned_object_id": theirs,
	}, false, nil)
	inv.ResolveRelations()

	assert.Equal(t, ArbitrationDefer, ArbitratePrimaryIP(ip, ours))
}

func TestSetPrimaryIPNeverPolicyIsNoop(t *testing.T) {
	inv := inventory.New(logr.Discard())
	device, _ := inv.AddObject(objects.ClassDevice, map[string]any{"name": "h1"}, false, nil)
	ip, _ := inv.AddObject(objects.ClassIPAddress, map[string]any{"address": "10.0.0.1/32"}, false, nil)

	SetPrimaryIP(inv, "never", device, "primary_ip4", ip)

	assert.True(t, device.Get("primary_ip4").IsEmpty())
}

func TestSetPrimaryIPWhenUndefinedOnlyFillsEmptyField(t *testing.T) {
	inv := inventory.New(logr.Discard())
	device, _ := inv.AddObject(objects.ClassDevice, map[string]any{"name": "h1"}, false, nil)
	existingIP, _ := inv.AddObject(objects.ClassIPAddress, map[string]any{"address": "10.0.0.1/32"}, false, nil)
	device.Update(map[string]any{"primary_ip4": existingIP}, false, nil, inv)

	newIP, _ := inv.AddObject(objects.ClassIPAddress, map[string]any{"address": "10.0.0.2/32"}, false, nil)
	SetPrimaryIP(inv, "when-undefined", device, "primary_ip4", newIP)

	assert.Same(t, existingIP, device.Get("primary_ip4").Ref)
}

// TestApplySoleIPv6FallbackPromotesSingleAddress covers the engine-level
// sole-IPv6 policy: a host whose interfaces carry exactly one IPv6 and no
// primary IP of either family gets that address as primary_ip6.
func TestApplySoleIPv6FallbackPromotesSingleAddress(t *testing.T) {
	inv := inventory.New(logr.Discard())
	vm, _ := inv.AddObject(objects.ClassVM, map[string]any{"name": "vm1"}, false, nil)
	vm.Source = fakeSource{name: "hv"}
	iface, _ := inv.AddObject(objects.ClassVMInterface, map[string]any{"name": "eth0", "virtual_machine": vm}, false, nil)
	v6, _ := inv.AddObject(objects.ClassIPAddress, map[string]any{
		"address": "fd00::10/64", "assigned_object_type": "virtualization.vminterface", "assigned_object_id": iface,
	}, false, nil)
	inv.ResolveRelations()

	o := &Orchestrator{Inv: inv, Settings: Settings{PreferSoleIPv6AsPrimary: true}}
	o.ApplySoleIPv6Fallback()

	assert.Same(t, v6, vm.Get("primary_ip6").Ref)
}

func TestApplySoleIPv6FallbackSkipsHostsWithMultipleAddresses(t *testing.T) {
	inv := inventory.New(logr.Discard())
	vm, _ := inv.AddObject(objects.ClassVM, map[string]any{"name": "vm1"}, false, nil)
	vm.Source = fakeSource{name: "hv"}
	iface, _ := inv.AddObject(objects.ClassVMInterface, map[string]any{"name": "eth0", "virtual_machine": vm}, false, nil)
	for _, addr := range []string{"fd00::10/64", "fd00::11/64"} {
		inv.AddObject(objects.ClassIPAddress, map[string]any{
			"address": addr, "assigned_object_type": "virtualization.vminterface", "assigned_object_id": iface,
		}, false, nil)
	}
	inv.ResolveRelations()

	o := &Orchestrator{Inv: inv, Settings: Settings{PreferSoleIPv6AsPrimary: true}}
	o.ApplySoleIPv6Fallback()

	assert.True(t, vm.Get("primary_ip6").IsEmpty())
}

func TestSetPrimaryIPAlwaysStealsFromOtherHolder(t *testing.T) {
	inv := inventory.New(logr.Discard())
	oldHolder, _ := inv.AddObject(objects.ClassDevice, map[string]any{"name": "h1"}, false, nil)
	newHolder, _ := inv.AddObject(objects.ClassDevice, map[string]any{"name": "h2"}, false, nil)
	ip, _ := inv.AddObject(objects.ClassIPAddress, map[string]any{"address": "10.0.0.1/32"}, false, nil)
	oldHolder.Update(map[string]any{"primary_ip4": ip}, false, nil, inv)

	SetPrimaryIP(inv, "always", newHolder, "primary_ip4", ip)

	assert.True(t, oldHolder.Get("primary_ip4").IsEmpty())
	assert.Same(t, ip, newHolder.Get("primary_ip4").Ref)
}
