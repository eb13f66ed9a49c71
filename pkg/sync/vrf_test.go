package sync

import (
	"net"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"

	"github.com/netboxlabs/netbox-sync-engine/pkg/inventory"
	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
)

func TestLongestMatchingPrefixPrefersMoreSpecificMatch(t *testing.T) {
	inv := inventory.New(logr.Discard())
	inv.AddObject(objects.ClassPrefix, map[string]any{"prefix": "10.0.0.0/8"}, false, nil)
	narrow, _ := inv.AddObject(objects.ClassPrefix, map[string]any{"prefix": "10.0.0.0/24"}, false, nil)

	got := LongestMatchingPrefix(inv, net.ParseIP("10.0.0.5"), nil)
	assert.Same(t, narrow, got)
}

func TestLongestMatchingPrefixPrefersSiteScopedOverLongerGlobal(t *testing.T) {
	inv := inventory.New(logr.Discard())
	site, _ := inv.AddObject(objects.ClassSite, map[string]any{"name": "dc1"}, false, nil)
	device, _ := inv.AddObject(objects.ClassDevice, map[string]any{"name": "h1", "site": site}, false, nil)

	inv.AddObject(objects.ClassPrefix, map[string]any{"prefix": "10.0.0.0/24"}, false, nil)
	scoped, _ := inv.AddObject(objects.ClassPrefix, map[string]any{"prefix": "10.0.0.0/26", "site": site}, false, nil)

	got := LongestMatchingPrefix(inv, net.ParseIP("10.0.0.5"), device)
	assert.Same(t, scoped, got)
}

func TestLongestMatchingPrefixNoMatchReturnsNil(t *testing.T) {
	inv := inventory.New(logr.Discard())
	inv.AddObject(objects.ClassPrefix, map[string]any{"prefix": "10.0.0.0/24"}, false, nil)

	assert.Nil(t, LongestMatchingPrefix(inv, net.ParseIP("192.168.1.1"), nil))
}

func TestInheritVRFAndTenantAppliesVRFAndDeviceTenant(t *testing.T) {
	inv := inventory.New(logr.Discard())
	vrf, _ := inv.AddObject(objects.ClassVRF, map[string]any{"name": "vrf-a"}, false, nil)
	tenant, _ := inv.AddObject(objects.ClassTenant, map[string]any{"name": "team-a"}, false, nil)
	device, _ := inv.AddObject(objects.ClassDevice, map[string]any{"name": "h1", "tenant": tenant}, false, nil)
	prefix, _ := inv.AddObject(objects.ClassPrefix, map[string]any{"prefix": "10.0.0.0/24", "vrf": vrf}, false, nil)
	ip, _ := inv.AddObject(objects.ClassIPAddress, map[string]any{"address": "10.0.0.5/32"}, false, nil)

	InheritVRFAndTenant(inv, []string{"device", "prefix"}, ip, prefix, device)

	assert.Same(t, vrf, ip.Get("vrf").Ref)
	assert.Same(t, tenant, ip.Get("tenant").Ref)
}

func TestInheritVRFAndTenantFallsBackToPrefixTenant(t *testing.T) {
	inv := inventory.New(logr.Discard())
	prefixTenant, _ := inv.AddObject(objects.ClassTenant, map[string]any{"name": "prefix-tenant"}, false, nil)
	device, _ := inv.AddObject(objects.ClassDevice, map[string]any{"name": "h1"}, false, nil)
	prefix, _ := inv.AddObject(objects.ClassPrefix, map[string]any{"prefix": "10.0.0.0/24", "tenant": prefixTenant}, false, nil)
	ip, _ := inv.AddObject(objects.ClassIPAddress, map[string]any{"address": "10.0.0.5/32"}, false, nil)

	InheritVRFAndTenant(inv, []string{"device", "prefix"}, ip, prefix, device)

	assert.Same(t, prefixTenant, ip.Get("tenant").Ref)
}

func TestInheritVRFAndTenantDisabledIsNoop(t *testing.T) {
	inv := inventory.New(logr.Discard())
	tenant, _ := inv.AddObject(objects.ClassTenant, map[string]any{"name": "team-a"}, false, nil)
	device, _ := inv.AddObject(objects.ClassDevice, map[string]any{"name": "h1", "tenant": tenant}, false, nil)
	prefix, _ := inv.AddObject(objects.ClassPrefix, map[string]any{"prefix": "10.0.0.0/24"}, false, nil)
	ip, _ := inv.AddObject(objects.ClassIPAddress, map[string]any{"address": "10.0.0.5/32"}, false, nil)

	InheritVRFAndTenant(inv, []string{"disabled", "device"}, ip, prefix, device)

	assert.True(t, ip.Get("tenant").IsEmpty())
}

func TestInheritVRFAndTenantNilPrefixIsNoop(t *testing.T) {
	inv := inventory.New(logr.Discard())
	ip, _ := inv.AddObject(objects.ClassIPAddress, map[string]any{"address": "10.0.0.5/32"}, false, nil)
	InheritVRFAndTenant(inv, []string{"device", "prefix"}, ip, nil, nil)
	assert.True(t, ip.Get("vrf").IsEmpty())
}
