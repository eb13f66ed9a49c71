package source

import (
	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
	"github.com/netboxlabs/netbox-sync-engine/pkg/sync"
)

// FindOrCreateHost resolves an existing Device/VM for a source record
// through the full identity cascade (sync.FindHost: exact match, MAC
// match, serial/asset match, primary-IP match) before falling back to
// creating a new entity. Adapters use this instead of
// Inventory.AddUpdateObject for Devices/VMs so a renamed or
// re-provisioned host is recognised rather than duplicated.
func (b *Base) FindOrCreateHost(class objects.ClassTag, data map[string]any, macs []string, primaryIPCandidates []string) *objects.Entity {
	host, ok, err := sync.FindHost(b.Inv, b.SyncSet, class, data, macs, primaryIPCandidates)
	if err != nil {
		b.Errors.Warnf("%s identity resolution for %v: %v", class, data, err)
		ok = false
	}
	if ok {
		host.Update(data, false, b, b.Inv)
		return host
	}
	host, _ = b.Inv.AddObject(class, data, false, b)
	return host
}
