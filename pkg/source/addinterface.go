package source

import (
	"net"

	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
	"github.com/netboxlabs/netbox-sync-engine/pkg/sync"
)

// IPSpec is one address an adapter discovered attached to an interface.
type IPSpec struct {
	Address string
	Enabled bool
	Primary bool
	Role    string
}

// VLANSpec is one untagged or tagged VLAN an adapter discovered attached
// to an interface, identified the way a source reports it: a vid and a
// name, not yet correlated against NetBox's own VLAN/VLAN-group state.
type VLANSpec struct {
	VID  int
	Name string
}

// AddUpdateInterface is the framework's centerpiece helper: it creates
// or updates one Interface/VMInterface from data, resolves any
// untagged/tagged VLANs the adapter reported, migrates the MAC address
// onto its own primary-MAC-entity when useMACEntity is set, and walks
// ips through the primary-IP arbitration rules in assignInterfaceIP,
// including unsetting the previous holder's primary_ip4/6 when a steal
// occurs.
func (b *Base) AddUpdateInterface(class objects.ClassTag, existing, parent *objects.Entity, data map[string]any, ips []IPSpec, useMACEntity bool, untaggedVLAN *VLANSpec, taggedVLANs []VLANSpec) (*objects.Entity, []*objects.Entity) {
	ips = b.permittedIPs(ips)
	ifaceIPs := parseIPs(ips)

	if untaggedVLAN != nil {
		if vlan := b.resolveVLAN(parent, *untaggedVLAN, ifaceIPs); vlan != nil {
			data["untagged_vlan"] = vlan
		}
	}
	if len(taggedVLANs) > 0 {
		var vlans []*objects.Entity
		for _, spec := range taggedVLANs {
			if vlan := b.resolveVLAN(parent, spec, ifaceIPs); vlan != nil {
				vlans = append(vlans, vlan)
			}
		}
		if len(vlans) > 0 {
			data["tagged_vlans"] = vlans
		}
	}

	var iface *objects.Entity
	if existing != nil {
		existing.Update(data, false, b, b.Inv)
		iface = existing
	} else {
		iface, _ = b.Inv.AddUpdateObject(class, data, false, b)
	}

	if mac, ok := data["mac_address"].(string); ok && mac != "" && useMACEntity {
		macEntity, _ := b.Inv.AddUpdateObject(objects.ClassMACAddress, map[string]any{
			"mac_address":          mac,
			"assigned_object_type": assignedObjectType(class),
			"assigned_object_id":   iface,
		}, false, b)
		iface.Update(map[string]any{"primary_mac_address": macEntity}, false, b, b.Inv)
	}

	var ipObjects []*objects.Entity
	for _, spec := range ips {
		ip := b.assignInterfaceIP(iface, parent, spec)
		if ip != nil {
			ipObjects = append(ipObjects, ip)
		}
	}

	return iface, ipObjects
}

// permittedIPs drops every address the adapter's permitted-subnet filter
// rejects, so the boundary is enforced once here for all sources rather
// than reimplemented per adapter. Unparseable addresses are rejected too
// (Permitted treats a nil IP as not permitted).
func (b *Base) permittedIPs(ips []IPSpec) []IPSpec {
	out := ips[:0:0]
	for _, spec := range ips {
		addr, _, err := net.ParseCIDR(ensureCIDR(spec.Address))
		if err != nil {
			addr = net.ParseIP(spec.Address)
		}
		if !b.Settings.PermittedSubnets.Permitted(addr) {
			b.Log.V(1).Info("skipping address outside permitted subnets", "address", spec.Address)
			continue
		}
		out = append(out, spec)
	}
	return out
}

// parseIPs extracts the parsed addresses from a set of IPSpecs for
// CorrelateVLAN's prefix-match tier, skipping anything unparseable.
func parseIPs(ips []IPSpec) []net.IP {
	var out []net.IP
	for _, spec := range ips {
		if addr, _, err := net.ParseCIDR(ensureCIDR(spec.Address)); err == nil {
			out = append(out, addr)
		}
	}
	return out
}

// resolveVLAN correlates one VLAN an adapter reported against existing
// NetBox state via GetVLANObjectIfExists, creating it — subject to the
// sync/exclude filters and VLAN-group attachment rules — when no match
// exists.
func (b *Base) resolveVLAN(host *objects.Entity, spec VLANSpec, ifaceIPs []net.IP) *objects.Entity {
	if vlan := b.GetVLANObjectIfExists(host, spec.VID, ifaceIPs); vlan != nil {
		return vlan
	}

	var hostSite *objects.Entity
	siteName := ""
	if host != nil {
		hostSite = host.Get("site").Ref
		if hostSite != nil {
			siteName = hostSite.GetDisplayName(false)
		}
	}
	if !b.AddVLANObjectToNetbox(spec.VID, spec.Name, siteName, nil, nil) {
		return nil
	}

	vlanData := map[string]any{"vid": spec.VID, "name": spec.Name}
	if hostSite != nil {
		vlanData["site"] = hostSite
	}
	vlanData = b.AddVLANGroup(vlanData)

	vlan, _ := b.Inv.AddUpdateObject(objects.ClassVLAN, vlanData, false, b)
	return vlan
}

func assignedObjectType(class objects.ClassTag) string {
	if class == objects.ClassVMInterface {
		return "virtualization.vminterface"
	}
	return "dcim.interface"
}

// assignInterfaceIP creates/updates the IPAddress for spec, re-homing it
// onto iface per sync.ArbitratePrimaryIP's rules, and — when spec.Primary
// and the configured set_primary_ip policy allows — hands primary-IP
// status to parent, unsetting the field on whatever Device/VM held it
// before.
func (b *Base) assignInterfaceIP(iface, parent *objects.Entity, spec IPSpec) *objects.Entity {
	existing, _ := b.Inv.GetByData(objects.ClassIPAddress, map[string]any{"address": spec.Address})

	outcome := sync.ArbitratePrimaryIP(existing, iface)
	switch outcome {
	case sync.ArbitrationSkip:
		b.Errors.Warnf("skipping IP %s: already held by an enabled interface elsewhere", spec.Address)
		return existing
	case sync.ArbitrationDefer:
		b.Deferred.Defer(iface, existing, map[string]any{"address": spec.Address, "role": spec.Role})
		return existing
	}

	ipData := map[string]any{
		"address":             spec.Address,
		"assigned_object_type": assignedObjectType(iface.Class),
		"assigned_object_id":  iface,
	}
	if spec.Role != "" {
		ipData["role"] = spec.Role
	}

	var ip *objects.Entity
	if existing != nil && outcome == sync.ArbitrationReassign {
		existing.Update(ipData, false, b, b.Inv)
		ip = existing
	} else {
		ip, _ = b.Inv.AddUpdateObject(objects.ClassIPAddress, ipData, false, b)
	}

	if addr, _, err := net.ParseCIDR(ensureCIDR(spec.Address)); err == nil {
		if prefix := sync.LongestMatchingPrefix(b.Inv, addr, parent); prefix != nil {
			sync.InheritVRFAndTenant(b.Inv, b.tenantInheritanceOrder(), ip, prefix, parent)
		}
	}

	if spec.Primary && parent != nil {
		field := "primary_ip4"
		if isIPv6(spec.Address) {
			field = "primary_ip6"
		}
		sync.SetPrimaryIP(b.Inv, b.Settings.SetPrimaryIP, parent, field, ip)
	}

	return ip
}

// ReturnLongestMatchingPrefixForIP exposes the site-scoped-first,
// global-fallback longest-prefix match to adapters that need the covering
// Prefix directly (e.g. to read its VLAN or VRF) rather than through
// AddUpdateInterface's own correlation.
func (b *Base) ReturnLongestMatchingPrefixForIP(ip net.IP, host *objects.Entity) *objects.Entity {
	return sync.LongestMatchingPrefix(b.Inv, ip, host)
}

// tenantInheritanceOrder resolves the effective inheritance walk for this
// adapter: its own configured order first, the engine-level order next,
// and the built-in [device, prefix] default last.
func (b *Base) tenantInheritanceOrder() []string {
	if len(b.Settings.IPTenantInheritanceOrder) > 0 {
		return b.Settings.IPTenantInheritanceOrder
	}
	if len(b.SyncSet.TenantInheritanceOrder) > 0 {
		return b.SyncSet.TenantInheritanceOrder
	}
	return []string{"device", "prefix"}
}

func ensureCIDR(addr string) string {
	for _, c := range addr {
		if c == '/' {
			return addr
		}
	}
	if isIPv6(addr) {
		return addr + "/128"
	}
	return addr + "/32"
}

func isIPv6(addr string) bool {
	for _, c := range addr {
		if c == ':' {
			return true
		}
	}
	return false
}
