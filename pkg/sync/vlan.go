package sync

import (
	"net"
	"regexp"

	"github.com/netboxlabs/netbox-sync-engine/pkg/inventory"
	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
)

// ExclusionFilter decides whether a candidate VLAN id/name should never be
// auto-created, whether excluded by numeric id or by name.
type ExclusionFilter struct {
	ExcludedVIDs  map[int]bool
	ExcludedNames map[string]bool
}

func (f ExclusionFilter) excludes(vid int, name string) bool {
	if f.ExcludedVIDs != nil && f.ExcludedVIDs[vid] {
		return true
	}
	if f.ExcludedNames != nil && f.ExcludedNames[name] {
		return true
	}
	return false
}

// CorrelateVLAN implements a three-tier lookup: prefix-VLAN match (an
// existing VLAN with matching vid on a prefix covering one of the
// interface's IPs), then scope match (site, then VLAN group matching
// site/cluster, then global), then creation subject to exclusion filters.
// ok is false when the VLAN was excluded or sync of new VLANs is disabled,
// meaning the caller should leave the interface's VLAN field unset.
func CorrelateVLAN(inv *inventory.Inventory, o *Orchestrator, vid int, name string, ifaceIPs []net.IP, host *objects.Entity, filter ExclusionFilter, allowCreate bool) (*objects.Entity, bool) {
	for _, ip := range ifaceIPs {
		if prefix := LongestMatchingPrefix(inv, ip, host); prefix != nil {
			if vlan := prefix.Get("vlan").Ref; vlan != nil && vlan.Get("vid").Int == int64(vid) {
				return vlan, true
			}
		}
	}

	var hostSite *objects.Entity
	var hostCluster *objects.Entity
	if host != nil {
		hostSite = host.Get("site").Ref
		hostCluster = host.Get("cluster").Ref
	}

	var groupMatch, globalMatch *objects.Entity
	for _, vlan := range inv.All(objects.ClassVLAN) {
		if vlan.Get("vid").Int != int64(vid) {
			continue
		}
		if hostSite != nil {
			if site := vlan.Get("site").Ref; site != nil && site.Handle() == hostSite.Handle() {
				return vlan, true
			}
		}
		if group := vlan.Get("group").Ref; group != nil && groupMatch == nil {
			if groupScopeMatches(group, hostSite, hostCluster) {
				groupMatch = vlan
			}
		}
		if globalMatch == nil {
			globalMatch = vlan
		}
	}
	if groupMatch != nil {
		return groupMatch, true
	}
	if globalMatch != nil {
		return globalMatch, true
	}

	if !allowCreate || filter.excludes(vid, name) {
		return nil, false
	}

	data := map[string]any{"vid": vid, "name": name}
	if hostSite != nil {
		data["site"] = hostSite
	}
	if group := matchVLANGroup(inv, o, vid, name); group != nil {
		data["group"] = group
		// A VLAN group already scopes the VLAN; NetBox rejects a site that
		// conflicts with the group's own scope, so drop it rather than
		// carry a contradictory pair.
		if hostSite == nil || int64(hostSite.NBID) != group.Get("scope_id").Int {
			delete(data, "site")
		}
	}
	vlan, _ := inv.AddUpdateObject(objects.ClassVLAN, data, false, nil)
	return vlan, true
}

func groupScopeMatches(group, hostSite, hostCluster *objects.Entity) bool {
	scopeID := group.Get("scope_id").Int
	if hostSite != nil && int64(hostSite.NBID) == scopeID {
		return true
	}
	if hostCluster != nil && int64(hostCluster.NBID) == scopeID {
		return true
	}
	return false
}

// matchVLANGroup attaches a newly created VLAN to a group matched either
// by a configured name regex or by a vid falling within a configured
// id-range.
func matchVLANGroup(inv *inventory.Inventory, o *Orchestrator, vid int, name string) *objects.Entity {
	if o == nil {
		return nil
	}
	if o.Settings.VLANGroupIDRangeStart > 0 && vid >= o.Settings.VLANGroupIDRangeStart && vid <= o.Settings.VLANGroupIDRangeEnd {
		for _, group := range inv.All(objects.ClassVLANGroup) {
			return group
		}
	}
	if o.Settings.VLANGroupNameRegex == "" {
		return nil
	}
	re, err := regexp.Compile(o.Settings.VLANGroupNameRegex)
	if err != nil {
		return nil
	}
	for _, group := range inv.All(objects.ClassVLANGroup) {
		if re.MatchString(group.Get("name").String()) {
			return group
		}
	}
	return nil
}
