package source

import (
	"net"
	"regexp"

	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
	"github.com/netboxlabs/netbox-sync-engine/pkg/sync"
)

// VLANFilter is a (vid-or-name, site) exclusion rule for
// AddVLANObjectToNetbox: an empty SiteName applies everywhere, a set one
// restricts the rule to that site.
type VLANFilter struct {
	NameRegex string
	VID       int
	SiteName  string
}

func (f VLANFilter) matches(name string, vid int, site string) bool {
	if f.SiteName != "" && f.SiteName != site {
		return false
	}
	if f.NameRegex != "" {
		re, err := regexp.Compile(f.NameRegex)
		return err == nil && re.MatchString(name)
	}
	if f.VID != 0 {
		return f.VID == vid
	}
	return false
}

// GetVLANObjectIfExists looks up an existing VLAN for vid against host,
// without creating one: it runs sync.CorrelateVLAN's lookup tiers (prefix
// match, site match, VLAN-group scope match, global match) with
// allowCreate false, so an adapter gets the same correlation the
// orchestrator itself uses.
func (b *Base) GetVLANObjectIfExists(host *objects.Entity, vid int, ifaceIPs []net.IP) *objects.Entity {
	vlan, _ := sync.CorrelateVLAN(b.Inv, nil, vid, "", ifaceIPs, host, sync.ExclusionFilter{}, false)
	return vlan
}

// AddVLANObjectToNetbox decides whether a newly discovered VLAN
// should be synced: VLAN id 4095 (VMware "Virtual Guest Tagging") and ids
// ≥ 4096 are always rejected; VLAN sync can be disabled wholesale per
// adapter settings; otherwise the configured exclude filters (by name or
// id, optionally site-qualified) get the final say.
func (b *Base) AddVLANObjectToNetbox(vid int, name, siteName string, excludeByName, excludeByID []VLANFilter) bool {
	if b.Settings.DisableVLANSync {
		return false
	}
	if vid == 4095 {
		return false
	}
	if vid >= 4096 {
		b.Errors.Warnf("skipping sync of invalid VLAN %q id %d", name, vid)
		return false
	}
	for _, f := range excludeByName {
		if f.matches(name, vid, siteName) {
			return false
		}
	}
	for _, f := range excludeByID {
		if f.matches(name, vid, siteName) {
			return false
		}
	}
	return true
}

// AddVLANGroup attaches a matching VLAN group to vlanData — by the
// engine's configured name regex or id-range, same rule sync.CorrelateVLAN
// applies when the orchestrator itself creates a VLAN — and drops the
// site key when the group's scope differs from the VLAN's current site,
// since NetBox rejects a VLAN whose site conflicts with its group's
// scope.
func (b *Base) AddVLANGroup(vlanData map[string]any) map[string]any {
	if _, has := vlanData["group"]; has {
		return vlanData
	}
	vid, _ := vlanData["vid"].(int)

	var group *objects.Entity
	if b.SyncSet.VLANGroupIDRangeStart > 0 && vid >= b.SyncSet.VLANGroupIDRangeStart && vid <= b.SyncSet.VLANGroupIDRangeEnd {
		for _, g := range b.Inv.All(objects.ClassVLANGroup) {
			group = g
			break
		}
	}
	if group == nil && b.SyncSet.VLANGroupNameRegex != "" {
		if re, err := regexp.Compile(b.SyncSet.VLANGroupNameRegex); err == nil {
			for _, g := range b.Inv.All(objects.ClassVLANGroup) {
				if re.MatchString(g.Get("name").String()) {
					group = g
					break
				}
			}
		}
	}
	if group == nil {
		return vlanData
	}

	vlanData["group"] = group
	if site, ok := vlanData["site"].(*objects.Entity); ok && site != nil {
		if int64(site.NBID) != group.Get("scope_id").Int {
			delete(vlanData, "site")
		}
	}
	return vlanData
}
