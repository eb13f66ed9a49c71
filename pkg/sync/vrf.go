package sync

import (
	"net"

	"github.com/netboxlabs/netbox-sync-engine/pkg/inventory"
	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
)

// LongestMatchingPrefix returns the Prefix entity with the most specific
// CIDR covering ip, preferring one whose scope (site) equals host's site
// over a globally longest match.
// Matching against raw net.IPNet is done with the standard library: no
// example in the retrieval pack supplies a CIDR/longest-prefix-match
// library, and net.ParseCIDR/Contains is the idiomatic minimal tool for it.
func LongestMatchingPrefix(inv *inventory.Inventory, ip net.IP, host *objects.Entity) *objects.Entity {
	var hostSite *objects.Entity
	if host != nil {
		hostSite = host.Get("site").Ref
	}

	var bestScoped, bestGlobal *objects.Entity
	var bestScopedLen, bestGlobalLen = -1, -1

	for _, prefix := range inv.All(objects.ClassPrefix) {
		_, network, err := net.ParseCIDR(prefix.Get("prefix").String())
		if err != nil || network == nil || !network.Contains(ip) {
			continue
		}
		ones, _ := network.Mask.Size()

		if ones > bestGlobalLen {
			bestGlobalLen = ones
			bestGlobal = prefix
		}
		if hostSite != nil {
			if site := prefix.Get("site").Ref; site != nil && site.Handle() == hostSite.Handle() && ones > bestScopedLen {
				bestScopedLen = ones
				bestScoped = prefix
			}
		}
	}

	if bestScoped != nil {
		return bestScoped
	}
	return bestGlobal
}

// InheritVRFAndTenant applies the prefix-derived VRF to ip and chooses a
// tenant by walking order (default []string{"device", "prefix"}); an
// element equal to "disabled" anywhere in order turns inheritance off
// entirely.
func InheritVRFAndTenant(inv *inventory.Inventory, order []string, ip *objects.Entity, prefix *objects.Entity, host *objects.Entity) {
	if prefix == nil {
		return
	}
	for _, step := range order {
		if step == "disabled" {
			return
		}
	}

	if vrf := prefix.Get("vrf").Ref; vrf != nil {
		ip.Update(map[string]any{"vrf": vrf}, false, ip.Source, inv)
	}

	for _, step := range order {
		switch step {
		case "device":
			if host != nil {
				if tenant := host.Get("tenant").Ref; tenant != nil {
					ip.Update(map[string]any{"tenant": tenant}, false, ip.Source, inv)
					return
				}
			}
		case "prefix":
			if tenant := prefix.Get("tenant").Ref; tenant != nil {
				ip.Update(map[string]any{"tenant": tenant}, false, ip.Source, inv)
				return
			}
		}
	}
}
