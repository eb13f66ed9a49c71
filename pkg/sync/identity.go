package sync

import (
	"strings"

	"github.com/netboxlabs/netbox-sync-engine/pkg/inventory"
	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
)

// interfaceClassFor returns the interface class and the field on that
// class that points back at the parent Device/VM.
func interfaceClassFor(parentClass objects.ClassTag) (objects.ClassTag, string, bool) {
	switch parentClass {
	case objects.ClassDevice:
		return objects.ClassInterface, "device", true
	case objects.ClassVM:
		return objects.ClassVMInterface, "virtual_machine", true
	default:
		return "", "", false
	}
}

// FindHost implements the identity-resolution cascade: search, in order,
// for an existing Device/VM matching a source-provided record,
// returning the first hit. ok is false (with no error) when every
// strategy misses and the caller should create a new object; err is set
// only for MAC-match ambiguity, which the caller treats as "leave
// unmatched".
func FindHost(inv *inventory.Inventory, settings Settings, class objects.ClassTag, data map[string]any, macs []string, primaryIPCandidates []string) (*objects.Entity, bool, error) {
	if e, ok := inv.GetByData(class, data); ok {
		return e, true, nil
	}

	if e, ambiguous := matchByMAC(inv, class, macs); e != nil {
		return e, true, nil
	} else if ambiguous {
		return nil, false, errAmbiguousMACMatch
	}

	if class == objects.ClassDevice && settings.MatchHostBySerial {
		if serial, ok := data["serial"].(string); ok && serial != "" {
			if e, ok := inv.GetByData(class, map[string]any{"serial": serial}); ok {
				return e, true, nil
			}
		}
		if assetTag, ok := data["asset_tag"].(string); ok && assetTag != "" {
			if e, ok := inv.GetByData(class, map[string]any{"asset_tag": assetTag}); ok {
				return e, true, nil
			}
		}
	}

	if e := matchByPrimaryIP(inv, class, primaryIPCandidates); e != nil {
		return e, true, nil
	}

	return nil, false, nil
}

// ambiguityError marks an identity-resolution outcome that is neither a
// match nor a clean miss — MAC-match tie.
type ambiguityError struct{ msg string }

func (e *ambiguityError) Error() string { return e.msg }

var errAmbiguousMACMatch = &ambiguityError{msg: "MAC-address match is ambiguous between multiple hosts"}

// matchByMAC tallies, for every interface of the appropriate child class
// whose MAC is in macs, a score against its parent entity. A single
// entity with score ≥ 1 wins outright; among multiple, the top wins only
// if its score is at least 2x the runner-up's, else the match is rejected
// as ambiguous.
func matchByMAC(inv *inventory.Inventory, class objects.ClassTag, macs []string) (*objects.Entity, bool) {
	if len(macs) == 0 {
		return nil, false
	}
	ifaceClass, parentField, ok := interfaceClassFor(class)
	if !ok {
		return nil, false
	}
	wanted := make(map[string]bool, len(macs))
	for _, m := range macs {
		wanted[normalizeMAC(m)] = true
	}

	scores := map[uint64]int{}
	byHandle := map[uint64]*objects.Entity{}
	for _, iface := range inv.All(ifaceClass) {
		mac := normalizeMAC(iface.Get("mac_address").String())
		if mac == "" || !wanted[mac] {
			continue
		}
		parent := iface.Get(parentField).Ref
		if parent == nil {
			continue
		}
		scores[parent.Handle()]++
		byHandle[parent.Handle()] = parent
	}
	if len(scores) == 0 {
		return nil, false
	}
	if len(scores) == 1 {
		for h := range scores {
			return byHandle[h], false
		}
	}

	var top, second int
	var topHandle uint64
	for h, s := range scores {
		if s > top {
			second = top
			top = s
			topHandle = h
		} else if s > second {
			second = s
		}
	}
	if second == 0 || float64(top)/float64(second) >= 2.0 {
		return byHandle[topHandle], false
	}
	return nil, true
}

func normalizeMAC(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// matchByPrimaryIP iterates every Device/VM and compares its currently-set
// primary_ip4/primary_ip6 (address stripped of prefix length) against the
// candidate addresses, IPv4 first then IPv6.
func matchByPrimaryIP(inv *inventory.Inventory, class objects.ClassTag, candidates []string) *objects.Entity {
	if len(candidates) == 0 {
		return nil
	}
	stripped := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		stripped[stripPrefix(c)] = true
	}
	for _, field := range []string{"primary_ip4", "primary_ip6"} {
		for _, e := range inv.All(class) {
			ip := e.Get(field).Ref
			if ip == nil {
				continue
			}
			if stripped[stripPrefix(ip.Get("address").String())] {
				return e
			}
		}
	}
	return nil
}

func stripPrefix(addr string) string {
	if i := strings.IndexByte(addr, '/'); i >= 0 {
		return addr[:i]
	}
	return addr
}
