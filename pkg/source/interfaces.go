package source

import (
	"sort"
	"strings"

	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
)

// InterfaceSpec is the per-NIC shape an adapter hands to
// MapObjectInterfacesToCurrentInterfaces/AddUpdateInterface: enough to
// identify and create/update one Interface or VMInterface.
type InterfaceSpec struct {
	Name     string
	MAC      string
	Physical bool
}

func interfaceKind(physical bool) string {
	if physical {
		return "physical"
	}
	return "virtual"
}

// MapObjectInterfacesToCurrentInterfaces implements the identity match
// for NICs: exact name, then MAC match partitioned by physical/virtual
// type, then MAC match ignoring type, then — for whatever's left — pair
// unmatched incoming names to unmatched current interfaces 1:1 in sorted
// order (or leave unmatched entirely when appendUnmatched is true).
func MapObjectInterfacesToCurrentInterfaces(inv Inventory, parent *objects.Entity, incoming map[string]InterfaceSpec, appendUnmatched bool) map[string]*objects.Entity {
	current := inv.GetAllInterfaces(parent)

	byName := map[string]*objects.Entity{}
	byTypedMAC := map[string]*objects.Entity{}
	byMAC := map[string]*objects.Entity{}
	var currentNames []string

	for _, iface := range current {
		name := iface.Get("name").String()
		mac := normalizeMACAddr(iface.Get("mac_address").String())
		physical := !strings.Contains(iface.Get("type").String(), "virtual")

		if name != "" {
			byName[name] = iface
			currentNames = append(currentNames, name)
		}
		if mac != "" {
			byTypedMAC[interfaceKind(physical)+"|"+mac] = iface
			byMAC[mac] = iface
		}
	}

	result := map[string]*objects.Entity{}
	usedCurrent := map[uint64]bool{}
	var unmatchedIncoming []string

	// Stable order over incoming for deterministic output.
	var incomingNames []string
	for name := range incoming {
		incomingNames = append(incomingNames, name)
	}
	sort.Strings(incomingNames)

	for _, name := range incomingNames {
		spec := incoming[name]
		result[name] = nil
		mac := normalizeMACAddr(spec.MAC)

		var match *objects.Entity
		if m, ok := byName[name]; ok {
			match = m
		} else if mac != "" {
			if m, ok := byTypedMAC[interfaceKind(spec.Physical)+"|"+mac]; ok {
				match = m
			} else if m, ok := byMAC[mac]; ok && !usedCurrent[m.Handle()] {
				match = m
			}
		}

		if match != nil {
			result[name] = match
			usedCurrent[match.Handle()] = true
			currentNames = removeStringFromSlice(currentNames, match.Get("name").String())
		} else {
			unmatchedIncoming = append(unmatchedIncoming, name)
		}
	}

	sort.Strings(currentNames)
	sort.Strings(unmatchedIncoming)

	if appendUnmatched {
		for _, name := range unmatchedIncoming {
			result[name] = nil
		}
		return result
	}

	n := len(currentNames)
	if len(unmatchedIncoming) < n {
		n = len(unmatchedIncoming)
	}
	for i := 0; i < n; i++ {
		result[unmatchedIncoming[i]] = byName[currentNames[i]]
	}
	return result
}

func removeStringFromSlice(list []string, s string) []string {
	out := list[:0:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

func normalizeMACAddr(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Inventory is the slice of *inventory.Inventory's surface this package
// needs, kept as an interface so pkg/source never imports pkg/inventory's
// concrete type directly in helper signatures that only need this much —
// mirrors the Resolver seam in pkg/objects/update.go.
type Inventory interface {
	GetAllInterfaces(parent *objects.Entity) []*objects.Entity
	AddUpdateObject(class objects.ClassTag, data map[string]any, readFromNetbox bool, src objects.SourceRef) (*objects.Entity, []objects.Issue)
	GetByData(class objects.ClassTag, data map[string]any) (*objects.Entity, bool)
	All(class objects.ClassTag) []*objects.Entity
}
