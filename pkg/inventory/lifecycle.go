package inventory

import (
	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
)

// ResolveRelations walks every entity in the inventory and substitutes any
// still-pending reference/reference-list field with a live handle now that
// more classes may have been loaded — run once after the bulk load from
// NetBox/cache, and again after every per-object update.
func (inv *Inventory) ResolveRelations() {
	for _, class := range objects.Order() {
		for _, e := range inv.All(class) {
			for field, pend := range e.PendingFields() {
				if resolved, ok := inv.GetByID(pend.Class, pend.ID); ok {
					e.SetResolvedReference(field, resolved)
				}
			}
			for field, pendList := range e.PendingListFields() {
				var stillPending []objects.PendingRef
				for _, pend := range pendList {
					if resolved, ok := inv.GetByID(pend.Class, pend.ID); ok {
						e.AppendResolvedReference(field, resolved)
					} else {
						stillPending = append(stillPending, pend)
					}
				}
				if len(stillPending) == 0 {
					e.ClearPendingList(field)
				}
			}
		}
	}
}

// GetAllInterfaces returns the Interfaces (for a Device) or VMInterfaces
// (for a VM) whose parent/virtual_machine field points at parent.
func (inv *Inventory) GetAllInterfaces(parent *objects.Entity) []*objects.Entity {
	if parent == nil {
		return nil
	}
	var class objects.ClassTag
	var field string
	switch parent.Class {
	case objects.ClassDevice:
		class, field = objects.ClassInterface, "device"
	case objects.ClassVM:
		class, field = objects.ClassVMInterface, "virtual_machine"
	default:
		return nil
	}

	var out []*objects.Entity
	for _, iface := range inv.All(class) {
		if ref := iface.Get(field).Ref; ref != nil && ref.Handle() == parent.Handle() {
			out = append(out, iface)
		}
	}
	return out
}

// TagLifecycle stamps the primary and per-source tags onto every entity
// that has a current source this run, and marks unmanaged entities
// (entities with no current source but still carrying the primary tag)
// orphaned, subject to the skip rules: never orphan objects
// introduced by a currently-disabled source, never orphan a class with
// pruning disabled, never orphan IP addresses assigned to an interface
// whose Device/VM is not status=active.
func (inv *Inventory) TagLifecycle(primaryTag, orphanTag *objects.Entity, sourceTags map[string]*objects.Entity) {
	for _, class := range objects.Order() {
		def := objects.MustLookup(class)
		for _, e := range inv.All(class) {
			if e.Source != nil {
				e.AddTags(primaryTag)
				e.RemoveTags(orphanTag)
				if tag, ok := sourceTags[e.Source.SourceName()]; ok {
					e.AddTags(tag)
				}
				continue
			}
			if !e.HasTag(primaryTag) {
				continue
			}
			if !def.Prune {
				continue
			}
			if wasDisabledSource(e, sourceTags) {
				continue
			}
			if ipOnInactiveHost(e) {
				continue
			}
			e.AddTags(orphanTag)
		}
	}
}

// ipOnInactiveHost reports whether e is an IPAddress assigned to an
// interface whose Device/VM is not status=active. Such IPs keep their
// current tags: a powered-off host's addresses aren't stale just because
// no source could see them this run.
func ipOnInactiveHost(e *objects.Entity) bool {
	if e.Class != objects.ClassIPAddress {
		return false
	}
	iface := e.Get("assigned_object_id").Ref
	if iface == nil {
		return false
	}
	var parent *objects.Entity
	switch iface.Class {
	case objects.ClassInterface:
		parent = iface.Get("device").Ref
	case objects.ClassVMInterface:
		parent = iface.Get("virtual_machine").Ref
	}
	if parent == nil {
		return false
	}
	return parent.Get("status").String() != "active"
}

// wasDisabledSource reports whether e's current tags attribute it to a
// source name whose tag exists but is no longer in the active set passed
// to TagLifecycle — such entities are left alone rather than orphaned,
// because their source simply didn't run this time).
func wasDisabledSource(e *objects.Entity, activeSourceTags map[string]*objects.Entity) bool {
	for _, tag := range e.Get("tags").RefList {
		if tag == nil {
			continue
		}
		name := tag.GetDisplayName(false)
		if len(name) > len("Source: ") && name[:len("Source: ")] == "Source: " {
			srcName := name[len("Source: "):]
			if _, active := activeSourceTags[srcName]; !active {
				return true
			}
		}
	}
	return false
}
