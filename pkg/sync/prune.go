package sync

import (
	"context"
	"strings"
	"time"

	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
)

const timeLayout = time.RFC3339

// Prune implements the end-of-run deletion sweep: for every class with
// prune=true, delete every entity that (i) carries the orphan tag, (ii)
// has no current source, (iii) was not introduced by a currently-disabled
// source, (iv) has a last_updated older than PruneDelayDays. Devices and
// VMs first delete their interfaces: every interface of a pruned Device/VM
// is marked deleted too, whatever its own tags or last_updated.
func (o *Orchestrator) Prune(ctx context.Context, orphanTag *objects.Entity, activeSourceTags map[string]*objects.Entity) error {
	cutoff := time.Now().AddDate(0, 0, -o.Settings.PruneDelayDays)

	for _, class := range objects.Order() {
		def := objects.MustLookup(class)
		if !def.Prune {
			continue
		}
		for _, e := range o.Inv.All(class) {
			if !eligibleForPrune(e, orphanTag, activeSourceTags, cutoff) {
				continue
			}
			if class == objects.ClassDevice || class == objects.ClassVM {
				for _, iface := range o.Inv.GetAllInterfaces(e) {
					iface.Deleted = true
				}
			}
			e.Deleted = true
		}
	}
	return nil
}

func eligibleForPrune(e *objects.Entity, orphanTag *objects.Entity, activeSourceTags map[string]*objects.Entity, cutoff time.Time) bool {
	if !e.HasTag(orphanTag) {
		return false
	}
	if e.Source != nil {
		return false
	}
	if wasDisabledSourceEntity(e, activeSourceTags) {
		return false
	}
	if e.LastUpdated == "" {
		return true
	}
	t, err := time.Parse(timeLayout, e.LastUpdated)
	if err != nil {
		return true
	}
	return t.Before(cutoff)
}

func wasDisabledSourceEntity(e *objects.Entity, activeSourceTags map[string]*objects.Entity) bool {
	for _, tag := range e.Get("tags").RefList {
		if tag == nil {
			continue
		}
		name := tag.GetDisplayName(false)
		const prefix = "Source: "
		if strings.HasPrefix(name, prefix) {
			if _, active := activeSourceTags[name[len(prefix):]]; !active {
				return true
			}
		}
	}
	return false
}

// TagGC deletes any Tag whose description begins with primaryTagName,
// whose tagged_items count is 0, and which was not referenced
// (used=true) during this run.
func (o *Orchestrator) TagGC(primaryTagName string, usedTags map[uint64]bool) {
	for _, tag := range o.Inv.All(objects.ClassTagTag) {
		if !strings.HasPrefix(tag.Get("description").String(), primaryTagName) {
			continue
		}
		if tag.Get("tagged_items").Int != 0 {
			continue
		}
		if usedTags[tag.Handle()] {
			continue
		}
		tag.Deleted = true
	}
}
