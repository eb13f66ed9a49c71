package source

import "github.com/netboxlabs/netbox-sync-engine/pkg/objects"

// PatchData merges incoming data onto entity's current state: with
// overwrite, incoming is returned verbatim; otherwise only the keys whose
// current value on entity is empty are carried through, so a
// lower-priority source never clobbers a field another source already
// populated this run.
func PatchData(entity *objects.Entity, incoming map[string]any, overwrite bool) map[string]any {
	if overwrite {
		return incoming
	}
	out := make(map[string]any, len(incoming))
	for k, v := range incoming {
		if entity == nil || entity.Get(k).IsEmpty() {
			out[k] = v
		}
	}
	return out
}
