package inventory

import (
	"fmt"
	"strconv"

	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
)

// ResolveReference implements objects.Resolver. raw may be:
//   - an already-live *objects.Entity (a source constructed the referent
//     directly, e.g. while building a nested sub-object),
//   - a bare NetBox id (numeric) — resolved via GetByID, or left pending
//     if the referent's class hasn't been loaded/indexed yet,
//   - a nested map — resolved (or created) via AddUpdateObject,
//   - a bare string — an all-digit string is treated as an id like above;
//     any other string is matched against the referent class's primary
//     key, and a referent is created when none matches.
func (inv *Inventory) ResolveReference(refClass objects.ClassTag, raw any, source objects.SourceRef) (*objects.Entity, *objects.PendingRef) {
	switch v := raw.(type) {
	case nil:
		return nil, nil

	case *objects.Entity:
		return v, nil

	case map[string]any:
		e, _ := inv.AddUpdateObject(refClass, v, false, source)
		return e, nil

	case int, int64, float64:
		id := toInt(v)
		if id <= 0 {
			return nil, nil
		}
		if e, ok := inv.GetByID(refClass, id); ok {
			return e, nil
		}
		return nil, &objects.PendingRef{Class: refClass, ID: id}

	case string:
		if id, err := strconv.Atoi(v); err == nil {
			if e, ok := inv.GetByID(refClass, id); ok {
				return e, nil
			}
			return nil, &objects.PendingRef{Class: refClass, ID: id}
		}
		def := objects.MustLookup(refClass)
		if e, ok := inv.GetByData(refClass, map[string]any{def.PrimaryKey: v}); ok {
			return e, nil
		}
		e, _ := inv.AddUpdateObject(refClass, map[string]any{def.PrimaryKey: v}, false, source)
		return e, nil

	default:
		return nil, nil
	}
}

// UniqueSlug implements objects.Resolver: normalize base and, on
// collision with an entity other than self, append a numeric suffix until
// unique within the class.
func (inv *Inventory) UniqueSlug(class objects.ClassTag, base string, self *objects.Entity) string {
	normalized := objects.NormalizeSlug(base)

	inv.mu.RLock()
	holder, taken := inv.bySlug[class][normalized]
	inv.mu.RUnlock()

	if !taken || (self != nil && holder != nil && holder.Handle() == self.Handle()) {
		return normalized
	}

	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", normalized, n)
		inv.mu.RLock()
		holder, taken := inv.bySlug[class][candidate]
		inv.mu.RUnlock()
		if !taken || (self != nil && holder != nil && holder.Handle() == self.Handle()) {
			return candidate
		}
	}
}
