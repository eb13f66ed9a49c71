package objects

import (
	"fmt"
	"strings"
)

// Resolver is the callback surface Entity.Update needs from whatever owns
// the process-wide registry (normally pkg/inventory.Inventory) in order to
// dereference KindReference/KindReferenceList/KindTagList/KindVLANList
// fields and to mint unique slugs. Kept as an interface here so that
// pkg/objects never imports pkg/inventory (it's the other way around).
type Resolver interface {
	// ResolveReference looks up or creates an entity of refClass matching
	// raw (either a nested sub-structure or a bare NetBox id) and attributes
	// it to source. If the referent cannot be resolved yet (e.g. loaded
	// from a cache snapshot before its class's id index exists) it returns
	// a PendingRef for Inventory.ResolveRelations to retry later.
	ResolveReference(refClass ClassTag, raw any, source SourceRef) (*Entity, *PendingRef)
	// UniqueSlug returns a normalized, class-unique slug derived from base,
	// excluding self (nil when generating for an entity not yet registered).
	UniqueSlug(class ClassTag, base string, self *Entity) string
}

// Issue is a single non-fatal validation problem encountered while
// applying a field from a source payload — logged and dropped, never a
// hard error.
type Issue struct {
	Class   ClassTag
	Field   string
	Message string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s.%s: %s", i.Class, i.Field, i.Message)
}

// Update applies payload to the entity. When readFromNetbox is true the
// payload is taken verbatim as the new NetBox-side truth: no
// validation beyond type coercion, dirty state is reset, and NBID/IsNew
// are stamped from the payload's "id". Otherwise each field is validated
// against the class's data_model, invalid values are dropped (not fatal),
// reference fields are resolved through resolver, custom-field maps are
// merged, and tag lists are additive.
func (e *Entity) Update(payload map[string]any, readFromNetbox bool, source SourceRef, resolver Resolver) []Issue {
	def := MustLookup(e.Class)
	if source != nil {
		e.Source = source
	}

	if readFromNetbox {
		if id, ok := numericField(payload["id"]); ok {
			e.NBID = int(id)
		}
		if lu, ok := payload["last_updated"].(string); ok {
			e.LastUpdated = lu
		}
		for field, spec := range def.DataModel {
			raw, present := payload[field]
			if !present {
				continue
			}
			val, pend, pendList, err := coerce(spec, field, raw, resolver, source, true)
			if err != nil {
				continue
			}
			e.Data[field] = val
			if pend != nil {
				e.pending[field] = *pend
			} else {
				delete(e.pending, field)
			}
			if pendList != nil {
				e.pendingList[field] = pendList
			} else {
				delete(e.pendingList, field)
			}
		}
		e.IsNew = false
		e.markBaseline()
		return nil
	}

	var issues []Issue
	for field, raw := range payload {
		spec, known := def.DataModel[field]
		if !known {
			issues = append(issues, Issue{e.Class, field, "unknown data_model field, dropped"})
			continue
		}

		if field == def.PrimaryKey && (spec.Kind == KindString || spec.Kind == KindSlug) {
			if cur, ok := e.Data[field]; ok && strings.EqualFold(cur.Str, fmt.Sprint(raw)) {
				// Stable identity: a letter-case-only change is a no-op.
				continue
			}
		}

		val, pend, pendList, err := coerce(spec, field, raw, resolver, source, false)
		if err != nil {
			issues = append(issues, Issue{e.Class, field, err.Error()})
			continue
		}

		switch {
		case spec.Kind == KindCustomFields:
			merged := mergeCustomFields(e.Data[field].Fields, val.Fields)
			e.setLocal(field, CustomFieldsValue(merged))
		case spec.Kind == KindTagList:
			union := unionRefs(e.Data[field].RefList, val.RefList)
			e.setLocal(field, TagListValue(union))
		case spec.Kind == KindStringList && field == "object_types":
			// custom field definitions accrue object_types across sources,
			// never drop a content type another source already registered.
			union := unionStrings(e.Data[field].StrList, val.StrList)
			e.setLocal(field, StringListValue(union))
		default:
			e.setLocal(field, val)
		}

		if pend != nil {
			e.pending[field] = *pend
		}
		if pendList != nil {
			e.pendingList[field] = pendList
		}

		if field == def.PrimaryKey && def.HasSlug && resolver != nil {
			slugBase := e.Data[def.PrimaryKey].String()
			slug := resolver.UniqueSlug(e.Class, slugBase, e)
			e.setLocal("slug", SlugValue(slug))
		}
	}
	return issues
}

func mergeCustomFields(existing, incoming map[string]any) map[string]any {
	out := make(map[string]any, len(existing)+len(incoming))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range incoming {
		out[k] = v
	}
	return out
}

func unionRefs(existing, incoming []*Entity) []*Entity {
	seen := make(map[uint64]bool, len(existing))
	out := make([]*Entity, 0, len(existing)+len(incoming))
	for _, e := range existing {
		if e == nil || seen[e.handle] {
			continue
		}
		seen[e.handle] = true
		out = append(out, e)
	}
	for _, e := range incoming {
		if e == nil || seen[e.handle] {
			continue
		}
		seen[e.handle] = true
		out = append(out, e)
	}
	return out
}

func unionStrings(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing)+len(incoming))
	out := make([]string, 0, len(existing)+len(incoming))
	for _, s := range existing {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range incoming {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func dedupRefs(list []*Entity) []*Entity {
	seen := make(map[uint64]bool, len(list))
	out := make([]*Entity, 0, len(list))
	for _, e := range list {
		if e == nil || seen[e.handle] {
			continue
		}
		seen[e.handle] = true
		out = append(out, e)
	}
	return out
}

func numericField(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// coerce validates and converts a raw payload value into a typed Value
// against spec, resolving reference fields through resolver. trusted
// disables enum validation (used for the read-from-NetBox path); strings
// are truncated to MaxLen whether trusted or not.
func coerce(spec FieldSpec, field string, raw any, resolver Resolver, source SourceRef, trusted bool) (Value, *PendingRef, []PendingRef, error) {
	switch spec.Kind {
	case KindString, KindSlug:
		s := fmt.Sprint(raw)
		if spec.MaxLen > 0 && len(s) > spec.MaxLen {
			s = s[:spec.MaxLen]
		}
		return Value{Kind: spec.Kind, Str: s}, nil, nil, nil

	case KindEnum:
		s := fmt.Sprint(raw)
		if !trusted && len(spec.Enum) > 0 && !containsStr(spec.Enum, s) {
			return Value{}, nil, nil, fmt.Errorf("value %q not in permitted set %v", s, spec.Enum)
		}
		return Value{Kind: KindEnum, Str: s}, nil, nil, nil

	case KindInt:
		n, ok := numericField(raw)
		if !ok {
			return Value{}, nil, nil, fmt.Errorf("expected numeric value, got %T", raw)
		}
		return Value{Kind: KindInt, Int: int64(n)}, nil, nil, nil

	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return Value{}, nil, nil, fmt.Errorf("expected bool, got %T", raw)
		}
		return Value{Kind: KindBool, Bool: b}, nil, nil, nil

	case KindReference:
		if raw == nil {
			return Value{Kind: KindReference}, nil, nil, nil
		}
		if resolver == nil {
			return Value{}, nil, nil, fmt.Errorf("reference field %s needs a resolver", field)
		}
		ent, pend := resolver.ResolveReference(spec.RefClass, raw, source)
		return Value{Kind: KindReference, Ref: ent}, pend, nil, nil

	case KindReferenceList, KindTagList, KindVLANList:
		items, ok := raw.([]any)
		if !ok {
			return Value{}, nil, nil, fmt.Errorf("expected list, got %T", raw)
		}
		if resolver == nil {
			return Value{}, nil, nil, fmt.Errorf("reference-list field %s needs a resolver", field)
		}
		var refs []*Entity
		var pendList []PendingRef
		for _, item := range items {
			ent, pend := resolver.ResolveReference(spec.RefClass, item, source)
			if ent != nil {
				refs = append(refs, ent)
			}
			if pend != nil {
				pendList = append(pendList, *pend)
			}
		}
		return Value{Kind: spec.Kind, RefList: dedupRefs(refs)}, nil, pendList, nil

	case KindCustomFields:
		m, ok := raw.(map[string]any)
		if !ok {
			return Value{}, nil, nil, fmt.Errorf("expected map, got %T", raw)
		}
		return Value{Kind: KindCustomFields, Fields: m}, nil, nil, nil

	case KindStringList:
		switch items := raw.(type) {
		case []string:
			return Value{Kind: KindStringList, StrList: items}, nil, nil, nil
		case []any:
			out := make([]string, 0, len(items))
			for _, it := range items {
				out = append(out, fmt.Sprint(it))
			}
			return Value{Kind: KindStringList, StrList: out}, nil, nil, nil
		case string:
			return Value{Kind: KindStringList, StrList: []string{items}}, nil, nil, nil
		}
		return Value{}, nil, nil, fmt.Errorf("expected list of strings, got %T", raw)
	}
	return Value{}, nil, nil, fmt.Errorf("unhandled kind %v", spec.Kind)
}

// PendingFields returns the fields still awaiting resolution, for
// Inventory.ResolveRelations.
func (e *Entity) PendingFields() map[string]PendingRef { return e.pending }

// PendingListFields returns list-valued fields with at least one
// unresolved member.
func (e *Entity) PendingListFields() map[string][]PendingRef { return e.pendingList }

// ClearPending removes a resolved pending single-reference field.
func (e *Entity) ClearPending(field string) { delete(e.pending, field) }

// ClearPendingList removes a resolved pending reference-list field.
func (e *Entity) ClearPendingList(field string) { delete(e.pendingList, field) }

// SetResolvedReference substitutes a live handle into a single-reference
// field once its PendingRef resolves.
func (e *Entity) SetResolvedReference(field string, resolved *Entity) {
	e.Data[field] = Value{Kind: KindReference, Ref: resolved}
	e.ClearPending(field)
}

// AppendResolvedReference substitutes a live handle into one member of a
// reference-list/tag-list/VLAN-list field once its PendingRef resolves.
func (e *Entity) AppendResolvedReference(field string, resolved *Entity) {
	cur := e.Data[field]
	cur.RefList = append(cur.RefList, resolved)
	e.Data[field] = cur
}
