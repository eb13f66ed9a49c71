package objects

// AddTags unions tag into the entity's "tags" field: additive, following
// KindTagList's set-union semantics rather than replacement. Tags not
// already carried by the entity become a pending PATCH field.
func (e *Entity) AddTags(tags ...*Entity) {
	if len(tags) == 0 {
		return
	}
	cur := e.Data["tags"]
	merged := unionRefs(cur.RefList, tags)
	e.setLocal("tags", TagListValue(merged))
}

// RemoveTags drops tag from the entity's "tags" field. Used for orphan-tag
// and source-tag lifecycle transitions.
func (e *Entity) RemoveTags(tags ...*Entity) {
	if len(tags) == 0 {
		return
	}
	drop := make(map[uint64]bool, len(tags))
	for _, t := range tags {
		if t != nil {
			drop[t.handle] = true
		}
	}
	cur := e.Data["tags"]
	out := make([]*Entity, 0, len(cur.RefList))
	for _, t := range cur.RefList {
		if t != nil && !drop[t.handle] {
			out = append(out, t)
		}
	}
	e.setLocal("tags", TagListValue(out))
}

// HasTag reports whether the entity currently carries tag (by handle
// identity, not display name).
func (e *Entity) HasTag(tag *Entity) bool {
	if tag == nil {
		return false
	}
	for _, t := range e.Data["tags"].RefList {
		if t != nil && t.handle == tag.handle {
			return true
		}
	}
	return false
}
