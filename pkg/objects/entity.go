package objects

import (
	"fmt"
	"sync/atomic"
)

// SourceRef is a live reference to whatever last touched an entity this
// run. A nil SourceRef means "unmanaged this run", the condition that
// makes an entity an orphan candidate for the prune sweep.
type SourceRef interface {
	// SourceName returns the adapter's configured name, used to build the
	// "Source: <name>" tag.
	SourceName() string
	// Enabled reports whether the source that produced this reference is
	// still enabled this run. Disabled sources never orphan their own
	// objects away.
	Enabled() bool
}

var entitySeq uint64

// PendingRef records a reference field whose target could not be resolved
// at Update() time because the referent class hadn't been loaded/indexed
// yet. Inventory.ResolveRelations walks these once all classes are loaded
// and substitutes a live handle for each one it can now resolve.
type PendingRef struct {
	Class ClassTag
	ID    int
}

// Entity is one record in the inventory: a NetBox-shaped object together
// with the bookkeeping the sync engine needs to know what changed and
// what a later PATCH must carry.
type Entity struct {
	handle uint64
	Class  ClassTag

	NBID  int
	IsNew bool

	// LastUpdated mirrors NetBox's own last_updated timestamp for classes
	// that expose one (HasLastUpdated); it is metadata, not a data_model
	// field, and participates in cache-delta reconstruction and prune
	// eligibility rather than in PATCH bodies.
	LastUpdated string

	UpdatedItems []string
	UnsetItems   []string
	Deleted      bool

	Source SourceRef

	Data map[string]Value

	// nbBaseline mirrors the last read_from_netbox=true snapshot (or is
	// empty for a brand-new entity); it is what UpdatedItems diffs against.
	nbBaseline map[string]string
	// pending holds reference fields not yet resolvable at Update() time.
	pending map[string]PendingRef
	// pendingList holds the same for reference-list fields.
	pendingList map[string][]PendingRef
}

// NewEntity allocates a bare entity of the given class with a fresh
// process-unique handle. Callers normally go through Inventory, not this
// constructor, so that the entity is indexed for GetByID/GetByData lookups.
func NewEntity(class ClassTag) *Entity {
	return &Entity{
		handle:      atomic.AddUint64(&entitySeq, 1),
		Class:       class,
		IsNew:       true,
		Data:        map[string]Value{},
		nbBaseline:  map[string]string{},
		pending:     map[string]PendingRef{},
		pendingList: map[string][]PendingRef{},
	}
}

// Handle returns the entity's process-unique stable identifier.
func (e *Entity) Handle() uint64 { return e.handle }

// GetNBReference returns the NetBox id this entity should be referenced by
// in another object's PATCH/POST body, or 0 if it doesn't have one yet
// (itself new and unsynced) — the condition that forces a reference field
// to be deferred.
func (e *Entity) GetNBReference() int {
	if e.NBID <= 0 {
		return 0
	}
	return e.NBID
}

// GetDependencies returns the classes this entity's class depends on.
func (e *Entity) GetDependencies() []ClassTag {
	return MustLookup(e.Class).Dependencies
}

// displayNameFuncs holds per-class functions that override GetDisplayName
// — used by VLAN ("<vid> (site: X)"/"<vid> (group: Y)") and any other
// class that needs scope-aware display.
var displayNameFuncs = map[ClassTag]func(*Entity, bool) string{}

// RegisterDisplayName installs a custom display-name function for a class.
func RegisterDisplayName(class ClassTag, fn func(e *Entity, includeSecondary bool) string) {
	displayNameFuncs[class] = fn
}

// GetDisplayName renders the entity as "<primary_key>" or, for classes
// that opt into enforce_secondary_key (or when includingSecondaryKey is
// forced true), "<primary_key> (<secondary_key>)".
func (e *Entity) GetDisplayName(includingSecondaryKey bool) string {
	if fn, ok := displayNameFuncs[e.Class]; ok {
		return fn(e, includingSecondaryKey)
	}
	def := MustLookup(e.Class)
	pk := e.Data[def.PrimaryKey].String()
	if (def.EnforceSecondaryKey || includingSecondaryKey) && def.SecondaryKey != "" {
		if sk, ok := e.Data[def.SecondaryKey]; ok && !sk.IsEmpty() {
			return fmt.Sprintf("%s (%s)", pk, sk.String())
		}
	}
	return pk
}

// Get is a convenience accessor returning the zero Value for unset fields.
func (e *Entity) Get(field string) Value { return e.Data[field] }

// UnsetAttribute records field in unset_items if it currently carries a
// non-empty value, and locally clears it. Committed as an explicit
// null/[] PATCH before any other update.
func (e *Entity) UnsetAttribute(field string) {
	cur, ok := e.Data[field]
	if !ok || cur.IsEmpty() {
		return
	}
	if !containsStr(e.UnsetItems, field) {
		e.UnsetItems = append(e.UnsetItems, field)
	}
	spec, hasSpec := MustLookup(e.Class).DataModel[field]
	var zero Value
	if hasSpec {
		zero = zeroValue(spec)
	}
	e.Data[field] = zero
	// An unset supersedes any pending dirty-PATCH for the same field.
	e.UpdatedItems = removeStr(e.UpdatedItems, field)
	delete(e.nbBaseline, field)
}

func zeroValue(spec FieldSpec) Value {
	switch spec.Kind {
	case KindString, KindSlug:
		return Value{Kind: spec.Kind}
	case KindEnum:
		return Value{Kind: KindEnum}
	case KindInt:
		return Value{Kind: KindInt}
	case KindBool:
		return Value{Kind: KindBool}
	case KindReference:
		return Value{Kind: KindReference}
	case KindReferenceList, KindTagList, KindVLANList:
		return Value{Kind: spec.Kind}
	case KindCustomFields:
		return Value{Kind: KindCustomFields}
	case KindStringList:
		return Value{Kind: KindStringList}
	default:
		return Value{}
	}
}

func containsStr(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func removeStr(list []string, s string) []string {
	out := list[:0:0]
	for _, x := range list {
		if x != s {
			out = append(out, x)
		}
	}
	return out
}

// markBaseline snapshots every field's string form as the NetBox-side
// truth, used by the dirty-cancellation rule in setLocal.
func (e *Entity) markBaseline() {
	e.nbBaseline = make(map[string]string, len(e.Data))
	for k, v := range e.Data {
		e.nbBaseline[k] = v.String()
	}
	e.UpdatedItems = nil
	e.UnsetItems = nil
}

// setLocal assigns a locally-computed value to field, applying the
// dirty/original-data bookkeeping: the first local change to a field
// snapshots its NetBox-side string form; a later change that lands back on
// that snapshot cancels the pending PATCH entirely.
func (e *Entity) setLocal(field string, newVal Value) {
	if _, tracked := e.nbBaseline[field]; !tracked {
		if cur, ok := e.Data[field]; ok {
			e.nbBaseline[field] = cur.String()
		} else {
			e.nbBaseline[field] = ""
		}
	}
	e.Data[field] = newVal
	if newVal.String() == e.nbBaseline[field] {
		e.UpdatedItems = removeStr(e.UpdatedItems, field)
	} else if !containsStr(e.UpdatedItems, field) {
		e.UpdatedItems = append(e.UpdatedItems, field)
	}
}
