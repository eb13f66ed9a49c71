// Package inventory implements the process-wide object registry the sync
// engine reconciles against: a class-keyed store of entities plus the
// bookkeeping (active sources, discovered API version, already-queried
// classes) the orchestrator and source adapters consult.
package inventory

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-logr/logr"

	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
)

// Inventory is an explicit context struct, not a package-level singleton:
// state is passed down rather than reached for through process-wide
// globals; callers construct one per run and thread it through the
// orchestrator and every source adapter.
type Inventory struct {
	mu sync.RWMutex

	byClass map[objects.ClassTag][]*objects.Entity
	byID    map[objects.ClassTag]map[int]*objects.Entity
	bySlug  map[objects.ClassTag]map[string]*objects.Entity

	sources    []objects.SourceRef
	apiVersion string
	queried    map[objects.ClassTag]bool

	log logr.Logger
}

// New returns an empty Inventory ready to be populated from cache/NetBox
// and then reconciled against.
func New(log logr.Logger) *Inventory {
	return &Inventory{
		byClass: map[objects.ClassTag][]*objects.Entity{},
		byID:    map[objects.ClassTag]map[int]*objects.Entity{},
		bySlug:  map[objects.ClassTag]map[string]*objects.Entity{},
		queried: map[objects.ClassTag]bool{},
		log:     log,
	}
}

// SetAPIVersion records the NetBox API version the client discovered, so
// that it can be read back through APIVersion. The client's feature gates
// and the on-disk cache's version check use the client's own copy.
func (inv *Inventory) SetAPIVersion(v string) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.apiVersion = v
}

// APIVersion returns the version most recently recorded by SetAPIVersion.
func (inv *Inventory) APIVersion() string {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.apiVersion
}

// RegisterSource adds an adapter to the set the Inventory consults for
// "currently disabled" checks during prune and tag lifecycle.
func (inv *Inventory) RegisterSource(s objects.SourceRef) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.sources = append(inv.sources, s)
}

// Sources returns every adapter registered this run, for building the
// per-source tag set the orchestrator's tag lifecycle/prune sweeps need.
func (inv *Inventory) Sources() []objects.SourceRef {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make([]objects.SourceRef, len(inv.sources))
	copy(out, inv.sources)
	return out
}

// MarkQueried records that class has already had a full load_current pass
// this run, so the orchestrator's dependency walk doesn't re-fetch it.
func (inv *Inventory) MarkQueried(class objects.ClassTag) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.queried[class] = true
}

// Queried reports whether class has already been loaded this run.
func (inv *Inventory) Queried(class objects.ClassTag) bool {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.queried[class]
}

// All returns every entity of class, in the order objects were added
// (object-creation order is preserved in iteration).
func (inv *Inventory) All(class objects.ClassTag) []*objects.Entity {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make([]*objects.Entity, len(inv.byClass[class]))
	copy(out, inv.byClass[class])
	return out
}

// AllClasses returns every class that currently has at least one entity,
// in registry declaration order.
func (inv *Inventory) AllClasses() []objects.ClassTag {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	var out []objects.ClassTag
	for _, c := range objects.Order() {
		if len(inv.byClass[c]) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// GetByID is the O(1)-amortised lookup by NetBox id.
func (inv *Inventory) GetByID(class objects.ClassTag, id int) (*objects.Entity, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	e, ok := inv.byID[class][id]
	return e, ok
}

// GetByData disambiguates an entity from raw data, in precedence order:
//  1. data["id"] > 0 → fetch by id.
//  2. class has a slug field and data["name"] is present → lookup by the
//     slug that name would normalize to.
//  3. data[primary_key] present → compare display names case-insensitively,
//     including the secondary key when the class declares one and data
//     supplies it.
//  4. else compare every supplied attribute for exact equality.
func (inv *Inventory) GetByData(class objects.ClassTag, data map[string]any) (*objects.Entity, bool) {
	def := objects.MustLookup(class)

	if rawID, ok := data["id"]; ok {
		if id := toInt(rawID); id > 0 {
			return inv.GetByID(class, id)
		}
	}

	inv.mu.RLock()
	defer inv.mu.RUnlock()

	if def.HasSlug {
		if name, ok := data["name"].(string); ok && name != "" {
			slug := objects.NormalizeSlug(name)
			if e, ok := inv.bySlug[class][slug]; ok {
				return e, true
			}
		}
	}

	if pk, ok := data[def.PrimaryKey]; ok && pk != nil {
		target := displayNameFromData(def, data)
		for _, e := range inv.byClass[class] {
			if strings.EqualFold(e.GetDisplayName(true), target) {
				return e, true
			}
		}
		return nil, false
	}

	for _, e := range inv.byClass[class] {
		if matchesAllFields(e, data) {
			return e, true
		}
	}
	return nil, false
}

func displayNameFromData(def *objects.ClassDef, data map[string]any) string {
	pk := fmt.Sprint(data[def.PrimaryKey])
	if def.SecondaryKey == "" {
		return pk
	}
	if sk, ok := data[def.SecondaryKey]; ok && sk != nil {
		return fmt.Sprintf("%s (%s)", pk, fmt.Sprint(sk))
	}
	return pk
}

func matchesAllFields(e *objects.Entity, data map[string]any) bool {
	for k, v := range data {
		if k == "id" {
			continue
		}
		cur := e.Get(k)
		if cur.String() != fmt.Sprint(v) {
			return false
		}
	}
	return true
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// AddObject constructs a new entity of class from data and appends it to
// the inventory, indexing it for GetByID/GetByData.
func (inv *Inventory) AddObject(class objects.ClassTag, data map[string]any, readFromNetbox bool, source objects.SourceRef) (*objects.Entity, []objects.Issue) {
	e := objects.NewEntity(class)
	issues := e.Update(data, readFromNetbox, source, inv)
	inv.index(e)
	return e, issues
}

// AddUpdateObject is GetByData-then-update, falling back to AddObject when
// no existing entity matches.
func (inv *Inventory) AddUpdateObject(class objects.ClassTag, data map[string]any, readFromNetbox bool, source objects.SourceRef) (*objects.Entity, []objects.Issue) {
	if e, ok := inv.GetByData(class, data); ok {
		issues := e.Update(data, readFromNetbox, source, inv)
		inv.Reindex(e)
		return e, issues
	}
	return inv.AddObject(class, data, readFromNetbox, source)
}

func (inv *Inventory) index(e *objects.Entity) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.byClass[e.Class] = append(inv.byClass[e.Class], e)
	inv.indexLocked(e)
}

// Reindex refreshes the id/slug indices for an entity that may have just
// acquired an id (first successful PATCH/POST) or changed its slug — the
// orchestrator calls this after feeding a create response back into an
// entity, so GetByID sees the fresh NetBox id.
func (inv *Inventory) Reindex(e *objects.Entity) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.indexLocked(e)
}

func (inv *Inventory) indexLocked(e *objects.Entity) {
	if e.NBID > 0 {
		if inv.byID[e.Class] == nil {
			inv.byID[e.Class] = map[int]*objects.Entity{}
		}
		inv.byID[e.Class][e.NBID] = e
	}
	def := objects.MustLookup(e.Class)
	if def.HasSlug {
		if slug := e.Get("slug").String(); slug != "" {
			if inv.bySlug[e.Class] == nil {
				inv.bySlug[e.Class] = map[string]*objects.Entity{}
			}
			inv.bySlug[e.Class][slug] = e
		}
	}
}
