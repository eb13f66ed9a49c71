// Package sync implements the sync orchestrator: the three-pass apply
// algorithm that commits the inventory's accumulated dirty state to
// NetBox in dependency order, plus the cross-cutting reconciliation
// algorithms (identity resolution, primary-IP arbitration, VRF/tenant
// inheritance, VLAN correlation, prune, tag GC).
package sync

import (
	"context"
	"errors"

	"github.com/go-logr/logr"

	"github.com/netboxlabs/netbox-sync-engine/pkg/inventory"
	"github.com/netboxlabs/netbox-sync-engine/pkg/netboxclient"
	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
	"github.com/netboxlabs/netbox-sync-engine/pkg/runlog"
)

// Settings carries the run's sync-level policy knobs — an explicit
// context struct threaded into the Orchestrator rather than a singleton.
type Settings struct {
	MatchHostBySerial bool
	// SetPrimaryIPPolicy is one of "always", "when-undefined", "never".
	SetPrimaryIPPolicy string
	// TenantInheritanceOrder is walked in order; "disabled" in the list
	// turns inheritance off entirely.
	TenantInheritanceOrder []string
	PruneDelayDays         int
	// PreferSoleIPv6AsPrimary decides whether a Device/VM whose
	// interfaces carry exactly one IPv6 address, and which has neither
	// primary_ip4 nor primary_ip6 set, gets that address as primary_ip6.
	PreferSoleIPv6AsPrimary bool
	VLANGroupNameRegex      string
	VLANGroupIDRangeStart   int
	VLANGroupIDRangeEnd     int

	// PrimaryTagName and PrimaryTagDescription identify the tag stamped
	// onto every object this engine manages, and OrphanTagName the one
	// stamped onto objects whose source stopped reporting them.
	PrimaryTagName        string
	PrimaryTagDescription string
	OrphanTagName         string
	// EnablePrune and EnableTagGC gate the end-of-run sweeps; both default
	// false so a dry/partial run never deletes anything.
	EnablePrune bool
	EnableTagGC bool
}

// Orchestrator drives the apply/reconcile algorithms against one
// Inventory and NetBox Client for the duration of a single run.
type Orchestrator struct {
	Inv      *inventory.Inventory
	Client   *netboxclient.Client
	Settings Settings
	Errors   *runlog.Collector
	Log      logr.Logger

	resolved map[objects.ClassTag]bool

	// primaryTag/orphanTag/sourceTags are populated by seedBasics() at the
	// start of Run and consumed by finalize()'s prune/GC sweep at the end.
	primaryTag *objects.Entity
	orphanTag  *objects.Entity
	sourceTags map[string]*objects.Entity
}

// New constructs an Orchestrator ready to Run.
func New(inv *inventory.Inventory, client *netboxclient.Client, settings Settings, errs *runlog.Collector, log logr.Logger) *Orchestrator {
	return &Orchestrator{Inv: inv, Client: client, Settings: settings, Errors: errs, Log: log}
}

// Run executes the full three-pass apply over every registered class in
// dependency order, then prune and tag GC. Tag creation and tag lifecycle
// stamping happen first, not last, so the primary/orphan/source tags —
// and every entity's freshly stamped "tags" field — are already dirty by
// the time Pass 2 UPSERTs run, rather than being created one run too
// late.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.seedBasics()
	if o.Settings.PreferSoleIPv6AsPrimary {
		o.ApplySoleIPv6Fallback()
	}

	o.resolved = map[objects.ClassTag]bool{}
	for _, class := range objects.Order() {
		if err := o.applyClass(ctx, class, passUnset); err != nil {
			return err
		}
	}

	o.resolved = map[objects.ClassTag]bool{}
	for _, class := range objects.Order() {
		if err := o.applyClass(ctx, class, passUpsert); err != nil {
			return err
		}
	}

	o.resolved = map[objects.ClassTag]bool{}
	for _, class := range objects.Order() {
		if err := o.applyClass(ctx, class, passFinal); err != nil {
			return err
		}
	}
	o.Inv.ResolveRelations()

	for _, class := range objects.Order() {
		for _, e := range o.Inv.All(class) {
			if len(e.PendingFields()) > 0 {
				o.Errors.Warnf("unresolved reference(s) remain on %s %s after final pass", class, e.GetDisplayName(false))
			}
		}
	}

	if err := o.finalize(ctx); err != nil {
		return err
	}

	return nil
}

// seedBasics creates the primary/orphan/source tags and stamps
// tag-lifecycle state onto every entity before any apply pass runs. By
// the time Pass 1 starts, the new Tag entities and every touched
// entity's "tags" field are already part of this run's dirty state, so
// they ride the normal three-pass apply instead of needing a fourth,
// unscheduled one.
func (o *Orchestrator) seedBasics() {
	if o.Settings.PrimaryTagName == "" {
		return
	}

	description := o.Settings.PrimaryTagDescription
	if description == "" {
		description = o.Settings.PrimaryTagName + ": synced objects"
	}
	o.primaryTag, _ = o.Inv.AddUpdateObject(objects.ClassTagTag, map[string]any{
		"name":        o.Settings.PrimaryTagName,
		"description": description,
		"color":       "00add8",
	}, false, nil)

	orphanName := o.Settings.OrphanTagName
	if orphanName == "" {
		orphanName = o.Settings.PrimaryTagName + ": Orphaned"
	}
	o.orphanTag, _ = o.Inv.AddUpdateObject(objects.ClassTagTag, map[string]any{
		"name":        orphanName,
		"description": o.Settings.PrimaryTagName + ": objects no longer reported by any source",
		"color":       "607d8b",
	}, false, nil)

	o.sourceTags = map[string]*objects.Entity{}
	for _, src := range o.Inv.Sources() {
		if !src.Enabled() {
			continue
		}
		// Source-tag descriptions start with the primary tag name so TagGC
		// can tell engine-created tags from human-created ones.
		tag, _ := o.Inv.AddUpdateObject(objects.ClassTagTag, map[string]any{
			"name":        "Source: " + src.SourceName(),
			"description": o.Settings.PrimaryTagName + ": objects synced from source " + src.SourceName(),
		}, false, nil)
		o.sourceTags[src.SourceName()] = tag
	}

	o.Inv.TagLifecycle(o.primaryTag, o.orphanTag, o.sourceTags)
}

// finalize sweeps orphaned objects and unused tags — the last stage of a
// run, after every apply pass has committed.
func (o *Orchestrator) finalize(ctx context.Context) error {
	if o.primaryTag == nil {
		return nil
	}

	if o.Settings.EnablePrune {
		if err := o.Prune(ctx, o.orphanTag, o.sourceTags); err != nil {
			return err
		}
	}

	if o.Settings.EnableTagGC {
		used := usedTagHandles(o.Inv)
		// The run's own tags count as used even when nothing carries them
		// yet, so the engine never collects what it just seeded.
		used[o.primaryTag.Handle()] = true
		used[o.orphanTag.Handle()] = true
		for _, tag := range o.sourceTags {
			used[tag.Handle()] = true
		}
		o.TagGC(o.Settings.PrimaryTagName, used)
	}

	if o.Settings.EnablePrune || o.Settings.EnableTagGC {
		return o.applyDeletes(ctx)
	}
	return nil
}

// applyDeletes issues the end-of-run DELETE sweep in reverse dependency
// order, so an entity is always deleted before anything it references:
// a pruned Device's Interfaces go first, then the Device itself.
func (o *Orchestrator) applyDeletes(ctx context.Context) error {
	order := dependencyOrder()
	for i := len(order) - 1; i >= 0; i-- {
		def := objects.MustLookup(order[i])
		if def.ReadOnly {
			continue
		}
		for _, e := range o.Inv.All(def.Tag) {
			if !e.Deleted || e.NBID <= 0 {
				continue
			}
			if _, err := o.Client.Request(ctx, "DELETE", def, e.NBID, nil, nil); err != nil {
				if err := fatalOrLog(o.Errors, err); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// dependencyOrder returns every registered class in an order where each
// class's dependencies come before it, regardless of registration order.
func dependencyOrder() []objects.ClassTag {
	var out []objects.ClassTag
	seen := map[objects.ClassTag]bool{}
	var visit func(objects.ClassTag)
	visit = func(class objects.ClassTag) {
		if seen[class] {
			return
		}
		seen[class] = true
		for _, dep := range objects.MustLookup(class).Dependencies {
			visit(dep)
		}
		out = append(out, class)
	}
	for _, class := range objects.Order() {
		visit(class)
	}
	return out
}

// usedTagHandles collects every tag handle referenced by any entity's
// "tags" field this run, so TagGC never deletes a tag still in use.
func usedTagHandles(inv *inventory.Inventory) map[uint64]bool {
	used := map[uint64]bool{}
	for _, class := range objects.Order() {
		for _, e := range inv.All(class) {
			for _, tag := range e.Get("tags").RefList {
				if tag != nil {
					used[tag.Handle()] = true
				}
			}
		}
	}
	return used
}

type pass int

const (
	passUnset pass = iota
	passUpsert
	passFinal
)

// applyClass recursively ensures every class C depends on is resolved in
// this pass before updating C's own entities.
func (o *Orchestrator) applyClass(ctx context.Context, class objects.ClassTag, p pass) error {
	if o.resolved[class] {
		return nil
	}
	def := objects.MustLookup(class)
	for _, dep := range def.Dependencies {
		if err := o.applyClass(ctx, dep, p); err != nil {
			return err
		}
	}
	o.resolved[class] = true
	if !o.Client.MinAPIVersionSatisfied(def) {
		return nil
	}

	switch p {
	case passUnset:
		return o.applyUnset(ctx, def)
	case passUpsert:
		return o.applyUpsert(ctx, def, false)
	case passFinal:
		return o.applyUpsert(ctx, def, true)
	}
	return nil
}

// applyUnset issues Pass 1: for every entity with a non-empty unset_items,
// PATCH each listed field to its kind's empty representation.
func (o *Orchestrator) applyUnset(ctx context.Context, def *objects.ClassDef) error {
	if def.ReadOnly {
		return nil
	}
	for _, e := range o.Inv.All(def.Tag) {
		if e.NBID <= 0 || len(e.UnsetItems) == 0 {
			continue
		}
		body := map[string]any{}
		for _, field := range e.UnsetItems {
			spec := def.DataModel[field]
			body[field] = emptyRepresentation(spec.Kind)
		}
		if _, err := o.Client.Request(ctx, "PATCH", def, e.NBID, body, nil); err != nil {
			return fatalOrLog(o.Errors, err)
		}
	}
	return nil
}

func emptyRepresentation(k objects.Kind) any {
	switch k {
	case objects.KindReference:
		return nil
	case objects.KindReferenceList, objects.KindTagList, objects.KindVLANList, objects.KindStringList:
		return []any{}
	case objects.KindCustomFields:
		return map[string]any{}
	case objects.KindInt:
		return nil
	case objects.KindBool:
		return false
	default:
		return ""
	}
}

// deferredKeys are always moved to Pass 3 regardless of whether their
// referent already has an id, since primary_ip4/6 frequently form a cycle
// with the Device/VM that holds them.
var deferredKeys = map[string]bool{
	"primary_ip4":         true,
	"primary_ip6":         true,
	"primary_mac_address": true,
}

// gatedFields maps class → field → the NetBox feature that must be
// available before the field may appear in a request body; servers too
// old for a field simply never see it.
var gatedFields = map[objects.ClassTag]map[string]netboxclient.Feature{
	objects.ClassInterface: {
		"speed":               netboxclient.FeatureInterfaceSpeedDuplex,
		"duplex":              netboxclient.FeatureInterfaceSpeedDuplex,
		"primary_mac_address": netboxclient.FeatureScopeFields,
	},
	objects.ClassVMInterface: {
		"primary_mac_address": netboxclient.FeatureScopeFields,
	},
	objects.ClassVM: {
		"site":   netboxclient.FeatureVMSite,
		"device": netboxclient.FeatureVMSite,
		"serial": netboxclient.FeatureVMDiskInMB,
	},
}

// applyVersionRenames rewrites body keys for servers predating a field
// rename, and converts the VM disk value back to gigabytes for servers
// that still expect it in that unit.
func (o *Orchestrator) applyVersionRenames(def *objects.ClassDef, body map[string]any) {
	switch def.Tag {
	case objects.ClassDevice:
		if !o.Client.FeatureGate(netboxclient.FeatureDeviceRoleRename) {
			if v, ok := body["role"]; ok {
				body["device_role"] = v
				delete(body, "role")
			}
		}
	case objects.ClassCustomField:
		if !o.Client.FeatureGate(netboxclient.FeatureCustomFieldObjectTypes) {
			if v, ok := body["object_types"]; ok {
				body["content_types"] = v
				delete(body, "object_types")
			}
		}
	case objects.ClassVM:
		if !o.Client.FeatureGate(netboxclient.FeatureVMDiskInMB) {
			if v, ok := body["disk"].(int64); ok {
				body["disk"] = v / 1000
			}
		}
	}
}

// applyUpsert issues Pass 2 (lastRun=false) or Pass 3 (lastRun=true): build
// a PATCH/POST body from updated_items, deferring unresolved or
// always-deferred reference fields; feed a successful response back
// through Update(read_from_netbox=true); handle deletion in Pass 3.
func (o *Orchestrator) applyUpsert(ctx context.Context, def *objects.ClassDef, lastRun bool) error {
	if def.ReadOnly {
		return nil
	}
	for _, e := range o.Inv.All(def.Tag) {
		if lastRun && e.Deleted {
			if e.NBID > 0 {
				if _, err := o.Client.Request(ctx, "DELETE", def, e.NBID, nil, nil); err != nil {
					if err := fatalOrLog(o.Errors, err); err != nil {
						return err
					}
				}
			}
			continue
		}

		if len(e.UpdatedItems) == 0 {
			continue
		}

		body := map[string]any{}
		var deferred []string
		for _, field := range e.UpdatedItems {
			val := e.Get(field)
			if feat, gated := gatedFields[def.Tag][field]; gated && !o.Client.FeatureGate(feat) {
				continue
			}
			if !lastRun && deferredKeys[field] {
				deferred = append(deferred, field)
				continue
			}
			if val.Unresolved() {
				if lastRun {
					o.Errors.Warnf("%s %s: field %q still unresolved at final pass", def.Tag, e.GetDisplayName(false), field)
					continue
				}
				deferred = append(deferred, field)
				continue
			}
			body[field] = val.NBValue()
		}
		if len(body) == 0 && e.NBID > 0 {
			continue
		}

		method := "PATCH"
		if e.IsNew {
			method = "POST"
			if def.PrimaryKey != "" {
				body[def.PrimaryKey] = e.Get(def.PrimaryKey).NBValue()
			}
		}
		o.applyVersionRenames(def, body)

		resp, err := o.Client.Request(ctx, method, def, e.NBID, body, nil)
		if err != nil {
			if err := fatalOrLog(o.Errors, err); err != nil {
				return err
			}
			continue
		}
		if resp == nil {
			continue
		}
		e.Update(resp, true, nil, o.Inv)
		o.Inv.Reindex(e)
		o.Inv.ResolveRelations()
		// e.Update(readFromNetbox=true) resets UpdatedItems to empty,
		// dropping the fields we deliberately withheld above. Re-apply the
		// deferred bag now so Pass 3 still sees them as dirty.
		for _, field := range deferred {
			if !stringInSlice(e.UpdatedItems, field) {
				e.UpdatedItems = append(e.UpdatedItems, field)
			}
		}
	}
	return nil
}

func stringInSlice(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func fatalOrLog(errs *runlog.Collector, err error) error {
	var fatal *netboxclient.FatalError
	if errors.As(err, &fatal) {
		return err
	}
	errs.Errorf("%v", err)
	return nil
}
