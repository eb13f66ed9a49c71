// Package source implements the Source Adapter Framework: the small
// common contract every concrete source adapter (hypervisor walk,
// hardware-inventory JSON file, ...) implements, plus the helpers the
// framework offers them — interface matching, IP/prefix/VLAN correlation,
// custom-field registration, and the permitted-subnet filter.
package source

import (
	"context"
	"regexp"

	"github.com/go-logr/logr"

	"github.com/netboxlabs/netbox-sync-engine/pkg/inventory"
	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
	"github.com/netboxlabs/netbox-sync-engine/pkg/runlog"
	"github.com/netboxlabs/netbox-sync-engine/pkg/sync"
)

// Adapter is the contract every concrete source implements: a single
// interface over value types rather than a per-source class hierarchy.
type Adapter interface {
	objects.SourceRef

	// Type returns the constant source_type this adapter implements
	// (e.g. "vmware", "json_file").
	Type() string
	// Implements reports whether this adapter handles the given
	// source_type string from config.
	Implements(sourceType string) bool
	// Init prepares the adapter (connects, opens files, ...). A returned
	// error sets InitSuccessful() false and the orchestrator skips this
	// source for the run without aborting.
	Init(ctx context.Context) error
	// InitSuccessful reports whether Init completed without error.
	InitSuccessful() bool
	// DependentClasses lists the entity classes this source populates,
	// so the engine can ensure they're loaded from NetBox before Apply.
	DependentClasses() []objects.ClassTag
	// Apply populates the inventory with this source's full current
	// state. Anything it omits becomes a candidate for orphan/prune.
	Apply(ctx context.Context) error
}

// Settings is the typed config bundle every adapter carries:
// enable flag, subnet filter, primary-IP policy, tenant-inheritance
// order, and name/id filter regexes.
type Settings struct {
	Enabled                  bool
	Name                     string
	PermittedSubnets         PermittedSubnets
	SetPrimaryIP             string // "always" | "when-undefined" | "never"
	IPTenantInheritanceOrder []string
	NameFilterRegex          string
	IDFilterRegex            string
	DisableVLANSync          bool
	MatchHostBySerial        bool
}

// SourceTag returns the "Source: <name>" tag name this adapter stamps on
// objects it manages.
func (s Settings) SourceTag() string { return "Source: " + s.Name }

// NameFiltered reports whether name is excluded by the configured name
// filter regex (empty regex means no filtering).
func (s Settings) NameFiltered(name string) bool {
	if s.NameFilterRegex == "" {
		return false
	}
	re, err := regexp.Compile(s.NameFilterRegex)
	if err != nil {
		return false
	}
	return re.MatchString(name)
}

// Base is embedded by concrete adapters to get SourceRef, the framework
// helpers below, and the enabled/init bookkeeping for free.
type Base struct {
	Settings Settings
	Inv      *inventory.Inventory
	SyncSet  sync.Settings
	Errors   *runlog.Collector
	Log      logr.Logger
	Deferred *DeferredIPQueue
	initOK   bool
}

// NewBase constructs the embeddable framework state for one adapter
// instance.
func NewBase(settings Settings, inv *inventory.Inventory, syncSet sync.Settings, errs *runlog.Collector, log logr.Logger) Base {
	return Base{
		Settings: settings,
		Inv:      inv,
		SyncSet:  syncSet,
		Errors:   errs,
		Log:      log,
		Deferred: NewDeferredIPQueue(),
	}
}

// SourceName implements objects.SourceRef.
func (b *Base) SourceName() string { return b.Settings.Name }

// Enabled implements objects.SourceRef.
func (b *Base) Enabled() bool { return b.Settings.Enabled }

// InitSuccessful reports whether MarkInitOK was called.
func (b *Base) InitSuccessful() bool { return b.initOK }

// MarkInitOK records that Init() completed without error.
func (b *Base) MarkInitOK() { b.initOK = true }
