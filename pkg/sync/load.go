package sync

import (
	"context"
	"fmt"

	"github.com/netboxlabs/netbox-sync-engine/pkg/netboxclient"
	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
)

// LoadCurrentState is the engine's bootstrap step: discover and verify the
// server's API version, drop the on-disk cache if it was built against a
// different version, then fetch every registered class once, through the
// client's per-class cache protocol, before any source adapter or apply
// pass runs — so identity resolution and pruning both see NetBox's full
// current state rather than only the subset a source happens to touch.
func (o *Orchestrator) LoadCurrentState(ctx context.Context, cache *netboxclient.Cache) error {
	if err := o.Client.CheckMinimumVersion(ctx); err != nil {
		return err
	}
	o.Inv.SetAPIVersion(o.Client.APIVersion())

	if cache != nil {
		if cached := cache.CachedVersion(); cached != "" && cached != o.Client.APIVersion() {
			o.Log.Info("cached snapshots were built against a different NetBox version, discarding",
				"cached", cached, "current", o.Client.APIVersion())
			if err := cache.Invalidate(); err != nil {
				return fmt.Errorf("invalidating stale cache: %w", err)
			}
		}
	}

	for _, class := range objects.Order() {
		if o.Inv.Queried(class) {
			continue
		}
		def := objects.MustLookup(class)
		if !o.Client.MinAPIVersionSatisfied(def) {
			continue
		}

		entries, err := o.Client.LoadCurrent(ctx, cache, def)
		if err != nil {
			return fmt.Errorf("loading current state of %s: %w", class, err)
		}
		for _, entry := range entries {
			_, issues := o.Inv.AddObject(class, entry, true, nil)
			for _, issue := range issues {
				o.Errors.Errorf("%s", issue)
			}
		}
		o.Inv.MarkQueried(class)
	}

	if cache != nil {
		if err := cache.WriteVersion(o.Client.APIVersion()); err != nil {
			return fmt.Errorf("recording cache version: %w", err)
		}
	}
	return nil
}
