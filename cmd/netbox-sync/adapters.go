package main

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/netboxlabs/netbox-sync-engine/pkg/config"
	"github.com/netboxlabs/netbox-sync-engine/pkg/inventory"
	"github.com/netboxlabs/netbox-sync-engine/pkg/runlog"
	"github.com/netboxlabs/netbox-sync-engine/pkg/source"
	"github.com/netboxlabs/netbox-sync-engine/pkg/source/adapters/hardwarejson"
	"github.com/netboxlabs/netbox-sync-engine/pkg/sync"
)

// buildAdapters constructs one source.Adapter per enabled entry in
// cfg.Sources, dispatching on its configured type. Unknown types are a
// configuration error, not a silent skip — a typo in a source's "type"
// should fail the run rather than quietly sync nothing from it.
func buildAdapters(cfg *config.Config, inv *inventory.Inventory, syncSet sync.Settings, errs *runlog.Collector, log logr.Logger) ([]source.Adapter, error) {
	var out []source.Adapter
	for _, s := range cfg.Sources {
		if !s.Enabled {
			continue
		}
		settings, err := toSourceSettings(s)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", s.Name, err)
		}

		switch s.Type {
		case "hardware_json":
			dir, _ := s.Options["directory"].(string)
			if dir == "" {
				return nil, fmt.Errorf("source %s: hardware_json requires options.directory", s.Name)
			}
			out = append(out, hardwarejson.New(dir, settings, inv, syncSet, errs, log))
		default:
			return nil, fmt.Errorf("source %s: unknown type %q (hypervisor-backed sources register their own Client and are wired by a calling program, not config)", s.Name, s.Type)
		}
	}
	return out, nil
}

func toSourceSettings(s config.SourceSettings) (source.Settings, error) {
	permitted, err := source.NewPermittedSubnets(append(append([]string{}, s.PermittedSubnets...), excludedAsNegated(s.ExcludedSubnets)...))
	if err != nil {
		return source.Settings{}, fmt.Errorf("parsing permitted subnets: %w", err)
	}
	return source.Settings{
		Enabled:                  s.Enabled,
		Name:                     s.Name,
		PermittedSubnets:         permitted,
		SetPrimaryIP:             s.SetPrimaryIPPolicy,
		IPTenantInheritanceOrder: s.IPTenantInheritanceOrder,
		NameFilterRegex:          s.NameFilterRegex,
		IDFilterRegex:            s.IDFilterRegex,
		DisableVLANSync:          s.DisableVLANSync,
		MatchHostBySerial:        s.MatchHostBySerial,
	}, nil
}

func excludedAsNegated(subnets []string) []string {
	out := make([]string, len(subnets))
	for i, s := range subnets {
		out[i] = "!" + s
	}
	return out
}
